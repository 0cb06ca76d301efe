package trading

import (
	"time"

	"github.com/shopspring/decimal"

	"pipmatrix/internal/types"
)

var hundred = decimal.NewFromInt(100)

// demoProfitCap limits how much a quick demo trade can win relative to
// its stake. Losses are capped at the stake itself.
var demoProfitCap = decimal.RequireFromString("0.85")

// ProfitLoss computes the market outcome of a trade:
// (exit - entry) / entry * stake * leverage, with the sign flipped for
// sells. A zero entry price settles flat rather than dividing by zero.
func ProfitLoss(side types.TradeSide, stake, entry, exit decimal.Decimal, leverage int) decimal.Decimal {
	if entry.IsZero() {
		return decimal.Zero
	}
	if leverage < 1 {
		leverage = 1
	}
	pl := exit.Sub(entry).Div(entry).Mul(stake).Mul(decimal.NewFromInt(int64(leverage)))
	if side == types.TradeSideSell {
		pl = pl.Neg()
	}
	return pl
}

// RuleProfit settles a trade under an admin rule: a fixed percentage
// of stake, regardless of where the market went.
func RuleProfit(stake, profitPercentage decimal.Decimal) decimal.Decimal {
	return stake.Mul(profitPercentage).Div(hundred)
}

// ClampQuickTrade bounds a quick demo trade's outcome: wins are capped
// at 85% of stake and losses at the full stake. The asymmetry is
// intentional and matches what the quick-trade UI advertises.
func ClampQuickTrade(stake, pl decimal.Decimal) decimal.Decimal {
	maxWin := stake.Mul(demoProfitCap)
	if pl.GreaterThan(maxWin) {
		return maxWin
	}
	maxLoss := stake.Neg()
	if pl.LessThan(maxLoss) {
		return maxLoss
	}
	return pl
}

// closeOutcome decides the exit price and outcome of a closing trade.
// A nil exit price settles at the entry price. An applicable rule
// replaces the market formula. clamp applies the quick-trade bounds
// and is set only on the quick demo close path.
func closeOutcome(t Trade, exitPrice *decimal.Decimal, rules []Rule, now time.Time, clamp bool) (exit, pl decimal.Decimal) {
	exit = t.EntryPrice
	if exitPrice != nil {
		exit = *exitPrice
	}
	if rule := Resolve(rules, now); rule != nil {
		pl = RuleProfit(t.Stake, rule.ProfitPercentage)
	} else {
		pl = ProfitLoss(types.TradeSide(t.Side), t.Stake, t.EntryPrice, exit, t.Leverage)
	}
	if clamp {
		pl = ClampQuickTrade(t.Stake, pl)
	}
	return exit, pl
}
