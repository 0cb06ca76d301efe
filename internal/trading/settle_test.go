package trading

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pipmatrix/internal/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProfitLoss(t *testing.T) {
	cases := []struct {
		name     string
		side     types.TradeSide
		stake    string
		entry    string
		exit     string
		leverage int
		want     string
	}{
		{"buy up with leverage", types.TradeSideBuy, "100", "100", "110", 2, "20"},
		{"buy down", types.TradeSideBuy, "100", "100", "90", 1, "-10"},
		{"sell down wins", types.TradeSideSell, "100", "100", "90", 1, "10"},
		{"sell up loses", types.TradeSideSell, "100", "100", "110", 2, "-20"},
		{"flat market", types.TradeSideBuy, "500", "42.5", "42.5", 10, "0"},
		{"zero entry settles flat", types.TradeSideBuy, "100", "0", "10", 1, "0"},
		{"leverage below one treated as one", types.TradeSideBuy, "100", "100", "110", 0, "10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ProfitLoss(tc.side, dec(tc.stake), dec(tc.entry), dec(tc.exit), tc.leverage)
			if !got.Equal(dec(tc.want)) {
				t.Errorf("ProfitLoss = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestRuleProfit(t *testing.T) {
	if got := RuleProfit(dec("200"), dec("5")); !got.Equal(dec("10")) {
		t.Errorf("RuleProfit(200, 5%%) = %s, want 10", got)
	}
	if got := RuleProfit(dec("100"), dec("-20")); !got.Equal(dec("-20")) {
		t.Errorf("RuleProfit(100, -20%%) = %s, want -20", got)
	}
	if got := RuleProfit(dec("0"), dec("50")); !got.IsZero() {
		t.Errorf("RuleProfit(0, 50%%) = %s, want 0", got)
	}
}

func TestClampQuickTrade(t *testing.T) {
	cases := []struct {
		name  string
		stake string
		pl    string
		want  string
	}{
		{"within bounds untouched", "100", "30", "30"},
		{"win capped at 85 percent", "100", "200", "85"},
		{"exact cap untouched", "100", "85", "85"},
		{"loss capped at stake", "100", "-500", "-100"},
		{"exact max loss untouched", "100", "-100", "-100"},
		{"small loss untouched", "100", "-12.5", "-12.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClampQuickTrade(dec(tc.stake), dec(tc.pl))
			if !got.Equal(dec(tc.want)) {
				t.Errorf("ClampQuickTrade(%s, %s) = %s, want %s", tc.stake, tc.pl, got, tc.want)
			}
		})
	}
}

func TestCloseOutcomeDefaultsExitToEntry(t *testing.T) {
	trade := Trade{Side: "buy", Stake: dec("100"), EntryPrice: dec("100"), Leverage: 2}

	exit, pl := closeOutcome(trade, nil, nil, time.Now(), false)
	if !exit.Equal(trade.EntryPrice) {
		t.Errorf("exit = %s, want entry price %s", exit, trade.EntryPrice)
	}
	if !pl.IsZero() {
		t.Errorf("pl = %s, want 0 for a close without an exit quote", pl)
	}

	quoted := dec("110")
	exit, pl = closeOutcome(trade, &quoted, nil, time.Now(), false)
	if !exit.Equal(quoted) {
		t.Errorf("exit = %s, want quoted %s", exit, quoted)
	}
	if !pl.Equal(dec("20")) {
		t.Errorf("pl = %s, want 20", pl)
	}
}

// The quick demo surface clamps its outcome; the standard close keeps
// the raw formula even for demo trades.
func TestCloseOutcomeClampsOnlyWhenRequested(t *testing.T) {
	trade := Trade{Side: "buy", Stake: dec("100"), EntryPrice: dec("100"), Leverage: 2, IsDemo: true}
	exit := dec("40")

	if _, pl := closeOutcome(trade, &exit, nil, time.Now(), false); !pl.Equal(dec("-120")) {
		t.Errorf("unclamped pl = %s, want -120", pl)
	}
	if _, pl := closeOutcome(trade, &exit, nil, time.Now(), true); !pl.Equal(dec("-100")) {
		t.Errorf("clamped pl = %s, want -100", pl)
	}
}

func TestCloseOutcomeUsesRule(t *testing.T) {
	trade := Trade{Side: "buy", Stake: dec("200"), EntryPrice: dec("100"), Leverage: 1}
	exit := dec("50")
	rules := []Rule{{ProfitPercentage: dec("5"), IsActive: true, ApplyAllTime: true}}

	if _, pl := closeOutcome(trade, &exit, rules, time.Now(), false); !pl.Equal(dec("10")) {
		t.Errorf("rule pl = %s, want 10 regardless of exit price", pl)
	}
}

// Payout credited on close is stake plus outcome; a clamped total loss
// therefore credits nothing.
func TestClampedPayoutNeverNegative(t *testing.T) {
	stakes := []string{"1", "50", "100", "2500"}
	pls := []string{"-10000", "-250", "-50", "0", "75", "10000"}
	for _, s := range stakes {
		for _, p := range pls {
			stake := dec(s)
			payout := stake.Add(ClampQuickTrade(stake, dec(p)))
			if payout.IsNegative() {
				t.Errorf("stake %s pl %s: payout %s is negative", s, p, payout)
			}
		}
	}
}
