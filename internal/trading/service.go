package trading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pipmatrix/internal/notifications"
	"pipmatrix/internal/types"
)

var (
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrTradeNotFound     = errors.New("trade not found")
	ErrTradeNotOpen      = errors.New("trade is not open")
	ErrTradeStillOpen    = errors.New("cannot delete an open trade")
)

type Service struct {
	pool      *pgxpool.Pool
	rules     *RuleStore
	demoStart decimal.Decimal
	logger    zerolog.Logger
}

// NewService wires the trade lifecycle. The rule store is passed in
// explicitly because it decides settlement outcomes.
func NewService(pool *pgxpool.Pool, rules *RuleStore, demoStart decimal.Decimal, logger zerolog.Logger) *Service {
	return &Service{
		pool:      pool,
		rules:     rules,
		demoStart: demoStart,
		logger:    logger.With().Str("component", "trading").Logger(),
	}
}

type Trade struct {
	ID         int64            `json:"id"`
	Symbol     string           `json:"symbol"`
	Side       string           `json:"side"`
	Stake      decimal.Decimal  `json:"stake"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	ExitPrice  *decimal.Decimal `json:"exit_price,omitempty"`
	ProfitLoss *decimal.Decimal `json:"profit_loss,omitempty"`
	Leverage   int              `json:"leverage"`
	Status     string           `json:"status"`
	IsDemo     bool             `json:"is_demo"`
	CreatedAt  time.Time        `json:"created_at"`
	ClosedAt   *time.Time       `json:"closed_at,omitempty"`
}

const tradeColumns = `id, symbol, side, stake, entry_price, exit_price, profit_loss, leverage, status, is_demo, created_at, closed_at`

func scanTrade(row pgx.Row) (Trade, error) {
	var t Trade
	err := row.Scan(&t.ID, &t.Symbol, &t.Side, &t.Stake, &t.EntryPrice, &t.ExitPrice, &t.ProfitLoss, &t.Leverage, &t.Status, &t.IsDemo, &t.CreatedAt, &t.ClosedAt)
	return t, err
}

type OpenParams struct {
	Symbol     string
	Side       types.TradeSide
	Stake      decimal.Decimal
	EntryPrice decimal.Decimal
	Leverage   int
	IsDemo     bool
}

func balanceColumn(isDemo bool) string {
	if isDemo {
		return "demo_balance"
	}
	return "balance"
}

// Open stakes the given amount from the matching balance and records
// an open position at the quoted entry price.
func (s *Service) Open(ctx context.Context, userID int64, p OpenParams) (Trade, error) {
	if p.Stake.LessThanOrEqual(decimal.Zero) {
		return Trade{}, errors.New("invalid stake amount")
	}
	if p.EntryPrice.LessThanOrEqual(decimal.Zero) {
		return Trade{}, errors.New("invalid entry price")
	}
	if p.Side != types.TradeSideBuy && p.Side != types.TradeSideSell {
		return Trade{}, errors.New("side must be buy or sell")
	}
	if p.Leverage < 1 {
		p.Leverage = 1
	}
	symbol := NormalizeSymbol(p.Symbol)
	if symbol == "" {
		return Trade{}, errors.New("symbol is required")
	}

	col := balanceColumn(p.IsDemo)
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Trade{}, err
	}
	defer tx.Rollback(ctx)

	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, "select "+col+" from accounts where user_id = $1", userID).Scan(&balance); err != nil {
		return Trade{}, err
	}
	if balance.LessThan(p.Stake) {
		return Trade{}, ErrInsufficientFunds
	}
	if _, err := tx.Exec(ctx, "update accounts set "+col+" = "+col+" - $1 where user_id = $2", p.Stake, userID); err != nil {
		return Trade{}, err
	}
	row := tx.QueryRow(ctx, `
		insert into trades (user_id, symbol, side, stake, entry_price, leverage, status, is_demo)
		values ($1, $2, $3, $4, $5, $6, 'open', $7)
		returning `+tradeColumns, userID, symbol, p.Side, p.Stake, p.EntryPrice, p.Leverage, p.IsDemo)
	trade, err := scanTrade(row)
	if err != nil {
		return Trade{}, err
	}
	if !p.IsDemo {
		msg := fmt.Sprintf("Your %s position on %s for $%s has been opened.", p.Side, symbol, p.Stake.StringFixed(2))
		if err := notifications.Insert(ctx, tx, userID, "Trade Opened", msg, types.NotificationTypeInfo); err != nil {
			return Trade{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Trade{}, err
	}
	s.logger.Info().Int64("user_id", userID).Int64("trade_id", trade.ID).Str("symbol", symbol).Bool("demo", p.IsDemo).Msg("trade opened")
	return trade, nil
}

// Close settles an open trade. A nil exit price settles at the entry
// price. If an admin rule covers the symbol right now, the rule's
// percentage of stake replaces the market outcome. clamp is set by the
// quick demo surface only: it bounds the outcome and credits the
// payout only when positive; the standard close credits stake plus
// outcome unconditionally.
func (s *Service) Close(ctx context.Context, userID, tradeID int64, exitPrice *decimal.Decimal, clamp bool) (Trade, error) {
	rules, err := s.rulesForTrade(ctx, userID, tradeID)
	if err != nil {
		return Trade{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Trade{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, "select "+tradeColumns+" from trades where id = $1 and user_id = $2", tradeID, userID)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Trade{}, ErrTradeNotFound
		}
		return Trade{}, err
	}
	if trade.Status != string(types.TradeStatusOpen) {
		return Trade{}, ErrTradeNotOpen
	}

	clamp = clamp && trade.IsDemo
	exit, pl := closeOutcome(trade, exitPrice, rules, time.Now(), clamp)

	row = tx.QueryRow(ctx, `
		update trades set status = 'closed', exit_price = $1, profit_loss = $2, closed_at = now()
		where id = $3
		returning `+tradeColumns, exit, pl, tradeID)
	trade, err = scanTrade(row)
	if err != nil {
		return Trade{}, err
	}

	payout := trade.Stake.Add(pl)
	if trade.IsDemo {
		if !clamp || payout.GreaterThan(decimal.Zero) {
			if _, err := tx.Exec(ctx, "update accounts set demo_balance = demo_balance + $1 where user_id = $2", payout, userID); err != nil {
				return Trade{}, err
			}
		}
	} else {
		if _, err := tx.Exec(ctx, "update accounts set balance = balance + $1, total_profit = total_profit + $2 where user_id = $3", payout, pl, userID); err != nil {
			return Trade{}, err
		}
		kind := types.NotificationTypeSuccess
		verb := "profit"
		if pl.IsNegative() {
			kind = types.NotificationTypeWarning
			verb = "loss"
		}
		msg := fmt.Sprintf("Your %s trade closed with a %s of $%s.", trade.Symbol, verb, pl.Abs().StringFixed(2))
		if err := notifications.Insert(ctx, tx, userID, "Trade Closed", msg, kind); err != nil {
			return Trade{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Trade{}, err
	}
	s.logger.Info().Int64("user_id", userID).Int64("trade_id", tradeID).Str("pl", pl.StringFixed(2)).Bool("demo", trade.IsDemo).Msg("trade closed")
	return trade, nil
}

// rulesForTrade loads the applicable rules before the settlement
// transaction starts, keyed on the trade's stored symbol.
func (s *Service) rulesForTrade(ctx context.Context, userID, tradeID int64) ([]Rule, error) {
	var symbol string
	err := s.pool.QueryRow(ctx, "select symbol from trades where id = $1 and user_id = $2", tradeID, userID).Scan(&symbol)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}
	return s.rules.ActiveFor(ctx, symbol)
}

// List returns the user's trades, newest first. isDemo and status
// filter when non-zero.
func (s *Service) List(ctx context.Context, userID int64, isDemo *bool, status string) ([]Trade, error) {
	query := "select " + tradeColumns + " from trades where user_id = $1"
	args := []any{userID}
	if isDemo != nil {
		args = append(args, *isDemo)
		query += fmt.Sprintf(" and is_demo = $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" and status = $%d", len(args))
	}
	query += " order by created_at desc"
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a settled trade from history. Open positions have
// staked funds attached and must be closed first.
func (s *Service) Delete(ctx context.Context, userID, tradeID int64) error {
	var status string
	err := s.pool.QueryRow(ctx, "select status from trades where id = $1 and user_id = $2", tradeID, userID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTradeNotFound
		}
		return err
	}
	if status == string(types.TradeStatusOpen) {
		return ErrTradeStillOpen
	}
	_, err = s.pool.Exec(ctx, "delete from trades where id = $1 and user_id = $2", tradeID, userID)
	return err
}

type Stats struct {
	TotalTrades int             `json:"total_trades"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	WinRate     decimal.Decimal `json:"win_rate"`
}

// HistoryStats summarizes the user's closed trades on one side of the
// demo/live split.
func (s *Service) HistoryStats(ctx context.Context, userID int64, isDemo bool) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		select count(*),
		       count(*) filter (where profit_loss > 0),
		       count(*) filter (where profit_loss < 0),
		       coalesce(sum(profit_loss), 0)
		from trades
		where user_id = $1 and is_demo = $2 and status = 'closed'
	`, userID, isDemo).Scan(&st.TotalTrades, &st.Wins, &st.Losses, &st.TotalProfit)
	if err != nil {
		return Stats{}, err
	}
	if st.TotalTrades > 0 {
		st.WinRate = decimal.NewFromInt(int64(st.Wins)).Mul(hundred).Div(decimal.NewFromInt(int64(st.TotalTrades))).Round(2)
	}
	return st, nil
}

// DemoBalance reads the user's practice balance.
func (s *Service) DemoBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.pool.QueryRow(ctx, "select demo_balance from accounts where user_id = $1", userID).Scan(&balance)
	return balance, err
}

// ResetDemo restores the practice balance to the starting amount and
// cancels any open demo positions.
func (s *Service) ResetDemo(ctx context.Context, userID int64) (decimal.Decimal, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `
		update trades set status = 'cancelled', closed_at = now()
		where user_id = $1 and is_demo and status = 'open'
	`, userID); err != nil {
		return decimal.Zero, err
	}
	if _, err := tx.Exec(ctx, "update accounts set demo_balance = $1 where user_id = $2", s.demoStart, userID); err != nil {
		return decimal.Zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, err
	}
	s.logger.Info().Int64("user_id", userID).Msg("demo account reset")
	return s.demoStart, nil
}
