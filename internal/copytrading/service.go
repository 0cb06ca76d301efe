package copytrading

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

var ErrInsufficientFunds = errors.New("insufficient balance")

// Service manages allocations to copy traders and trading bots. Both
// lock part of the live balance against a strategy run by the
// platform.
type Service struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewService(pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{pool: pool, logger: logger.With().Str("component", "copytrading").Logger()}
}

type CopyAllocation struct {
	ID              int64           `json:"id"`
	TraderName      string          `json:"trader_name"`
	AmountAllocated decimal.Decimal `json:"amount_allocated"`
	ProfitShare     decimal.Decimal `json:"profit_share"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

type BotAllocation struct {
	ID              int64           `json:"id"`
	BotName         string          `json:"bot_name"`
	Strategy        string          `json:"strategy,omitempty"`
	AmountAllocated decimal.Decimal `json:"amount_allocated"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	TradesExecuted  int             `json:"trades_executed"`
	WinRate         decimal.Decimal `json:"win_rate"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (s *Service) ListCopy(ctx context.Context, userID int64) ([]CopyAllocation, error) {
	rows, err := s.pool.Query(ctx, `
		select id, trader_name, amount_allocated, profit_share, total_profit, status, created_at
		from copy_trading where user_id = $1 order by created_at desc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CopyAllocation{}
	for rows.Next() {
		var a CopyAllocation
		if err := rows.Scan(&a.ID, &a.TraderName, &a.AmountAllocated, &a.ProfitShare, &a.TotalProfit, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Service) ListBots(ctx context.Context, userID int64) ([]BotAllocation, error) {
	rows, err := s.pool.Query(ctx, `
		select id, bot_name, coalesce(strategy, ''), amount_allocated, total_profit, trades_executed, win_rate, status, created_at
		from bot_trading where user_id = $1 order by created_at desc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BotAllocation{}
	for rows.Next() {
		var a BotAllocation
		if err := rows.Scan(&a.ID, &a.BotName, &a.Strategy, &a.AmountAllocated, &a.TotalProfit, &a.TradesExecuted, &a.WinRate, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// allocate debits the live balance inside one serializable transaction
// and runs the insert specific to the allocation kind.
func (s *Service) allocate(ctx context.Context, userID int64, amount decimal.Decimal, insert func(tx pgx.Tx) error, title, msg string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("invalid amount")
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, "select balance from accounts where user_id = $1", userID).Scan(&balance); err != nil {
		return err
	}
	if balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	if _, err := tx.Exec(ctx, "update accounts set balance = balance - $1 where user_id = $2", amount, userID); err != nil {
		return err
	}
	if err := insert(tx); err != nil {
		return err
	}
	if err := notifications.Insert(ctx, tx, userID, title, msg, types.NotificationTypeSuccess); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) StartCopy(ctx context.Context, userID int64, traderName string, amount, profitShare decimal.Decimal) error {
	if traderName == "" {
		return errors.New("trader name is required")
	}
	if profitShare.LessThanOrEqual(decimal.Zero) {
		profitShare = decimal.NewFromInt(20)
	}
	msg := fmt.Sprintf("You are now copying %s with $%s allocated.", traderName, amount.StringFixed(2))
	err := s.allocate(ctx, userID, amount, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			insert into copy_trading (user_id, trader_name, amount_allocated, profit_share, status)
			values ($1, $2, $3, $4, 'active')
		`, userID, traderName, amount, profitShare)
		return err
	}, "Copy Trading Started", msg)
	if err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", userID).Str("trader", traderName).Msg("copy trading started")
	return nil
}

func (s *Service) StartBot(ctx context.Context, userID int64, botName, strategy string, amount decimal.Decimal) error {
	if botName == "" {
		return errors.New("bot name is required")
	}
	msg := fmt.Sprintf("Bot %s activated with $%s allocated.", botName, amount.StringFixed(2))
	err := s.allocate(ctx, userID, amount, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			insert into bot_trading (user_id, bot_name, strategy, amount_allocated, status)
			values ($1, $2, nullif($3, ''), $4, 'active')
		`, userID, botName, strategy, amount)
		return err
	}, "Trading Bot Activated", msg)
	if err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", userID).Str("bot", botName).Msg("bot trading started")
	return nil
}
