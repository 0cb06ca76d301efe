package invest

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

var hundred = decimal.NewFromInt(100)

type Service struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewService(pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{pool: pool, logger: logger.With().Str("component", "invest").Logger()}
}

type Investment struct {
	ID             int64           `json:"id"`
	PlanName       string          `json:"plan_name"`
	Amount         decimal.Decimal `json:"amount"`
	ROIPercentage  decimal.Decimal `json:"roi_percentage"`
	DurationDays   int             `json:"duration_days"`
	ExpectedReturn decimal.Decimal `json:"expected_return"`
	Status         string          `json:"status"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
}

const investColumns = `id, plan_name, amount, roi_percentage, duration_days, expected_return, status, start_date, end_date`

func scanInvestment(row pgx.Row) (Investment, error) {
	var inv Investment
	err := row.Scan(&inv.ID, &inv.PlanName, &inv.Amount, &inv.ROIPercentage, &inv.DurationDays, &inv.ExpectedReturn, &inv.Status, &inv.StartDate, &inv.EndDate)
	return inv, err
}

func (s *Service) List(ctx context.Context, userID int64) ([]Investment, error) {
	rows, err := s.pool.Query(ctx, "select "+investColumns+" from investments where user_id = $1 order by start_date desc", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Investment{}
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Create debits the plan amount and opens an active investment.
// expected_return = amount * (1 + roi/100), paid out at end_date.
func (s *Service) Create(ctx context.Context, userID int64, planName string, amount, roi decimal.Decimal, durationDays int) (Investment, error) {
	if planName == "" {
		return Investment{}, errors.New("plan name is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return Investment{}, errors.New("invalid amount")
	}
	if roi.IsNegative() || durationDays < 1 {
		return Investment{}, errors.New("invalid plan terms")
	}
	expected := amount.Mul(decimal.NewFromInt(1).Add(roi.Div(hundred)))
	endDate := time.Now().AddDate(0, 0, durationDays)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Investment{}, err
	}
	defer tx.Rollback(ctx)

	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, "select balance from accounts where user_id = $1", userID).Scan(&balance); err != nil {
		return Investment{}, err
	}
	if balance.LessThan(amount) {
		return Investment{}, ErrInsufficientFunds
	}
	if _, err := tx.Exec(ctx, "update accounts set balance = balance - $1 where user_id = $2", amount, userID); err != nil {
		return Investment{}, err
	}
	row := tx.QueryRow(ctx, `
		insert into investments (user_id, plan_name, amount, roi_percentage, duration_days, expected_return, status, end_date)
		values ($1, $2, $3, $4, $5, $6, 'active', $7)
		returning `+investColumns, userID, planName, amount, roi, durationDays, expected, endDate)
	inv, err := scanInvestment(row)
	if err != nil {
		return Investment{}, err
	}
	msg := fmt.Sprintf("Your investment of $%s in the %s plan is now active. Expected return: $%s.", amount.StringFixed(2), planName, expected.StringFixed(2))
	if err := notifications.Insert(ctx, tx, userID, "Investment Started", msg, types.NotificationTypeSuccess); err != nil {
		return Investment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Investment{}, err
	}
	s.logger.Info().Int64("user_id", userID).Str("plan", planName).Msg("investment created")
	return inv, nil
}
