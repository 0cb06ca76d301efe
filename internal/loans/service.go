package loans

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

var hundred = decimal.NewFromInt(100)

type Service struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewService(pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{pool: pool, logger: logger.With().Str("component", "loans").Logger()}
}

type Loan struct {
	ID             int64           `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	DurationMonths int             `json:"duration_months"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
	Purpose        string          `json:"purpose,omitempty"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

const loanColumns = `id, amount, interest_rate, duration_months, monthly_payment, total_repayment, coalesce(purpose, ''), status, created_at`

func scanLoan(row pgx.Row) (Loan, error) {
	var l Loan
	err := row.Scan(&l.ID, &l.Amount, &l.InterestRate, &l.DurationMonths, &l.MonthlyPayment, &l.TotalRepayment, &l.Purpose, &l.Status, &l.CreatedAt)
	return l, err
}

func (s *Service) List(ctx context.Context, userID int64) ([]Loan, error) {
	rows, err := s.pool.Query(ctx, "select "+loanColumns+" from loans where user_id = $1 order by created_at desc", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Apply records a pending loan application. Nothing is disbursed until
// an admin approves it. Simple interest:
// total = amount * (1 + rate * months / 100).
func (s *Service) Apply(ctx context.Context, userID int64, amount, rate decimal.Decimal, months int, purpose string) (Loan, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Loan{}, errors.New("invalid amount")
	}
	if rate.IsNegative() || months < 1 {
		return Loan{}, errors.New("invalid loan terms")
	}
	monthsDec := decimal.NewFromInt(int64(months))
	total := amount.Mul(decimal.NewFromInt(1).Add(rate.Mul(monthsDec).Div(hundred)))
	monthly := total.Div(monthsDec).Round(2)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Loan{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		insert into loans (user_id, amount, interest_rate, duration_months, monthly_payment, total_repayment, purpose, status)
		values ($1, $2, $3, $4, $5, $6, nullif($7, ''), 'pending')
		returning `+loanColumns, userID, amount, rate, months, monthly, total, purpose)
	loan, err := scanLoan(row)
	if err != nil {
		return Loan{}, err
	}
	msg := fmt.Sprintf("Your loan application for $%s over %d months has been submitted for review.", amount.StringFixed(2), months)
	if err := notifications.Insert(ctx, tx, userID, "Loan Application Submitted", msg, types.NotificationTypeInfo); err != nil {
		return Loan{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Loan{}, err
	}
	s.logger.Info().Int64("user_id", userID).Int64("loan_id", loan.ID).Msg("loan application submitted")
	return loan, nil
}
