package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pipmatrix/internal/notifications"
	"pipmatrix/internal/types"
)

// Service handles premium plan purchases. A purchase sits in pending
// until an admin confirms the payment and activates it.
type Service struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewService(pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{pool: pool, logger: logger.With().Str("component", "subscriptions").Logger()}
}

type Subscription struct {
	ID               int64           `json:"id"`
	SubscriptionType string          `json:"subscription_type"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	TxID             string          `json:"txid,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	ActivatedAt      *time.Time      `json:"activated_at,omitempty"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty"`
}

const subColumns = `id, subscription_type, amount, status, coalesce(payment_method, ''), coalesce(txid, ''), created_at, activated_at, expires_at`

func scanSubscription(row pgx.Row) (Subscription, error) {
	var sub Subscription
	err := row.Scan(&sub.ID, &sub.SubscriptionType, &sub.Amount, &sub.Status, &sub.PaymentMethod, &sub.TxID, &sub.CreatedAt, &sub.ActivatedAt, &sub.ExpiresAt)
	return sub, err
}

func (s *Service) List(ctx context.Context, userID int64) ([]Subscription, error) {
	rows, err := s.pool.Query(ctx, "select "+subColumns+" from subscriptions where user_id = $1 order by created_at desc", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *Service) Create(ctx context.Context, userID int64, subType string, amount decimal.Decimal, paymentMethod, txid string) (Subscription, error) {
	if subType == "" {
		return Subscription{}, errors.New("subscription type is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return Subscription{}, errors.New("invalid amount")
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Subscription{}, err
	}
	defer tx.Rollback(ctx)
	row := tx.QueryRow(ctx, `
		insert into subscriptions (user_id, subscription_type, amount, status, payment_method, txid)
		values ($1, $2, $3, 'pending', nullif($4, ''), nullif($5, ''))
		returning `+subColumns, userID, subType, amount, paymentMethod, txid)
	sub, err := scanSubscription(row)
	if err != nil {
		return Subscription{}, err
	}
	msg := "Your " + subType + " subscription request has been submitted and is awaiting confirmation."
	if err := notifications.Insert(ctx, tx, userID, "Subscription Requested", msg, types.NotificationTypeInfo); err != nil {
		return Subscription{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Subscription{}, err
	}
	s.logger.Info().Int64("user_id", userID).Str("type", subType).Msg("subscription requested")
	return sub, nil
}
