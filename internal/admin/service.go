package admin

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
	ErrNotFound          = errors.New("not found")
	ErrNotPending        = errors.New("request is not pending")
	ErrInsufficientFunds = errors.New("user has insufficient balance")
)

// Service is the back-office: reviewing money movement requests,
// inspecting users and activating subscriptions.
type Service struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewService(pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{pool: pool, logger: logger.With().Str("component", "admin").Logger()}
}

type Stats struct {
	TotalUsers         int             `json:"total_users"`
	TotalBalance       decimal.Decimal `json:"total_balance"`
	TotalDeposits      decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals   decimal.Decimal `json:"total_withdrawals"`
	PendingDeposits    int             `json:"pending_deposits"`
	PendingWithdrawals int             `json:"pending_withdrawals"`
	OpenTrades         int             `json:"open_trades"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		select
			(select count(*) from users),
			(select coalesce(sum(balance), 0) from accounts),
			(select coalesce(sum(total_deposits), 0) from accounts),
			(select coalesce(sum(total_withdrawals), 0) from accounts),
			(select count(*) from transactions where type = 'deposit' and status = 'pending'),
			(select count(*) from transactions where type = 'withdrawal' and status = 'pending'),
			(select count(*) from trades where status = 'open' and not is_demo)
	`).Scan(&st.TotalUsers, &st.TotalBalance, &st.TotalDeposits, &st.TotalWithdrawals, &st.PendingDeposits, &st.PendingWithdrawals, &st.OpenTrades)
	return st, err
}

type UserRow struct {
	ID         int64           `json:"id"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	FullName   string          `json:"full_name,omitempty"`
	Country    string          `json:"country,omitempty"`
	IsVerified bool            `json:"is_verified"`
	IsPremium  bool            `json:"is_premium"`
	IsAdmin    bool            `json:"is_admin"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
	LastLogin  *time.Time      `json:"last_login,omitempty"`
}

func (s *Service) Users(ctx context.Context, page, perPage int) ([]UserRow, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	var total int
	if err := s.pool.QueryRow(ctx, "select count(*) from users").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		select u.id, u.username, u.email, coalesce(u.full_name, ''), coalesce(u.country, ''),
		       u.is_verified, u.is_premium, u.is_admin, coalesce(a.balance, 0), u.created_at, u.last_login
		from users u
		left join accounts a on a.user_id = u.id
		order by u.created_at desc
		limit %d offset %d
	`, perPage, (page-1)*perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []UserRow{}
	for rows.Next() {
		var u UserRow
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Country, &u.IsVerified, &u.IsPremium, &u.IsAdmin, &u.Balance, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Signups counts registrations per day over the trailing window.
func (s *Service) Signups(ctx context.Context, days int) (map[string]int, error) {
	if days < 1 || days > 90 {
		days = 7
	}
	rows, err := s.pool.Query(ctx, `
		select to_char(created_at::date, 'YYYY-MM-DD'), count(*)
		from users
		where created_at >= now() - make_interval(days => $1)
		group by created_at::date
		order by created_at::date
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		out[day] = n
	}
	return out, rows.Err()
}

type PendingTransaction struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Username      string          `json:"username"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	WalletAddress string          `json:"wallet_address,omitempty"`
	CryptoType    string          `json:"crypto_type,omitempty"`
	TxID          string          `json:"txid,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (s *Service) PendingTransactions(ctx context.Context, txType string) ([]PendingTransaction, error) {
	query := `
		select t.id, t.user_id, u.username, t.type, t.amount, coalesce(t.payment_method, ''),
		       coalesce(t.wallet_address, ''), coalesce(t.crypto_type, ''), coalesce(t.txid, ''),
		       coalesce(t.reference, ''), t.created_at
		from transactions t
		join users u on u.id = t.user_id
		where t.status = 'pending'`
	args := []any{}
	if txType != "" {
		query += " and t.type = $1"
		args = append(args, txType)
	}
	query += " order by t.created_at asc"
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []PendingTransaction{}
	for rows.Next() {
		var t PendingTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Username, &t.Type, &t.Amount, &t.PaymentMethod, &t.WalletAddress, &t.CryptoType, &t.TxID, &t.Reference, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// rowQuerier is the slice of pgx.Tx that pendingTx needs.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pendingTx locks in the transaction row and enforces the
// pending-only transition.
func pendingTx(ctx context.Context, q rowQuerier, id int64, txType types.TransactionType) (userID int64, amount decimal.Decimal, reference string, err error) {
	var status string
	err = q.QueryRow(ctx, `
		select user_id, amount, status, coalesce(reference, '')
		from transactions where id = $1 and type = $2
	`, id, txType).Scan(&userID, &amount, &status, &reference)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, decimal.Zero, "", ErrNotFound
	}
	if err != nil {
		return 0, decimal.Zero, "", err
	}
	if status != string(types.TransactionStatusPending) {
		return 0, decimal.Zero, "", ErrNotPending
	}
	return userID, amount, reference, nil
}

// ApproveDeposit credits the user and marks the request completed.
func (s *Service) ApproveDeposit(ctx context.Context, id int64, notes string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	userID, amount, ref, err := pendingTx(ctx, tx, id, types.TransactionTypeDeposit)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		update transactions set status = 'completed', completed_at = now(), admin_notes = nullif($1, '')
		where id = $2
	`, notes, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		update accounts set balance = balance + $1, total_deposits = total_deposits + $1
		where user_id = $2
	`, amount, userID); err != nil {
		return err
	}
	msg := fmt.Sprintf("Your deposit of $%s has been confirmed and credited to your account.", amount.StringFixed(2))
	if err := notifications.Insert(ctx, tx, userID, "Deposit Confirmed", msg, types.NotificationTypeSuccess); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Info().Int64("transaction_id", id).Int64("user_id", userID).Str("reference", ref).Msg("deposit approved")
	return nil
}

func (s *Service) RejectDeposit(ctx context.Context, id int64, reason string) error {
	return s.reject(ctx, id, types.TransactionTypeDeposit, reason, "Deposit Rejected",
		"Your deposit request has been rejected.")
}

// ApproveWithdrawal debits the user. The balance is re-checked here
// because nothing was held when the request was filed.
func (s *Service) ApproveWithdrawal(ctx context.Context, id int64, notes string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	userID, amount, ref, err := pendingTx(ctx, tx, id, types.TransactionTypeWithdrawal)
	if err != nil {
		return err
	}
	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, "select balance from accounts where user_id = $1", userID).Scan(&balance); err != nil {
		return err
	}
	if balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	if _, err := tx.Exec(ctx, `
		update transactions set status = 'completed', completed_at = now(), admin_notes = nullif($1, '')
		where id = $2
	`, notes, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		update accounts set balance = balance - $1, total_withdrawals = total_withdrawals + $1
		where user_id = $2
	`, amount, userID); err != nil {
		return err
	}
	msg := fmt.Sprintf("Your withdrawal of $%s has been processed.", amount.StringFixed(2))
	if err := notifications.Insert(ctx, tx, userID, "Withdrawal Processed", msg, types.NotificationTypeSuccess); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Info().Int64("transaction_id", id).Int64("user_id", userID).Str("reference", ref).Msg("withdrawal approved")
	return nil
}

func (s *Service) RejectWithdrawal(ctx context.Context, id int64, reason string) error {
	return s.reject(ctx, id, types.TransactionTypeWithdrawal, reason, "Withdrawal Rejected",
		"Your withdrawal request has been rejected.")
}

func (s *Service) reject(ctx context.Context, id int64, txType types.TransactionType, reason, title, baseMsg string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	userID, _, _, err := pendingTx(ctx, tx, id, txType)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		update transactions set status = 'rejected', completed_at = now(), admin_notes = nullif($1, '')
		where id = $2
	`, reason, id); err != nil {
		return err
	}
	msg := baseMsg
	if reason != "" {
		msg += " Reason: " + reason
	}
	if err := notifications.Insert(ctx, tx, userID, title, msg, types.NotificationTypeError); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Info().Int64("transaction_id", id).Str("type", string(txType)).Msg("request rejected")
	return nil
}

// defaultSubscriptionDays is how long an activated plan runs.
const defaultSubscriptionDays = 30

// ApproveSubscription activates the plan and flags the user premium.
func (s *Service) ApproveSubscription(ctx context.Context, id int64) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID int64
	var status, subType string
	err = tx.QueryRow(ctx, "select user_id, status, subscription_type from subscriptions where id = $1", id).Scan(&userID, &status, &subType)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != string(types.SubscriptionStatusPending) {
		return ErrNotPending
	}
	if _, err := tx.Exec(ctx, `
		update subscriptions
		set status = 'active', activated_at = now(), expires_at = now() + make_interval(days => $1)
		where id = $2
	`, defaultSubscriptionDays, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "update users set is_premium = true where id = $1", userID); err != nil {
		return err
	}
	msg := "Your " + subType + " subscription is now active."
	if err := notifications.Insert(ctx, tx, userID, "Subscription Activated", msg, types.NotificationTypeSuccess); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Info().Int64("subscription_id", id).Int64("user_id", userID).Msg("subscription activated")
	return nil
}

func (s *Service) RejectSubscription(ctx context.Context, id int64, reason string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID int64
	var status string
	err = tx.QueryRow(ctx, "select user_id, status from subscriptions where id = $1", id).Scan(&userID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != string(types.SubscriptionStatusPending) {
		return ErrNotPending
	}
	if _, err := tx.Exec(ctx, "update subscriptions set status = 'expired' where id = $1", id); err != nil {
		return err
	}
	msg := "Your subscription request has been declined."
	if reason != "" {
		msg += " Reason: " + reason
	}
	if err := notifications.Insert(ctx, tx, userID, "Subscription Declined", msg, types.NotificationTypeError); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Info().Int64("subscription_id", id).Msg("subscription rejected")
	return nil
}
