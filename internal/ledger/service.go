package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pipmatrix/internal/notifications"
	"pipmatrix/internal/types"
	"pipmatrix/internal/wallets"
)

var (
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")
)

type Service struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewService(pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{pool: pool, logger: logger.With().Str("component", "ledger").Logger()}
}

type Transaction struct {
	ID              int64           `json:"id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	WalletAddress   string          `json:"wallet_address,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	Description     string          `json:"description,omitempty"`
	CryptoType      string          `json:"crypto_type,omitempty"`
	CryptoNetwork   string          `json:"crypto_network,omitempty"`
	TxID            string          `json:"txid,omitempty"`
	ReceiptFilename string          `json:"receipt_filename,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// NewReference builds a short human-quotable reference like DEP3F2A91C04B77.
func NewReference(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:12])
}

const txColumns = `id, type, amount, status, coalesce(payment_method, ''), coalesce(wallet_address, ''), coalesce(reference, ''), coalesce(description, ''), coalesce(crypto_type, ''), coalesce(crypto_network, ''), coalesce(txid, ''), coalesce(receipt_filename, ''), created_at, completed_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Type, &t.Amount, &t.Status, &t.PaymentMethod, &t.WalletAddress, &t.Reference, &t.Description, &t.CryptoType, &t.CryptoNetwork, &t.TxID, &t.ReceiptFilename, &t.CreatedAt, &t.CompletedAt)
	return t, err
}

func (s *Service) List(ctx context.Context, userID int64, page, perPage int, txType string) ([]Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	where := "where user_id = $1"
	args := []any{userID}
	if txType != "" {
		where += " and type = $2"
		args = append(args, txType)
	}
	var total int
	if err := s.pool.QueryRow(ctx, "select count(*) from transactions "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf("select %s from transactions %s order by created_at desc limit %d offset %d", txColumns, where, perPage, (page-1)*perPage)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// CreateDeposit records a pending fiat deposit. Nothing is credited
// until an admin approves it.
func (s *Service) CreateDeposit(ctx context.Context, userID int64, amount decimal.Decimal, method, walletAddress string) (string, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return "", errors.New("invalid amount")
	}
	ref := NewReference("DEP")
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)
	_, err = tx.Exec(ctx, `
		insert into transactions (user_id, type, amount, status, payment_method, wallet_address, reference)
		values ($1, 'deposit', $2, 'pending', $3, $4, $5)
	`, userID, amount, method, walletAddress, ref)
	if err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Your deposit request for $%s has been submitted and is pending confirmation.", amount.StringFixed(2))
	if err := notifications.Insert(ctx, tx, userID, "Deposit Request Submitted", msg, types.NotificationTypeInfo); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	s.logger.Info().Int64("user_id", userID).Str("reference", ref).Msg("deposit requested")
	return ref, nil
}

// CreateCryptoDeposit records a pending crypto deposit against one of
// the platform wallets, with the txid the user claims to have sent.
func (s *Service) CreateCryptoDeposit(ctx context.Context, userID int64, amount decimal.Decimal, wallet wallets.Wallet, txid, receiptFilename string) (Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, errors.New("invalid amount")
	}
	if strings.TrimSpace(txid) == "" {
		return Transaction{}, errors.New("transaction hash (TXID) is required")
	}
	ref := NewReference("DEP")
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx)
	row := tx.QueryRow(ctx, `
		insert into transactions (user_id, type, amount, status, payment_method, wallet_address, crypto_type, crypto_network, txid, receipt_filename, reference)
		values ($1, 'deposit', $2, 'pending', 'crypto', $3, $4, $5, $6, nullif($7, ''), $8)
		returning `+txColumns, userID, amount, wallet.Address, wallet.Symbol, wallet.Network, txid, receiptFilename, ref)
	created, err := scanTransaction(row)
	if err != nil {
		return Transaction{}, err
	}
	short := txid
	if len(short) > 20 {
		short = short[:20] + "..."
	}
	msg := fmt.Sprintf("Your deposit of $%s via %s (%s) has been submitted. TXID: %s", amount.StringFixed(2), wallet.Name, wallet.Network, short)
	if err := notifications.Insert(ctx, tx, userID, "Crypto Deposit Submitted", msg, types.NotificationTypeInfo); err != nil {
		return Transaction{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}
	s.logger.Info().Int64("user_id", userID).Str("reference", ref).Str("crypto", wallet.Symbol).Msg("crypto deposit requested")
	return created, nil
}

// CreateWithdrawal records a pending withdrawal. The balance is only
// checked here; the debit happens on admin approval, which re-checks.
func (s *Service) CreateWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal, method, walletAddress string) (string, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return "", errors.New("invalid amount")
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)
	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, "select balance from accounts where user_id = $1", userID).Scan(&balance); err != nil {
		return "", err
	}
	if balance.LessThan(amount) {
		return "", ErrInsufficientFunds
	}
	ref := NewReference("WTH")
	_, err = tx.Exec(ctx, `
		insert into transactions (user_id, type, amount, status, payment_method, wallet_address, reference)
		values ($1, 'withdrawal', $2, 'pending', $3, $4, $5)
	`, userID, amount, method, walletAddress, ref)
	if err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Your withdrawal request for $%s has been submitted and is being processed.", amount.StringFixed(2))
	if err := notifications.Insert(ctx, tx, userID, "Withdrawal Request Submitted", msg, types.NotificationTypeInfo); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	s.logger.Info().Int64("user_id", userID).Str("reference", ref).Msg("withdrawal requested")
	return ref, nil
}

// Transfer moves live balance between users and records a matched
// debit/credit pair sharing one reference, all in one transaction.
func (s *Service) Transfer(ctx context.Context, senderID int64, recipientUsername string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("invalid amount")
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var senderUsername string
	if err := tx.QueryRow(ctx, "select username from users where id = $1", senderID).Scan(&senderUsername); err != nil {
		return err
	}

	var recipientID int64
	err = tx.QueryRow(ctx, "select id from users where username = $1", recipientUsername).Scan(&recipientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRecipientNotFound
		}
		return err
	}
	if recipientID == senderID {
		return ErrSelfTransfer
	}

	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, "select balance from accounts where user_id = $1", senderID).Scan(&balance); err != nil {
		return err
	}
	if balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, "update accounts set balance = balance - $1 where user_id = $2", amount, senderID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "update accounts set balance = balance + $1 where user_id = $2", amount, recipientID); err != nil {
		return err
	}

	ref := NewReference("TRF")
	_, err = tx.Exec(ctx, `
		insert into transactions (user_id, type, amount, status, description, reference, completed_at)
		values ($1, 'transfer', $2, 'completed', $3, $4, now())
	`, senderID, amount.Neg(), "Transfer to "+recipientUsername, ref)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		insert into transactions (user_id, type, amount, status, description, reference, completed_at)
		values ($1, 'transfer', $2, 'completed', $3, $4, now())
	`, recipientID, amount, "Transfer from "+senderUsername, ref)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("You received a transfer of $%s from %s.", amount.StringFixed(2), senderUsername)
	if err := notifications.Insert(ctx, tx, recipientID, "Transfer Received", msg, types.NotificationTypeSuccess); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Info().Int64("sender_id", senderID).Int64("recipient_id", recipientID).Str("reference", ref).Msg("transfer completed")
	return nil
}
