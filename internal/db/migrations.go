package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT,
		phone TEXT,
		country TEXT,
		profile_image TEXT,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		is_premium BOOLEAN NOT NULL DEFAULT FALSE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_login TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		balance NUMERIC(20,2) NOT NULL DEFAULT 0,
		demo_balance NUMERIC(20,2) NOT NULL DEFAULT 10000,
		total_profit NUMERIC(20,2) NOT NULL DEFAULT 0,
		total_deposits NUMERIC(20,2) NOT NULL DEFAULT 0,
		total_withdrawals NUMERIC(20,2) NOT NULL DEFAULT 0,
		account_type TEXT NOT NULL DEFAULT 'standard',
		wallet_address TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		amount NUMERIC(20,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		payment_method TEXT,
		wallet_address TEXT,
		reference TEXT,
		description TEXT,
		crypto_type TEXT,
		crypto_network TEXT,
		txid TEXT,
		receipt_filename TEXT,
		admin_notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON transactions (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_status_type ON transactions (status, type)`,
	`CREATE TABLE IF NOT EXISTS investments (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		plan_name TEXT NOT NULL,
		plan_type TEXT,
		amount NUMERIC(20,2) NOT NULL,
		roi_percentage NUMERIC(8,2) NOT NULL DEFAULT 0,
		expected_return NUMERIC(20,2),
		actual_return NUMERIC(20,2) NOT NULL DEFAULT 0,
		duration_days INT,
		status TEXT NOT NULL DEFAULT 'active',
		start_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		end_date TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		stake NUMERIC(20,2) NOT NULL,
		entry_price NUMERIC(20,8) NOT NULL,
		exit_price NUMERIC(20,8),
		profit_loss NUMERIC(20,2) NOT NULL DEFAULT 0,
		leverage INT NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'open',
		is_demo BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		closed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_user_status ON trades (user_id, status, is_demo)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount NUMERIC(20,2) NOT NULL,
		interest_rate NUMERIC(8,2) NOT NULL DEFAULT 5,
		duration_months INT NOT NULL,
		monthly_payment NUMERIC(20,2),
		total_repayment NUMERIC(20,2),
		amount_paid NUMERIC(20,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		purpose TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		approved_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS copy_trading (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		trader_name TEXT NOT NULL,
		amount_allocated NUMERIC(20,2) NOT NULL,
		profit_share NUMERIC(8,2) NOT NULL DEFAULT 20,
		total_profit NUMERIC(20,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bot_trading (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		bot_name TEXT NOT NULL,
		strategy TEXT,
		amount_allocated NUMERIC(20,2) NOT NULL,
		total_profit NUMERIC(20,2) NOT NULL DEFAULT 0,
		trades_executed INT NOT NULL DEFAULT 0,
		win_rate NUMERIC(8,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS referrals (
		id BIGSERIAL PRIMARY KEY,
		referrer_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		referred_user_id BIGINT REFERENCES users(id),
		referral_code TEXT UNIQUE,
		bonus_earned NUMERIC(20,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS support_tickets (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		priority TEXT NOT NULL DEFAULT 'medium',
		status TEXT NOT NULL DEFAULT 'open',
		response TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		resolved_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'info',
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS trade_rules (
		id BIGSERIAL PRIMARY KEY,
		asset TEXT NOT NULL,
		start_time TEXT,
		end_time TEXT,
		profit_percentage NUMERIC(8,2) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		apply_all_time BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subscription_type TEXT NOT NULL,
		amount NUMERIC(20,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		payment_method TEXT,
		txid TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		activated_at TIMESTAMPTZ,
		expires_at TIMESTAMPTZ
	)`,
}

// Migrate creates the schema. Statements are idempotent so the server
// can run this on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
