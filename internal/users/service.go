package users

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

type AccountSummary struct {
	Balance          decimal.Decimal `json:"balance"`
	DemoBalance      decimal.Decimal `json:"demo_balance"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	AccountType      string          `json:"account_type"`
}

type ProfileUpdate struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Country  *string `json:"country"`
}

func (s *Service) Account(ctx context.Context, userID int64) (AccountSummary, error) {
	var a AccountSummary
	err := s.pool.QueryRow(ctx, `
		select balance, demo_balance, total_profit, total_deposits, total_withdrawals, account_type
		from accounts
		where user_id = $1
	`, userID).Scan(&a.Balance, &a.DemoBalance, &a.TotalProfit, &a.TotalDeposits, &a.TotalWithdrawals, &a.AccountType)
	return a, err
}

func (s *Service) ReferralCode(ctx context.Context, userID int64) (string, error) {
	var code string
	err := s.pool.QueryRow(ctx, "select coalesce(referral_code, '') from referrals where referrer_id = $1 order by id limit 1", userID).Scan(&code)
	return code, err
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) error {
	_, err := s.pool.Exec(ctx, `
		update users
		set full_name = coalesce($1, full_name),
		    phone = coalesce($2, phone),
		    country = coalesce($3, country)
		where id = $4
	`, upd.FullName, upd.Phone, upd.Country, userID)
	return err
}

type RecentTransaction struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

type ActiveInvestment struct {
	ID             int64           `json:"id"`
	PlanName       string          `json:"plan_name"`
	Amount         decimal.Decimal `json:"amount"`
	ExpectedReturn decimal.Decimal `json:"expected_return"`
	Status         string          `json:"status"`
}

type Dashboard struct {
	Account            AccountSummary      `json:"account"`
	RecentTransactions []RecentTransaction `json:"recent_transactions"`
	ActiveInvestments  []ActiveInvestment  `json:"active_investments"`
	OpenTrades         int                 `json:"open_trades"`
}

func (s *Service) Dashboard(ctx context.Context, userID int64) (Dashboard, error) {
	var d Dashboard
	account, err := s.Account(ctx, userID)
	if err != nil {
		return d, err
	}
	d.Account = account

	rows, err := s.pool.Query(ctx, "select id, type, amount, status, created_at from transactions where user_id = $1 order by created_at desc limit 5", userID)
	if err != nil {
		return d, err
	}
	defer rows.Close()
	d.RecentTransactions = []RecentTransaction{}
	for rows.Next() {
		var t RecentTransaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Status, &t.CreatedAt); err != nil {
			return d, err
		}
		d.RecentTransactions = append(d.RecentTransactions, t)
	}
	if err := rows.Err(); err != nil {
		return d, err
	}

	invRows, err := s.pool.Query(ctx, "select id, plan_name, amount, coalesce(expected_return, 0), status from investments where user_id = $1 and status = 'active'", userID)
	if err != nil {
		return d, err
	}
	defer invRows.Close()
	d.ActiveInvestments = []ActiveInvestment{}
	for invRows.Next() {
		var i ActiveInvestment
		if err := invRows.Scan(&i.ID, &i.PlanName, &i.Amount, &i.ExpectedReturn, &i.Status); err != nil {
			return d, err
		}
		d.ActiveInvestments = append(d.ActiveInvestments, i)
	}
	if err := invRows.Err(); err != nil {
		return d, err
	}

	err = s.pool.QueryRow(ctx, "select count(*) from trades where user_id = $1 and status = 'open'", userID).Scan(&d.OpenTrades)
	return d, err
}
