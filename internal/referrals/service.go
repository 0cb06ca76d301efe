package referrals

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

type Referral struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username,omitempty"`
	BonusEarned decimal.Decimal `json:"bonus_earned"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Summary struct {
	ReferralCode   string          `json:"referral_code"`
	TotalReferrals int             `json:"total_referrals"`
	TotalBonus     decimal.Decimal `json:"total_bonus"`
	Referrals      []Referral      `json:"referrals"`
}

// Summary returns the user's own code plus everyone who signed up
// with it.
func (s *Service) Summary(ctx context.Context, userID int64) (Summary, error) {
	var sum Summary
	err := s.pool.QueryRow(ctx, `
		select coalesce(referral_code, '') from referrals
		where referrer_id = $1 and referred_user_id is null
	`, userID).Scan(&sum.ReferralCode)
	if err != nil && err != pgx.ErrNoRows {
		return Summary{}, err
	}

	rows, err := s.pool.Query(ctx, `
		select r.id, coalesce(u.username, ''), r.bonus_earned, r.status, r.created_at
		from referrals r
		left join users u on u.id = r.referred_user_id
		where r.referrer_id = $1 and r.referred_user_id is not null
		order by r.created_at desc
	`, userID)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()
	sum.Referrals = []Referral{}
	sum.TotalBonus = decimal.Zero
	for rows.Next() {
		var ref Referral
		if err := rows.Scan(&ref.ID, &ref.Username, &ref.BonusEarned, &ref.Status, &ref.CreatedAt); err != nil {
			return Summary{}, err
		}
		sum.Referrals = append(sum.Referrals, ref)
		sum.TotalBonus = sum.TotalBonus.Add(ref.BonusEarned)
	}
	sum.TotalReferrals = len(sum.Referrals)
	return sum, rows.Err()
}
