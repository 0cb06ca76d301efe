package trading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Rule is an admin-configured settlement override: while it applies,
// trades on its asset settle to a fixed percentage of stake instead of
// the market outcome.
type Rule struct {
	ID               int64           `json:"id"`
	Asset            string          `json:"asset"`
	StartTime        string          `json:"start_time"`
	EndTime          string          `json:"end_time"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
	IsActive         bool            `json:"is_active"`
	ApplyAllTime     bool            `json:"apply_all_time"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

const ruleTimeLayout = "15:04"

// AppliesAt reports whether the rule covers the wall-clock time of now.
// Windows where start is later than end wrap past midnight, so
// 22:00-02:00 covers 23:30 and 01:15 but not 12:00.
func (r Rule) AppliesAt(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.ApplyAllTime {
		return true
	}
	start, err := time.Parse(ruleTimeLayout, r.StartTime)
	if err != nil {
		return false
	}
	end, err := time.Parse(ruleTimeLayout, r.EndTime)
	if err != nil {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	s := start.Hour()*60 + start.Minute()
	e := end.Hour()*60 + end.Minute()
	if s > e {
		return cur >= s || cur <= e
	}
	return cur >= s && cur <= e
}

// Resolve picks the rule that governs a settlement at now, or nil.
// All-time rules beat windowed ones; ties go to the oldest rule.
func Resolve(rules []Rule, now time.Time) *Rule {
	for i := range rules {
		if rules[i].AppliesAt(now) {
			return &rules[i]
		}
	}
	return nil
}

// RuleStore loads settlement rules from the database. Services take it
// as an explicit dependency so settlement inputs are visible at the
// call site.
type RuleStore struct {
	pool *pgxpool.Pool
}

func NewRuleStore(pool *pgxpool.Pool) *RuleStore {
	return &RuleStore{pool: pool}
}

const ruleColumns = `id, asset, start_time, end_time, profit_percentage, is_active, apply_all_time, created_at, updated_at`

func scanRule(row pgx.Row) (Rule, error) {
	var r Rule
	err := row.Scan(&r.ID, &r.Asset, &r.StartTime, &r.EndTime, &r.ProfitPercentage, &r.IsActive, &r.ApplyAllTime, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// ActiveFor returns the active rules for a normalized asset symbol,
// ordered so Resolve can take the first applicable one.
func (s *RuleStore) ActiveFor(ctx context.Context, asset string) ([]Rule, error) {
	rows, err := s.pool.Query(ctx, `
		select `+ruleColumns+` from trade_rules
		where asset = $1 and is_active
		order by apply_all_time desc, created_at asc, id asc
	`, NormalizeSymbol(asset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Rule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var ErrRuleNotFound = errors.New("trade rule not found")

// All lists every rule, active or not, for the admin console.
func (s *RuleStore) All(ctx context.Context) ([]Rule, error) {
	rows, err := s.pool.Query(ctx, "select "+ruleColumns+" from trade_rules order by created_at desc")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Rule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RuleInput carries the editable fields. Asset is normalized before
// storage so lookups at settlement time hit.
type RuleInput struct {
	Asset            string          `json:"asset"`
	StartTime        string          `json:"start_time"`
	EndTime          string          `json:"end_time"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
	IsActive         *bool           `json:"is_active"`
	ApplyAllTime     bool            `json:"apply_all_time"`
}

func (in *RuleInput) validate() error {
	if strings.TrimSpace(in.Asset) == "" {
		return errors.New("asset is required")
	}
	if in.ApplyAllTime {
		return nil
	}
	for _, v := range []string{in.StartTime, in.EndTime} {
		if _, err := time.Parse(ruleTimeLayout, v); err != nil {
			return fmt.Errorf("time %q must be in HH:MM format", v)
		}
	}
	return nil
}

func (s *RuleStore) Create(ctx context.Context, in RuleInput) (Rule, error) {
	if err := in.validate(); err != nil {
		return Rule{}, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	row := s.pool.QueryRow(ctx, `
		insert into trade_rules (asset, start_time, end_time, profit_percentage, is_active, apply_all_time)
		values ($1, $2, $3, $4, $5, $6)
		returning `+ruleColumns,
		NormalizeSymbol(in.Asset), in.StartTime, in.EndTime, in.ProfitPercentage, active, in.ApplyAllTime)
	return scanRule(row)
}

func (s *RuleStore) Update(ctx context.Context, id int64, in RuleInput) (Rule, error) {
	if err := in.validate(); err != nil {
		return Rule{}, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	row := s.pool.QueryRow(ctx, `
		update trade_rules
		set asset = $1, start_time = $2, end_time = $3, profit_percentage = $4, is_active = $5, apply_all_time = $6, updated_at = now()
		where id = $7
		returning `+ruleColumns,
		NormalizeSymbol(in.Asset), in.StartTime, in.EndTime, in.ProfitPercentage, active, in.ApplyAllTime, id)
	rule, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, ErrRuleNotFound
	}
	return rule, err
}

func (s *RuleStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "delete from trade_rules where id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}
