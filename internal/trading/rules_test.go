package trading

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 6, 15, hour, min, 0, 0, time.UTC)
}

func TestRuleAppliesAt(t *testing.T) {
	cases := []struct {
		name string
		rule Rule
		now  time.Time
		want bool
	}{
		{"inactive never applies", Rule{IsActive: false, ApplyAllTime: true}, at(12, 0), false},
		{"all time applies", Rule{IsActive: true, ApplyAllTime: true}, at(3, 41), true},
		{"inside window", Rule{IsActive: true, StartTime: "09:00", EndTime: "17:00"}, at(12, 30), true},
		{"window start inclusive", Rule{IsActive: true, StartTime: "09:00", EndTime: "17:00"}, at(9, 0), true},
		{"window end inclusive", Rule{IsActive: true, StartTime: "09:00", EndTime: "17:00"}, at(17, 0), true},
		{"outside window", Rule{IsActive: true, StartTime: "09:00", EndTime: "17:00"}, at(18, 0), false},
		{"wraps midnight late side", Rule{IsActive: true, StartTime: "22:00", EndTime: "02:00"}, at(23, 30), true},
		{"wraps midnight early side", Rule{IsActive: true, StartTime: "22:00", EndTime: "02:00"}, at(1, 15), true},
		{"wraps midnight excluded middle", Rule{IsActive: true, StartTime: "22:00", EndTime: "02:00"}, at(12, 0), false},
		{"bad time format", Rule{IsActive: true, StartTime: "nope", EndTime: "17:00"}, at(12, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule.AppliesAt(tc.now); got != tc.want {
				t.Errorf("AppliesAt = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolvePrefersFirstApplicable(t *testing.T) {
	five := decimal.NewFromInt(5)
	ten := decimal.NewFromInt(10)
	rules := []Rule{
		{ID: 1, IsActive: true, ApplyAllTime: true, ProfitPercentage: five},
		{ID: 2, IsActive: true, StartTime: "00:00", EndTime: "23:59", ProfitPercentage: ten},
	}
	got := Resolve(rules, at(12, 0))
	if got == nil || got.ID != 1 {
		t.Fatalf("Resolve = %+v, want rule 1", got)
	}
}

func TestResolveFallsThroughToWindow(t *testing.T) {
	rules := []Rule{
		{ID: 1, IsActive: true, StartTime: "09:00", EndTime: "10:00"},
		{ID: 2, IsActive: true, StartTime: "11:00", EndTime: "13:00"},
	}
	got := Resolve(rules, at(12, 0))
	if got == nil || got.ID != 2 {
		t.Fatalf("Resolve = %+v, want rule 2", got)
	}
	if Resolve(rules, at(15, 0)) != nil {
		t.Fatal("expected no rule at 15:00")
	}
}
