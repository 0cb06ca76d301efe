package notifications

import (
	"testing"
	"time"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"seconds", 30 * time.Second, "Just now"},
		{"one minute", time.Minute, "1 minute ago"},
		{"minutes", 45 * time.Minute, "45 minutes ago"},
		{"one hour", time.Hour, "1 hour ago"},
		{"hours", 5 * time.Hour, "5 hours ago"},
		{"one day", 24 * time.Hour, "1 day ago"},
		{"days", 72 * time.Hour, "3 days ago"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := timeAgo(now.Add(-tc.ago), now); got != tc.want {
				t.Errorf("timeAgo(-%s) = %q, want %q", tc.ago, got, tc.want)
			}
		})
	}
}
