package trading

import (
	"net/url"
	"testing"
)

func TestListFilter(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantDemo   bool
		wantStatus string
	}{
		{"default is live", "", false, ""},
		{"demo true", "demo=true", true, ""},
		{"demo false", "demo=false", false, ""},
		{"demo anything else is live", "demo=1", false, ""},
		{"status passes through", "demo=true&status=open", true, "open"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatal(err)
			}
			isDemo, status := listFilter(q)
			if *isDemo != tc.wantDemo {
				t.Errorf("demo = %v, want %v", *isDemo, tc.wantDemo)
			}
			if status != tc.wantStatus {
				t.Errorf("status = %q, want %q", status, tc.wantStatus)
			}
		})
	}
}
