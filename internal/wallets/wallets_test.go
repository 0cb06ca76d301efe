package wallets

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	cases := []struct {
		id     string
		wantOK bool
		symbol string
	}{
		{"BTC", true, "BTC"},
		{"btc", true, "BTC"},
		{" usdt_trc20 ", true, "USDT"},
		{"XRP", true, "XRP"},
		{"SHIB", false, ""},
		{"", false, ""},
	}
	for _, tc := range cases {
		w, ok := Get(tc.id)
		if ok != tc.wantOK {
			t.Errorf("Get(%q) ok = %v, want %v", tc.id, ok, tc.wantOK)
			continue
		}
		if ok && w.Symbol != tc.symbol {
			t.Errorf("Get(%q).Symbol = %q, want %q", tc.id, w.Symbol, tc.symbol)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	first := All()
	first[0].Address = "tampered"
	second := All()
	if second[0].Address == "tampered" {
		t.Fatal("All exposes the internal catalog")
	}
}

func TestQRDataURL(t *testing.T) {
	out, err := QRDataURL("bc1q8a07p9n6xlwvaare2a9dghtvtk5zd232ca55q0")
	if err != nil {
		t.Fatalf("QRDataURL: %v", err)
	}
	if !strings.HasPrefix(out, "data:image/png;base64,") {
		t.Errorf("unexpected prefix: %.40s", out)
	}
	if len(out) < 100 {
		t.Errorf("suspiciously short data URL: %d bytes", len(out))
	}
}
