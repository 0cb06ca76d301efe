package trading

import "testing"

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"btcusdt", "BTC/USDT"},
		{"BTCUSDT", "BTC/USDT"},
		{"ethusd", "ETH/USD"},
		{"ETH-USD", "ETH/USD"},
		{"eth_usd", "ETH/USD"},
		{"eur usd", "EUR/USD"},
		{"BTC/USDT", "BTC/USDT"},
		{"  sol/usdc  ", "SOL/USDC"},
		{"eurusd", "EUR/USD"},
		{"usdjpy", "USD/JPY"},
		{"dogebtc", "DOGE/BTC"},
		// a bare quote currency is not split against itself
		{"USDT", "USDT"},
		{"usd", "USD"},
		// no known quote suffix passes through uppercased
		{"GOLD", "GOLD"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeSymbol(tc.in); got != tc.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSymbolIdempotent(t *testing.T) {
	for _, in := range []string{"btcusdt", "ETH-USD", "eur usd", "GOLD", "BNB/USDT"} {
		once := NormalizeSymbol(in)
		if twice := NormalizeSymbol(once); twice != once {
			t.Errorf("NormalizeSymbol not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeSymbolLongestSuffixWins(t *testing.T) {
	// BTCUSDT must split as BTC/USDT, not BTCUSD/T or BTCUS/DT
	if got := NormalizeSymbol("BTCUSDT"); got != "BTC/USDT" {
		t.Fatalf("got %q", got)
	}
	// BTCBUSD matches BUSD before USD
	if got := NormalizeSymbol("BTCBUSD"); got != "BTC/BUSD" {
		t.Fatalf("got %q", got)
	}
}
