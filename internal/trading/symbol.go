package trading

import "strings"

// quoteCurrencies is checked as a suffix of delimiter-free symbols,
// longest first so "BTCUSDT" matches USDT before USD.
var quoteCurrencies = []string{
	"USDT", "USDC", "BUSD",
	"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF",
	"BTC", "ETH", "BNB",
}

var symbolDelimiters = []string{"/", "-", "_", " "}

// NormalizeSymbol canonicalizes user-supplied trading symbols to
// BASE/QUOTE form: "btcusdt" and "ETH-usd" both come out as
// "BTC/USDT" and "ETH/USD". Symbols that cannot be split are
// returned uppercased as-is.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return s
	}
	for _, d := range symbolDelimiters {
		if !strings.Contains(s, d) {
			continue
		}
		parts := strings.Split(s, d)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0] + "/" + parts[1]
		}
		return s
	}
	for _, quote := range quoteCurrencies {
		if s == quote {
			return s
		}
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s[:len(s)-len(quote)] + "/" + quote
		}
	}
	return s
}
