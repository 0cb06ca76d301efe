package wallets

import (
	"encoding/base64"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Wallet is a platform-owned deposit address users send crypto to.
// Deposits against these addresses are verified manually by an admin.
type Wallet struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Network string `json:"network"`
	Address string `json:"address"`
	Icon    string `json:"icon"`
	QRCode  string `json:"qr_code,omitempty"`
}

var catalog = []Wallet{
	{ID: "BTC", Name: "Bitcoin", Symbol: "BTC", Network: "Bitcoin", Address: "bc1q8a07p9n6xlwvaare2a9dghtvtk5zd232ca55q0", Icon: "bitcoin"},
	{ID: "ETH", Name: "Ethereum", Symbol: "ETH", Network: "Ethereum", Address: "0x11722310395Dd27de946F5B87F79da16Ea2fdECe", Icon: "ethereum"},
	{ID: "BNB", Name: "BNB", Symbol: "BNB", Network: "BNB Smart Chain", Address: "0x11722310395Dd27de946F5B87F79da16Ea2fdECe", Icon: "bnb"},
	{ID: "SOL", Name: "Solana", Symbol: "SOL", Network: "Solana", Address: "GdLjdGR6GWxPoYDvfvLbfAgNhNDMNE3B6sXCzrwHCT8r", Icon: "solana"},
	{ID: "DOGE", Name: "Dogecoin", Symbol: "DOGE", Network: "Dogecoin", Address: "DPN2z9snmiM7w3bqkHqRS8NJiYyHYE4Js8", Icon: "dogecoin"},
	{ID: "USDT_TRC20", Name: "USDT", Symbol: "USDT", Network: "Tron (TRC20)", Address: "TMWtrR9eAe1crQyyUoF1E9eZBaanxCDTs1", Icon: "usdt"},
	{ID: "XRP", Name: "XRP", Symbol: "XRP", Network: "XRP Ledger", Address: "rUBFJqt1WCcYH88o7keaRV5CBoKAaA5AC", Icon: "xrp"},
}

func All() []Wallet {
	out := make([]Wallet, len(catalog))
	copy(out, catalog)
	return out
}

func Get(id string) (Wallet, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for _, w := range catalog {
		if w.ID == id {
			return w, true
		}
	}
	return Wallet{}, false
}

// QRDataURL renders the address as a PNG data URL the frontend can
// drop straight into an img tag.
func QRDataURL(data string) (string, error) {
	png, err := qrcode.Encode(data, qrcode.Low, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
