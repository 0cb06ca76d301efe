package config

import (
	"reflect"
	"testing"
)

func TestSymbols(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"BTC/USDT,ETH/USDT", []string{"BTC/USDT", "ETH/USDT"}},
		{" BTC/USDT , ETH/USDT ", []string{"BTC/USDT", "ETH/USDT"}},
		{"BTC/USDT,,", []string{"BTC/USDT"}},
		{"", nil},
	}
	for _, tc := range cases {
		c := Config{QuoteSymbols: tc.in}
		if got := c.Symbols(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Symbols(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLoadRequiresCoreKeys(t *testing.T) {
	// no env set in the test process beyond defaults
	if _, err := Load(); err == nil {
		t.Skip("environment provides DB_DSN, REDIS_ADDR and JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "test-secret")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", c.HTTPAddr)
	}
	if c.DemoStartBalance != "10000" {
		t.Errorf("DemoStartBalance = %q", c.DemoStartBalance)
	}
	if c.JWTTTL.Hours() != 24 {
		t.Errorf("JWTTTL = %s", c.JWTTTL)
	}
	if c.WebSocketOrigin != "*" {
		t.Errorf("WebSocketOrigin = %q", c.WebSocketOrigin)
	}
}
