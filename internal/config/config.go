package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr         string        `mapstructure:"HTTP_ADDR"`
	DBDSN            string        `mapstructure:"DB_DSN"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	JWTIssuer        string        `mapstructure:"JWT_ISSUER"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	JWTTTL           time.Duration `mapstructure:"JWT_TTL"`
	UploadDir        string        `mapstructure:"UPLOAD_DIR"`
	StaticDir        string        `mapstructure:"STATIC_DIR"`
	DemoStartBalance string        `mapstructure:"DEMO_START_BALANCE"`
	QuoteSymbols     string        `mapstructure:"QUOTE_SYMBOLS"`
	QuoteInterval    time.Duration `mapstructure:"QUOTE_INTERVAL"`
	WebSocketOrigin  string        `mapstructure:"WS_ORIGIN"`
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("JWT_ISSUER", "pipmatrix")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("STATIC_DIR", "")
	v.SetDefault("DEMO_START_BALANCE", "10000")
	v.SetDefault("QUOTE_SYMBOLS", "BTC/USDT,ETH/USDT,EUR/USD")
	v.SetDefault("QUOTE_INTERVAL", "2s")
	v.SetDefault("WS_ORIGIN", "*")
	// viper only unmarshals keys it has seen; bind the required ones
	// explicitly so plain env vars are picked up.
	for _, key := range []string{"HTTP_ADDR", "DB_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "JWT_ISSUER", "JWT_SECRET", "JWT_TTL", "UPLOAD_DIR", "STATIC_DIR", "DEMO_START_BALANCE", "QUOTE_SYMBOLS", "QUOTE_INTERVAL", "WS_ORIGIN"} {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	var missing []string
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if c.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}

// Symbols splits the configured quote symbol list.
func (c Config) Symbols() []string {
	var out []string
	for _, s := range strings.Split(c.QuoteSymbols, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
