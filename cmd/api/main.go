package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pipmatrix/internal/admin"
	"pipmatrix/internal/auth"
	"pipmatrix/internal/config"
	"pipmatrix/internal/copytrading"
	"pipmatrix/internal/db"
	"pipmatrix/internal/httpserver"
	"pipmatrix/internal/invest"
	"pipmatrix/internal/ledger"
	"pipmatrix/internal/loans"
	"pipmatrix/internal/marketdata"
	"pipmatrix/internal/notifications"
	"pipmatrix/internal/referrals"
	"pipmatrix/internal/subscriptions"
	"pipmatrix/internal/support"
	"pipmatrix/internal/trading"
	"pipmatrix/internal/users"
	"pipmatrix/internal/wallets"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect")
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrations")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("redis connect")
	}
	defer rdb.Close()

	demoStart, err := decimal.NewFromString(cfg.DemoStartBalance)
	if err != nil {
		logger.Fatal().Err(err).Str("value", cfg.DemoStartBalance).Msg("invalid DEMO_START_BALANCE")
	}

	denylist := auth.NewDenylist(rdb)
	authSvc := auth.NewService(pool, cfg.JWTIssuer, []byte(cfg.JWTSecret), cfg.JWTTTL, denylist, demoStart, logger)
	userSvc := users.NewService(pool)
	ledgerSvc := ledger.NewService(pool, logger)
	ruleStore := trading.NewRuleStore(pool)
	tradeSvc := trading.NewService(pool, ruleStore, demoStart, logger)
	investSvc := invest.NewService(pool, logger)
	loanSvc := loans.NewService(pool, logger)
	copySvc := copytrading.NewService(pool, logger)
	supportSvc := support.NewService(pool, logger)
	referralSvc := referrals.NewService(pool)
	subSvc := subscriptions.NewService(pool, logger)
	notifSvc := notifications.NewService(pool)
	adminSvc := admin.NewService(pool, logger)

	bus := marketdata.NewBus()
	publisher := marketdata.NewPublisher(bus, cfg.Symbols(), cfg.QuoteInterval, logger)
	pubCtx, stopPublisher := context.WithCancel(ctx)
	go publisher.Run(pubCtx)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:         auth.NewHandler(authSvc),
		UserHandler:         users.NewHandler(userSvc, authSvc),
		LedgerHandler:       ledger.NewHandler(ledgerSvc, cfg.UploadDir),
		WalletHandler:       wallets.NewHandler(),
		TradeHandler:        trading.NewHandler(tradeSvc),
		DemoHandler:         trading.NewDemoHandler(tradeSvc),
		InvestHandler:       invest.NewHandler(investSvc),
		LoanHandler:         loans.NewHandler(loanSvc),
		CopyHandler:         copytrading.NewHandler(copySvc),
		SupportHandler:      support.NewHandler(supportSvc),
		ReferralHandler:     referrals.NewHandler(referralSvc),
		SubscriptionHandler: subscriptions.NewHandler(subSvc),
		NotificationHandler: notifications.NewHandler(notifSvc),
		MarketHandler:       marketdata.NewHandler(publisher, cfg.Symbols()),
		AdminHandler:        admin.NewHandler(adminSvc, ruleStore),
		AuthService:         authSvc,
		MarketWS:            marketdata.NewQuoteWS(bus, cfg.WebSocketOrigin, logger),
		UploadDir:           cfg.UploadDir,
		StaticDir:           cfg.StaticDir,
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	logger.Info().Str("addr", cfg.HTTPAddr).Msg("server listening")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		stopPublisher()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server")
	}
}
