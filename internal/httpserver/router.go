package httpserver

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"pipmatrix/internal/admin"
	"pipmatrix/internal/auth"
	"pipmatrix/internal/copytrading"
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

type RouterDeps struct {
	AuthHandler         *auth.Handler
	UserHandler         *users.Handler
	LedgerHandler       *ledger.Handler
	WalletHandler       *wallets.Handler
	TradeHandler        *trading.Handler
	DemoHandler         *trading.DemoHandler
	InvestHandler       *invest.Handler
	LoanHandler         *loans.Handler
	CopyHandler         *copytrading.Handler
	SupportHandler      *support.Handler
	ReferralHandler     *referrals.Handler
	SubscriptionHandler *subscriptions.Handler
	NotificationHandler *notifications.Handler
	MarketHandler       *marketdata.Handler
	AdminHandler        *admin.Handler
	AuthService         *auth.Service
	MarketWS            http.Handler
	UploadDir           string
	StaticDir           string
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS middleware for development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	// Security Middleware
	r.Use(SecurityHeaders)
	r.Use(RateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", d.AuthHandler.Register)
		r.Post("/login", d.AuthHandler.Login)
		r.Get("/check-auth", d.AuthHandler.Check)

		r.Get("/market/prices", d.MarketHandler.Prices)
		r.Get("/market/ws", d.MarketWS.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))

			r.Post("/logout", user(d.AuthHandler.Logout))

			r.Get("/profile", user(d.UserHandler.Profile))
			r.Put("/profile", user(d.UserHandler.UpdateProfile))
			r.Get("/dashboard", user(d.UserHandler.Dashboard))

			r.Get("/transactions", user(d.LedgerHandler.Transactions))
			r.Post("/deposit", user(d.LedgerHandler.Deposit))
			r.Post("/deposit/crypto", user(d.LedgerHandler.CryptoDeposit))
			r.Post("/withdraw", user(d.LedgerHandler.Withdraw))
			r.Post("/transfer", user(d.LedgerHandler.Transfer))

			r.Get("/crypto/wallets", d.WalletHandler.List)
			r.Get("/crypto/wallets/{id}", d.WalletHandler.Get)

			r.Get("/trades", user(d.TradeHandler.List))
			r.Post("/trades", user(d.TradeHandler.Open))
			r.Post("/trades/{id}/close", user(d.TradeHandler.Close))
			r.Delete("/trades/{id}", user(d.TradeHandler.Delete))
			r.Get("/trades/history", user(d.TradeHandler.History))

			r.Get("/demo/balance", user(d.DemoHandler.Balance))
			r.Post("/demo/trade", user(d.DemoHandler.Place))
			r.Post("/demo/trade/{id}/close", user(d.DemoHandler.Close))
			r.Get("/demo/trades", user(d.DemoHandler.OpenTrades))
			r.Get("/demo/history", user(d.DemoHandler.History))
			r.Post("/demo/reset", user(d.DemoHandler.Reset))

			r.Get("/investments", user(d.InvestHandler.List))
			r.Post("/investments", user(d.InvestHandler.Create))

			r.Get("/loans", user(d.LoanHandler.List))
			r.Post("/loans", user(d.LoanHandler.Apply))

			r.Get("/copy-trading", user(d.CopyHandler.ListCopy))
			r.Post("/copy-trading", user(d.CopyHandler.StartCopy))
			r.Get("/bot-trading", user(d.CopyHandler.ListBots))
			r.Post("/bot-trading", user(d.CopyHandler.StartBot))

			r.Get("/support/tickets", user(d.SupportHandler.List))
			r.Post("/support/tickets", user(d.SupportHandler.Create))

			r.Get("/referrals", user(d.ReferralHandler.Summary))

			r.Get("/subscriptions", user(d.SubscriptionHandler.List))
			r.Post("/subscriptions", user(d.SubscriptionHandler.Create))

			r.Get("/notifications", user(d.NotificationHandler.List))
			r.Post("/notifications/{id}/read", user(d.NotificationHandler.MarkRead))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))
			r.Use(RequireAdmin(d.AuthService))

			r.Get("/stats", user(d.AdminHandler.Stats))
			r.Get("/users", user(d.AdminHandler.Users))
			r.Get("/signups", user(d.AdminHandler.Signups))
			r.Get("/transactions/pending", user(d.AdminHandler.PendingTransactions))

			r.Post("/deposits/{id}/approve", user(d.AdminHandler.ApproveDeposit))
			r.Post("/deposits/{id}/reject", user(d.AdminHandler.RejectDeposit))
			r.Post("/withdrawals/{id}/approve", user(d.AdminHandler.ApproveWithdrawal))
			r.Post("/withdrawals/{id}/reject", user(d.AdminHandler.RejectWithdrawal))
			r.Post("/subscriptions/{id}/approve", user(d.AdminHandler.ApproveSubscription))
			r.Post("/subscriptions/{id}/reject", user(d.AdminHandler.RejectSubscription))

			r.Get("/trade-rules", user(d.AdminHandler.ListRules))
			r.Post("/trade-rules", user(d.AdminHandler.CreateRule))
			r.Put("/trade-rules/{id}", user(d.AdminHandler.UpdateRule))
			r.Delete("/trade-rules/{id}", user(d.AdminHandler.DeleteRule))
		})
	})

	if d.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}
	if d.StaticDir != "" {
		r.NotFound(spaHandler(d.StaticDir).ServeHTTP)
	}
	return r
}

func spaHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}
		clean := filepath.Clean(path)
		full := filepath.Join(dir, clean)
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			http.ServeFile(w, r, full)
			return
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
}
