package httpserver

import (
	"context"
	"net/http"
	"strings"

	"pipmatrix/internal/auth"
	"pipmatrix/internal/httputil"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

func WithAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				httputil.Fail(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			userID, err := svc.ParseToken(r.Context(), parts[1])
			if err != nil {
				httputil.Fail(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserID(r *http.Request) (int64, bool) {
	v := r.Context().Value(userIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// RequireAdmin sits behind WithAuth and gates back-office routes on
// the is_admin flag.
func RequireAdmin(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r)
			if !ok {
				httputil.Fail(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			isAdmin, err := svc.IsAdmin(r.Context(), userID)
			if err != nil {
				httputil.Fail(w, http.StatusInternalServerError, "admin check failed")
				return
			}
			if !isAdmin {
				httputil.Fail(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// user adapts a userID-taking handler to http.HandlerFunc. Routes
// behind WithAuth always have the ID in context.
func user(fn func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r)
		if !ok {
			httputil.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		fn(w, r, userID)
	}
}
