package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vancomm/sweeper/internal/config"
)

type CtxKey int

const (
	CtxSessionClaims CtxKey = iota
)

// SessionClaims returns the claims Auth stored in ctx, if any.
func SessionClaims(ctx context.Context) (*config.SessionClaims, bool) {
	claims, ok := ctx.Value(CtxSessionClaims).(*config.SessionClaims)
	return claims, ok
}

// Auth attaches valid session claims to the request context. Requests
// without a token pass through untouched.
func Auth(logger *slog.Logger, cookies *config.Cookies) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := cookies.ParseSessionClaims(r)
			if err != nil {
				if r.Header.Get("Authorization") != "" {
					logger.DebugContext(r.Context(), "rejected session token", slog.Any("error", err))
				}
				h.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxSessionClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
