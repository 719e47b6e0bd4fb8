package middleware

import (
	"context"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/identifier"
)

// DefaultCookieName is the session cookie read by RequireAuthenticated.
const DefaultCookieName = "session_id"

type userIDContextKey struct{}

// UserIDFromContext returns the authenticated user identifier injected by a
// guard.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey{}).(string)
	return id, ok
}

// Guard returns middleware that admits a request only when cookieName holds a
// well-formed identifier with a live session. Malformed cookies are rejected
// before the engine is consulted.
func Guard(engine *goSession.Engine, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			cookie, err := r.Cookie(cookieName)
			if err != nil || !identifier.IsWellFormed(cookie.Value) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			authed, err := engine.IsAuthenticated(r.Context(), cookie.Value)
			if err != nil || !authed {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey{}, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthenticated is Guard bound to DefaultCookieName.
func RequireAuthenticated(engine *goSession.Engine) func(http.Handler) http.Handler {
	return Guard(engine, DefaultCookieName)
}
