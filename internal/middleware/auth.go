package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/vuln-blog/internal/models"
	"github.com/crucial707/vuln-blog/internal/repo"
)

type key string

const (
	principalKey key = "principal"
	sessionIDKey key = "session_id"
)

// SessionLookup resolves a session cookie value.
type SessionLookup interface {
	Get(ctx context.Context, id string) (*models.Session, error)
}

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (models.Principal, error)
}

// Authenticate attaches the request's principal, if any. A bearer token takes
// precedence over the session cookie. Anonymous requests pass through; use
// RequireAuth on routes that need a principal.
func Authenticate(sessions SessionLookup, tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				if p, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
					ctx = context.WithValue(ctx, principalKey, p)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
				s, err := sessions.Get(ctx, c.Value)
				switch {
				case err == nil:
					ctx = context.WithValue(ctx, principalKey, s.Principal())
					ctx = context.WithValue(ctx, sessionIDKey, s.ID)
				case !errors.Is(err, repo.ErrNotFound):
					slog.Error("session lookup failed", "error", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth answers 401 when no principal is attached.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetPrincipal(r.Context()); !ok {
			writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPrincipal returns the authenticated identity attached by Authenticate.
func GetPrincipal(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

// GetSessionID returns the cookie session id, or "" for token or anonymous requests.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// WithPrincipal is used by tests and by handlers that authenticate inline.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
