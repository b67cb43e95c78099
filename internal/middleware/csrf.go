package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

const (
	// CSRFHeader carries the token on state-changing requests.
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField is accepted for classic form posts.
	CSRFFormField = "_csrf"
	// CSRFCookieName holds the per-client secret the token is derived from.
	CSRFCookieName = "_csrf"

	csrfSecretBytes = 32
)

type csrfKey struct{}

// CSRF issues and verifies synchronizer tokens. Each client gets a random
// secret in a cookie; its token is HMAC(key, secret), so the server keeps no
// per-client state and a token from one client is useless to another.
type CSRF struct {
	key     []byte
	cookies CookiePolicy
	enabled bool
}

// NewCSRF returns the CSRF guard. When enabled is false the middleware is a no-op.
func NewCSRF(key string, cookies CookiePolicy, enabled bool) *CSRF {
	return &CSRF{key: []byte(key), cookies: cookies, enabled: enabled}
}

// Enabled reports whether tokens are required.
func (c *CSRF) Enabled() bool {
	return c.enabled
}

// Middleware attaches the client's token to the request context, minting a
// secret on first contact, and rejects unsafe methods without a matching token.
func (c *CSRF) Middleware(next http.Handler) http.Handler {
	if !c.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := ""
		if ck, err := r.Cookie(CSRFCookieName); err == nil && validSecret(ck.Value) {
			secret = ck.Value
		} else {
			var err error
			secret, err = newSecret()
			if err != nil {
				writeJSONError(w, "internal server error", http.StatusInternalServerError)
				return
			}
			c.cookies.Set(w, &http.Cookie{Name: CSRFCookieName, Value: secret})
		}

		token := c.tokenFor(secret)
		r = r.WithContext(context.WithValue(r.Context(), csrfKey{}, token))

		if !safeMethod(r.Method) {
			if !hmac.Equal([]byte(submittedToken(r)), []byte(token)) {
				writeJSONError(w, "invalid csrf token", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CSRFToken returns the token attached by the middleware, or "" when CSRF is off.
func CSRFToken(ctx context.Context) string {
	t, _ := ctx.Value(csrfKey{}).(string)
	return t
}

func (c *CSRF) tokenFor(secret string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func submittedToken(r *http.Request) string {
	if t := r.Header.Get(CSRFHeader); t != "" {
		return t
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return r.PostFormValue(CSRFFormField)
	}
	return ""
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func newSecret() (string, error) {
	b := make([]byte, csrfSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func validSecret(s string) bool {
	b, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil && len(b) == csrfSecretBytes
}
