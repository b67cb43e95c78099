package middleware

import (
	"net/http"
)

const (
	// ContentSecurityPolicy is sent in strict mode.
	ContentSecurityPolicy = "default-src 'self'; frame-ancestors 'none'; form-action 'self'"
	// PoweredBy is the identifying header sent in relaxed mode.
	PoweredBy = "vuln-blog (Vulnerable Mode)"
)

// SecurityHeaders applies the response header policy. Strict mode sends a
// restrictive CSP and frame policy (plus HSTS when hsts is set); relaxed mode
// sends only an identifying X-Powered-By header.
func SecurityHeaders(relaxed, hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if relaxed {
				h.Set("X-Powered-By", PoweredBy)
			} else {
				h.Set("Content-Security-Policy", ContentSecurityPolicy)
				h.Set("X-Frame-Options", "DENY")
				h.Set("X-Content-Type-Options", "nosniff")
				h.Set("Referrer-Policy", "no-referrer")
				if hsts {
					h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
