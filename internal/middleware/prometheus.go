package middleware

import (
	"net/http"
	"time"

	"github.com/crucial707/vuln-blog/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// Prometheus records request duration and count. The path label is the chi
// route pattern when one matched, so /api/posts/{id} is a single series.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrap := record(w)
		next.ServeHTTP(wrap, r)
		if r.URL.Path == "/metrics" {
			return
		}

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		metrics.RecordRequest(r.Method, path, wrap.status, time.Since(start).Seconds())
	})
}
