package handlers

import (
	"net/http"

	"github.com/crucial707/vuln-blog/internal/middleware"
)

// CSRFToken returns the caller's token. Mounted only when CSRF protection is on.
func CSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": middleware.CSRFToken(r.Context())})
}
