package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/crucial707/vuln-blog/internal/render"
	"github.com/crucial707/vuln-blog/internal/repo"
)

// SearchShareHandler serves the server-rendered, linkable search page.
type SearchShareHandler struct {
	Posts *repo.PostRepo
	Page  *render.SharePage

	// RawErrors sends database error text to the client.
	RawErrors bool
}

func (h *SearchShareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	posts, err := h.Posts.SearchTitleOrContent(r.Context(), q)
	if err != nil {
		slog.Error("search share", "error", err)
		msg := "Search error"
		if h.RawErrors {
			msg = err.Error()
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(msg))
		return
	}

	mode := "SAFE_SQLI"
	if h.RawErrors {
		mode = "VULN_SQLI"
	}

	var buf bytes.Buffer
	if err := h.Page.Execute(&buf, render.ShareData{Query: q, Posts: posts, SQLiMode: mode}); err != nil {
		slog.Error("search share: render", "error", err)
		http.Error(w, "Search error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
