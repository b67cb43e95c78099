package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DebugHandler exposes process and filesystem internals. It is only mounted
// when debug routes are switched on.
type DebugHandler struct {
	// Root is the directory served by Files and read by ReadFile.
	Root string
	// Environ defaults to os.Environ.
	Environ func() []string
}

// Env dumps the process environment as indented JSON in a text/plain body.
func (h *DebugHandler) Env(w http.ResponseWriter, r *http.Request) {
	environ := h.Environ
	if environ == nil {
		environ = os.Environ
	}
	env := make(map[string]string)
	for _, kv := range environ() {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(out)
}

// Files serves directory listings and files under Root. Mount at /debug/files.
func (h *DebugHandler) Files() http.Handler {
	return http.StripPrefix("/debug/files", http.FileServer(http.Dir(h.Root)))
}

// ReadFile returns Root/<file> as text. The path is joined as given; ".." segments are honoured.
func (h *DebugHandler) ReadFile(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("file")
	if name == "" {
		name = "go.mod"
	}
	data, err := os.ReadFile(filepath.Join(h.Root, name))
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}
