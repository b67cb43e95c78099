// Package render is the single HTML sink for user content. Every page that
// shows stored or reflected input goes through Content, so the trusted switch
// decides in one place whether markup is interpreted raw or filtered.
package render

import (
	"embed"
	"html/template"
	"io"
	"unicode/utf8"

	"github.com/crucial707/vuln-blog/internal/models"
	"github.com/crucial707/vuln-blog/internal/sanitize"
)

//go:embed templates/*.html
var templatesFS embed.FS

var allowlist = sanitize.New(false)

// Content returns s as markup. trusted inserts it raw (an XSS sink when s is
// attacker controlled); otherwise it is filtered through the allowlist, so
// stored formatting still renders and anything else is dropped.
func Content(s string, trusted bool) template.HTML {
	if trusted {
		return template.HTML(s)
	}
	return template.HTML(allowlist.HTML(s))
}

// Snippet truncates s to at most n runes before rendering it.
func Snippet(s string, n int, trusted bool) template.HTML {
	if utf8.RuneCountInString(s) > n {
		s = string([]rune(s)[:n])
	}
	return Content(s, trusted)
}

// Funcs exposes the sink to templates as {{content .X}} and {{snippet .X 140}}.
func Funcs(trusted bool) template.FuncMap {
	return template.FuncMap{
		"content": func(s string) template.HTML { return Content(s, trusted) },
		"snippet": func(s string, n int) template.HTML { return Snippet(s, n, trusted) },
	}
}

// ShareData feeds the shareable search page.
type ShareData struct {
	Query    string
	Posts    []models.Post
	XSSMode  string
	SQLiMode string
}

// SharePage renders the server-side search results page.
type SharePage struct {
	tmpl    *template.Template
	trusted bool
}

// NewSharePage parses the page template once. trusted selects the raw sink.
func NewSharePage(trusted bool) *SharePage {
	t := template.Must(template.New("search_share.html").
		Funcs(Funcs(trusted)).
		ParseFS(templatesFS, "templates/search_share.html"))
	return &SharePage{tmpl: t, trusted: trusted}
}

// Execute writes the page for d to w.
func (p *SharePage) Execute(w io.Writer, d ShareData) error {
	d.XSSMode = "SAFE_XSS"
	if p.trusted {
		d.XSSMode = "VULN_XSS"
	}
	return p.tmpl.Execute(w, d)
}
