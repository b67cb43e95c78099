package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/crucial707/vuln-blog/internal/client"
	"github.com/crucial707/vuln-blog/internal/config"
	"github.com/crucial707/vuln-blog/internal/models"
	"github.com/crucial707/vuln-blog/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName  = "vuln_blog_token"
	tokenMaxAge = 2 * 3600
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	cfg := config.LoadWeb()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newWebRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("web UI running", "url", "http://localhost:"+cfg.Port, "api", cfg.APIURL,
			"VULN_XSS_SINK", cfg.XSSSink, "VULN_RAW_QUERY", cfg.RawQuery, "VULN_OPEN_REDIRECT", cfg.OpenRedirect)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("web server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

type web struct {
	cfg   config.WebConfig
	api   *client.Client
	pages map[string]*template.Template
}

func newWebRouter(cfg config.WebConfig) http.Handler {
	api := client.New(cfg.APIURL)
	api.RawQuery = cfg.RawQuery
	app := &web{cfg: cfg, api: api, pages: parsePages(cfg.XSSSink)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/", app.home)
	r.Post("/posts", app.createPost)
	r.Get("/posts/{id}", app.postDetail)
	r.Post("/posts/{id}/comments", app.addComment)
	r.Get("/search", app.search)
	r.Get("/login", app.loginForm)
	r.Post("/login", app.loginSubmit)
	r.Get("/register", app.registerForm)
	r.Post("/register", app.registerSubmit)
	r.Get("/logout", app.logout)

	return r
}

// parsePages builds one template per page on top of the shared layout. trusted
// selects the raw sink for post and comment bodies.
func parsePages(trusted bool) map[string]*template.Template {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"home.html", "post.html", "search.html", "login.html", "register.html"} {
		pages[name] = template.Must(template.New("layout.html").
			Funcs(render.Funcs(trusted)).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
	}
	return pages
}

// pageData is the common view model; User is empty when signed out.
type pageData struct {
	User  string
	Error string
	Mode  string
	Data  interface{}
}

func (a *web) render(w http.ResponseWriter, r *http.Request, name string, status int, errMsg string, data interface{}) {
	mode := "SAFE_XSS"
	if a.cfg.XSSSink {
		mode = "VULN_XSS_SINK"
	}
	pd := pageData{Error: errMsg, Mode: mode, Data: data}
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		pd.User = "signed in"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.pages[name].ExecuteTemplate(w, "layout", pd); err != nil {
		slog.Error("template execute", "page", name, "error", err)
	}
}

// client returns the API client authenticated as the browser's user, if any.
func (a *web) client(r *http.Request) *client.Client {
	if c, err := r.Cookie(cookieName); err == nil {
		return a.api.WithToken(c.Value)
	}
	return a.api
}

// apiFailed handles an API error: 401 sends the user to sign in again.
func (a *web) apiFailed(w http.ResponseWriter, r *http.Request, page string, err error, data interface{}) {
	if client.IsStatus(err, http.StatusUnauthorized) {
		clearToken(w)
		http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
		return
	}
	status := http.StatusBadGateway
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Status
	}
	a.render(w, r, page, status, err.Error(), data)
}

func (a *web) home(w http.ResponseWriter, r *http.Request) {
	posts, err := a.client(r).ListPosts(r.Context())
	if err != nil {
		a.apiFailed(w, r, "home.html", err, []models.Post{})
		return
	}
	a.render(w, r, "home.html", http.StatusOK, "", posts)
}

func (a *web) createPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id, err := a.client(r).CreatePost(r.Context(), r.FormValue("title"), r.FormValue("content"))
	if err != nil {
		a.apiFailed(w, r, "home.html", err, []models.Post{})
		return
	}
	http.Redirect(w, r, "/posts/"+strconv.Itoa(id), http.StatusFound)
}

func (a *web) postDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	detail, err := a.client(r).GetPost(r.Context(), id)
	if err != nil {
		a.apiFailed(w, r, "post.html", err, models.PostDetail{})
		return
	}
	a.render(w, r, "post.html", http.StatusOK, "", detail)
}

func (a *web) addComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if _, err := a.client(r).AddComment(r.Context(), id, r.FormValue("content")); err != nil {
		a.apiFailed(w, r, "post.html", err, models.PostDetail{})
		return
	}
	http.Redirect(w, r, "/posts/"+strconv.Itoa(id), http.StatusFound)
}

type searchView struct {
	Query string
	Posts []models.Post
}

func (a *web) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	view := searchView{Query: q, Posts: []models.Post{}}
	if q == "" {
		a.render(w, r, "search.html", http.StatusOK, "", view)
		return
	}
	posts, err := a.client(r).SearchPosts(r.Context(), q)
	if err != nil {
		a.apiFailed(w, r, "search.html", err, view)
		return
	}
	view.Posts = posts
	a.render(w, r, "search.html", http.StatusOK, "", view)
}

type authView struct {
	Next string
}

func (a *web) loginForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, "login.html", http.StatusOK, "", authView{Next: r.URL.Query().Get("next")})
}

func (a *web) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	next := r.FormValue("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}
	view := authView{Next: next}

	username := strings.TrimSpace(r.FormValue("username"))
	if username == "" || r.FormValue("password") == "" {
		a.render(w, r, "login.html", http.StatusBadRequest, "Username and password are required", view)
		return
	}

	token, err := a.api.Login(r.Context(), username, r.FormValue("password"))
	if err != nil {
		status := http.StatusBadGateway
		if client.IsStatus(err, http.StatusUnauthorized) {
			status = http.StatusUnauthorized
		}
		a.render(w, r, "login.html", status, "Invalid credentials", view)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   tokenMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirectTarget(next, a.cfg.OpenRedirect), http.StatusFound)
}

func (a *web) registerForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, "register.html", http.StatusOK, "", nil)
}

func (a *web) registerSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if err := a.api.Register(r.Context(), strings.TrimSpace(r.FormValue("username")), r.FormValue("password")); err != nil {
		status := http.StatusBadGateway
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Status
		}
		a.render(w, r, "register.html", status, err.Error(), nil)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (a *web) logout(w http.ResponseWriter, r *http.Request) {
	clearToken(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func clearToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// redirectTarget returns where to send the user after login. Unless open is
// set, only same-site paths are followed: a single leading slash, no scheme,
// no protocol-relative "//host" and no backslash tricks.
func redirectTarget(next string, open bool) string {
	if next == "" {
		return "/"
	}
	if open {
		return next
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}
