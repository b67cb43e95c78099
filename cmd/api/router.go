package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/crucial707/vuln-blog/internal/auth"
	"github.com/crucial707/vuln-blog/internal/config"
	"github.com/crucial707/vuln-blog/internal/handlers"
	"github.com/crucial707/vuln-blog/internal/middleware"
	"github.com/crucial707/vuln-blog/internal/render"
	"github.com/crucial707/vuln-blog/internal/repo"
	"github.com/crucial707/vuln-blog/internal/sanitize"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires every route for cfg. All switch decisions are made here, once.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	flags := cfg.Flags

	mode := repo.NewQueryMode(flags.SQLi)
	userRepo := repo.NewUserRepo(db, mode)
	postRepo := repo.NewPostRepo(db, mode)
	commentRepo := repo.NewCommentRepo(db, mode)
	sessionRepo := repo.NewSessionRepo(db)

	tokens := auth.NewTokens([]byte(cfg.JWTSecret), hours(cfg.JWTExpireHours, 2))
	policy := auth.PasswordPolicy{AllowWeak: flags.AuthWeak}
	cookies := middleware.CookiePolicy{Relaxed: flags.CookieFlags}
	csrf := middleware.NewCSRF(cfg.SessionSecret, cookies, !flags.CSRF)

	sessionAuth := &handlers.SessionAuthHandler{
		Users:         userRepo,
		Sessions:      sessionRepo,
		Policy:        policy,
		Cookies:       cookies,
		SessionTTL:    hours(cfg.SessionTTLHours, 24),
		RawErrors:     flags.SQLi,
		ReflectMarkup: flags.XSS,
	}
	tokenAuth := &handlers.TokenAuthHandler{
		Users:     userRepo,
		Tokens:    tokens,
		Policy:    policy,
		RawErrors: flags.SQLi,
	}
	postHandler := &handlers.PostHandler{
		Posts:     postRepo,
		Comments:  commentRepo,
		Sanitizer: sanitize.New(flags.XSS),
		RawErrors: flags.SQLi,
	}
	share := &handlers.SearchShareHandler{
		Posts:     postRepo,
		Page:      render.NewSharePage(flags.XSS),
		RawErrors: flags.SQLi,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.SecurityHeaders(flags.Headers, cfg.TLSEnabled()))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
	r.Use(csrf.Middleware)
	r.Use(middleware.Authenticate(sessionRepo, tokens))

	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(db))
	r.Handle("/metrics", promhttp.Handler())
	r.Method(http.MethodGet, "/search-share", share)

	r.Route("/api", func(r chi.Router) {
		if csrf.Enabled() {
			r.Get("/csrf", handlers.CSRFToken)
		}

		limiter := middleware.AuthRateLimiter()
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/register", sessionAuth.Register)
			r.Post("/login", sessionAuth.Login)
			r.Post("/auth/register", tokenAuth.Register)
			r.Post("/auth/login", tokenAuth.Login)
		})
		r.Post("/logout", sessionAuth.Logout)
		r.Get("/me", sessionAuth.Me)

		r.Get("/posts", postHandler.List)
		r.Get("/posts/search", postHandler.Search)
		r.Get("/posts/{id}", postHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/posts", postHandler.Create)
			r.Post("/posts/{id}/comments", postHandler.CreateComment)
		})
	})

	if flags.DebugRoutes {
		debug := &handlers.DebugHandler{Root: cfg.DebugRoot}
		r.Get("/debug/env", debug.Env)
		r.Get("/debug/readfile", debug.ReadFile)
		r.Handle("/debug/files", debug.Files())
		r.Handle("/debug/files/*", debug.Files())
	}

	return r
}

func hours(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Hour
}
