package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/vuln-blog/internal/config"
	"github.com/crucial707/vuln-blog/internal/db"
	"github.com/crucial707/vuln-blog/internal/repo"
	"github.com/crucial707/vuln-blog/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := db.Options{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		Name:         cfg.DBName,
		User:         cfg.DBUser,
		Password:     cfg.DBPass,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	}
	database, err := db.Connect(ctx, opts)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if err := db.Migrate(opts.URL()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	f := cfg.Flags
	slog.Info("security switches",
		"VULN_SQLI", f.SQLi,
		"VULN_XSS", f.XSS,
		"VULN_CSRF", f.CSRF,
		"VULN_COOKIE_FLAGS", f.CookieFlags,
		"VULN_HEADERS", f.Headers,
		"VULN_DEBUG_ROUTES", f.DebugRoutes,
		"VULN_AUTH_WEAK", f.AuthWeak)

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := scheduler.Run(ctx, repo.NewSessionRepo(database), cfg.SessionPurgeSpec); err != nil {
			slog.Error("session purge disabled", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.TLSEnabled() {
			slog.Info("starting server", "port", cfg.Port, "tls", true)
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			slog.Info("starting server", "port", cfg.Port, "tls", false)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	<-schedDone
}

func setupLogging(format string) {
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		h = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(h))
}
