package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pysugar/family-calendar/internal/auth/credential"
	"github.com/pysugar/family-calendar/internal/auth/google"
	"github.com/pysugar/family-calendar/internal/calendar"
	"github.com/pysugar/family-calendar/internal/config"
	"github.com/pysugar/family-calendar/internal/logging"
	"github.com/pysugar/family-calendar/internal/server"
	"github.com/pysugar/family-calendar/internal/today"
	"github.com/pysugar/family-calendar/internal/travel"
	"github.com/pysugar/family-calendar/internal/version"
)

func main() {
	configPath := os.Getenv("CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize credential store: %v", err)
	}

	oauthCfg := google.NewConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	creds := credential.NewManager(oauthCfg, store)

	client := calendar.NewGoogleClient(creds)
	estimator := travel.NewTableEstimator()
	todaySvc := today.NewService(creds, client, estimator, cfg.CalendarID)

	sessions := server.NewSessionStore(cfg.SessionTTL())

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(logging.RequestID)

	// Auth bootstrap routes, reachable without a session.
	r.Get("/login", server.StaticPageHandler("login.html"))
	r.Post("/auth/login", server.LoginHandler(sessions, cfg.AppPassword, cfg.SessionTTL()))

	// Everything else sits behind the password gate.
	r.Group(func(r chi.Router) {
		r.Use(server.RequireSession(sessions))

		r.Get("/", server.StaticPageHandler("index.html"))
		r.Get("/logout", server.LogoutHandler(sessions))

		r.Get("/auth/status", server.AuthStatusHandler(creds))
		r.Get("/auth/url", server.AuthURLHandler(creds))
		r.Get("/auth/callback", server.AuthCallbackHandler(creds))

		r.Get("/api/events/today", server.TodayEventsHandler(todaySvc))
	})

	log.Printf("🚀 Family calendar dashboard %s starting on http://%s", version.Version, cfg.Addr())
	log.Printf("📅 Calendar: %s (token store: %s)", cfg.CalendarID, cfg.TokenStore.Backend)

	if err := http.ListenAndServe(cfg.Addr(), r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func newStore(cfg *config.Config) (credential.Store, error) {
	switch cfg.TokenStore.Backend {
	case "env":
		return credential.NewEnvStore(cfg.TokenStore.Data), nil
	case "sqlite":
		return credential.NewSQLiteStore(cfg.TokenStore.SQLitePath)
	default:
		return credential.NewFileStore(cfg.TokenStore.Path), nil
	}
}
