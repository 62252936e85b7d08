package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("expected default port 3000, got %q", cfg.Port)
	}
	if cfg.CalendarID != "primary" {
		t.Errorf("expected default calendar, got %q", cfg.CalendarID)
	}
	if cfg.TokenStore.Backend != "file" {
		t.Errorf("expected file backend default, got %q", cfg.TokenStore.Backend)
	}
	if cfg.Google.RedirectURL != "http://localhost:3000/auth/callback" {
		t.Errorf("expected derived redirect URL, got %q", cfg.Google.RedirectURL)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
port: "8080"
app_password: secret
session_ttl_hours: 1
calendar_id: family@group.calendar.google.com
token_store:
  backend: sqlite
  sqlite_path: /var/lib/dashboard.db
google:
  client_id: cid
  client_secret: csec
  redirect_url: https://dash.example.com/auth/callback
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != "8080" || cfg.AppPassword != "secret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SessionTTL() != time.Hour {
		t.Errorf("expected 1h session TTL, got %v", cfg.SessionTTL())
	}
	if cfg.TokenStore.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.TokenStore.Backend)
	}
	if cfg.Google.RedirectURL != "https://dash.example.com/auth/callback" {
		t.Errorf("unexpected redirect URL %q", cfg.Google.RedirectURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("APP_PASSWORD", "from-env")
	t.Setenv("TOKEN_STORE", "env")
	t.Setenv("TOKEN_DATA", `{"accessToken":"at"}`)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("expected env port override, got %q", cfg.Port)
	}
	if cfg.AppPassword != "from-env" {
		t.Errorf("expected env password override, got %q", cfg.AppPassword)
	}
	if cfg.TokenStore.Backend != "env" || cfg.TokenStore.Data == "" {
		t.Errorf("expected env token store, got %+v", cfg.TokenStore)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not closed"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
