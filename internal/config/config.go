// Package config loads the dashboard configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// GoogleConfig holds the OAuth client registration for the Google Calendar API.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// RedirectURL must match the redirect URI registered for the client,
	// e.g. "http://localhost:3000/auth/callback".
	RedirectURL string `yaml:"redirect_url"`
}

// TokenStoreConfig selects where the OAuth credential is persisted.
type TokenStoreConfig struct {
	// Backend is one of "file", "env" or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the credential file path for the file backend.
	Path string `yaml:"path"`
	// SQLitePath is the database path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
	// Data is the serialized credential for the env backend. Usually
	// supplied via the TOKEN_DATA environment variable rather than the
	// config file.
	Data string `yaml:"data"`
}

// Config is the top-level application configuration.
type Config struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// AppPassword is the shared password gating the dashboard.
	AppPassword string `yaml:"app_password"`

	// SessionTTLHours bounds how long a password session stays valid.
	SessionTTLHours int `yaml:"session_ttl_hours"`

	// CalendarID is the Google calendar queried for today's events.
	CalendarID string `yaml:"calendar_id"`

	Google     GoogleConfig     `yaml:"google"`
	TokenStore TokenStoreConfig `yaml:"token_store"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Host:            "127.0.0.1",
		Port:            "3000",
		AppPassword:     "family",
		SessionTTLHours: 24,
		CalendarID:      "primary",
		TokenStore: TokenStoreConfig{
			Backend:    "file",
			Path:       "token.json",
			SQLitePath: "dashboard.db",
		},
	}
}

// Load reads the YAML config at path (missing file is fine, defaults apply)
// and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()

	if cfg.Google.RedirectURL == "" {
		cfg.Google.RedirectURL = fmt.Sprintf("http://localhost:%s/auth/callback", cfg.Port)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setIfPresent(&c.Host, "HOST")
	setIfPresent(&c.Port, "PORT")
	setIfPresent(&c.AppPassword, "APP_PASSWORD")
	setIfPresent(&c.CalendarID, "CALENDAR_ID")
	setIfPresent(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	setIfPresent(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setIfPresent(&c.Google.RedirectURL, "REDIRECT_URI")
	setIfPresent(&c.TokenStore.Backend, "TOKEN_STORE")
	setIfPresent(&c.TokenStore.Path, "TOKEN_PATH")
	setIfPresent(&c.TokenStore.SQLitePath, "TOKEN_SQLITE_PATH")
	setIfPresent(&c.TokenStore.Data, "TOKEN_DATA")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}
