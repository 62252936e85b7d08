package credential

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/pysugar/family-calendar/internal/util"
)

// Manager holds the in-memory credential state for the single calendar
// account. One instance per process, injected into request handlers.
//
// "Authenticated" means a credential is loaded, not that the access token
// is still valid against the remote service: validity is only discovered
// on use, which avoids a network round trip on every status check.
type Manager struct {
	oauth *oauth2.Config
	store Store
	state string // CSRF token for the consent redirect

	mu            sync.Mutex
	cred          *Credential
	authenticated bool

	// Refresh is reactive (no background timer) and single-flighted:
	// concurrent 401s coalesce into one token request.
	refreshGroup singleflight.Group
}

// NewManager builds a manager and seeds it from the store. A missing
// persisted credential is the expected cold-start condition.
func NewManager(oauthCfg *oauth2.Config, store Store) *Manager {
	b := make([]byte, 16)
	rand.Read(b)

	m := &Manager{
		oauth: oauthCfg,
		store: store,
		state: hex.EncodeToString(b),
	}

	cred, err := store.Load()
	switch {
	case err == nil:
		m.cred = cred
		m.authenticated = true
		log.Printf("🔑 Loaded stored credential (expires: %s)", formatExpiry(cred.Expiry))
	case errors.Is(err, ErrNotFound):
		log.Printf("🔑 No stored credential, authentication will be required")
	default:
		log.Printf("⚠️ Failed to load stored credential: %v", err)
	}
	return m
}

// IsAuthenticated reports whether a credential is currently loaded.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// Credential returns a copy of the current credential, or nil when
// unauthenticated.
func (m *Manager) Credential() *Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil
	}
	cred := *m.cred
	return &cred
}

// State returns the CSRF state token embedded in the consent URL.
func (m *Manager) State() string { return m.state }

// ConsentURL returns the Google consent URL. Offline access plus forced
// re-consent so a refresh token is issued even on repeat authorization.
func (m *Manager) ConsentURL() string {
	return m.oauth.AuthCodeURL(m.state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades an authorization code for a credential, persists it
// and marks the manager authenticated. Authorization codes are single-use,
// so a failed exchange is never retried.
func (m *Manager) ExchangeCode(ctx context.Context, code string) error {
	tok, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		m.invalidate()
		return &ExchangeError{Err: err}
	}

	cred := fromToken(tok)
	m.mu.Lock()
	m.cred = cred
	m.authenticated = true
	m.mu.Unlock()

	m.persist(cred)
	log.Printf("✅ Authorization code exchanged (token: %s, expires: %s)",
		util.MaskToken(cred.AccessToken), formatExpiry(cred.Expiry))
	return nil
}

// Refresh requests a new access token using the stored refresh token and
// re-persists the credential. Concurrent callers share one in-flight
// refresh and its outcome. On failure the authenticated flag is cleared
// and the caller must re-run the consent flow.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err, _ := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, m.doRefresh(ctx)
	})
	return err
}

func (m *Manager) doRefresh(ctx context.Context) error {
	m.mu.Lock()
	cred := m.cred
	m.mu.Unlock()

	if cred == nil || !cred.Renewable() {
		m.invalidate()
		return ErrNoRefreshToken
	}

	// Seed the token source with only the refresh token so it performs a
	// real refresh instead of returning the stale access token.
	src := m.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		m.invalidate()
		if isPermanentRefreshError(err) {
			log.Printf("🔒 Refresh token rejected, re-authorization required: %v", err)
		} else {
			log.Printf("❌ Token refresh failed: %v", err)
		}
		return fmt.Errorf("refresh access token: %w", err)
	}

	next := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       tok.Expiry,
	}
	// Persist a rotated refresh token if the provider issued one.
	if tok.RefreshToken != "" && tok.RefreshToken != cred.RefreshToken {
		log.Printf("🔄 Rotating refresh token")
		next.RefreshToken = tok.RefreshToken
	}

	m.mu.Lock()
	m.cred = next
	m.authenticated = true
	m.mu.Unlock()

	m.persist(next)
	log.Printf("✅ Refreshed access token (token: %s, expires: %s)",
		util.MaskToken(next.AccessToken), formatExpiry(next.Expiry))
	return nil
}

// Invalidate clears the authenticated flag, forcing the consent flow.
// Called when the remote service keeps rejecting the credential.
func (m *Manager) Invalidate() {
	m.invalidate()
}

func (m *Manager) invalidate() {
	m.mu.Lock()
	m.authenticated = false
	m.mu.Unlock()
}

// persist writes through to the store. A persistence failure does not lose
// the in-memory credential; it only risks re-consent after a restart.
func (m *Manager) persist(cred *Credential) {
	if err := m.store.Save(cred); err != nil {
		log.Printf("⚠️ Failed to persist credential: %v", err)
	}
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(time.RFC3339)
}
