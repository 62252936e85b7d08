package credential

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu    sync.Mutex
	cred  *Credential
	saves int
}

func (s *memStore) Load() (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil, ErrNotFound
	}
	cred := *s.cred
	return &cred, nil
}

func (s *memStore) Save(cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cred
	s.cred = &c
	s.saves++
	return nil
}

// fakeTokenServer imitates the provider's token endpoint. Authorization
// codes are single-use; refresh grants mint a fresh access token.
type fakeTokenServer struct {
	mu           sync.Mutex
	usedCodes    map[string]bool
	refreshCalls int
	refreshDelay time.Duration
	rejectAll    bool
}

func (f *fakeTokenServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		if f.usedCodes == nil {
			f.usedCodes = map[string]bool{}
		}
		rejectAll := f.rejectAll
		delay := f.refreshDelay

		grant := r.PostFormValue("grant_type")
		var fail bool
		switch grant {
		case "authorization_code":
			code := r.PostFormValue("code")
			if f.usedCodes[code] {
				fail = true
			}
			f.usedCodes[code] = true
		case "refresh_token":
			f.refreshCalls++
		}
		f.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}

		w.Header().Set("Content-Type", "application/json")
		if fail || rejectAll {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}

		resp := map[string]interface{}{
			"access_token": "at-" + strings.Repeat("x", 20) + "-" + time.Now().Format("150405.000000000"),
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		if grant == "authorization_code" {
			resp["refresh_token"] = "rt-initial"
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func (f *fakeTokenServer) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func newTestConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:3000/auth/callback",
		Scopes:       []string{"https://www.googleapis.com/auth/calendar.readonly"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  tokenURL + "/auth",
			TokenURL: tokenURL + "/token",
		},
	}
}

func TestNewManager_ColdStart(t *testing.T) {
	mgr := NewManager(newTestConfig("http://unused.invalid"), &memStore{})

	if mgr.IsAuthenticated() {
		t.Fatal("expected cold start to be unauthenticated")
	}
	if mgr.Credential() != nil {
		t.Fatal("expected no credential on cold start")
	}
}

func TestNewManager_SeedsFromStore(t *testing.T) {
	store := &memStore{cred: &Credential{
		AccessToken:  "at-stored",
		RefreshToken: "rt-stored",
		Expiry:       time.Now().Add(time.Hour),
	}}

	// No network call happens at load time, so a dead endpoint is fine.
	mgr := NewManager(newTestConfig("http://unused.invalid"), store)

	if !mgr.IsAuthenticated() {
		t.Fatal("expected persisted credential to seed authenticated state")
	}
	if got := mgr.Credential().AccessToken; got != "at-stored" {
		t.Fatalf("expected stored access token, got %q", got)
	}
}

func TestConsentURL(t *testing.T) {
	mgr := NewManager(newTestConfig("http://unused.invalid"), &memStore{})

	url := mgr.ConsentURL()
	for _, want := range []string{"access_type=offline", "approval_prompt=force", "state=" + mgr.State()} {
		if !strings.Contains(url, want) {
			t.Errorf("consent URL missing %q: %s", want, url)
		}
	}
}

func TestExchangeCode_Success(t *testing.T) {
	fake := &fakeTokenServer{}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	store := &memStore{}
	mgr := NewManager(newTestConfig(ts.URL), store)

	if err := mgr.ExchangeCode(context.Background(), "code-1"); err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if !mgr.IsAuthenticated() {
		t.Fatal("expected authenticated after exchange")
	}
	if store.saves != 1 {
		t.Fatalf("expected 1 persist, got %d", store.saves)
	}
	if store.cred.RefreshToken != "rt-initial" {
		t.Fatalf("expected refresh token persisted, got %q", store.cred.RefreshToken)
	}
}

func TestExchangeCode_SingleUse(t *testing.T) {
	fake := &fakeTokenServer{}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	mgr := NewManager(newTestConfig(ts.URL), &memStore{})

	if err := mgr.ExchangeCode(context.Background(), "code-1"); err != nil {
		t.Fatalf("first exchange failed: %v", err)
	}

	err := mgr.ExchangeCode(context.Background(), "code-1")
	if err == nil {
		t.Fatal("expected second exchange with the same code to fail")
	}
	var exchangeErr *ExchangeError
	if !errors.As(err, &exchangeErr) {
		t.Fatalf("expected ExchangeError, got %T: %v", err, err)
	}
}

func TestRefresh_PreservesRefreshToken(t *testing.T) {
	fake := &fakeTokenServer{}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	store := &memStore{cred: &Credential{
		AccessToken:  "at-old",
		RefreshToken: "rt-1",
		Expiry:       time.Now().Add(-time.Minute),
	}}
	mgr := NewManager(newTestConfig(ts.URL), store)

	for i := 0; i < 2; i++ {
		if err := mgr.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh %d failed: %v", i, err)
		}
		cred := mgr.Credential()
		if cred.RefreshToken != "rt-1" {
			t.Fatalf("refresh %d: refresh token changed to %q", i, cred.RefreshToken)
		}
		if cred.AccessToken == "at-old" {
			t.Fatalf("refresh %d: access token was not replaced", i)
		}
		if !cred.Expiry.After(time.Now()) {
			t.Fatalf("refresh %d: expiry was not advanced", i)
		}
	}

	if store.saves != 2 {
		t.Fatalf("expected refresh to re-persist each time, got %d saves", store.saves)
	}
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	store := &memStore{cred: &Credential{AccessToken: "at-only"}}
	mgr := NewManager(newTestConfig("http://unused.invalid"), store)

	err := mgr.Refresh(context.Background())
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}
	if mgr.IsAuthenticated() {
		t.Fatal("expected authenticated flag cleared")
	}
}

func TestRefresh_RejectedGrant(t *testing.T) {
	fake := &fakeTokenServer{rejectAll: true}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	store := &memStore{cred: &Credential{AccessToken: "at", RefreshToken: "rt-revoked"}}
	mgr := NewManager(newTestConfig(ts.URL), store)

	if err := mgr.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}
	if mgr.IsAuthenticated() {
		t.Fatal("expected authenticated flag cleared after failed refresh")
	}
}

func TestRefresh_SingleFlight(t *testing.T) {
	fake := &fakeTokenServer{refreshDelay: 50 * time.Millisecond}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	store := &memStore{cred: &Credential{AccessToken: "at", RefreshToken: "rt-1"}}
	mgr := NewManager(newTestConfig(ts.URL), store)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mgr.Refresh(context.Background()); err != nil {
				t.Errorf("refresh failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := fake.refreshCount(); got != 1 {
		t.Fatalf("expected concurrent refreshes to coalesce into 1 request, got %d", got)
	}
}

func TestIsPermanentRefreshError(t *testing.T) {
	tests := []struct {
		name      string
		errText   string
		permanent bool
	}{
		{name: "invalid grant", errText: "oauth2: cannot fetch token: 400 Bad Request {\"error\":\"invalid_grant\"}", permanent: true},
		{name: "revoked", errText: "token has been expired or revoked", permanent: true},
		{name: "timeout", errText: "context deadline exceeded", permanent: false},
		{name: "temporary", errText: "temporarily_unavailable", permanent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isPermanentRefreshError(errors.New(tt.errText))
			if got != tt.permanent {
				t.Fatalf("expected %v, got %v", tt.permanent, got)
			}
		})
	}
}
