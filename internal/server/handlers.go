package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pysugar/family-calendar/internal/today"
	"github.com/pysugar/family-calendar/internal/util"
)

// CredentialManager is the slice of the credential manager the auth
// handlers need. Satisfied by *credential.Manager.
type CredentialManager interface {
	IsAuthenticated() bool
	ConsentURL() string
	State() string
	ExchangeCode(ctx context.Context, code string) error
}

// TodayService answers the events query. Satisfied by *today.Service.
type TodayService interface {
	FetchToday(ctx context.Context) ([]today.EventRecord, error)
}

// LoginHandler checks the submitted password against the shared app
// password and opens a session.
func LoginHandler(sessions *SessionStore, password string, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		if !PasswordMatches(r.PostFormValue("password"), password) {
			http.Redirect(w, r, "/login?error=1", http.StatusFound)
			return
		}

		id := sessions.Create()
		setSessionCookie(w, id, ttl)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// LogoutHandler drops the session and sends the browser back to login.
func LogoutHandler(sessions *SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			sessions.Delete(cookie.Value)
		}
		clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

// AuthStatusHandler reports whether a calendar credential is loaded.
func AuthStatusHandler(creds CredentialManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{
			"authenticated": creds.IsAuthenticated(),
		})
	}
}

// AuthURLHandler returns the Google consent URL.
func AuthURLHandler(creds CredentialManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"url": creds.ConsentURL(),
		})
	}
}

// AuthCallbackHandler exchanges the authorization code delivered by the
// consent redirect. Success lands back on the dashboard; failure is a
// plain 500, the code is single-use and must not be re-submitted.
func AuthCallbackHandler(creds CredentialManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if state := r.URL.Query().Get("state"); state != "" && state != creds.State() {
			http.Error(w, "Invalid state token", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			return
		}

		if err := creds.ExchangeCode(r.Context(), code); err != nil {
			log.Printf("❌ Authorization code exchange failed: %v", err)
			http.Error(w, "Authentication failed", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// TodayEventsHandler serves the enriched event list for today. The
// response is all-or-nothing: any unrecovered failure is a generic 500.
func TodayEventsHandler(svc TodayService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.FetchToday(r.Context())
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case errors.Is(err, today.ErrNotAuthenticated), errors.Is(err, today.ErrCredentialExpired):
				log.Printf("🔒 Events request needs re-authorization: %v", err)
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
			default:
				log.Printf("❌ Failed to fetch events: %s", util.TruncateLog(err.Error(), 512))
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch events"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}
}
