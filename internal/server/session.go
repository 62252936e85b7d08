// Package server holds the HTTP surface: the password session gate, the
// OAuth bootstrap routes and the events API.
package server

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the browser cookie carrying the session ID.
const SessionCookie = "dashboard_session"

// SessionStore tracks password-authenticated sessions in memory. Sessions
// do not survive a restart; the user just logs in again.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time // session ID -> expiry
	ttl      time.Duration
}

// NewSessionStore returns a store whose sessions live for ttl. A cleanup
// goroutine drops expired entries once a minute.
func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]time.Time),
		ttl:      ttl,
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			s.cleanup()
		}
	}()

	return s
}

// Create registers a new session and returns its ID.
func (s *SessionStore) Create() string {
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = time.Now().Add(s.ttl)
	s.mu.Unlock()
	return id
}

// Valid reports whether the session exists and has not expired.
func (s *SessionStore) Valid(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.sessions[id]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(s.sessions, id)
		return false
	}
	return true
}

// Delete removes a session (logout).
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *SessionStore) cleanup() {
	now := time.Now()
	s.mu.Lock()
	for id, expiry := range s.sessions {
		if now.After(expiry) {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
}

// PasswordMatches compares the submitted password in constant time.
func PasswordMatches(submitted, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(expected)) == 1
}

func setSessionCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
