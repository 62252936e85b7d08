package server

import "net/http"

// RequireSession gates routes behind the password session. Browsers
// without a valid session are redirected to the login page; API callers
// get a bare 401. The login and auth bootstrap routes must not sit behind
// this middleware.
func RequireSession(sessions *SessionStore) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookie); err == nil && sessions.Valid(cookie.Value) {
				next.ServeHTTP(w, r)
				return
			}

			if wantsJSON(r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "Login required"}`))
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
		})
	}
}

func wantsJSON(r *http.Request) bool {
	return len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/"
}
