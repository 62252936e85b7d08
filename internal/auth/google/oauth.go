// Package google builds the OAuth2 configuration for the Google Calendar API.
package google

import (
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

// Scopes required for reading calendar events. Read-only: the dashboard
// never writes to the calendar.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar.readonly",
}

// NewConfig returns the OAuth2 config for the registered client.
func NewConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     googleOAuth.Endpoint,
	}
}
