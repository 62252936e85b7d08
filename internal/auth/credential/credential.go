// Package credential owns the OAuth credential lifecycle: acquisition via
// the consent code exchange, persistence through a swappable Store, and
// reactive refresh when the remote service rejects the access token.
package credential

import (
	"time"

	"golang.org/x/oauth2"
)

// Credential is the persisted OAuth token pair. The refresh token is only
// present after a consent grant; without it the credential cannot be
// renewed once the access token expires.
type Credential struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

// Renewable reports whether the credential carries a refresh token.
func (c *Credential) Renewable() bool {
	return c.RefreshToken != ""
}

// Token converts the credential into an oauth2 token.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

func fromToken(t *oauth2.Token) *Credential {
	return &Credential{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
}
