package credential

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRefreshToken means the credential cannot be renewed: the access
// token is the only thing we hold, and once the remote service rejects it
// the user must re-run the consent flow.
var ErrNoRefreshToken = errors.New("credential has no refresh token")

// ExchangeError reports a failed authorization code exchange. Codes are
// single-use, so the exchange is never retried; the user must restart the
// consent flow.
type ExchangeError struct {
	Err error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("authorization code exchange failed: %v", e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// isPermanentRefreshError distinguishes revoked/invalid grants (user must
// re-consent) from transient provider failures.
func isPermanentRefreshError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	permanentMarkers := []string{
		"invalid_grant",
		"invalid_client",
		"unauthorized_client",
		"token has been expired or revoked",
		"revoked",
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
