package today

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated means no credential is loaded; the caller should
// prompt re-authorization.
var ErrNotAuthenticated = errors.New("not authenticated with the calendar service")

// ErrCredentialExpired means the credential was rejected and the refresh
// path is exhausted; the user must restart the consent flow.
var ErrCredentialExpired = errors.New("credential expired and could not be refreshed")

// FetchError wraps any non-authorization calendar failure (network error,
// malformed response, non-auth error status). Never retried.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch calendar events: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
