package credential

import "errors"

// ErrNotFound is returned by Store.Load when no credential has been
// persisted yet. This is the expected cold-start condition, not a failure.
var ErrNotFound = errors.New("no stored credential")

// Store persists the single OAuth credential for this deployment.
type Store interface {
	Load() (*Credential, error)
	Save(*Credential) error
}
