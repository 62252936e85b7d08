package credential

import (
	"encoding/json"
	"fmt"
	"log"
)

// EnvStore reads the credential once from an externally-managed
// configuration value (typically the TOKEN_DATA environment variable).
// Save does not rewrite the source: deployments without durable local
// storage cannot self-persist a refreshed token, so the refreshed
// credential is logged for manual operator update instead.
type EnvStore struct {
	raw string
}

// NewEnvStore returns a store over the externally-supplied value. An empty
// value means no credential has been provisioned yet.
func NewEnvStore(value string) *EnvStore {
	return &EnvStore{raw: value}
}

func (s *EnvStore) Load() (*Credential, error) {
	if s.raw == "" {
		return nil, ErrNotFound
	}

	var cred Credential
	if err := json.Unmarshal([]byte(s.raw), &cred); err != nil {
		return nil, fmt.Errorf("parse TOKEN_DATA: %w", err)
	}
	return &cred, nil
}

func (s *EnvStore) Save(cred *Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	log.Printf("🔑 Credential updated in external-value mode. Update the TOKEN_DATA environment variable with:")
	log.Printf("%s", string(data))
	return nil
}
