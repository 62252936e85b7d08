package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileStore keeps the credential as a JSON file at a fixed path. Used in
// deployments with durable local storage.
type FileStore struct {
	Path string
}

// NewFileStore returns a file-backed store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("parse credential file: %w", err)
	}
	return &cred, nil
}

func (s *FileStore) Save(cred *Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	// 0600: the file holds live tokens.
	if err := os.WriteFile(s.Path, data, 0600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}
