// Package session provides the durable backends for the persisted
// (credential, identity) pair. Each backend stores exactly two entries: the
// raw token string and the JSON-encoded identity, mirroring the storage
// contract the session service expects.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// FileStore persists the session under a directory, one file per entry.
// Files are written 0600: the token is a live credential.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// DefaultDir returns the per-user session directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "projecthub"), nil
}

func (s *FileStore) Save(_ context.Context, token string, identityJSON []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFile), identityJSON, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) (string, []byte, error) {
	token, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, domain.ErrSessionNotFound
		}
		return "", nil, fmt.Errorf("read token: %w", err)
	}

	identityJSON, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, domain.ErrSessionNotFound
		}
		return "", nil, fmt.Errorf("read identity: %w", err)
	}

	return string(token), identityJSON, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
