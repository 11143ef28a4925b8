// Package storage provides the key-value persistence the client keeps its
// bearer token and cached user record in. It plays the part browser local
// storage plays for the web frontend.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Well-known keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Store is a string key-value store. Deleting an absent key is not an error.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Backend names accepted by Open.
const (
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendSQLite  = "sqlite"
	BackendMemory  = "memory"
)

// Stores groups the store holding the token and the store holding the cached
// user record. They may be the same store.
type Stores struct {
	Tokens Store
	Users  Store

	closers []func() error
}

// Close releases any resources held by the underlying backends.
func (s *Stores) Close() error {
	for _, c := range s.closers {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

// Open builds the stores for the named backend. The keyring backend keeps the
// token in the OS credential manager and the user record in a JSON file under
// dir, since the record is not a secret.
func Open(backend, dir string) (*Stores, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	switch strings.ToLower(backend) {
	case "", BackendKeyring:
		return &Stores{
			Tokens: NewKeyring(KeyringService),
			Users:  NewFile(filepath.Join(dir, fileName)),
		}, nil
	case BackendFile:
		f := NewFile(filepath.Join(dir, fileName))
		return &Stores{Tokens: f, Users: f}, nil
	case BackendSQLite:
		db, err := NewSQLite(filepath.Join(dir, sqliteName))
		if err != nil {
			return nil, err
		}
		return &Stores{Tokens: db, Users: db, closers: []func() error{db.Close}}, nil
	case BackendMemory:
		m := NewMemory()
		return &Stores{Tokens: m, Users: m}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want keyring, file, sqlite or memory)", backend)
	}
}

// DefaultDir returns ~/.config/tanami
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", dirName), nil
}

const (
	dirName    = "tanami"
	fileName   = "storage.json"
	sqliteName = "storage.sqlite"
)
