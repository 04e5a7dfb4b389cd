// Package file keeps the session keys in a JSON file on local disk, one
// entry per profile.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
)

const fileMode = 0o600

// contents is the on-disk layout: profile -> storage key -> value.
type contents map[string]map[string]string

// CredentialStore is safe for use by one process. Writes go to a temp file in
// the same directory and are renamed over the previous file.
type CredentialStore struct {
	path    string
	profile string
	mu      sync.Mutex
}

var (
	_ ports.CredentialStore = (*CredentialStore)(nil)
	_ ports.Pinger          = (*CredentialStore)(nil)
)

func NewCredentialStore(path, profile string) *CredentialStore {
	if profile == "" {
		profile = "default"
	}
	return &CredentialStore{path: path, profile: profile}
}

func (s *CredentialStore) Save(_ context.Context, pair domain.CredentialPair, identity domain.Identity) error {
	values, err := domain.EncodeStoredSession(pair, identity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		all = contents{}
	}
	all[s.profile] = values
	return s.write(all)
}

// Load treats an unreadable or corrupt file like an empty one.
func (s *CredentialStore) Load(_ context.Context) (*domain.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	stored, ok := domain.DecodeStoredSession(all[s.profile])
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func (s *CredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		// A corrupt file holds nothing worth keeping.
		all = contents{}
	}
	delete(all, s.profile)

	if len(all) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("clear credentials: %w", err)
		}
		return nil
	}
	return s.write(all)
}

// Ping checks that the directory holding the file is usable.
func (s *CredentialStore) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

func (s *CredentialStore) read() (contents, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var all contents
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	if all == nil {
		all = contents{}
	}
	return all, nil
}

func (s *CredentialStore) write(all contents) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(all); err != nil {
		tmp.Close()
		return fmt.Errorf("save credentials: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("save credentials: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("save credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}
