// Package memory is a process-local credential store. Sessions do not survive
// a restart; used for tests and CREDENTIAL_BACKEND=memory.
package memory

import (
	"context"
	"sync"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
)

type CredentialStore struct {
	mu     sync.Mutex
	values map[string]string
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func (s *CredentialStore) Save(_ context.Context, pair domain.CredentialPair, identity domain.Identity) error {
	values, err := domain.EncodeStoredSession(pair, identity)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

func (s *CredentialStore) Load(_ context.Context) (*domain.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := domain.DecodeStoredSession(s.values)
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func (s *CredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.values = nil
	s.mu.Unlock()
	return nil
}
