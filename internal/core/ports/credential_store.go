package ports

import (
	"context"

	"github.com/carddemo/portal/internal/core/domain"
)

// CredentialStore persists the token pair and the cached identity across
// restarts. It has no validation or expiry logic of its own.
type CredentialStore interface {
	// Save writes all three keys atomically.
	Save(ctx context.Context, pair domain.CredentialPair, identity domain.Identity) error
	// Load returns nil, nil when nothing usable is stored, including when the
	// stored identity is corrupt. Errors are reserved for backend failures.
	Load(ctx context.Context) (*domain.StoredSession, error)
	// Clear removes all three keys. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Pinger is implemented by store backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
