package ports

import (
	"context"

	"github.com/carddemo/portal/internal/core/domain"
)

// SnapshotSource is the read side of the session, used by the route guard.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

// TokenSource supplies the bearer token for outbound backend requests.
type TokenSource interface {
	AccessToken() (string, bool)
}

// SessionService is the session state machine.
type SessionService interface {
	SnapshotSource
	TokenSource
	Initialize(ctx context.Context) domain.Snapshot
	Login(ctx context.Context, userID, password string) error
	Logout(ctx context.Context)
}
