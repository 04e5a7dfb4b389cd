package ports

import (
	"context"

	"github.com/carddemo/portal/internal/core/domain"
)

// LoginResult is a successful login as returned by the auth service.
type LoginResult struct {
	Credentials domain.CredentialPair
	Identity    domain.Identity
}

// AuthGateway talks to the remote auth service.
type AuthGateway interface {
	// Login returns a *domain.LoginError for credential rejections; any other
	// error is a transport failure.
	Login(ctx context.Context, userID, password string) (*LoginResult, error)
	// Logout revokes accessToken. Callers ignore the result.
	Logout(ctx context.Context, accessToken string) error
}

// SessionValidator asks the remote authority whether a token is still usable.
// Any failure to get an answer is reported as false.
type SessionValidator interface {
	Validate(ctx context.Context, accessToken string) bool
}
