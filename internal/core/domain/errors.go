package domain

import "errors"

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAlreadyAuthenticated   = errors.New("session already authenticated")
	ErrSuperseded             = errors.New("operation superseded by a newer session operation")
	ErrNotAuthenticated       = errors.New("not authenticated")
	ErrForbidden              = errors.New("access forbidden")
	ErrCustomerFilterRequired = errors.New("customer filter required")
	ErrInvalidIdentity        = errors.New("invalid identity")
)

// GenericLoginFailure is surfaced when the auth service gives no message.
const GenericLoginFailure = "Login failed"

// LoginError is a credential rejection carrying the message to show the user.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string {
	if e.Message == "" {
		return GenericLoginFailure
	}
	return e.Message
}

func (e *LoginError) Unwrap() error { return ErrInvalidCredentials }
