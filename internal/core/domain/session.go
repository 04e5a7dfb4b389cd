package domain

// SessionStatus is the lifecycle state of the portal session.
type SessionStatus uint8

const (
	StatusUnknown SessionStatus = iota
	StatusValidating
	StatusAuthenticated
	StatusUnauthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case StatusValidating:
		return "validating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Settled reports whether startup validation has finished.
func (s SessionStatus) Settled() bool {
	return s == StatusAuthenticated || s == StatusUnauthenticated
}

// Snapshot is a point-in-time copy of the session. Identity is non-nil iff
// Status is StatusAuthenticated.
type Snapshot struct {
	Status    SessionStatus
	Identity  *Identity
	LastError string
	Loading   bool
}

// UnknownSnapshot is the state before Initialize runs.
func UnknownSnapshot() Snapshot {
	return Snapshot{Status: StatusUnknown}
}

// AuthenticatedSnapshot settles on id. The identity is copied.
func AuthenticatedSnapshot(id Identity) Snapshot {
	return Snapshot{Status: StatusAuthenticated, Identity: &id}
}

// UnauthenticatedSnapshot settles signed out with an optional error message.
func UnauthenticatedSnapshot(lastError string) Snapshot {
	return Snapshot{Status: StatusUnauthenticated, LastError: lastError}
}

func (s Snapshot) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

func (s Snapshot) IsAdmin() bool {
	return s.IsAuthenticated() && s.Identity.IsAdmin()
}

// CustomerID is the signed-in customer's id; ok is false for admins and
// signed-out sessions.
func (s Snapshot) CustomerID() (int64, bool) {
	if !s.IsAuthenticated() {
		return 0, false
	}
	return s.Identity.CustomerID()
}
