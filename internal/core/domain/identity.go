package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxUserIDLength is the width of the legacy user-id field.
const MaxUserIDLength = 8

// Role is the coarse permission class fixed at login time.
type Role uint8

const (
	roleUnset Role = iota
	RoleAdmin
	RoleCustomer
)

// Wire codes used by the auth service (SEC-USR-TYPE).
const (
	roleCodeAdmin    = "A"
	roleCodeCustomer = "U"
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleCustomer:
		return "customer"
	default:
		return "unknown"
	}
}

// Code returns the single-letter wire representation.
func (r Role) Code() string {
	switch r {
	case RoleAdmin:
		return roleCodeAdmin
	case RoleCustomer:
		return roleCodeCustomer
	default:
		return ""
	}
}

// ParseRole maps a wire code to a Role.
func ParseRole(code string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case roleCodeAdmin:
		return RoleAdmin, nil
	case roleCodeCustomer:
		return RoleCustomer, nil
	default:
		return roleUnset, fmt.Errorf("%w: unknown user type %q", ErrInvalidIdentity, code)
	}
}

// Identity is the signed-in user as reported by the auth service.
//
// Role and customer id are unexported so that an Admin carrying a customer id,
// or a Customer without one, cannot be constructed outside this package.
type Identity struct {
	UserID    string
	FirstName string
	LastName  string
	SessionID string

	role       Role
	customerID int64
}

// NewAdminIdentity builds an Admin identity. Admins never carry a customer id.
func NewAdminIdentity(userID, firstName, lastName, sessionID string) (Identity, error) {
	return newIdentity(userID, firstName, lastName, sessionID, RoleAdmin, 0)
}

// NewCustomerIdentity builds a Customer identity bound to customerID.
func NewCustomerIdentity(userID, firstName, lastName, sessionID string, customerID int64) (Identity, error) {
	return newIdentity(userID, firstName, lastName, sessionID, RoleCustomer, customerID)
}

func newIdentity(userID, firstName, lastName, sessionID string, role Role, customerID int64) (Identity, error) {
	uid := NormalizeUserID(userID)
	if uid == "" || len(uid) > MaxUserIDLength {
		return Identity{}, fmt.Errorf("%w: user id must be 1-%d characters", ErrInvalidIdentity, MaxUserIDLength)
	}
	switch role {
	case RoleAdmin:
		if customerID != 0 {
			return Identity{}, fmt.Errorf("%w: admin identity cannot carry a customer id", ErrInvalidIdentity)
		}
	case RoleCustomer:
		if customerID <= 0 {
			return Identity{}, fmt.Errorf("%w: customer identity requires a positive customer id", ErrInvalidIdentity)
		}
	default:
		return Identity{}, fmt.Errorf("%w: role is required", ErrInvalidIdentity)
	}
	return Identity{
		UserID:     uid,
		FirstName:  firstName,
		LastName:   lastName,
		SessionID:  sessionID,
		role:       role,
		customerID: customerID,
	}, nil
}

// NormalizeUserID trims and upper-cases a user id the way the auth service
// looks it up.
func NormalizeUserID(userID string) string {
	return strings.ToUpper(strings.TrimSpace(userID))
}

func (id Identity) Role() Role { return id.role }

func (id Identity) IsAdmin() bool { return id.role == RoleAdmin }

// CustomerID reports the owning customer; ok is false for admins.
func (id Identity) CustomerID() (int64, bool) {
	if id.role != RoleCustomer {
		return 0, false
	}
	return id.customerID, true
}

func (id Identity) FullName() string {
	return strings.TrimSpace(id.FirstName + " " + id.LastName)
}

// identityJSON is the wire shape shared by the login response and the
// persisted "user" blob.
type identityJSON struct {
	UserID     string `json:"userId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	UserType   string `json:"userType"`
	CustomerID *int64 `json:"customerId"`
	SessionID  string `json:"sessionId"`
}

func (id Identity) MarshalJSON() ([]byte, error) {
	if id.role == roleUnset {
		return nil, fmt.Errorf("%w: cannot encode identity without a role", ErrInvalidIdentity)
	}
	wire := identityJSON{
		UserID:    id.UserID,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		UserType:  id.role.Code(),
		SessionID: id.SessionID,
	}
	if cid, ok := id.CustomerID(); ok {
		wire.CustomerID = &cid
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes and validates an identity. A payload that breaks the
// role/customer invariant is rejected with ErrInvalidIdentity.
func (id *Identity) UnmarshalJSON(data []byte) error {
	var wire identityJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	role, err := ParseRole(wire.UserType)
	if err != nil {
		return err
	}

	var parsed Identity
	switch role {
	case RoleAdmin:
		if wire.CustomerID != nil && *wire.CustomerID != 0 {
			return fmt.Errorf("%w: admin identity cannot carry a customer id", ErrInvalidIdentity)
		}
		parsed, err = NewAdminIdentity(wire.UserID, wire.FirstName, wire.LastName, wire.SessionID)
	case RoleCustomer:
		if wire.CustomerID == nil {
			return fmt.Errorf("%w: customer identity requires a customer id", ErrInvalidIdentity)
		}
		parsed, err = NewCustomerIdentity(wire.UserID, wire.FirstName, wire.LastName, wire.SessionID, *wire.CustomerID)
	}
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
