package domain

import (
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ScopeKind distinguishes own-records-only from all-records access.
type ScopeKind uint8

const (
	ScopeOwn ScopeKind = iota + 1
	ScopeAll
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeOwn:
		return "own"
	case ScopeAll:
		return "all"
	default:
		return "none"
	}
}

// AdminFilter is the narrowing an admin may request from a data screen.
// It is ignored entirely for customer identities.
type AdminFilter struct {
	CustomerID int64
	Search     string
	Page       int
	Size       int
}

// Scope is the set of backend records the current identity may query.
type Scope struct {
	kind       ScopeKind
	customerID int64
	search     string
	page       int
	size       int
}

// ResolveScope is the single access decision every data screen goes through.
// A customer always gets their own records, whatever filter was supplied; an
// admin gets everything, optionally narrowed by filter.
func ResolveScope(snap Snapshot, filter AdminFilter) (Scope, error) {
	if !snap.IsAuthenticated() {
		return Scope{}, ErrNotAuthenticated
	}

	id := snap.Identity
	switch id.Role() {
	case RoleCustomer:
		cid, _ := id.CustomerID()
		return Scope{kind: ScopeOwn, customerID: cid, size: DefaultPageSize}, nil
	case RoleAdmin:
		s := Scope{
			kind:   ScopeAll,
			search: strings.TrimSpace(filter.Search),
			page:   filter.Page,
			size:   filter.Size,
		}
		if filter.CustomerID > 0 {
			s.customerID = filter.CustomerID
		}
		if s.page < 0 {
			s.page = 0
		}
		if s.size <= 0 {
			s.size = DefaultPageSize
		}
		if s.size > MaxPageSize {
			s.size = MaxPageSize
		}
		return s, nil
	default:
		return Scope{}, ErrForbidden
	}
}

// OwnScope is the scope of a single customer. Used where the customer id comes
// from the identity itself.
func OwnScope(customerID int64) Scope {
	return Scope{kind: ScopeOwn, customerID: customerID, size: DefaultPageSize}
}

func (s Scope) Kind() ScopeKind { return s.kind }

// Owned reports whether the scope is restricted to the caller's own records.
func (s Scope) Owned() bool { return s.kind == ScopeOwn }

// CustomerID is the customer the scope is narrowed to: the caller for an own
// scope, the admin-selected customer otherwise.
func (s Scope) CustomerID() (int64, bool) {
	return s.customerID, s.customerID > 0
}

// Search is the admin free-text filter. Always empty for own scopes.
func (s Scope) Search() string { return s.search }

func (s Scope) Page() int { return s.page }

func (s Scope) Size() int { return s.size }

func (s Scope) String() string {
	switch {
	case s.kind == ScopeOwn:
		return fmt.Sprintf("own(customer=%d)", s.customerID)
	case s.customerID > 0:
		return fmt.Sprintf("all(customer=%d)", s.customerID)
	case s.search != "":
		return fmt.Sprintf("all(search=%q)", s.search)
	default:
		return fmt.Sprintf("all(page=%d,size=%d)", s.page, s.size)
	}
}
