package ports

import (
	"context"
	"encoding/json"

	"github.com/carddemo/portal/internal/core/domain"
)

// AuthorizationView selects which pending authorizations a screen shows.
type AuthorizationView string

const (
	AuthorizationViewAll      AuthorizationView = "all"
	AuthorizationViewFraud    AuthorizationView = "fraud"
	AuthorizationViewHighRisk AuthorizationView = "high-risk"
)

// ScreenResult is the data a screen renders, keyed by section
// (e.g. "accounts", "summary").
type ScreenResult struct {
	Scope    string                     `json:"scope"`
	Sections map[string]json.RawMessage `json:"sections"`
}

// ScreenService loads screen data for an already-resolved scope. Nothing in
// it looks at the session; the scope is the only input that decides which
// records are requested.
type ScreenService interface {
	Accounts(ctx context.Context, scope domain.Scope) (*ScreenResult, error)
	Cards(ctx context.Context, scope domain.Scope) (*ScreenResult, error)
	Transactions(ctx context.Context, scope domain.Scope) (*ScreenResult, error)
	BillPayments(ctx context.Context, scope domain.Scope) (*ScreenResult, error)
	Authorizations(ctx context.Context, scope domain.Scope, view AuthorizationView) (*ScreenResult, error)
	Reports(ctx context.Context, scope domain.Scope) (*ScreenResult, error)
}
