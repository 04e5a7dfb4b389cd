package handler

import "github.com/carddemo/portal/internal/core/domain"

type userView struct {
	UserID     string `json:"userId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	FullName   string `json:"fullName"`
	Role       string `json:"role"`
	UserType   string `json:"userType"`
	CustomerID *int64 `json:"customerId"`
	SessionID  string `json:"sessionId,omitempty"`
}

// sessionView is the JSON shape of a session snapshot. Tokens are never
// included.
type sessionView struct {
	Status          string    `json:"status"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	IsAdmin         bool      `json:"isAdmin"`
	Loading         bool      `json:"loading"`
	Error           string    `json:"error,omitempty"`
	User            *userView `json:"user,omitempty"`
}

func toSessionView(snap domain.Snapshot) sessionView {
	v := sessionView{
		Status:          snap.Status.String(),
		IsAuthenticated: snap.IsAuthenticated(),
		IsAdmin:         snap.IsAdmin(),
		Loading:         snap.Loading,
		Error:           snap.LastError,
	}
	if snap.IsAuthenticated() {
		id := snap.Identity
		u := &userView{
			UserID:    id.UserID,
			FirstName: id.FirstName,
			LastName:  id.LastName,
			FullName:  id.FullName(),
			Role:      id.Role().String(),
			UserType:  id.Role().Code(),
			SessionID: id.SessionID,
		}
		if cid, ok := id.CustomerID(); ok {
			u.CustomerID = &cid
		}
		v.User = u
	}
	return v
}
