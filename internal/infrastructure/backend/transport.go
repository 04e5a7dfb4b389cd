package backend

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/carddemo/portal/internal/core/ports"
)

// ErrNoToken is returned for outbound requests made while signed out.
var ErrNoToken = errors.New("backend: no access token available")

// BearerTransport attaches the current access token and a request id to every
// outbound request.
type BearerTransport struct {
	Tokens ports.TokenSource
	Base   http.RoundTripper
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := t.Tokens.AccessToken()
	if !ok {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, ErrNoToken
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+token)
	if out.Header.Get("X-Request-ID") == "" {
		out.Header.Set("X-Request-ID", uuid.NewString())
	}
	return t.base().RoundTrip(out)
}

func (t *BearerTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
