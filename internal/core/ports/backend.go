package ports

import (
	"context"
	"net/url"
)

// Query is a single read against the banking backend services.
type Query struct {
	Path   string
	Params url.Values
}

// String renders the query as a request URI (path plus encoded params).
func (q Query) String() string {
	if len(q.Params) == 0 {
		return q.Path
	}
	return q.Path + "?" + q.Params.Encode()
}

// Backend performs bearer-authenticated calls against the banking services.
type Backend interface {
	// Get decodes the JSON response body of q into out.
	Get(ctx context.Context, q Query, out any) error
	// Post sends body as JSON to path and decodes the response into out.
	// A nil out discards the response body.
	Post(ctx context.Context, path string, body, out any) error
}
