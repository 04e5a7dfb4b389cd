// Package backend calls the CardDemo banking services on behalf of the
// signed-in user.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carddemo/portal/internal/core/ports"
	"github.com/carddemo/portal/internal/pkg/metrics"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// APIError is a non-2xx answer from a backend service. Message is the
// response's "message" field when present.
type APIError struct {
	Status  int
	Path    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Path, e.Status, e.Message)
}

// Client implements ports.Backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.Backend = (*Client)(nil)

// NewClient returns a client whose requests carry the bearer token from tokens.
func NewClient(baseURL string, tokens ports.TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &BearerTransport{Tokens: tokens},
		},
	}
}

func (c *Client) Get(ctx context.Context, q ports.Query, out any) error {
	return c.do(ctx, http.MethodGet, q, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("backend %s: encode request: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, ports.Query{Path: path}, payload, out)
}

func (c *Client) do(ctx context.Context, method string, q ports.Query, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+q.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("backend %s: %w", q.Path, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestDuration.WithLabelValues(strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Path: q.Path, Message: readMessage(resp.Body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) && method != http.MethodGet {
			return nil
		}
		return fmt.Errorf("backend %s: decode response: %w", q.Path, err)
	}
	return nil
}

func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}
