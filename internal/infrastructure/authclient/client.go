// Package authclient talks to the CardDemo auth service: login, logout and
// token validation.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10

	loginPath    = "/api/v1/auth/login"
	logoutPath   = "/api/v1/auth/logout"
	validatePath = "/api/v1/auth/validate"
)

// StatusError is a non-2xx answer from the auth service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth service: status %d", e.Code)
	}
	return fmt.Sprintf("auth service: status %d: %s", e.Code, e.Message)
}

// Client implements ports.AuthGateway over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.AuthGateway = (*Client)(nil)

// NewClient returns a client for the auth service at baseURL. A nil
// httpClient gets one with a default timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         domain.Identity `json:"user"`
}

type validateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type errorBody struct {
	Message string `json:"message"`
}

// Login returns a *domain.LoginError when the auth service answers with a
// non-2xx status; its message is the response's "message" field, if any.
func (c *Client) Login(ctx context.Context, userID, password string) (*ports.LoginResult, error) {
	raw, err := json.Marshal(loginRequest{UserID: userID, Password: password})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, loginPath, "", raw)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.LoginError{Message: readMessage(resp.Body)}
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("login: decode response: %w", err)
	}
	if body.User.UserID == "" {
		return nil, fmt.Errorf("login: %w: response has no user", domain.ErrInvalidIdentity)
	}
	return &ports.LoginResult{
		Credentials: domain.CredentialPair{AccessToken: body.AccessToken, RefreshToken: body.RefreshToken},
		Identity:    body.User,
	}, nil
}

func (c *Client) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodPost, logoutPath, accessToken, []byte("{}"))
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// validate reports the auth service's verdict. Transport failures come back
// unwrapped so callers can tell them apart from a *StatusError.
func (c *Client) validate(ctx context.Context, accessToken string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, validatePath, accessToken, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, &StatusError{Code: resp.StatusCode, Message: readMessage(resp.Body)}
	}
	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, &StatusError{Code: resp.StatusCode, Message: "undecodable validate response"}
	}
	return body.Valid, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.httpClient.Do(req)
}

// readMessage extracts the "message" field of an error body, or "".
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}

func isStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
