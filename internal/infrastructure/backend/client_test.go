package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carddemo/portal/internal/core/ports"
)

type stubTokens struct {
	token string
}

func (s stubTokens) AccessToken() (string, bool) {
	return s.token, s.token != ""
}

func TestGet_AttachesBearerAndDecodes(t *testing.T) {
	var auth, reqID, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		reqID = r.Header.Get("X-Request-ID")
		query = r.URL.RequestURI()
		_, _ = w.Write([]byte(`{"content":[1,2]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, stubTokens{token: "acc"}, time.Second)
	var out json.RawMessage
	q := ports.Query{Path: "/api/v1/accounts", Params: map[string][]string{"page": {"0"}, "size": {"20"}}}
	if err := c.Get(context.Background(), q, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if auth != "Bearer acc" {
		t.Errorf("expected bearer header, got %q", auth)
	}
	if reqID == "" {
		t.Error("expected request id")
	}
	if query != "/api/v1/accounts?page=0&size=20" {
		t.Errorf("unexpected request uri %q", query)
	}
	if string(out) != `{"content":[1,2]}` {
		t.Errorf("unexpected body %s", out)
	}
}

func TestGet_SignedOutNeverReachesBackend(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, stubTokens{}, time.Second)
	var out any
	err := c.Get(context.Background(), ports.Query{Path: "/api/v1/cards"}, &out)
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatal("request must not be sent without a token")
	}
}

func TestGet_APIErrorKeepsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Customer not found: 99"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, stubTokens{token: "acc"}, time.Second)
	var out any
	err := c.Get(context.Background(), ports.Query{Path: "/api/v1/accounts/customer/99"}, &out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "Customer not found: 99" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestBearerTransport_DoesNotMutateRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	rt := &BearerTransport{Tokens: stubTokens{token: "acc"}}
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if req.Header.Get("Authorization") != "" {
		t.Fatal("caller's request was modified")
	}
}

func TestPost_SendsJSONWithBearer(t *testing.T) {
	var method, auth, ctype string
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		auth = r.Header.Get("Authorization")
		ctype = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"paymentId":9}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, stubTokens{token: "acc"}, time.Second)
	var out json.RawMessage
	if err := c.Post(context.Background(), "/api/v1/bill-payments", map[string]any{"payeeId": 3}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if method != http.MethodPost || auth != "Bearer acc" || ctype != "application/json" {
		t.Errorf("unexpected request: method=%s auth=%q content-type=%q", method, auth, ctype)
	}
	if got["payeeId"] != float64(3) {
		t.Errorf("unexpected body %v", got)
	}
	if string(out) != `{"paymentId":9}` {
		t.Errorf("unexpected response %s", out)
	}
}

func TestPost_EmptyResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, stubTokens{token: "acc"}, time.Second)
	var out json.RawMessage
	if err := c.Post(context.Background(), "/api/v1/bill-payments/5/cancel", struct{}{}, &out); err != nil {
		t.Fatalf("empty body must not be an error, got %v", err)
	}
	if err := c.Post(context.Background(), "/api/v1/bill-payments/5/cancel", struct{}{}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
