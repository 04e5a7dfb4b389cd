package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carddemo/portal/internal/core/domain"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func readiness(t *testing.T, h *ReadinessHandler) (int, readinessResponse) {
	t.Helper()
	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, resp
}

func TestLiveness(t *testing.T) {
	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	settled := fixedSnapshot{domain.UnauthenticatedSnapshot("")}

	code, resp := readiness(t, NewReadinessHandler(stubPinger{}, settled))
	if code != http.StatusOK || resp.Status != "ok" {
		t.Fatalf("expected ready, got %d %+v", code, resp)
	}

	code, resp = readiness(t, NewReadinessHandler(stubPinger{err: errors.New("conn refused")}, settled))
	if code != http.StatusServiceUnavailable || resp.Dependencies["credential_store"].Status != "unhealthy" {
		t.Fatalf("expected degraded store, got %d %+v", code, resp)
	}

	code, resp = readiness(t, NewReadinessHandler(nil, fixedSnapshot{domain.Snapshot{Status: domain.StatusValidating}}))
	if code != http.StatusServiceUnavailable || resp.Dependencies["session"].Status != "validating" {
		t.Fatalf("expected not ready while validating, got %d %+v", code, resp)
	}
	if _, ok := resp.Dependencies["credential_store"]; ok {
		t.Fatal("nil store must not be reported")
	}
}
