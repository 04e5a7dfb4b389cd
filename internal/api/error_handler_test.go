package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/infrastructure/backend"
)

func TestResolveError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "bad"), http.StatusBadRequest, "bad"},
		{"login rejected", &domain.LoginError{Message: "Invalid password"}, http.StatusUnauthorized, "Invalid password"},
		{"not authenticated", domain.ErrNotAuthenticated, http.StatusUnauthorized, "not authenticated"},
		{"no token", fmt.Errorf("backend /x: %w", backend.ErrNoToken), http.StatusUnauthorized, "not authenticated"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"filter required", domain.ErrCustomerFilterRequired, http.StatusBadRequest, "customerId is required"},
		{"already authenticated", domain.ErrAlreadyAuthenticated, http.StatusConflict, domain.ErrAlreadyAuthenticated.Error()},
		{"backend message", fmt.Errorf("accounts: %w", &backend.APIError{Status: 404, Path: "/a", Message: "Account not found"}), http.StatusNotFound, "Account not found"},
		{"backend bare", &backend.APIError{Status: 502, Path: "/a"}, http.StatusBadGateway, "Bad Gateway"},
		{"unknown", errors.New("kaboom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			code, msg := resolveError(tt.err, zerolog.Nop(), c)
			if code != tt.wantCode || msg != tt.wantMsg {
				t.Fatalf("got (%d, %q), want (%d, %q)", code, msg, tt.wantCode, tt.wantMsg)
			}
		})
	}
}
