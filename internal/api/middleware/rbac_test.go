package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/portal/internal/core/domain"
)

func contextWith(t *testing.T, snap *domain.Snapshot) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if snap != nil {
		c.Set(snapshotKey, *snap)
	}
	return c, rec
}

func adminSnapshot(t *testing.T) domain.Snapshot {
	t.Helper()
	id, err := domain.NewAdminIdentity("admin001", "Ada", "Admin", "s")
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	return domain.AuthenticatedSnapshot(id)
}

func customerSnapshot(t *testing.T) domain.Snapshot {
	t.Helper()
	id, err := domain.NewCustomerIdentity("user0007", "Cy", "Cust", "s", 7)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	return domain.AuthenticatedSnapshot(id)
}

func TestRequireRole_Allows(t *testing.T) {
	snap := adminSnapshot(t)
	c, rec := contextWith(t, &snap)

	called := false
	handler := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	snap := customerSnapshot(t)
	signedOut := domain.UnauthenticatedSnapshot("")
	for name, s := range map[string]*domain.Snapshot{
		"customer":   &snap,
		"signed out": &signedOut,
		"no guard":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			c, rec := contextWith(t, s)
			handler := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})

			_ = handler(c)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
		})
	}
}
