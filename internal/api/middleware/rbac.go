package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/portal/internal/core/domain"
)

// RequireRole enforces role-based access control on top of Protected.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap, ok := SnapshotFrom(c)
			if !ok || !snap.IsAuthenticated() {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			if _, ok := allowed[snap.Identity.Role()]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
