package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/portal/internal/api/middleware"
	"github.com/carddemo/portal/internal/core/domain"
)

// ctxSnapshot returns the snapshot the route guard decided on. Handlers must
// use it rather than re-reading the session so that a request is answered
// from a single consistent view.
func ctxSnapshot(c echo.Context) (domain.Snapshot, error) {
	snap, ok := middleware.SnapshotFrom(c)
	if !ok || !snap.IsAuthenticated() {
		return domain.Snapshot{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return snap, nil
}
