package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/portal/internal/core/ports"
)

// HealthHandler handles GET /health, the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready. The portal is ready once the
// credential backend answers and startup validation has settled.
type ReadinessHandler struct {
	store    ports.Pinger
	sessions ports.SnapshotSource
}

// NewReadinessHandler takes a nil store for backends with nothing to ping.
func NewReadinessHandler(store ports.Pinger, sessions ports.SnapshotSource) *ReadinessHandler {
	return &ReadinessHandler{store: store, sessions: sessions}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	// --- Credential store ---
	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			deps["credential_store"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
		} else {
			deps["credential_store"] = dependencyStatus{Status: "ok"}
		}
	}

	// --- Session startup ---
	if st := h.sessions.Snapshot().Status; st.Settled() {
		deps["session"] = dependencyStatus{Status: "ok"}
	} else {
		deps["session"] = dependencyStatus{Status: st.String()}
		healthy = false
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
