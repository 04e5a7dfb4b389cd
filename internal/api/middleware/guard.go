package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
	"github.com/carddemo/portal/internal/pkg/metrics"
)

const snapshotKey = "session"

// Variant selects which side of the sign-in boundary a route lives on.
type Variant uint8

const (
	// VariantProtected routes need a signed-in session.
	VariantProtected Variant = iota + 1
	// VariantPublic routes (the sign-in screen) are for signed-out users only.
	VariantPublic
)

func (v Variant) String() string {
	if v == VariantPublic {
		return "public"
	}
	return "protected"
}

// Decision is what the guard does with a request.
type Decision uint8

const (
	DecisionPlaceholder Decision = iota + 1
	DecisionRender
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionPlaceholder:
		return "placeholder"
	case DecisionRender:
		return "render"
	default:
		return "redirect"
	}
}

// Decide maps a route variant and session status to a guard decision. While
// the session is unsettled every route shows the placeholder; once settled
// exactly one of render and redirect applies.
func Decide(v Variant, status domain.SessionStatus) Decision {
	if !status.Settled() {
		return DecisionPlaceholder
	}
	authed := status == domain.StatusAuthenticated
	if (v == VariantProtected) == authed {
		return DecisionRender
	}
	return DecisionRedirect
}

type placeholderResponse struct {
	Status string `json:"status"`
}

// Protected lets signed-in sessions through and redirects everyone else to
// signInPath. The snapshot the decision was made on is stored in the context.
func Protected(src ports.SnapshotSource, signInPath string) echo.MiddlewareFunc {
	return guard(src, VariantProtected, signInPath)
}

// Public lets signed-out sessions through and redirects signed-in ones to
// landingPath.
func Public(src ports.SnapshotSource, landingPath string) echo.MiddlewareFunc {
	return guard(src, VariantPublic, landingPath)
}

func guard(src ports.SnapshotSource, v Variant, redirectTo string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := src.Snapshot()
			d := Decide(v, snap.Status)
			metrics.GuardDecisionsTotal.WithLabelValues(v.String(), d.String()).Inc()

			switch d {
			case DecisionPlaceholder:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, placeholderResponse{Status: "loading"})
			case DecisionRedirect:
				return c.Redirect(http.StatusSeeOther, redirectTo)
			}

			c.Set(snapshotKey, snap)
			return next(c)
		}
	}
}

// SnapshotFrom returns the snapshot stored by Protected or Public.
func SnapshotFrom(c echo.Context) (domain.Snapshot, bool) {
	snap, ok := c.Get(snapshotKey).(domain.Snapshot)
	return snap, ok
}
