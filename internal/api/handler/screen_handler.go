package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
	"github.com/carddemo/portal/internal/pkg/metrics"
)

// ScreenHandler serves the data screens. Every screen resolves its scope from
// the guard's snapshot before anything is fetched.
type ScreenHandler struct {
	screens ports.ScreenService
}

func NewScreenHandler(screens ports.ScreenService) *ScreenHandler {
	return &ScreenHandler{screens: screens}
}

// adminFilter reads the optional admin narrowing from the query string.
// Malformed numbers are dropped rather than rejected: for customers the whole
// filter is ignored anyway.
func adminFilter(c echo.Context) domain.AdminFilter {
	return domain.AdminFilter{
		CustomerID: queryInt64(c, "customerId"),
		Search:     strings.TrimSpace(c.QueryParam("search")),
		Page:       int(queryInt64(c, "page")),
		Size:       int(queryInt64(c, "size")),
	}
}

func queryInt64(c echo.Context, name string) int64 {
	n, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (h *ScreenHandler) scope(c echo.Context, screen string) (domain.Scope, error) {
	return resolveScope(c, screen, adminFilter(c))
}

// resolveScope applies the access policy to the guard's snapshot. For
// customers filter has no effect.
func resolveScope(c echo.Context, screen string, filter domain.AdminFilter) (domain.Scope, error) {
	snap, err := ctxSnapshot(c)
	if err != nil {
		return domain.Scope{}, err
	}
	scope, err := domain.ResolveScope(snap, filter)
	if err != nil {
		return domain.Scope{}, err
	}
	metrics.ScopeResolutionsTotal.WithLabelValues(screen, scope.Kind().String()).Inc()
	return scope, nil
}

type screenLoader func(c echo.Context, scope domain.Scope) (*ports.ScreenResult, error)

func (h *ScreenHandler) serve(c echo.Context, screen string, load screenLoader) error {
	scope, err := h.scope(c, screen)
	if err != nil {
		return err
	}
	res, err := load(c, scope)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Accounts lists accounts within the caller's scope.
//
// @Summary      Accounts screen
// @Tags         screens
// @Produce      json
// @Param        customerId  query     int     false  "Admin only: narrow to one customer"
// @Param        search      query     string  false  "Admin only: search by name"
// @Param        page        query     int     false  "Admin only: page (0-based)"
// @Param        size        query     int     false  "Admin only: page size (max 100)"
// @Success      200  {object}  ports.ScreenResult
// @Router       /accounts [get]
func (h *ScreenHandler) Accounts(c echo.Context) error {
	return h.serve(c, "accounts", func(c echo.Context, s domain.Scope) (*ports.ScreenResult, error) {
		return h.screens.Accounts(c.Request().Context(), s)
	})
}

// Cards lists cards within the caller's scope.
//
// @Summary      Cards screen
// @Tags         screens
// @Produce      json
// @Param        customerId  query     int     false  "Admin only: narrow to one customer"
// @Param        search      query     string  false  "Admin only: search by name"
// @Success      200  {object}  ports.ScreenResult
// @Router       /cards [get]
func (h *ScreenHandler) Cards(c echo.Context) error {
	return h.serve(c, "cards", func(c echo.Context, s domain.Scope) (*ports.ScreenResult, error) {
		return h.screens.Cards(c.Request().Context(), s)
	})
}

// Transactions lists transactions within the caller's scope.
//
// @Summary      Transactions screen
// @Tags         screens
// @Produce      json
// @Param        customerId  query     int     false  "Admin only: narrow to one customer"
// @Param        search      query     string  false  "Admin only: search term"
// @Success      200  {object}  ports.ScreenResult
// @Router       /transactions [get]
func (h *ScreenHandler) Transactions(c echo.Context) error {
	return h.serve(c, "transactions", func(c echo.Context, s domain.Scope) (*ports.ScreenResult, error) {
		return h.screens.Transactions(c.Request().Context(), s)
	})
}

// BillPayments shows payees and payments of one customer.
//
// @Summary      Bill payment screen
// @Tags         screens
// @Produce      json
// @Param        customerId  query     int  false  "Required for admins"
// @Success      200  {object}  ports.ScreenResult
// @Failure      400  {object}  map[string]string
// @Router       /bill-payments [get]
func (h *ScreenHandler) BillPayments(c echo.Context) error {
	return h.serve(c, "bill-payments", func(c echo.Context, s domain.Scope) (*ports.ScreenResult, error) {
		return h.screens.BillPayments(c.Request().Context(), s)
	})
}

// Authorizations lists pending authorizations.
//
// @Summary      Pending authorizations screen
// @Tags         screens
// @Produce      json
// @Param        view        query     string  false  "all, fraud or high-risk"
// @Param        customerId  query     int     false  "Admin only: narrow to one customer"
// @Success      200  {object}  ports.ScreenResult
// @Failure      400  {object}  map[string]string
// @Router       /authorizations [get]
func (h *ScreenHandler) Authorizations(c echo.Context) error {
	view := ports.AuthorizationView(c.QueryParam("view"))
	switch view {
	case "":
		view = ports.AuthorizationViewAll
	case ports.AuthorizationViewAll, ports.AuthorizationViewFraud, ports.AuthorizationViewHighRisk:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "view must be one of: all, fraud, high-risk")
	}
	return h.serve(c, "authorizations", func(c echo.Context, s domain.Scope) (*ports.ScreenResult, error) {
		return h.screens.Authorizations(c.Request().Context(), s, view)
	})
}

// Reports shows the admin summaries.
//
// @Summary      Reports screen
// @Tags         screens
// @Produce      json
// @Success      200  {object}  ports.ScreenResult
// @Failure      403  {object}  map[string]string
// @Router       /reports [get]
func (h *ScreenHandler) Reports(c echo.Context) error {
	return h.serve(c, "reports", func(c echo.Context, s domain.Scope) (*ports.ScreenResult, error) {
		return h.screens.Reports(c.Request().Context(), s)
	})
}
