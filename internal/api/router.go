package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/carddemo/portal/docs"
	"github.com/carddemo/portal/internal/api/handler"
	"github.com/carddemo/portal/internal/api/middleware"
	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions    ports.SessionService
	Screens     ports.ScreenService
	Bills       ports.BillPaymentService
	Store       ports.Pinger // optional
	Log         zerolog.Logger
	SignInPath  string
	LandingPath string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.SignInPath, d.LandingPath, d.Log)
	screenHandler := handler.NewScreenHandler(d.Screens)
	billHandler := handler.NewBillPaymentHandler(d.Bills)
	protected := middleware.Protected(d.Sessions, d.SignInPath)
	public := middleware.Public(d.Sessions, d.LandingPath)

	// --- Sign-in (signed-out users only) ---
	e.GET(d.SignInPath, authHandler.SignIn, public)
	e.POST(d.SignInPath, authHandler.Login, public)

	// --- Session ---
	e.POST("/logout", authHandler.Logout)
	e.GET("/session", authHandler.Session)

	// --- Screens (signed-in users only) ---
	e.GET(d.LandingPath, authHandler.Dashboard, protected)
	e.GET("/accounts", screenHandler.Accounts, protected)
	e.GET("/cards", screenHandler.Cards, protected)
	e.GET("/transactions", screenHandler.Transactions, protected)
	e.GET("/bill-payments", screenHandler.BillPayments, protected)
	e.POST("/bill-payments", billHandler.PayBill, protected)
	e.POST("/bill-payments/payees", billHandler.AddPayee, protected)
	e.POST("/bill-payments/:id/cancel", billHandler.CancelPayment, protected)
	e.GET("/authorizations", screenHandler.Authorizations, protected)
	e.GET("/reports", screenHandler.Reports, protected, middleware.RequireRole(domain.RoleAdmin))

	// --- Operations ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Store, d.Sessions)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – store reachable, session settled?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Everything else lands on the dashboard ---
	toLanding := func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, d.LandingPath)
	}
	e.GET("/", toLanding)
	e.RouteNotFound("/*", toLanding)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
