package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
)

// AuthHandler serves the sign-in screen and the session endpoints.
type AuthHandler struct {
	sessions    ports.SessionService
	signInPath  string
	landingPath string
	log         zerolog.Logger
}

func NewAuthHandler(sessions ports.SessionService, signInPath, landingPath string, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:    sessions,
		signInPath:  signInPath,
		landingPath: landingPath,
		log:         log,
	}
}

type loginRequest struct {
	UserID   string `json:"userId" form:"userId" validate:"required,max=8"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=20"`
}

// SignIn renders the sign-in screen state.
//
// @Summary      Sign-in screen
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionView
// @Success      303  "already signed in; redirect to the landing path"
// @Failure      503  {object}  map[string]string  "session still validating"
// @Router       /login [get]
func (h *AuthHandler) SignIn(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionView(h.sessions.Snapshot()))
}

// Login signs in with a user id and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      303   "signed in; redirect to the landing path"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	err := h.sessions.Login(c.Request().Context(), req.UserID, req.Password)
	if err == nil {
		return c.Redirect(http.StatusSeeOther, h.landingPath)
	}

	var le *domain.LoginError
	switch {
	case errors.As(err, &le):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": le.Error()})
	case errors.Is(err, domain.ErrAlreadyAuthenticated), errors.Is(err, domain.ErrSuperseded):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("login failed")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": domain.GenericLoginFailure})
	}
}

// Logout signs out. Calling it while signed out is harmless.
//
// @Summary      Logout
// @Tags         auth
// @Success      303  "redirect to the sign-in path"
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.Redirect(http.StatusSeeOther, h.signInPath)
}

// Session reports the current session state.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionView
// @Router       /session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionView(h.sessions.Snapshot()))
}

// Dashboard is the landing screen: the signed-in identity banner.
//
// @Summary      Dashboard
// @Tags         screens
// @Produce      json
// @Success      200  {object}  sessionView
// @Success      303  "signed out; redirect to the sign-in path"
// @Router       /dashboard [get]
func (h *AuthHandler) Dashboard(c echo.Context) error {
	snap, err := ctxSnapshot(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionView(snap))
}
