// Package account handles authentication endpoints by delegating to the
// identity provider. No credentials are stored locally.
package account

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medvault/medvault/internal/platform/identity"
)

type Handler struct {
	provider identity.Provider
	logger   zerolog.Logger
}

func NewHandler(provider identity.Provider, logger zerolog.Logger) *Handler {
	return &Handler{provider: provider, logger: logger}
}

// RegisterRoutes attaches the auth endpoints. These are the only routes that
// do not require a session.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/auth")
	g.POST("/signin", h.SignIn)
	g.POST("/signup", h.SignUp)
	g.POST("/signout", h.SignOut)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	result, err := h.provider.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, identity.ErrInvalidCredentials.Error())
		}
		h.logger.Error().Err(err).Msg("sign-in failed")
		return echo.NewHTTPError(http.StatusBadGateway, "identity provider unavailable")
	}
	return c.JSON(http.StatusOK, result)
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// SignUp creates a new account. New accounts start with the pending role and
// stay locked out of patient data until promoted.
func (h *Handler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, err := h.provider.SignUp(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		h.logger.Error().Err(err).Msg("sign-up failed")
		return echo.NewHTTPError(http.StatusBadGateway, "identity provider unavailable")
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) SignOut(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	if err := h.provider.SignOut(c.Request().Context(), parts[1]); err != nil {
		h.logger.Warn().Err(err).Msg("sign-out failed")
		return echo.NewHTTPError(http.StatusBadGateway, "identity provider unavailable")
	}
	return c.NoContent(http.StatusNoContent)
}
