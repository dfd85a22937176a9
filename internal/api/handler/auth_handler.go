package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aueb-cf/users-api/internal/api/metrics"
	"github.com/aueb-cf/users-api/internal/api/middleware"
	"github.com/aueb-cf/users-api/internal/core/domain"
	"github.com/aueb-cf/users-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	expiresIn   int
	metrics     *metrics.Metrics
}

// NewAuthHandler builds the login handler. expiresIn is the token lifetime
// in seconds reported to clients.
func NewAuthHandler(authService ports.AuthService, expiresIn int, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{authService: authService, expiresIn: expiresIn, metrics: m}
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Login credentials"
// @Success      200   {object}  LoginResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	req, ok := middleware.Body[LoginRequest](c)
	if !ok {
		return errMissingBody
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.metrics.Login("invalid_credentials")
		} else {
			h.metrics.Login("error")
		}
		return err
	}

	h.metrics.Login("success")
	return c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: h.expiresIn,
		User:      toUserResponse(user),
	})
}
