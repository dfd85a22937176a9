package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aueb-cf/users-api/internal/api/metrics"
	"github.com/aueb-cf/users-api/internal/core/domain"
	"github.com/aueb-cf/users-api/internal/core/ports"
)

const (
	MsgNotAuthenticated = "Not authenticated"
	MsgForbidden        = "Forbidden: Insufficient permissions"
)

// Gate holds the authentication and authorization middleware.
type Gate struct {
	verifier ports.TokenVerifier
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewGate builds a Gate. m may be nil.
func NewGate(verifier ports.TokenVerifier, logger zerolog.Logger, m *metrics.Metrics) *Gate {
	return &Gate{verifier: verifier, logger: logger, metrics: m}
}

// Authenticate validates the bearer token and attaches its claims to the
// request. Every failure is answered with the same 401 message.
func (g *Gate) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return g.reject(c, "missing_header", nil)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return g.reject(c, "malformed_header", nil)
		}

		claims, err := g.verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			reason := "invalid"
			if errors.Is(err, domain.ErrTokenExpired) {
				reason = "expired"
			}
			return g.reject(c, reason, err)
		}

		setClaims(c, claims)
		return next(c)
	}
}

func (g *Gate) reject(c echo.Context, reason string, err error) error {
	g.metrics.AuthFailure(reason)
	g.logger.Debug().
		Err(err).
		Str("reason", reason).
		Str("path", c.Path()).
		Msg("request not authenticated")
	return echo.NewHTTPError(http.StatusUnauthorized, MsgNotAuthenticated)
}

// RequireRole admits only requests whose claims carry role. Missing claims
// or a panic while checking are treated as a denial.
func (g *Gate) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !g.allowed(c, role) {
				g.metrics.Denied(role)
				return echo.NewHTTPError(http.StatusForbidden, MsgForbidden)
			}
			return next(c)
		}
	}
}

func (g *Gate) allowed(c echo.Context, role string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error().Err(fmt.Errorf("%v", r)).Msg("role check panicked")
			ok = false
		}
	}()

	claims := ClaimsFrom(c)
	return claims != nil && claims.HasRole(role)
}
