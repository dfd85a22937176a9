package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/aueb-cf/users-api/internal/core/domain"
)

const (
	claimsKey = "auth.claims"
	bodyKey   = "request.body"
)

// ClaimsFrom returns the claims attached by Authenticate, or nil when the
// request did not pass through it.
func ClaimsFrom(c echo.Context) *domain.Claims {
	claims, _ := c.Get(claimsKey).(*domain.Claims)
	return claims
}

func setClaims(c echo.Context, claims *domain.Claims) {
	c.Set(claimsKey, claims)
}
