package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MsgValidationFailed = "Validation failed"
	MsgInvalidUserID    = "Invalid user id"
)

// ValidateBody binds the JSON body into a fresh T and runs the echo
// validator on it. Handlers read the result with Body.
func ValidateBody[T any]() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := new(T)
			if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, MsgValidationFailed).SetInternal(err)
			}
			if err := c.Validate(req); err != nil {
				return err
			}
			c.Set(bodyKey, req)
			return next(c)
		}
	}
}

// Body returns the payload stored by ValidateBody[T]. ok is false when the
// route has no such middleware.
func Body[T any](c echo.Context) (*T, bool) {
	req, ok := c.Get(bodyKey).(*T)
	return req, ok
}

// ValidObjectID rejects requests whose path parameter is not a 24 character
// hex identifier.
func ValidObjectID(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !primitive.IsValidObjectID(c.Param(param)) {
				return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidUserID)
			}
			return next(c)
		}
	}
}
