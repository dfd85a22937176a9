package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aueb-cf/users-api/internal/api/handler"
	"github.com/aueb-cf/users-api/internal/api/middleware"
	"github.com/aueb-cf/users-api/internal/api/validation"
	"github.com/aueb-cf/users-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders one JSON envelope: {"message": "..."} plus field errors on 400.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		resp := handler.ErrorResponse{Message: middleware.MsgValidationFailed}
		for _, f := range verr.Fields {
			resp.Errors = append(resp.Errors, handler.FieldIssue{Field: f.Field, Message: f.Message})
		}
		return http.StatusBadRequest, resp
	}

	// Echo's own errors (router 404/405, body limit) and middleware rejections.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnexpected(log, c, err)
			return he.Code, handler.ErrorResponse{Message: http.StatusText(he.Code)}
		}
		return he.Code, handler.ErrorResponse{Message: fmt.Sprintf("%v", he.Message)}
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Message: "User not found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, handler.ErrorResponse{Message: "Username already exists"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Message: "Invalid credentials"}
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, handler.ErrorResponse{Message: middleware.MsgNotAuthenticated}
	}

	logUnexpected(log, c, err)
	return http.StatusInternalServerError, handler.ErrorResponse{Message: "Internal server error"}
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
