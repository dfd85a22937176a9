package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/aueb-cf/users-api/docs"
	"github.com/aueb-cf/users-api/internal/api/handler"
	"github.com/aueb-cf/users-api/internal/api/metrics"
	"github.com/aueb-cf/users-api/internal/api/middleware"
	"github.com/aueb-cf/users-api/internal/api/validation"
	"github.com/aueb-cf/users-api/internal/core/domain"
	"github.com/aueb-cf/users-api/internal/core/ports"
)

// Dependencies is everything NewRouter needs to serve the API.
type Dependencies struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Verifier ports.TokenVerifier
	Logger   zerolog.Logger

	// TokenTTL is reported to clients as expires_in on login.
	TokenTTL time.Duration

	// Registry receives the HTTP and custom metrics served on /metrics.
	// Defaults to a fresh registry.
	Registry *prometheus.Registry

	// ReadinessChecks are run by /health/ready, keyed by dependency name.
	ReadinessChecks map[string]handler.Check

	CORSAllowOrigins []string
	RequestTimeout   time.Duration
	BodyLimit        string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.BodyLimit == "" {
		deps.BodyLimit = "1M"
	}
	if len(deps.CORSAllowOrigins) == 0 {
		deps.CORSAllowOrigins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSAllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit(deps.BodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: deps.Registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	if deps.RequestTimeout > 0 {
		e.Use(echomiddleware.ContextTimeoutWithConfig(echomiddleware.ContextTimeoutConfig{
			Timeout: deps.RequestTimeout,
		}))
	}

	// --- Dependencies ---
	m := metrics.New(deps.Registry)
	gate := middleware.NewGate(deps.Verifier, deps.Logger, m)
	authHandler := handler.NewAuthHandler(deps.Auth, int(deps.TokenTTL/time.Second), m)
	userHandler := handler.NewUserHandler(deps.Users, m)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login, middleware.ValidateBody[handler.LoginRequest]())

	// --- User routes ---
	users := e.Group("/users")
	users.GET("", userHandler.List, gate.Authenticate)
	users.GET("/:id", userHandler.Get, gate.Authenticate, middleware.ValidObjectID("id"))
	users.POST("", userHandler.Create, middleware.ValidateBody[handler.CreateUserRequest]())
	users.PUT("/:id", userHandler.Update,
		gate.Authenticate,
		middleware.ValidateBody[handler.UpdateUserRequest](),
		middleware.ValidObjectID("id"),
	)
	users.DELETE("/:id", userHandler.Delete,
		gate.Authenticate,
		gate.RequireRole(domain.RoleAdmin),
		middleware.ValidObjectID("id"),
	)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.ReadinessChecks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger logs one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
