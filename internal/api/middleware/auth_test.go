package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/aueb-cf/users-api/internal/api/metrics"
	"github.com/aueb-cf/users-api/internal/core/domain"
	"github.com/aueb-cf/users-api/internal/infrastructure/security"
)

const testSecret = "secret"

func newGate(t *testing.T) (*Gate, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	return NewGate(security.NewJWTManager(testSecret), zerolog.Nop(), m), m
}

func signToken(t *testing.T, secret string, issuedAt time.Time, roles ...string) string {
	t.Helper()
	mgr := security.NewJWTManager(secret, security.WithClock(func() time.Time { return issuedAt }))
	token, err := mgr.Issue(domain.Claims{Subject: "507f1f77bcf86cd799439011", Username: "alice", Roles: roles})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// serve runs h with the default echo error handler so rejections are rendered.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

func assertMessage(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != want {
		t.Fatalf("expected message %q, got %v", want, body["message"])
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	gate, _ := newGate(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now(), domain.RoleAdmin))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := gate.Authenticate(func(c echo.Context) error {
		called = true
		claims := ClaimsFrom(c)
		if claims == nil {
			t.Fatalf("claims not set")
		}
		if claims.Username != "alice" || !claims.HasRole(domain.RoleAdmin) {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	serve(e, c, handler)
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_LowercaseScheme(t *testing.T) {
	gate, _ := newGate(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+signToken(t, testSecret, time.Now()))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	serve(e, c, gate.Authenticate(func(c echo.Context) error { return c.NoContent(http.StatusOK) }))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		header string
		reason string
	}{
		{"missing header", "", "missing_header"},
		{"wrong scheme", "Token abc", "malformed_header"},
		{"scheme only", "Bearer", "malformed_header"},
		{"empty token", "Bearer   ", "malformed_header"},
		{"garbage token", "Bearer not.a.jwt", "invalid"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", time.Now()), "invalid"},
		{"expired token", "Bearer " + signToken(t, testSecret, time.Now().Add(-2*time.Hour)), "expired"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gate, m := newGate(t)
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			serve(e, c, gate.Authenticate(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			}))

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			assertMessage(t, rec, MsgNotAuthenticated)
			if got := testutil.ToFloat64(m.AuthenticationFailures.WithLabelValues(tc.reason)); got != 1 {
				t.Fatalf("expected one %q failure recorded, got %v", tc.reason, got)
			}
		})
	}
}

func TestRequireRole_Allows(t *testing.T) {
	gate, _ := newGate(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setClaims(c, &domain.Claims{Username: "admin", Roles: []string{"USER", domain.RoleAdmin}})

	called := false
	serve(e, c, gate.RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusNoContent)
	}))

	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	cases := []struct {
		name   string
		claims *domain.Claims
	}{
		{"role missing", &domain.Claims{Username: "bob", Roles: []string{"USER"}}},
		{"no roles", &domain.Claims{Username: "bob"}},
		{"role differs in case", &domain.Claims{Username: "bob", Roles: []string{"admin"}}},
		{"no claims", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gate, m := newGate(t)
			e := echo.New()
			req := httptest.NewRequest(http.MethodDelete, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.claims != nil {
				setClaims(c, tc.claims)
			}

			serve(e, c, gate.RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			}))

			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
			assertMessage(t, rec, MsgForbidden)
			if got := testutil.ToFloat64(m.AuthorizationDenied.WithLabelValues(domain.RoleAdmin)); got != 1 {
				t.Fatalf("expected one denial recorded, got %v", got)
			}
		})
	}
}

func TestRequireRole_WrongClaimsTypeFailsClosed(t *testing.T) {
	gate, _ := newGate(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(claimsKey, map[string]any{"roles": []string{domain.RoleAdmin}})

	serve(e, c, gate.RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
