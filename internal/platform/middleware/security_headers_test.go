package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestSecurityHeaders_SetsLockdownHeaders(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"X-XSS-Protection", "0"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
		{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
		{"Referrer-Policy", "no-referrer"},
		{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
		{"Cache-Control", "no-store"},
	}

	c, rec := newTestContext(http.MethodGet, "/api/v1/assessed-studies")
	if err := SecurityHeaders()(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, tc := range cases {
		t.Run(tc.header, func(t *testing.T) {
			if got := rec.Header().Get(tc.header); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSecurityHeaders_HandlerStillRuns(t *testing.T) {
	c, rec := newTestContext(http.MethodPost, "/api/v1/assessments/saveRisksByStudyId")

	called := false
	h := SecurityHeaders()(func(c echo.Context) error {
		called = true
		return c.String(http.StatusCreated, "created")
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected wrapped handler to run")
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("code = %d, want 201", rec.Code)
	}
}

// Headers stay set when the handler fails, so 404s for unknown studies are
// just as locked down as successful responses.
func TestSecurityHeaders_SetOnHandlerError(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/v1/assessments/getRisksByStudyId/unknown")

	h := SecurityHeaders()(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	})

	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", httpErr.Code)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("expected Cache-Control no-store on error responses")
	}
}
