package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/api/middleware"
	"github.com/ticketdesk/dashboard/internal/api/workspace"
	"github.com/ticketdesk/dashboard/internal/infrastructure/backend"
	"github.com/ticketdesk/dashboard/internal/infrastructure/db/memory"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	client, err := backend.NewClient(backend.ClientConfig{BaseURL: srv.URL, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	return NewRouter(Deps{
		Workspaces: workspace.NewManager(workspace.Config{
			Client: client,
			Tokens: memory.NewTokenStore(),
			Logger: zerolog.Nop(),
		}),
		Cookie:      middleware.CookieConfig{Name: "dash_sid", MaxAge: time.Hour},
		Limiter:     middleware.NewRateLimiter(60, 1),
		CORSOrigins: []string{"*"},
		Checkers:    nil,
		Logger:      zerolog.Nop(),
		Registerer:  prometheus.NewRegistry(),
	})
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRouter_ProbesNeedNoSession(t *testing.T) {
	e := newTestRouter(t)
	rec := serve(e, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("probes must not issue a session cookie")
	}
	if rec := serve(e, http.MethodGet, "/metrics"); rec.Code != http.StatusOK {
		t.Fatalf("/metrics: %d", rec.Code)
	}
}

func TestRouter_ScreensRedirectToLogin(t *testing.T) {
	e := newTestRouter(t)
	for _, path := range []string{"/", "/tickets", "/analytics", "/companies", "/departments", "/users", "/settings", "/select-tenant"} {
		rec := serve(e, http.MethodGet, path)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("%s: expected 303, got %d", path, rec.Code)
		}
	}
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	e := newTestRouter(t)
	// Burst of one: the first attempt reaches the handler, the second does not.
	if rec := serve(e, http.MethodPost, "/login"); rec.Code == http.StatusTooManyRequests {
		t.Fatal("first attempt must not be limited")
	}
	if rec := serve(e, http.MethodPost, "/login"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRouter_ForwardedForIsNotTrustedByDefault(t *testing.T) {
	e := newTestRouter(t)
	for i, xff := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set(echo.HeaderXForwardedFor, xff)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("second attempt from the same peer: expected 429, got %d", rec.Code)
		}
	}
}
