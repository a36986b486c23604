package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string { return s.name }
func (s stubChecker) Check(context.Context) error { return s.err }

func serveReadiness(t *testing.T, checkers ...Checker) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	if err := NewReadinessHandler(checkers...).Readiness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Readiness: %v", err)
	}
	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec, body
}

func TestReadiness_AllHealthy(t *testing.T) {
	rec, body := serveReadiness(t, stubChecker{name: "redis"}, stubChecker{name: "backend"})
	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("code=%d body=%+v", rec.Code, body)
	}
	if len(body.Dependencies) != 2 {
		t.Fatalf("dependencies = %v", body.Dependencies)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	rec, body := serveReadiness(t,
		stubChecker{name: "redis"},
		stubChecker{name: "backend", err: errors.New("connection refused")},
	)
	if rec.Code != http.StatusServiceUnavailable || body.Status != "degraded" {
		t.Fatalf("code=%d body=%+v", rec.Code, body)
	}
	if got := body.Dependencies["backend"]; got.Status != "unhealthy" || got.Error == "" {
		t.Fatalf("backend = %+v", got)
	}
	if got := body.Dependencies["redis"]; got.Status != "ok" {
		t.Fatalf("redis = %+v", got)
	}
}

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := NewHealthHandler().Liveness(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("code=%d err=%v", rec.Code, err)
	}
}
