package http

import (
	"github.com/labstack/echo/v4"

	"github.com/ticketdesk/dashboard/internal/infrastructure/http/handlers"
)

// RegisterProbes mounts the liveness and readiness probes on e. They sit
// outside the session middleware and never touch a workspace.
func RegisterProbes(e *echo.Echo, checkers ...handlers.Checker) {
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(checkers...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
}
