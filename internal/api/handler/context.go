package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketdesk/dashboard/internal/api/middleware"
	"github.com/ticketdesk/dashboard/internal/api/workspace"
	"github.com/ticketdesk/dashboard/internal/infrastructure/backend"
)

// workspaceOf returns the workspace the Session middleware bound to c. A
// missing workspace means the route was mounted outside that middleware.
func workspaceOf(c echo.Context) (*workspace.Workspace, error) {
	ws := middleware.Workspace(c)
	if ws == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "no session bound to request")
	}
	return ws, nil
}

// renewedWorkspace rotates the session id of c before credentials are
// accepted and returns the workspace of the new id.
func renewedWorkspace(c echo.Context) (*workspace.Workspace, error) {
	ws := middleware.RenewSession(c)
	if ws == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "no session bound to request")
	}
	return ws, nil
}

// bind decodes and validates a request.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// messageOf returns the user-facing text of err.
func messageOf(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return err.Error()
}
