package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/core/authz"
	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/infrastructure/backend"
)

// statusClientClosedRequest is nginx's code for a request the client gave up on.
const statusClientClosedRequest = 499

// errorResponse is the canonical error envelope for all API errors. Redirect
// tells the dashboard where the session must go next.
type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps backend and session errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, validation, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	switch {
	case errors.Is(err, domain.ErrAuthExpired):
		return http.StatusUnauthorized, errorResponse{Error: "your session has expired, please sign in again", Redirect: authz.PathLogin}
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrCorruptedSession):
		return http.StatusUnauthorized, errorResponse{Error: err.Error(), Redirect: authz.PathLogin}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: userMessage(err, "invalid username or password")}
	case errors.Is(err, domain.ErrMissingDepartment):
		return http.StatusForbidden, errorResponse{Error: err.Error(), Redirect: authz.PathLogin}
	case errors.Is(err, domain.ErrPermissionDenied), errors.Is(err, domain.ErrTenantMismatch):
		return http.StatusForbidden, errorResponse{Error: userMessage(err, "you do not have permission to do that")}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: userMessage(err, "not found")}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, errorResponse{Error: userMessage(err, err.Error())}
	case errors.Is(err, domain.ErrRequestRejected):
		return http.StatusBadRequest, errorResponse{Error: userMessage(err, "request rejected")}
	case errors.Is(err, domain.ErrNoOperatingTenant):
		return http.StatusConflict, errorResponse{Error: "select a tenant first", Redirect: authz.PathSelectTenant}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrServerFault):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend fault")
		return http.StatusBadGateway, errorResponse{Error: userMessage(err, "the ticketing service failed")}
	case errors.Is(err, domain.ErrNetworkUnreachable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend unreachable")
		return http.StatusServiceUnavailable, errorResponse{Error: "the ticketing service is unreachable"}
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, errorResponse{Error: "request cancelled"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

// userMessage prefers the backend's own explanation when err carries one.
func userMessage(err error, fallback string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if m := apiErr.Message(); m != "" {
			return m
		}
	}
	return fallback
}
