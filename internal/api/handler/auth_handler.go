package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/api/metrics"
	"github.com/ticketdesk/dashboard/internal/core/authz"
	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/service"
)

type AuthHandler struct {
	log zerolog.Logger
}

func NewAuthHandler(log zerolog.Logger) *AuthHandler {
	return &AuthHandler{log: log}
}

// LoginScreen tells the login screen whether the session is already
// authenticated and where it should go instead.
//
// @Summary      Login screen state
// @Tags         auth
// @Produce      json
// @Param        next  query     string  false  "Return path after login"
// @Success      200   {object}  loginScreenResponse
// @Router       /login [get]
func (h *AuthHandler) LoginScreen(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	next := c.QueryParam("next")
	if !authz.SafeReturn(next) {
		next = ""
	}
	sess := ws.Store.Snapshot()
	if sess.IsAuthenticated && !sess.Corrupted() {
		return c.JSON(http.StatusOK, loginScreenResponse{Authenticated: true, Redirect: authz.Landing(sess.Role())})
	}
	return c.JSON(http.StatusOK, loginScreenResponse{Next: next})
}

// Login authenticates against the backend and stores the token under a
// freshly issued session id.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := renewedWorkspace(c)
	if err != nil {
		return err
	}

	landing, err := ws.Services.Auth.Login(c.Request().Context(), domain.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
	if err != nil {
		return err
	}

	redirect := landing
	if req.Next != "" && req.Next != authz.PathLogin && authz.SafeReturn(req.Next) {
		redirect = req.Next
	}
	return c.JSON(http.StatusOK, loginResponse{User: ws.Store.CurrentUser(), Redirect: redirect})
}

// Logout erases the stored token and clears the session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  loginScreenResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	if err := ws.Services.Auth.Logout(c.Request().Context()); err != nil {
		// The session is cleared either way; the token expires on its own.
		h.log.Warn().Err(err).Str("session_id", ws.ID).Msg("logout left a stored token")
	}
	return c.JSON(http.StatusOK, loginScreenResponse{Redirect: authz.PathLogin})
}

// Signup registers a tenant admin with a new company, logs in and
// optionally sets the company webhook. Steps that succeeded are kept when a
// later one fails.
//
// @Summary      Sign up a company
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Admin and company"
// @Success      201   {object}  signupResponse
// @Success      200   {object}  signupResponse  "Partially completed"
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := renewedWorkspace(c)
	if err != nil {
		return err
	}

	res, err := ws.Services.Signup.Signup(c.Request().Context(), service.SignupRequest{
		Registration: domain.Registration{
			Username:   req.Username,
			Email:      req.Email,
			Password:   req.Password,
			TenantName: req.CompanyName,
			MaxTokens:  req.MaxTokens,
		},
		WebhookURL: req.WebhookURL,
	})

	var partial *service.PartialSignupError
	switch {
	case errors.As(err, &partial):
		out := signupResponse{Completed: partial.Completed, Error: messageOf(partial.Err), Redirect: authz.PathLogin}
		if res != nil {
			out.User = res.User
			out.Redirect = res.Landing
		}
		return c.JSON(http.StatusOK, out)
	case err != nil:
		return err
	}
	done := []string{service.StepAccount, service.StepLogin}
	if req.WebhookURL != "" {
		done = append(done, service.StepWebhook)
	}
	return c.JSON(http.StatusCreated, signupResponse{User: res.User, Redirect: res.Landing, Completed: done})
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrCorruptedSession):
		return "corrupted"
	default:
		return "error"
	}
}
