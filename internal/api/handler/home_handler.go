package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketdesk/dashboard/internal/core/authz"
)

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler { return &HomeHandler{} }

// Home returns the signed-in user, the operating tenant and the navigation
// entries the user's role may see.
//
// @Summary      Home screen
// @Tags         home
// @Produce      json
// @Success      200  {object}  homeResponse
// @Failure      303  "Not authenticated"
// @Router       / [get]
func (h *HomeHandler) Home(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	sess := ws.Store.Snapshot()
	return c.JSON(http.StatusOK, homeResponse{
		User:              sess.CurrentUser,
		OperatingTenantID: sess.OperatingTenantID,
		Navigation:        authz.Navigation(sess.Role()),
	})
}

// Events drains the session's pending notifications and the latest forced
// navigation. The dashboard polls it.
//
// @Summary      Poll notifications
// @Tags         home
// @Produce      json
// @Success      200  {object}  notify.Events
// @Router       /events [get]
func (h *HomeHandler) Events(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Center.Drain())
}
