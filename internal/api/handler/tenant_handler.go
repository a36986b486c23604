package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketdesk/dashboard/internal/core/authz"
	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// TenantHandler serves tenant selection and the companies screen.
type TenantHandler struct{}

func NewTenantHandler() *TenantHandler { return &TenantHandler{} }

type tenantChoices struct {
	Tenants           domain.Page[domain.Tenant] `json:"tenants"`
	OperatingTenantID string                     `json:"operating_tenant_id,omitempty"`
}

// SelectTenantScreen lists the tenants a superAdmin can operate on.
//
// @Summary      Tenant selection screen
// @Tags         tenants
// @Produce      json
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Param        search  query     string  false  "Name filter"
// @Success      200     {object}  tenantChoices
// @Router       /select-tenant [get]
func (h *TenantHandler) SelectTenantScreen(c echo.Context) error {
	var req listRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	list, err := ws.Services.Tenants.List(c.Request().Context(), req.filter())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenantChoices{Tenants: list.Page, OperatingTenantID: ws.Store.OperatingTenantID()})
}

// SelectTenant sets the superAdmin's operating tenant.
//
// @Summary      Select operating tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        body  body      selectTenantRequest  true  "Tenant"
// @Success      200   {object}  selectTenantResponse
// @Failure      404   {object}  errorResponse
// @Router       /select-tenant [post]
func (h *TenantHandler) SelectTenant(c echo.Context) error {
	var req selectTenantRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	t, err := ws.Services.Auth.SelectTenant(c.Request().Context(), req.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, selectTenantResponse{Tenant: t, Redirect: authz.PathAnalytics})
}

// List handles GET /companies.
//
// @Summary      List companies
// @Tags         tenants
// @Produce      json
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Param        search  query     string  false  "Name filter"
// @Success      200     {object}  service.List[domain.Tenant]
// @Router       /companies [get]
func (h *TenantHandler) List(c echo.Context) error {
	var req listRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	list, err := ws.Services.Tenants.List(c.Request().Context(), req.filter())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /companies/:id.
//
// @Summary      Get a company
// @Tags         tenants
// @Produce      json
// @Param        id   path      string  true  "Company id"
// @Success      200  {object}  domain.Tenant
// @Failure      404  {object}  errorResponse
// @Router       /companies/{id} [get]
func (h *TenantHandler) Get(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	t, err := ws.Services.Tenants.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// Create handles POST /companies.
//
// @Summary      Create a company
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        body  body      tenantRequest  true  "Company"
// @Success      201   {object}  domain.Tenant
// @Failure      422   {object}  errorResponse
// @Router       /companies [post]
func (h *TenantHandler) Create(c echo.Context) error {
	var req tenantRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	t, err := ws.Services.Tenants.Create(c.Request().Context(), domain.TenantInput{Name: req.Name, MaxTokens: req.MaxTokens})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// Update handles PUT /companies/:id.
//
// @Summary      Update a company
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Company id"
// @Param        body  body      tenantRequest  true  "Company"
// @Success      200   {object}  domain.Tenant
// @Router       /companies/{id} [put]
func (h *TenantHandler) Update(c echo.Context) error {
	var req tenantRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	t, err := ws.Services.Tenants.Update(c.Request().Context(), c.Param("id"), domain.TenantInput{Name: req.Name, MaxTokens: req.MaxTokens})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /companies/:id.
//
// @Summary      Delete a company
// @Tags         tenants
// @Produce      json
// @Param        id   path      string  true  "Company id"
// @Success      200  {object}  messageResponse
// @Router       /companies/{id} [delete]
func (h *TenantHandler) Delete(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	if err := ws.Services.Tenants.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "company deleted"})
}

// TokenUsage handles GET /companies/:id/token-usage.
//
// @Summary      Token usage of a company
// @Tags         tenants
// @Produce      json
// @Param        id   path      string  true  "Company id"
// @Success      200  {object}  domain.TenantTokenBreakdown
// @Router       /companies/{id}/token-usage [get]
func (h *TenantHandler) TokenUsage(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	b, err := ws.Services.Analytics.TenantTokenUsage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}
