package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

type AnalyticsHandler struct{}

func NewAnalyticsHandler() *AnalyticsHandler { return &AnalyticsHandler{} }

// Dashboard handles GET /analytics.
//
// @Summary      Analytics dashboard
// @Description  KPIs, status and category breakdowns, resolution trend and agent performance. A superAdmin sees the operating tenant.
// @Tags         analytics
// @Produce      json
// @Param        tenant_id      query     string  false  "Tenant (superAdmin only)"
// @Param        department_id  query     string  false  "Department"
// @Param        user_id        query     string  false  "Agent"
// @Param        from           query     string  false  "Start date (YYYY-MM-DD or RFC3339)"
// @Param        to             query     string  false  "End date (YYYY-MM-DD or RFC3339)"
// @Param        interval       query     string  false  "day, week or month"
// @Success      200            {object}  domain.Dashboard
// @Failure      400            {object}  errorResponse
// @Router       /analytics [get]
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	f, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	d, err := ws.Services.Analytics.Dashboard(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Tenants handles GET /analytics/tenants.
//
// @Summary      Cross-tenant overview
// @Tags         analytics
// @Produce      json
// @Param        from  query     string  false  "Start date"
// @Param        to    query     string  false  "End date"
// @Success      200   {object}  service.TenantOverview
// @Router       /analytics/tenants [get]
func (h *AnalyticsHandler) Tenants(c echo.Context) error {
	f, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	o, err := ws.Services.Analytics.TenantOverview(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

func analyticsFilter(c echo.Context) (domain.AnalyticsFilter, error) {
	var req analyticsRequest
	if err := bind(c, &req); err != nil {
		return domain.AnalyticsFilter{}, err
	}
	from, err := parseDate(req.From)
	if err != nil {
		return domain.AnalyticsFilter{}, echo.NewHTTPError(http.StatusBadRequest, "from: "+err.Error())
	}
	to, err := parseDate(req.To)
	if err != nil {
		return domain.AnalyticsFilter{}, echo.NewHTTPError(http.StatusBadRequest, "to: "+err.Error())
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return domain.AnalyticsFilter{}, echo.NewHTTPError(http.StatusBadRequest, "to must not be before from")
	}
	return domain.AnalyticsFilter{
		TenantID:     req.TenantID,
		DepartmentID: req.DepartmentID,
		UserID:       req.UserID,
		From:         from,
		To:           to,
		Interval:     req.Interval,
	}, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. Empty means unset.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
