package backend

import (
	"context"
	"net/url"
	"time"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// Analytics is the client of /analytics.
type Analytics struct{ conn *Conn }

func NewAnalytics(conn *Conn) *Analytics { return &Analytics{conn: conn} }

// analyticsQuery renders the filter. extra names the optional fields the
// endpoint accepts beyond the common tenant/department/date range.
func analyticsQuery(f domain.AnalyticsFilter, extra ...string) url.Values {
	q := newParams(AnalyticsFields).
		str("tenantId", f.TenantID).
		str("departmentId", f.DepartmentID)
	if !f.From.IsZero() {
		q.str("from", f.From.UTC().Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		q.str("to", f.To.UTC().Format(time.RFC3339))
	}
	for _, field := range extra {
		switch field {
		case "userId":
			q.str(field, f.UserID)
		case "interval":
			q.str(field, f.Interval)
		}
	}
	return q.encode()
}

// dateRangeQuery is the filter of superAdmin-wide endpoints, which take no
// tenant or department.
func dateRangeQuery(f domain.AnalyticsFilter) url.Values {
	return analyticsQuery(domain.AnalyticsFilter{From: f.From, To: f.To})
}

func (a *Analytics) KPIs(ctx context.Context, f domain.AnalyticsFilter) (*domain.KPIs, error) {
	var out wireKPIs
	if err := a.conn.get(ctx, "analytics", "/analytics/kpis", analyticsQuery(f), &out); err != nil {
		return nil, err
	}
	k := out.toDomain()
	return &k, nil
}

func (a *Analytics) TicketsByStatus(ctx context.Context, f domain.AnalyticsFilter) (map[string]int, error) {
	out := map[string]int{}
	if err := a.conn.get(ctx, "analytics", "/analytics/tickets-by-status", analyticsQuery(f), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Analytics) TicketsByCategory(ctx context.Context, f domain.AnalyticsFilter) ([]domain.CategoryCount, error) {
	var out []wireCategoryCount
	if err := a.conn.get(ctx, "analytics", "/analytics/tickets-by-category", analyticsQuery(f), &out); err != nil {
		return nil, err
	}
	items := make([]domain.CategoryCount, len(out))
	for i, w := range out {
		items[i] = domain.CategoryCount{Category: deref(w.Category), Count: w.Count}
		if items[i].Category == "" {
			items[i].Category = "Uncategorized"
		}
	}
	return items, nil
}

func (a *Analytics) ResolutionTrends(ctx context.Context, f domain.AnalyticsFilter) ([]domain.ResolutionPoint, error) {
	var out []wireResolutionPoint
	if err := a.conn.get(ctx, "analytics", "/analytics/resolution-trends", analyticsQuery(f, "interval"), &out); err != nil {
		return nil, err
	}
	items := make([]domain.ResolutionPoint, len(out))
	for i, w := range out {
		items[i] = domain.ResolutionPoint{
			Date:           w.Date,
			Resolved:       w.ResolvedCount,
			AISolved:       w.AISolvedCount,
			ManuallySolved: w.ManuallySolvedCount,
		}
	}
	return items, nil
}

func (a *Analytics) AgentPerformance(ctx context.Context, f domain.AnalyticsFilter) ([]domain.AgentPerformance, error) {
	var out []wireAgentPerformance
	if err := a.conn.get(ctx, "analytics", "/analytics/agent-performance", analyticsQuery(f, "userId"), &out); err != nil {
		return nil, err
	}
	items := make([]domain.AgentPerformance, len(out))
	for i, w := range out {
		items[i] = domain.AgentPerformance{
			UserID:             w.UserID,
			Username:           w.Username,
			Email:              w.Email,
			Department:         deref(w.Department),
			TicketsAssigned:    w.TicketsAssigned,
			TicketsSolved:      w.TicketsSolved,
			AvgResolutionHours: w.AvgResolutionTime,
			ResolutionRate:     w.ResolutionRate,
		}
	}
	return items, nil
}

func (a *Analytics) TokenUsageByTenant(ctx context.Context, f domain.AnalyticsFilter) ([]domain.TenantTokenUsage, error) {
	var out []wireTokenUsage
	if err := a.conn.get(ctx, "analytics", "/analytics/superadmin/token-usage-by-company", dateRangeQuery(f), &out); err != nil {
		return nil, err
	}
	items := make([]domain.TenantTokenUsage, len(out))
	for i, w := range out {
		items[i] = domain.TenantTokenUsage{TenantID: w.CompanyID, TenantName: w.CompanyName, TokensUsed: w.TotalTokensUsed}
	}
	return items, nil
}

func (a *Analytics) ActivityByTenant(ctx context.Context, f domain.AnalyticsFilter) ([]domain.TenantActivity, error) {
	var out []wireActivity
	if err := a.conn.get(ctx, "analytics", "/analytics/superadmin/activity-by-company", dateRangeQuery(f), &out); err != nil {
		return nil, err
	}
	items := make([]domain.TenantActivity, len(out))
	for i, w := range out {
		items[i] = domain.TenantActivity{
			TenantID:          w.CompanyID,
			TenantName:        w.CompanyName,
			TicketsCreated:    w.TicketsCreatedCount,
			InteractionsCount: w.TotalInteractionsCount,
		}
	}
	return items, nil
}

func (a *Analytics) TenantTokenUsage(ctx context.Context, tenantID string) (*domain.TenantTokenBreakdown, error) {
	var out wireTokenBreakdown
	if err := a.conn.get(ctx, "analytics", "/analytics/company-token-usage/"+url.PathEscape(tenantID), nil, &out); err != nil {
		return nil, err
	}
	return &domain.TenantTokenBreakdown{
		TenantID:   out.CompanyID,
		TenantName: out.CompanyName,
		Today:      out.TokensToday,
		ThisMonth:  out.TokensThisMonth,
		Lifetime:   out.TokensLifetime,
	}, nil
}
