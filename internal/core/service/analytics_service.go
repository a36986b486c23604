package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/ports"
	"github.com/ticketdesk/dashboard/internal/core/query"
	"github.com/ticketdesk/dashboard/internal/core/session"
)

// AnalyticsService backs the analytics dashboard.
type AnalyticsService struct {
	store     *session.Store
	analytics ports.AnalyticsClient
	cache     *query.Cache
}

func NewAnalyticsService(store *session.Store, analytics ports.AnalyticsClient, cache *query.Cache) *AnalyticsService {
	return &AnalyticsService{store: store, analytics: analytics, cache: cache}
}

// TenantOverview is the superAdmin's cross-tenant view.
type TenantOverview struct {
	TokenUsage []domain.TenantTokenUsage `json:"token_usage"`
	Activity   []domain.TenantActivity   `json:"activity"`
}

// analyticsKey keys one analytics panel. All panels share KindAnalytics so
// ticket mutations invalidate them together.
type analyticsKey struct {
	Panel  string                 `json:"panel"`
	Filter domain.AnalyticsFilter `json:"filter"`
}

func cached[T any](ctx context.Context, c *query.Cache, panel string, f domain.AnalyticsFilter, fetch func(context.Context, domain.AnalyticsFilter) (T, error)) (T, error) {
	key := query.NewKey(KindAnalytics, analyticsKey{Panel: panel, Filter: f})
	v, _, err := query.Get(ctx, c, key, func(ctx context.Context) (T, error) {
		return fetch(ctx, f)
	})
	return v, err
}

// Dashboard loads every panel of the analytics screen concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, f domain.AnalyticsFilter) (*domain.Dashboard, error) {
	f.TenantID = scopedTenant(s.store, f.TenantID)
	if f.Interval == "" {
		f.Interval = "day"
	}

	var d domain.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		k, err := cached(gctx, s.cache, "kpis", f, s.analytics.KPIs)
		if err == nil {
			d.KPIs = *k
		}
		return err
	})
	g.Go(func() error {
		v, err := cached(gctx, s.cache, "by_status", f, s.analytics.TicketsByStatus)
		d.ByStatus = v
		return err
	})
	g.Go(func() error {
		v, err := cached(gctx, s.cache, "by_category", f, s.analytics.TicketsByCategory)
		d.ByCategory = v
		return err
	})
	g.Go(func() error {
		v, err := cached(gctx, s.cache, "resolutions", f, s.analytics.ResolutionTrends)
		d.Resolutions = v
		return err
	})
	g.Go(func() error {
		v, err := cached(gctx, s.cache, "agents", f, s.analytics.AgentPerformance)
		d.Agents = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// TenantOverview loads token usage and activity of every tenant.
func (s *AnalyticsService) TenantOverview(ctx context.Context, f domain.AnalyticsFilter) (*TenantOverview, error) {
	rng := domain.AnalyticsFilter{From: f.From, To: f.To}

	var o TenantOverview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := cached(gctx, s.cache, "token_usage", rng, s.analytics.TokenUsageByTenant)
		o.TokenUsage = v
		return err
	})
	g.Go(func() error {
		v, err := cached(gctx, s.cache, "activity", rng, s.analytics.ActivityByTenant)
		o.Activity = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &o, nil
}

// TenantTokenUsage loads today/month/lifetime token usage of one tenant.
func (s *AnalyticsService) TenantTokenUsage(ctx context.Context, tenantID string) (*domain.TenantTokenBreakdown, error) {
	tenantID = scopedTenant(s.store, tenantID)
	if tenantID == "" {
		if u := s.store.CurrentUser(); u != nil {
			tenantID = u.TenantID
		}
	}
	if tenantID == "" {
		return nil, domain.ErrNoOperatingTenant
	}
	return cached(ctx, s.cache, "tenant_tokens", domain.AnalyticsFilter{TenantID: tenantID},
		func(ctx context.Context, f domain.AnalyticsFilter) (*domain.TenantTokenBreakdown, error) {
			return s.analytics.TenantTokenUsage(ctx, f.TenantID)
		})
}
