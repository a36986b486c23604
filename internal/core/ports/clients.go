package ports

import (
	"context"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
}

// AuthClient talks to the backend's /auth endpoints.
type AuthClient interface {
	Login(ctx context.Context, creds domain.Credentials) (*LoginResult, error)
	Me(ctx context.Context) (*domain.User, error)
	RegisterUser(ctx context.Context, reg domain.Registration) (*domain.User, error)
	RegisterEmployee(ctx context.Context, reg domain.EmployeeRegistration) (*domain.User, error)
}

// TenantClient manages tenants (companies on the wire).
type TenantClient interface {
	List(ctx context.Context, f domain.ListFilter) (domain.Page[domain.Tenant], error)
	Get(ctx context.Context, id string) (*domain.Tenant, error)
	Create(ctx context.Context, in domain.TenantInput) (*domain.Tenant, error)
	Update(ctx context.Context, id string, in domain.TenantInput) (*domain.Tenant, error)
	Delete(ctx context.Context, id string) error
}

// DepartmentClient manages departments of the operating tenant.
type DepartmentClient interface {
	List(ctx context.Context, f domain.ListFilter) (domain.Page[domain.Department], error)
	Get(ctx context.Context, id string) (*domain.Department, error)
	Create(ctx context.Context, name string) (*domain.Department, error)
	Rename(ctx context.Context, id, name string) (*domain.Department, error)
	Delete(ctx context.Context, id string) error
}

// UserClient manages users.
type UserClient interface {
	List(ctx context.Context, f domain.UserFilter) (domain.Page[domain.User], error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, in domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, current, next string) (*domain.User, error)
}

// TicketClient reads and acts on tickets.
type TicketClient interface {
	List(ctx context.Context, f domain.TicketFilter) (domain.Page[domain.Ticket], error)
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Interactions(ctx context.Context, id string) ([]domain.Interaction, error)
	SetStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error)
	Reroute(ctx context.Context, id, departmentID string) (*domain.Ticket, error)
	AddInternalNote(ctx context.Context, id, content string) (*domain.Interaction, error)
	UpdateDetails(ctx context.Context, id string, in domain.TicketDetailsUpdate) (*domain.Ticket, error)
	DraftReply(ctx context.Context, id string, in domain.ReplyDraft) (string, error)
	Reply(ctx context.Context, id, content, author string) (*domain.Interaction, error)
}

// AnalyticsClient reads aggregate metrics.
type AnalyticsClient interface {
	KPIs(ctx context.Context, f domain.AnalyticsFilter) (*domain.KPIs, error)
	TicketsByStatus(ctx context.Context, f domain.AnalyticsFilter) (map[string]int, error)
	TicketsByCategory(ctx context.Context, f domain.AnalyticsFilter) ([]domain.CategoryCount, error)
	ResolutionTrends(ctx context.Context, f domain.AnalyticsFilter) ([]domain.ResolutionPoint, error)
	AgentPerformance(ctx context.Context, f domain.AnalyticsFilter) ([]domain.AgentPerformance, error)
	TokenUsageByTenant(ctx context.Context, f domain.AnalyticsFilter) ([]domain.TenantTokenUsage, error)
	ActivityByTenant(ctx context.Context, f domain.AnalyticsFilter) ([]domain.TenantActivity, error)
	TenantTokenUsage(ctx context.Context, tenantID string) (*domain.TenantTokenBreakdown, error)
}

// SettingsClient manages the operating tenant's integration settings.
type SettingsClient interface {
	Details(ctx context.Context) (*domain.TenantSettings, error)
	UpdateWebhook(ctx context.Context, url string) (*domain.TenantSettings, error)
}
