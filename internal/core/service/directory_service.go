package service

import (
	"context"
	"strings"

	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/ports"
	"github.com/ticketdesk/dashboard/internal/core/query"
	"github.com/ticketdesk/dashboard/internal/core/session"
)

// List is one page of a list screen.
type List[T any] struct {
	domain.Page[T]
	Stale bool `json:"stale"`
}

func listOf[T any](ctx context.Context, c *query.Cache, key query.Key, fetch func(context.Context) (domain.Page[T], error)) (*List[T], error) {
	page, stale, err := query.Get(ctx, c, key, fetch)
	if err != nil {
		return nil, err
	}
	return &List[T]{Page: page, Stale: stale}, nil
}

// DepartmentService backs the department management screen.
type DepartmentService struct {
	departments ports.DepartmentClient
	cache       *query.Cache
}

func NewDepartmentService(departments ports.DepartmentClient, cache *query.Cache) *DepartmentService {
	return &DepartmentService{departments: departments, cache: cache}
}

func (s *DepartmentService) List(ctx context.Context, f domain.ListFilter) (*List[domain.Department], error) {
	f.PageRequest = f.PageRequest.Normalize()
	f.Search = strings.TrimSpace(f.Search)
	return listOf(ctx, s.cache, query.NewKey(KindDepartments, f), func(ctx context.Context) (domain.Page[domain.Department], error) {
		return s.departments.List(ctx, f)
	})
}

func (s *DepartmentService) Get(ctx context.Context, id string) (*domain.Department, error) {
	d, _, err := query.Get(ctx, s.cache, query.NewKey(KindDepartments, "id:"+id), func(ctx context.Context) (*domain.Department, error) {
		return s.departments.Get(ctx, id)
	})
	return d, err
}

func (s *DepartmentService) Create(ctx context.Context, name string) (*domain.Department, error) {
	d, err := s.departments.Create(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KindDepartments)
	return d, nil
}

func (s *DepartmentService) Rename(ctx context.Context, id, name string) (*domain.Department, error) {
	d, err := s.departments.Rename(ctx, id, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KindDepartments, KindTickets, KindTicket)
	return d, nil
}

func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(KindDepartments, KindUsers, KindTickets)
	return nil
}

// UserService backs user management and the account screen.
type UserService struct {
	store *session.Store
	users ports.UserClient
	auth  ports.AuthClient
	cache *query.Cache
}

func NewUserService(store *session.Store, users ports.UserClient, auth ports.AuthClient, cache *query.Cache) *UserService {
	return &UserService{store: store, users: users, auth: auth, cache: cache}
}

func (s *UserService) List(ctx context.Context, f domain.UserFilter) (*List[domain.User], error) {
	f.PageRequest = f.PageRequest.Normalize()
	f.TenantID = scopedTenant(s.store, f.TenantID)
	f.Search = strings.TrimSpace(f.Search)
	return listOf(ctx, s.cache, query.NewKey(KindUsers, f), func(ctx context.Context) (domain.Page[domain.User], error) {
		return s.users.List(ctx, f)
	})
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, _, err := query.Get(ctx, s.cache, query.NewKey(KindUsers, "id:"+id), func(ctx context.Context) (*domain.User, error) {
		return s.users.Get(ctx, id)
	})
	return u, err
}

// CreateEmployee registers an employee in the admin's tenant.
func (s *UserService) CreateEmployee(ctx context.Context, reg domain.EmployeeRegistration) (*domain.User, error) {
	u, err := s.auth.RegisterEmployee(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KindUsers, KindAnalytics)
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, in domain.UserUpdate) (*domain.User, error) {
	if in.Role != "" && !in.Role.Valid() {
		return nil, domain.ErrValidation
	}
	u, err := s.users.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KindUsers, KindAnalytics)
	if cur := s.store.CurrentUser(); cur != nil && cur.ID == u.ID {
		if err := s.store.SetCurrentUser(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(KindUsers, KindAnalytics)
	return nil
}

// ChangePassword changes the current user's password and refreshes the
// session's user record from the backend's answer.
func (s *UserService) ChangePassword(ctx context.Context, current, next string) (*domain.User, error) {
	u, err := s.users.ChangePassword(ctx, current, next)
	if err != nil {
		return nil, err
	}
	if cur := s.store.CurrentUser(); cur != nil && u.DepartmentID == "" {
		u.DepartmentID = cur.DepartmentID
	}
	if err := s.store.SetCurrentUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// TenantService backs the superAdmin's tenant management screen.
type TenantService struct {
	store   *session.Store
	tenants ports.TenantClient
	cache   *query.Cache
}

func NewTenantService(store *session.Store, tenants ports.TenantClient, cache *query.Cache) *TenantService {
	return &TenantService{store: store, tenants: tenants, cache: cache}
}

func (s *TenantService) List(ctx context.Context, f domain.ListFilter) (*List[domain.Tenant], error) {
	f.PageRequest = f.PageRequest.Normalize()
	f.Search = strings.TrimSpace(f.Search)
	return listOf(ctx, s.cache, query.NewKey(KindTenants, f), func(ctx context.Context) (domain.Page[domain.Tenant], error) {
		return s.tenants.List(ctx, f)
	})
}

func (s *TenantService) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	t, _, err := query.Get(ctx, s.cache, query.NewKey(KindTenants, "id:"+id), func(ctx context.Context) (*domain.Tenant, error) {
		return s.tenants.Get(ctx, id)
	})
	return t, err
}

func (s *TenantService) Create(ctx context.Context, in domain.TenantInput) (*domain.Tenant, error) {
	t, err := s.tenants.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KindTenants, KindAnalytics)
	return t, nil
}

func (s *TenantService) Update(ctx context.Context, id string, in domain.TenantInput) (*domain.Tenant, error) {
	t, err := s.tenants.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KindTenants, KindAnalytics)
	return t, nil
}

// Delete removes a tenant. Deleting the operating tenant unselects it.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	if err := s.tenants.Delete(ctx, id); err != nil {
		return err
	}
	if s.store.OperatingTenantID() == id && !currentRole(s.store).TenantScoped() {
		_ = s.store.SelectTenant("")
		s.cache.Reset()
		return nil
	}
	s.cache.Invalidate(KindTenants, KindAnalytics, KindUsers)
	return nil
}

// SettingsService backs the tenant admin's company settings screen.
type SettingsService struct {
	settings ports.SettingsClient
	cache    *query.Cache
}

func NewSettingsService(settings ports.SettingsClient, cache *query.Cache) *SettingsService {
	return &SettingsService{settings: settings, cache: cache}
}

func (s *SettingsService) Details(ctx context.Context) (*domain.TenantSettings, error) {
	st, _, err := query.Get(ctx, s.cache, query.NewKey(KindSettings, nil), s.settings.Details)
	return st, err
}

func (s *SettingsService) UpdateWebhook(ctx context.Context, webhookURL string) (*domain.TenantSettings, error) {
	st, err := s.settings.UpdateWebhook(ctx, strings.TrimSpace(webhookURL))
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KindSettings)
	return st, nil
}
