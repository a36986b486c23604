package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/core/authz"
	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/ports"
	"github.com/ticketdesk/dashboard/internal/core/query"
	"github.com/ticketdesk/dashboard/internal/core/session"
)

// AuthService drives the session through login, rehydration, tenant
// selection and logout.
type AuthService struct {
	store   *session.Store
	auth    ports.AuthClient
	tenants ports.TenantClient
	cache   *query.Cache
	logger  zerolog.Logger
}

func NewAuthService(store *session.Store, auth ports.AuthClient, tenants ports.TenantClient, cache *query.Cache, logger zerolog.Logger) *AuthService {
	return &AuthService{store: store, auth: auth, tenants: tenants, cache: cache, logger: logger}
}

// Login authenticates creds and returns the role's landing path.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if creds.Username == "" || creds.Password == "" {
		return "", domain.ErrInvalidCredentials
	}
	if err := s.store.BeginAuthentication(ctx); err != nil {
		return "", err
	}

	res, err := s.auth.Login(ctx, creds)
	if err != nil {
		s.store.AbortAuthentication(ctx)
		s.cache.Reset()
		return "", err
	}
	if err := s.store.CompleteAuthentication(ctx, res.Token, res.User); err != nil {
		return "", err
	}

	// Nothing cached for a previous user may leak into this one.
	s.cache.Reset()
	s.logger.Info().Str("user_id", res.User.ID).Str("role", string(res.User.Role)).Msg("logged in")
	return authz.Landing(res.User.Role), nil
}

// Rehydrate rebuilds the session from a persisted token after a restart.
// It returns nil without doing anything when no token is stored.
func (s *AuthService) Rehydrate(ctx context.Context) error {
	token, _, err := s.store.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" || s.store.IsAuthenticated() {
		return nil
	}
	if err := s.store.BeginAuthentication(ctx); err != nil {
		return err
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		s.store.Clear()
		return fmt.Errorf("rehydrate session: %w", err)
	}
	if user.Role == domain.RoleEmployee && user.DepartmentID == "" {
		user.DepartmentID = session.ClaimedDepartment(token, user.ID)
	}
	if err := s.store.CompleteAuthentication(ctx, token, user); err != nil {
		return err
	}
	s.logger.Debug().Str("user_id", user.ID).Msg("session rehydrated")
	return nil
}

// Refresh reloads the current user from the backend.
func (s *AuthService) Refresh(ctx context.Context) (*domain.User, error) {
	user, err := s.auth.Me(ctx)
	if err != nil {
		return nil, err
	}
	if cur := s.store.CurrentUser(); cur != nil && user.DepartmentID == "" {
		user.DepartmentID = cur.DepartmentID
	}
	if err := s.store.SetCurrentUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SelectTenant sets the superAdmin's operating tenant after checking that it
// exists. Cached data of the previous tenant is dropped.
func (s *AuthService) SelectTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	if tenantID == "" {
		return nil, domain.ErrNoOperatingTenant
	}
	sess := s.store.Snapshot()
	if !sess.IsAuthenticated {
		return nil, domain.ErrNotAuthenticated
	}
	if sess.Role().TenantScoped() {
		if tenantID != sess.CurrentUser.TenantID {
			return nil, domain.ErrTenantMismatch
		}
		return &domain.Tenant{ID: tenantID}, nil
	}

	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SelectTenant(tenant.ID); err != nil {
		return nil, err
	}
	if sess.OperatingTenantID != tenant.ID {
		s.cache.Reset()
	}
	return tenant, nil
}

// Logout erases the token and forgets everything cached.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.store.Logout(ctx)
	s.cache.Reset()
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", s.store.ID()).Msg("logout failed to erase token")
	}
	return err
}

// Transient reports whether a failed backend call may succeed if repeated.
func Transient(err error) bool {
	return errors.Is(err, domain.ErrNetworkUnreachable) || errors.Is(err, domain.ErrServerFault)
}
