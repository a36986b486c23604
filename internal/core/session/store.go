// Package session holds the authentication state of one browser session.
//
// A Store owns three values: whether the session is authenticated, the
// current user and the operating tenant. They only change together, through
// the mutators below. The bearer token itself lives in a ports.TokenStore and
// is read on every request.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/ports"
)

// State is the authentication state machine:
//
//	Unauthenticated → Authenticating → Authenticated
//	Authenticated → Unauthenticated (logout, 401, missing role)
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Store is the session store of a single browser session. Create one per
// session with NewStore; it is safe for concurrent use.
type Store struct {
	id     string
	tokens ports.TokenStore
	ttlFor func(token string) time.Duration
	log    zerolog.Logger

	mu    sync.RWMutex
	state State
	sess  domain.Session
	// generation identifies the current token epoch. Login, logout and
	// expiry each start a new one.
	generation uint64
}

// Option configures a Store.
type Option func(*Store)

// WithTokenTTL sets how long a freshly stored token is kept.
func WithTokenTTL(fn func(token string) time.Duration) Option {
	return func(s *Store) { s.ttlFor = fn }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func NewStore(id string, tokens ports.TokenStore, opts ...Option) *Store {
	s := &Store{
		id:         id,
		tokens:     tokens,
		ttlFor:     func(string) time.Duration { return 0 },
		log:        zerolog.Nop(),
		generation: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the browser session id this store belongs to.
func (s *Store) ID() string { return s.id }

// Snapshot returns a consistent copy of the session.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{
		IsAuthenticated:   s.sess.IsAuthenticated,
		CurrentUser:       s.sess.CurrentUser.Clone(),
		OperatingTenantID: s.sess.OperatingTenantID,
	}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.IsAuthenticated
}

func (s *Store) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.CurrentUser.Clone()
}

func (s *Store) OperatingTenantID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.OperatingTenantID
}

// Generation returns the current token epoch.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// BeginAuthentication moves the session into Authenticating. Starting over
// from Authenticated ends the current token epoch and erases its token, so a
// failed login never leaves the previous credentials behind.
func (s *Store) BeginAuthentication(ctx context.Context) error {
	s.mu.Lock()
	var erase bool
	switch s.state {
	case Authenticating:
		s.mu.Unlock()
		return fmt.Errorf("%w: authentication already in progress", domain.ErrInvalidTransition)
	case Authenticated:
		s.generation++
		s.resetLocked()
		erase = true
	}
	s.state = Authenticating
	s.mu.Unlock()

	if erase {
		if err := s.tokens.Delete(context.WithoutCancel(ctx), s.id); err != nil {
			s.Clear()
			return fmt.Errorf("erase token: %w", err)
		}
	}
	return nil
}

// AbortAuthentication ends a login attempt that failed before a token was
// issued. Any token stored for the session is erased.
func (s *Store) AbortAuthentication(ctx context.Context) {
	s.discard(ctx)
}

// CompleteAuthentication persists token and marks the session authenticated
// for user. A missing token or role discards the token, clears the session
// and returns domain.ErrCorruptedSession.
func (s *Store) CompleteAuthentication(ctx context.Context, token string, user *domain.User) error {
	if s.State() != Authenticating {
		return fmt.Errorf("%w: not authenticating", domain.ErrInvalidTransition)
	}
	if token == "" || user == nil || user.Role == "" {
		s.discard(ctx)
		return domain.ErrCorruptedSession
	}

	if err := s.tokens.Set(ctx, s.id, token, s.ttlFor(token)); err != nil {
		s.Clear()
		return fmt.Errorf("persist token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Authenticating {
		// Cleared while the token was being written.
		return fmt.Errorf("%w: session cleared during authentication", domain.ErrInvalidTransition)
	}
	s.generation++
	s.state = Authenticated
	s.sess = domain.Session{
		IsAuthenticated:   true,
		CurrentUser:       user.Clone(),
		OperatingTenantID: operatingTenantFor(user, ""),
	}
	return nil
}

// SetCurrentUser replaces the user record after a token refresh. The same
// role invariant as CompleteAuthentication applies.
func (s *Store) SetCurrentUser(ctx context.Context, user *domain.User) error {
	if user == nil || user.Role == "" {
		s.discard(ctx)
		return domain.ErrCorruptedSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Authenticated {
		return domain.ErrNotAuthenticated
	}
	s.sess.CurrentUser = user.Clone()
	s.sess.OperatingTenantID = operatingTenantFor(user, s.sess.OperatingTenantID)
	return nil
}

// SelectTenant sets the operating tenant of a superAdmin. Tenant-scoped roles
// can only "select" their own tenant.
func (s *Store) SelectTenant(tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticated || s.sess.CurrentUser == nil {
		return domain.ErrNotAuthenticated
	}
	user := s.sess.CurrentUser
	if user.Role.TenantScoped() {
		if tenantID != user.TenantID {
			return domain.ErrTenantMismatch
		}
		return nil
	}
	s.sess.OperatingTenantID = tenantID
	return nil
}

// Clear atomically resets the session to its empty, unauthenticated value.
// It is idempotent and does not touch the stored token.
func (s *Store) Clear() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

// Logout erases the token and clears the session.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	s.resetLocked()
	s.mu.Unlock()

	if err := s.tokens.Delete(ctx, s.id); err != nil {
		return fmt.Errorf("erase token: %w", err)
	}
	return nil
}

// Expire handles a 401 for a request sent in token epoch generation. Only
// the first call per epoch erases the token and clears the session; it
// returns true. Later calls for the same epoch return false.
func (s *Store) Expire(ctx context.Context, generation uint64) bool {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return false
	}
	s.generation++
	s.resetLocked()
	s.mu.Unlock()

	if err := s.tokens.Delete(context.WithoutCancel(ctx), s.id); err != nil {
		s.log.Error().Err(err).Str("session_id", s.id).Msg("failed to erase expired token")
	}
	return true
}

// Token reads the stored bearer token together with the epoch it belongs
// to. An absent token is returned as "". The read is retried when the epoch
// moves while the token store is being read, so a token is never paired with
// another login's epoch.
func (s *Store) Token(ctx context.Context) (string, uint64, error) {
	for {
		generation := s.Generation()
		token, err := s.tokens.Get(ctx, s.id)
		if s.Generation() != generation {
			if ctx.Err() != nil {
				return "", generation, ctx.Err()
			}
			continue
		}
		if errors.Is(err, ports.ErrTokenNotFound) {
			return "", generation, nil
		}
		if err != nil {
			return "", generation, fmt.Errorf("read token: %w", err)
		}
		return token, generation, nil
	}
}

// Invariant reports the first broken session invariant, if any.
func (s *Store) Invariant() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.sess.IsAuthenticated != (s.state == Authenticated) {
		return fmt.Errorf("state %s with is_authenticated=%t", s.state, s.sess.IsAuthenticated)
	}
	if !s.sess.IsAuthenticated {
		if s.sess.CurrentUser != nil || s.sess.OperatingTenantID != "" {
			return errors.New("unauthenticated session holds user data")
		}
		return nil
	}
	if s.sess.Corrupted() {
		return domain.ErrCorruptedSession
	}
	u := s.sess.CurrentUser
	if u.Role.TenantScoped() && s.sess.OperatingTenantID != u.TenantID {
		return domain.ErrTenantMismatch
	}
	return nil
}

func (s *Store) discard(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	s.resetLocked()
	s.mu.Unlock()

	if err := s.tokens.Delete(context.WithoutCancel(ctx), s.id); err != nil {
		s.log.Error().Err(err).Str("session_id", s.id).Msg("failed to discard token")
	}
}

func (s *Store) resetLocked() {
	s.state = Unauthenticated
	s.sess = domain.Session{}
}

// operatingTenantFor mirrors the user's tenant for tenant-scoped roles and
// keeps the current selection for superAdmin.
func operatingTenantFor(user *domain.User, current string) string {
	if user.Role.TenantScoped() {
		return user.TenantID
	}
	return current
}
