package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub token store
// ---------------------------------------------------------------------------

type stubTokenStore struct {
	mu      sync.Mutex
	tokens  map[string]string
	ttls    map[string]time.Duration
	gets    int
	deletes int
	setErr  error
	// onGet runs before each read, outside the lock.
	onGet func()
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubTokenStore) Get(_ context.Context, id string) (string, error) {
	if s.onGet != nil {
		s.onGet()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	tok, ok := s.tokens[id]
	if !ok {
		return "", ports.ErrTokenNotFound
	}
	return tok, nil
}

func (s *stubTokenStore) Set(_ context.Context, id, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.tokens[id] = token
	s.ttls[id] = ttl
	return nil
}

func (s *stubTokenStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	delete(s.tokens, id)
	return nil
}

func (s *stubTokenStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[id]
	return ok
}

func tenantAdmin() *domain.User {
	return &domain.User{ID: "u1", Username: "ana", Role: domain.RoleAdmin, TenantID: "T1"}
}

func login(t *testing.T, s *Store, token string, u *domain.User) {
	t.Helper()
	if err := s.BeginAuthentication(context.Background()); err != nil {
		t.Fatalf("BeginAuthentication: %v", err)
	}
	if err := s.CompleteAuthentication(context.Background(), token, u); err != nil {
		t.Fatalf("CompleteAuthentication: %v", err)
	}
}

func assertEmpty(t *testing.T, s *Store) {
	t.Helper()
	snap := s.Snapshot()
	if snap.IsAuthenticated || snap.CurrentUser != nil || snap.OperatingTenantID != "" {
		t.Fatalf("expected empty session, got %+v", snap)
	}
	if s.State() != Unauthenticated {
		t.Fatalf("expected unauthenticated, got %s", s.State())
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestStore_ClearFromEveryState(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*Store)
	}{
		{"unauthenticated", func(*Store) {}},
		{"authenticating", func(s *Store) { _ = s.BeginAuthentication(context.Background()) }},
		{"authenticated", func(s *Store) { login(t, s, "tok", tenantAdmin()) }},
		{"superadmin with tenant", func(s *Store) {
			login(t, s, "tok", &domain.User{ID: "root", Role: domain.RoleSuperAdmin})
			_ = s.SelectTenant("T9")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore("sid", newStubTokenStore())
			tc.setup(s)
			s.Clear()
			assertEmpty(t, s)
			s.Clear()
			assertEmpty(t, s)
			if err := s.Invariant(); err != nil {
				t.Fatalf("invariant broken after clear: %v", err)
			}
		})
	}
}

func TestStore_TenantAdminLogin(t *testing.T) {
	tokens := newStubTokenStore()
	s := NewStore("sid", tokens)

	login(t, s, "tok-1", tenantAdmin())

	snap := s.Snapshot()
	if !snap.IsAuthenticated {
		t.Fatalf("expected authenticated")
	}
	if snap.OperatingTenantID != "T1" {
		t.Fatalf("expected operating tenant T1, got %q", snap.OperatingTenantID)
	}
	if tokens.tokens["sid"] != "tok-1" {
		t.Fatalf("token not persisted")
	}
	if err := s.Invariant(); err != nil {
		t.Fatalf("invariant: %v", err)
	}
}

func TestStore_SuperAdminHasNoTenantUntilSelected(t *testing.T) {
	s := NewStore("sid", newStubTokenStore())
	login(t, s, "tok", &domain.User{ID: "root", Role: domain.RoleSuperAdmin, TenantID: "T0"})

	if got := s.OperatingTenantID(); got != "" {
		t.Fatalf("expected no operating tenant, got %q", got)
	}
	if err := s.SelectTenant("T7"); err != nil {
		t.Fatalf("SelectTenant: %v", err)
	}
	if got := s.OperatingTenantID(); got != "T7" {
		t.Fatalf("expected T7, got %q", got)
	}
}

func TestStore_TenantScopedCannotSwitchTenant(t *testing.T) {
	s := NewStore("sid", newStubTokenStore())
	login(t, s, "tok", tenantAdmin())

	if err := s.SelectTenant("T2"); !errors.Is(err, domain.ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
	if err := s.SelectTenant("T1"); err != nil {
		t.Fatalf("selecting own tenant: %v", err)
	}
	if s.OperatingTenantID() != "T1" {
		t.Fatalf("tenant changed")
	}
}

func TestStore_MissingRoleDiscardsToken(t *testing.T) {
	tokens := newStubTokenStore()
	tokens.tokens["sid"] = "stale"
	s := NewStore("sid", tokens)

	if err := s.BeginAuthentication(context.Background()); err != nil {
		t.Fatalf("BeginAuthentication: %v", err)
	}
	err := s.CompleteAuthentication(context.Background(), "tok", &domain.User{ID: "u1"})
	if !errors.Is(err, domain.ErrCorruptedSession) {
		t.Fatalf("expected ErrCorruptedSession, got %v", err)
	}
	assertEmpty(t, s)
	if tokens.has("sid") {
		t.Fatalf("token must be discarded")
	}
}

func TestStore_CompleteRequiresAuthenticating(t *testing.T) {
	s := NewStore("sid", newStubTokenStore())
	err := s.CompleteAuthentication(context.Background(), "tok", tenantAdmin())
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := s.BeginAuthentication(context.Background()); err != nil {
		t.Fatalf("BeginAuthentication: %v", err)
	}
	if err := s.BeginAuthentication(context.Background()); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for double begin, got %v", err)
	}
}

func TestStore_PersistFailureClears(t *testing.T) {
	tokens := newStubTokenStore()
	tokens.setErr = errors.New("redis down")
	s := NewStore("sid", tokens)
	_ = s.BeginAuthentication(context.Background())

	if err := s.CompleteAuthentication(context.Background(), "tok", tenantAdmin()); err == nil {
		t.Fatalf("expected error")
	}
	assertEmpty(t, s)
}

func TestStore_SetCurrentUserWithoutRole(t *testing.T) {
	tokens := newStubTokenStore()
	s := NewStore("sid", tokens)
	login(t, s, "tok", tenantAdmin())

	if err := s.SetCurrentUser(context.Background(), &domain.User{ID: "u1"}); !errors.Is(err, domain.ErrCorruptedSession) {
		t.Fatalf("expected ErrCorruptedSession, got %v", err)
	}
	assertEmpty(t, s)
	if tokens.has("sid") {
		t.Fatalf("token must be discarded")
	}
}

func TestStore_ExpireOncePerGeneration(t *testing.T) {
	tokens := newStubTokenStore()
	s := NewStore("sid", tokens)
	login(t, s, "tok", tenantAdmin())
	gen := s.Generation()

	var first atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Expire(context.Background(), gen) {
				first.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := first.Load(); got != 1 {
		t.Fatalf("expected exactly one expiry, got %d", got)
	}
	assertEmpty(t, s)
	if tokens.has("sid") {
		t.Fatalf("token must be erased")
	}
}

func TestStore_ExpireIgnoresOldGeneration(t *testing.T) {
	s := NewStore("sid", newStubTokenStore())
	login(t, s, "tok-1", tenantAdmin())
	old := s.Generation()

	_ = s.Logout(context.Background())
	login(t, s, "tok-2", tenantAdmin())

	if s.Expire(context.Background(), old) {
		t.Fatalf("a 401 from the previous login must not end the new one")
	}
	if !s.IsAuthenticated() {
		t.Fatalf("session should still be authenticated")
	}
}

func TestStore_TokenIsReadEveryTime(t *testing.T) {
	tokens := newStubTokenStore()
	s := NewStore("sid", tokens)

	tok, _, err := s.Token(context.Background())
	if err != nil || tok != "" {
		t.Fatalf("expected empty token, got %q, %v", tok, err)
	}
	tokens.tokens["sid"] = "abc"
	tok, _, _ = s.Token(context.Background())
	if tok != "abc" {
		t.Fatalf("expected abc, got %q", tok)
	}
	if tokens.gets != 2 {
		t.Fatalf("expected 2 reads, got %d", tokens.gets)
	}
}

func TestStore_TokenNeverPairsWithOtherEpoch(t *testing.T) {
	tokens := newStubTokenStore()
	s := NewStore("sid", tokens)
	login(t, s, "tok-1", tenantAdmin())

	// A logout and a new login land between reading the epoch and reading
	// the token.
	var once sync.Once
	tokens.onGet = func() {
		once.Do(func() {
			_ = s.Logout(context.Background())
			login(t, s, "tok-2", tenantAdmin())
		})
	}

	tok, gen, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "tok-2" || gen != s.Generation() {
		t.Fatalf("got %q in epoch %d, current epoch %d", tok, gen, s.Generation())
	}
	if tokens.gets != 2 {
		t.Fatalf("expected the read to be retried once, got %d reads", tokens.gets)
	}
}

func TestStore_ReloginErasesPreviousToken(t *testing.T) {
	tokens := newStubTokenStore()
	s := NewStore("sid", tokens)
	login(t, s, "tok-1", tenantAdmin())
	old := s.Generation()

	if err := s.BeginAuthentication(context.Background()); err != nil {
		t.Fatalf("BeginAuthentication: %v", err)
	}
	if tokens.has("sid") {
		t.Fatalf("previous token must be erased when starting over")
	}
	if s.Generation() == old {
		t.Fatalf("starting over must open a new epoch")
	}
	if s.IsAuthenticated() {
		t.Fatalf("session must not stay authenticated while logging in again")
	}

	s.AbortAuthentication(context.Background())
	assertEmpty(t, s)
	if tok, _, _ := s.Token(context.Background()); tok != "" {
		t.Fatalf("failed login left token %q", tok)
	}
}

func TestStore_LogoutErasesToken(t *testing.T) {
	tokens := newStubTokenStore()
	s := NewStore("sid", tokens)
	login(t, s, "tok", tenantAdmin())

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	assertEmpty(t, s)
	if tokens.has("sid") {
		t.Fatalf("token must be erased")
	}
}

func TestTokenTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	sign := func(exp time.Time) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()})
		s, err := tok.SignedString([]byte("other-service-secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	if got := TokenTTL(sign(now.Add(30*time.Minute)), 24*time.Hour, now); got != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", got)
	}
	if got := TokenTTL(sign(now.Add(48*time.Hour)), 24*time.Hour, now); got != 24*time.Hour {
		t.Fatalf("expected cap of 24h, got %v", got)
	}
	if got := TokenTTL(sign(now.Add(-time.Minute)), 24*time.Hour, now); got != time.Second {
		t.Fatalf("expected 1s for expired token, got %v", got)
	}
	if got := TokenTTL("opaque-token", time.Hour, now); got != time.Hour {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestClaimedDepartment(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "eve@x.io",
		"user": map[string]any{"id": "u2", "role": "employee", "department_id": "D3"},
	})
	signed, err := tok.SignedString([]byte("other-service-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if got := ClaimedDepartment(signed, "u2"); got != "D3" {
		t.Fatalf("expected D3, got %q", got)
	}
	if got := ClaimedDepartment(signed, "someone-else"); got != "" {
		t.Fatalf("claims of another user must be ignored, got %q", got)
	}
	if got := ClaimedDepartment("opaque", "u2"); got != "" {
		t.Fatalf("opaque tokens carry no department, got %q", got)
	}
}
