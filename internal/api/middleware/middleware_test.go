package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/api/workspace"
	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/query"
	"github.com/ticketdesk/dashboard/internal/infrastructure/backend"
	"github.com/ticketdesk/dashboard/internal/infrastructure/db/memory"
)

const cookieName = "dash_sid"

func newManager(t *testing.T) *workspace.Manager {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	client, err := backend.NewClient(backend.ClientConfig{BaseURL: srv.URL, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	return workspace.NewManager(workspace.Config{
		Client: client,
		Tokens: memory.NewTokenStore(),
		Logger: zerolog.Nop(),
	})
}

// newServer mounts a guarded /tickets screen behind the session middleware.
func newServer(mgr *workspace.Manager, roles ...domain.Role) *echo.Echo {
	e := echo.New()
	e.Use(Session(mgr, CookieConfig{Name: cookieName, MaxAge: time.Hour}, zerolog.Nop()))
	e.GET("/tickets", func(c echo.Context) error {
		return c.String(http.StatusOK, Workspace(c).ID)
	}, Guard(zerolog.Nop(), roles...))
	return e
}

func login(t *testing.T, ws *workspace.Workspace, u *domain.User) {
	t.Helper()
	if err := ws.Store.BeginAuthentication(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := ws.Store.CompleteAuthentication(context.Background(), "tok", u); err != nil {
		t.Fatal(err)
	}
}

func get(e *echo.Echo, target, sid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: sid})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func TestSession_IssuesCookie(t *testing.T) {
	e := newServer(newManager(t))
	rec := get(e, "/tickets", "")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != cookieName || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}
}

func TestSession_ReusesValidCookie(t *testing.T) {
	mgr := newManager(t)
	e := newServer(mgr)
	const sid = "6f1c7a52-3f0e-4c55-9a43-2b1d0f1e9c11"

	rec := get(e, "/tickets", sid)
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("a valid cookie must not be replaced")
	}
	if mgr.Len() != 1 {
		t.Fatalf("workspaces = %d", mgr.Len())
	}
}

func TestSession_ReplacesForgedCookie(t *testing.T) {
	e := newServer(newManager(t))
	rec := get(e, "/tickets", "../../etc/passwd")
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "../../etc/passwd" {
		t.Fatalf("cookies = %+v", cookies)
	}
}

// ---------------------------------------------------------------------------
// Guard
// ---------------------------------------------------------------------------

func TestGuard_UnauthenticatedGoesToLogin(t *testing.T) {
	e := newServer(newManager(t))
	rec := get(e, "/tickets?status=new", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("code = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Ftickets%3Fstatus%3Dnew" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestGuard_RoleMismatchGoesToLanding(t *testing.T) {
	mgr := newManager(t)
	e := newServer(mgr, domain.RoleSuperAdmin)
	const sid = "6f1c7a52-3f0e-4c55-9a43-2b1d0f1e9c11"
	login(t, mgr.Get(sid), &domain.User{ID: "a1", Role: domain.RoleAdmin, TenantID: "T1"})

	rec := get(e, "/tickets", sid)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/analytics" {
		t.Fatalf("code=%d Location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestGuard_Allows(t *testing.T) {
	mgr := newManager(t)
	e := newServer(mgr, domain.RoleAdmin, domain.RoleEmployee)
	const sid = "6f1c7a52-3f0e-4c55-9a43-2b1d0f1e9c11"
	login(t, mgr.Get(sid), &domain.User{ID: "e1", Role: domain.RoleEmployee, TenantID: "T1", DepartmentID: "D1"})

	rec := get(e, "/tickets", sid)
	if rec.Code != http.StatusOK || rec.Body.String() != sid {
		t.Fatalf("code=%d body=%q", rec.Code, rec.Body.String())
	}
}

// roleLessSession is authenticated without a role, a state the session store
// never produces itself.
type roleLessSession struct {
	tokens  *memory.TokenStore
	id      string
	cleared bool
}

func (s *roleLessSession) Snapshot() domain.Session {
	if s.cleared {
		return domain.Session{}
	}
	return domain.Session{IsAuthenticated: true, CurrentUser: &domain.User{ID: "u1"}}
}

func (s *roleLessSession) Logout(ctx context.Context) error {
	s.cleared = true
	return s.tokens.Delete(ctx, s.id)
}

func TestGuard_RoleLessSessionIsClearedAndSentToLogin(t *testing.T) {
	const id = "6f1c7a52-3f0e-4c55-9a43-2b1d0f1e9c11"
	tokens := memory.NewTokenStore()
	if err := tokens.Set(context.Background(), id, "tok", time.Hour); err != nil {
		t.Fatal(err)
	}
	sess := &roleLessSession{tokens: tokens, id: id}
	cache := query.New()
	if _, err := cache.Query(context.Background(), query.NewKey("tickets", nil), func(context.Context) (any, error) {
		return "cached", nil
	}); err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	e.GET("/tickets", func(c echo.Context) error {
		return guard(c, func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		}, zerolog.Nop(), id, sess, cache, nil)
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets", nil))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("code=%d Location=%q", rec.Code, rec.Header().Get("Location"))
	}
	if !sess.cleared {
		t.Fatal("session must be logged out")
	}
	if tokens.Len() != 0 {
		t.Fatalf("token store holds %d tokens", tokens.Len())
	}
	if cache.Len() != 0 {
		t.Fatalf("cache holds %d entries", cache.Len())
	}
}

// ---------------------------------------------------------------------------
// RateLimiter
// ---------------------------------------------------------------------------

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)

	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, l.Middleware())

	post := func(ip, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":5555"
		if forwarded != "" {
			req.Header.Set(echo.HeaderXForwardedFor, forwarded)
			req.Header.Set(echo.HeaderXRealIP, forwarded)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := post("10.0.0.1", ""); code != http.StatusNoContent {
			t.Fatalf("attempt %d: code %d", i, code)
		}
	}
	if code := post("10.0.0.1", ""); code != http.StatusTooManyRequests {
		t.Fatalf("over burst: code %d", code)
	}
	if code := post("10.0.0.2", ""); code != http.StatusNoContent {
		t.Fatalf("other ip: code %d", code)
	}
}

func TestRateLimiter_IgnoresSpoofedForwardedFor(t *testing.T) {
	l := NewRateLimiter(1, 1)

	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, l.Middleware())

	limited := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set(echo.HeaderXForwardedFor, fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited != 19 {
		t.Fatalf("rotating X-Forwarded-For got through: %d of 19 attempts limited", limited)
	}
}
