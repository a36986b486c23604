package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/api/middleware"
	"github.com/ticketdesk/dashboard/internal/api/workspace"
	"github.com/ticketdesk/dashboard/internal/infrastructure/backend"
	"github.com/ticketdesk/dashboard/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

const (
	cookieName = "dash_sid"
	sid        = "6f1c7a52-3f0e-4c55-9a43-2b1d0f1e9c11"
)

const adminJSON = `{"id":"a1","username":"alice","email":"alice@acme.io","role":"admin","company_id":"T1"}`

type harness struct {
	e           *echo.Echo
	mgr         *workspace.Manager
	tokens      *memory.TokenStore
	webhookDown atomic.Bool
	// sid is the session cookie the browser currently holds.
	sid string
}

// newHarness serves the handlers behind the session middleware against a
// fake ticketing backend with one tenant admin.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{sid: sid, tokens: memory.NewTokenStore()}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("username") != "alice" || r.FormValue("password") != "s3cret!!" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
			return
		}
		writeJSON(w, `{"access_token":"tok-alice","token_type":"bearer","user":`+adminJSON+`}`)
	})
	mux.HandleFunc("POST /auth/register-user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, adminJSON)
	})
	mux.HandleFunc("PUT /company-settings/webhook", func(w http.ResponseWriter, r *http.Request) {
		if h.webhookDown.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, `{"id":"T1","name":"Acme","api_key":"k","webhook_url":"https://hooks.acme.io/x"}`)
	})
	mux.HandleFunc("GET /tickets/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"id":"`+r.PathValue("id")+`","subject":"Refund","customer_email":"c@x.io","status":"new","company_id":"T1"}`)
	})
	mux.HandleFunc("GET /tickets/{id}/interactions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[{"id":"i1","ticket_id":"`+r.PathValue("id")+`","interaction_type":"customer_complaint","content":"where is my money","author":"c@x.io"}]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(backend.ClientConfig{BaseURL: srv.URL, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	h.mgr = workspace.NewManager(workspace.Config{
		Client: client,
		Tokens: h.tokens,
		Logger: zerolog.Nop(),
	})

	e := echo.New()
	e.Validator = NewValidator()
	e.Use(middleware.Session(h.mgr, middleware.CookieConfig{Name: cookieName, MaxAge: time.Hour}, zerolog.Nop()))

	auth := NewAuthHandler(zerolog.Nop())
	e.GET("/login", auth.LoginScreen)
	e.POST("/login", auth.Login)
	e.POST("/logout", auth.Logout)
	e.POST("/signup", auth.Signup)
	home := NewHomeHandler()
	e.GET("/", home.Home)
	e.GET("/events", home.Events)
	tickets := NewTicketHandler()
	e.GET("/tickets/:id", tickets.Get)
	e.POST("/tickets/:id/draft-reply", tickets.DraftReply)
	analytics := NewAnalyticsHandler()
	e.GET("/analytics", analytics.Dashboard)
	dir := NewDirectoryHandler()
	e.POST("/account/password", dir.ChangePassword)

	h.e = e
	return h
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (h *harness) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.AddCookie(&http.Cookie{Name: cookieName, Value: h.sid})
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieName {
			h.sid = ck.Value
		}
	}
	return rec
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/login", `{"username":"alice","password":"s3cret!!"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
}

// newClient returns a second browser on the same server holding id.
func newClient(h *harness, id string) *harness {
	return &harness{e: h.e, mgr: h.mgr, tokens: h.tokens, sid: id}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestLogin_RedirectsToLanding(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/login", `{"username":"alice","password":"s3cret!!","next":"//evil.example"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	decode(t, rec, &resp)
	if resp.Redirect != "/analytics" || resp.User == nil || resp.User.TenantID != "T1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLogin_HonoursSafeNext(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/login", `{"username":"alice","password":"s3cret!!","next":"/tickets?status=new"}`)
	var resp loginResponse
	decode(t, rec, &resp)
	if resp.Redirect != "/tickets?status=new" {
		t.Fatalf("redirect = %q", resp.Redirect)
	}
}

func TestLogin_IssuesFreshSessionID(t *testing.T) {
	h := newHarness(t)
	// The browser arrives with an id chosen by someone else.
	planted := h.sid
	h.do(t, http.MethodGet, "/login", "")

	h.login(t)
	if h.sid == planted {
		t.Fatalf("login kept the planted session id")
	}
	if !h.mgr.Get(h.sid).Store.IsAuthenticated() {
		t.Fatalf("new session id is not authenticated")
	}
	if tok, _ := h.tokens.Get(context.Background(), h.sid); tok != "tok-alice" {
		t.Fatalf("token under new id = %q", tok)
	}

	// Whoever holds the planted id gets nothing.
	other := newClient(h, planted)
	rec := other.do(t, http.MethodGet, "/login", "")
	var resp loginScreenResponse
	decode(t, rec, &resp)
	if resp.Authenticated {
		t.Fatalf("planted session id became authenticated")
	}
	if _, err := h.tokens.Get(context.Background(), planted); err == nil {
		t.Fatalf("a token is stored under the planted id")
	}
}

func TestLogin_FailureStillRotatesAndDropsOldSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	before := h.sid

	rec := h.do(t, http.MethodPost, "/login", `{"username":"alice","password":"wrong-password"}`)
	if rec.Code == http.StatusOK {
		t.Fatalf("login with a wrong password succeeded")
	}
	if h.sid == before {
		t.Fatalf("session id not rotated")
	}
	if h.tokens.Len() != 0 {
		t.Fatalf("%d tokens left after failed re-login", h.tokens.Len())
	}
}

func TestLogin_MissingPassword(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/login", `{"username":"alice"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("message should name the field: %s", rec.Body.String())
	}
}

func TestLoginScreen_AfterLogin(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	rec := h.do(t, http.MethodGet, "/login?next=/tickets", "")
	var resp loginScreenResponse
	decode(t, rec, &resp)
	if !resp.Authenticated || resp.Redirect != "/analytics" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	rec := h.do(t, http.MethodPost, "/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if h.mgr.Get(h.sid).Store.IsAuthenticated() {
		t.Fatal("session must be cleared")
	}
}

func TestSignup_Success(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/signup",
		`{"username":"alice","email":"alice@acme.io","password":"s3cret!!","company_name":"Acme","webhook_url":"https://hooks.acme.io/x"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp signupResponse
	decode(t, rec, &resp)
	if len(resp.Completed) != 3 || resp.Redirect != "/analytics" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSignup_PartialKeepsCompletedSteps(t *testing.T) {
	h := newHarness(t)
	h.webhookDown.Store(true)

	rec := h.do(t, http.MethodPost, "/signup",
		`{"username":"alice","email":"alice@acme.io","password":"s3cret!!","company_name":"Acme","webhook_url":"https://hooks.acme.io/x"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp signupResponse
	decode(t, rec, &resp)
	if len(resp.Completed) != 2 || resp.Error == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !h.mgr.Get(h.sid).Store.IsAuthenticated() {
		t.Fatal("login step must not be rolled back")
	}
}

func TestSignup_Validation(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/signup", `{"username":"al","email":"nope","password":"short","company_name":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Screens
// ---------------------------------------------------------------------------

func TestHome_NavigationFollowsRole(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	rec := h.do(t, http.MethodGet, "/", "")
	var resp homeResponse
	decode(t, rec, &resp)
	if resp.OperatingTenantID != "T1" {
		t.Fatalf("operating tenant = %q", resp.OperatingTenantID)
	}
	var paths []string
	for _, n := range resp.Navigation {
		paths = append(paths, n.Path)
	}
	got := strings.Join(paths, ",")
	if strings.Contains(got, "/companies") || !strings.Contains(got, "/analytics") {
		t.Fatalf("navigation = %s", got)
	}
}

func TestTicketDetail(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	rec := h.do(t, http.MethodGet, "/tickets/42", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ticketDetailResponse
	decode(t, rec, &resp)
	if resp.Ticket == nil || resp.Ticket.ID != "42" || len(resp.Interactions) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDraftReply_RejectsLongTone(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	rec := h.do(t, http.MethodPost, "/tickets/42/draft-reply", `{"tone":"`+strings.Repeat("x", 41)+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalytics_BadDate(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	for _, q := range []string{"from=yesterday", "to=2026-13-01", "from=2026-02-01&to=2026-01-01", "interval=hour"} {
		rec := h.do(t, http.MethodGet, "/analytics?"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestChangePassword_MustDiffer(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	rec := h.do(t, http.MethodPost, "/account/password", `{"current_password":"s3cret!!","new_password":"s3cret!!"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-03-04")
	if err != nil || d.Day() != 4 {
		t.Fatalf("date: %v %v", d, err)
	}
	ts, err := parseDate("2026-03-04T10:00:00Z")
	if err != nil || ts.Hour() != 10 {
		t.Fatalf("rfc3339: %v %v", ts, err)
	}
	if d, err := parseDate(""); err != nil || !d.IsZero() {
		t.Fatalf("empty: %v %v", d, err)
	}
}
