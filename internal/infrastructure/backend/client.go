// Package backend is the HTTP adapter to the helpdesk backend API.
//
// A Client is shared by the whole gateway. Each browser session binds it to
// its own session store and feedback surface with Bind; the resulting Conn
// runs the pre-send hook (bearer token, acting tenant) and the post-receive
// hook (error taxonomy, notifications, one-time session expiry) on every
// call. Nothing is retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/api/metrics"
	"github.com/ticketdesk/dashboard/internal/core/authz"
	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/ports"
)

// HeaderActingTenant carries the superAdmin's operating tenant.
const HeaderActingTenant = "X-Acting-Company-Id"

const maxBodyBytes = 4 << 20

// Session is what a Conn needs from the session store.
type Session interface {
	Token(ctx context.Context) (string, uint64, error)
	Expire(ctx context.Context, generation uint64) bool
	Snapshot() domain.Session
}

type ClientConfig struct {
	BaseURL string
	// Timeout bounds one backend call. Zero means no limit.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client is the transport shared by every workspace.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend: invalid base url %q", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		log:     cfg.Logger.With().Str("component", "backend").Logger(),
	}, nil
}

// Name identifies the backend in readiness reports.
func (c *Client) Name() string { return "backend" }

// Check probes the backend's root. Any answer below 500 counts as up.
func (c *Client) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("backend answered %d", resp.StatusCode)
	}
	return nil
}

// Bind returns a connection whose hooks act on one browser session.
func (c *Client) Bind(s Session, fb ports.Feedback) *Conn {
	return &Conn{client: c, session: s, feedback: fb}
}

// Conn is a Client bound to one session.
type Conn struct {
	client   *Client
	session  Session
	feedback ports.Feedback
}

type request struct {
	method   string
	path     string
	resource string
	query    url.Values
	body     any
	form     url.Values
	// anonymous requests never carry a token.
	anonymous bool
}

func (c *Conn) do(ctx context.Context, req request, out any) error {
	var (
		token string
		gen   uint64
		err   error
	)
	if !req.anonymous {
		token, gen, err = c.session.Token(ctx)
		if err != nil {
			return fmt.Errorf("read session token: %w", err)
		}
	}

	httpReq, err := c.newRequest(ctx, req, token)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.client.http.Do(httpReq)
	metrics.BackendRequestDuration.WithLabelValues(req.resource).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return c.fail(ctx, req, &APIError{
			Kind:   KindNetwork,
			Method: req.method,
			Path:   req.path,
			Err:    err,
		}, token, gen)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.fail(ctx, req, &APIError{
			Kind:   KindNetwork,
			Method: req.method,
			Path:   req.path,
			Err:    err,
		}, token, gen)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(ctx, req, &APIError{
			Kind:       classify(resp.StatusCode, !req.anonymous),
			StatusCode: resp.StatusCode,
			Method:     req.method,
			Path:       req.path,
			Detail:     detailFromBody(body),
		}, token, gen)
	}

	metrics.BackendRequestsTotal.WithLabelValues(req.resource, "ok").Inc()
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

func (c *Conn) newRequest(ctx context.Context, req request, token string) (*http.Request, error) {
	target := c.client.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.body != nil:
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
		sess := c.session.Snapshot()
		if sess.Role() == domain.RoleSuperAdmin && sess.OperatingTenantID != "" {
			httpReq.Header.Set(HeaderActingTenant, sess.OperatingTenantID)
		}
	}
	return httpReq, nil
}

// fail is the post-receive error hook. token and gen are what the request
// was sent with.
func (c *Conn) fail(ctx context.Context, req request, e *APIError, token string, gen uint64) error {
	metrics.BackendRequestsTotal.WithLabelValues(req.resource, string(e.Kind)).Inc()

	ev := c.client.log.Warn()
	if e.Kind == KindServerFault || e.Kind == KindNetwork {
		ev = c.client.log.Error()
	}
	ev.Err(e.Err).
		Str("method", e.Method).
		Str("path", e.Path).
		Int("status", e.StatusCode).
		Str("kind", string(e.Kind)).
		Str("detail", e.Detail).
		Msg("backend request failed")

	switch e.Kind {
	case KindAuthExpired:
		// Concurrent 401s of one token generation surface once. A request
		// sent after the session was already cleared has nothing to expire.
		if token != "" && c.session.Expire(ctx, gen) {
			metrics.SessionExpirationsTotal.Inc()
			c.feedback.Notify(domain.NotifySessionExpired, e.Message())
			c.feedback.Navigate(authz.PathLogin, "session expired")
		}
	case KindInvalidCredentials:
		// Shown inline on the login form.
	default:
		c.feedback.Notify(e.Kind.notification(), e.Message())
	}
	return e
}

func (c *Conn) get(ctx context.Context, resource, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, resource: resource, path: path, query: query}, out)
}

func (c *Conn) send(ctx context.Context, method, resource, path string, body, out any) error {
	return c.do(ctx, request{method: method, resource: resource, path: path, body: body}, out)
}

// messageResponse is returned by delete endpoints.
type messageResponse struct {
	Message string `json:"message"`
}

// errUnexpected reports a success response without the expected payload.
var errUnexpected = errors.New("backend returned an empty payload")

// Clients groups the resource clients of one Conn.
type Clients struct {
	Auth        *Auth
	Tenants     *Tenants
	Departments *Departments
	Users       *Users
	Tickets     *Tickets
	Analytics   *Analytics
	Settings    *Settings
}

func (c *Conn) Clients() Clients {
	return Clients{
		Auth:        NewAuth(c),
		Tenants:     NewTenants(c),
		Departments: NewDepartments(c),
		Users:       NewUsers(c),
		Tickets:     NewTickets(c),
		Analytics:   NewAnalytics(c),
		Settings:    NewSettings(c),
	}
}

var (
	_ ports.AuthClient       = (*Auth)(nil)
	_ ports.TenantClient     = (*Tenants)(nil)
	_ ports.DepartmentClient = (*Departments)(nil)
	_ ports.UserClient       = (*Users)(nil)
	_ ports.TicketClient     = (*Tickets)(nil)
	_ ports.AnalyticsClient  = (*Analytics)(nil)
	_ ports.SettingsClient   = (*Settings)(nil)
)
