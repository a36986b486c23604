// Package workspace holds the per-browser-session state of the gateway.
//
// A Workspace bundles everything one dashboard tab would own in memory: its
// session store, notification center, query cache, backend clients and the
// screen services built on them. Only the bearer token outlives a
// workspace; evicted or lost workspaces are rebuilt and rehydrated from it.
package workspace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/api/metrics"
	"github.com/ticketdesk/dashboard/internal/core/ports"
	"github.com/ticketdesk/dashboard/internal/core/query"
	"github.com/ticketdesk/dashboard/internal/core/service"
	"github.com/ticketdesk/dashboard/internal/core/session"
	"github.com/ticketdesk/dashboard/internal/infrastructure/backend"
	"github.com/ticketdesk/dashboard/internal/infrastructure/notify"
)

// Services are the screen services of one workspace.
type Services struct {
	Auth        *service.AuthService
	Signup      *service.SignupService
	Tickets     *service.TicketService
	Departments *service.DepartmentService
	Users       *service.UserService
	Tenants     *service.TenantService
	Analytics   *service.AnalyticsService
	Settings    *service.SettingsService
}

type Workspace struct {
	ID       string
	Store    *session.Store
	Center   *notify.Center
	Cache    *query.Cache
	Services Services

	log      zerolog.Logger
	lastSeen atomic.Int64

	rehydrateMu sync.Mutex
	rehydrated  bool
}

// Rehydrate restores the session from its persisted token the first time
// the workspace is used. A transient backend failure leaves the workspace
// unrehydrated so the next request tries again.
func (w *Workspace) Rehydrate(ctx context.Context) error {
	w.rehydrateMu.Lock()
	defer w.rehydrateMu.Unlock()
	if w.rehydrated {
		return nil
	}

	err := w.Services.Auth.Rehydrate(ctx)
	if err != nil && (service.Transient(err) || ctx.Err() != nil) {
		return err
	}
	w.rehydrated = true
	if err != nil {
		w.log.Info().Err(err).Msg("stored token rejected; session starts unauthenticated")
	}
	return nil
}

func (w *Workspace) touch(now time.Time) { w.lastSeen.Store(now.UnixNano()) }

func (w *Workspace) idleSince() time.Time { return time.Unix(0, w.lastSeen.Load()) }

// Config wires the dependencies shared by every workspace.
type Config struct {
	Client *backend.Client
	Tokens ports.TokenStore
	// Scheduler runs background refetches; nil uses one goroutine each.
	Scheduler query.Scheduler
	// TokenTTL caps how long a token is stored.
	TokenTTL   time.Duration
	StaleAfter time.Duration
	// IdleTTL evicts workspaces unused for this long. Zero keeps them.
	IdleTTL        time.Duration
	NotifyCapacity int
	Logger         zerolog.Logger
}

func newWorkspace(id string, cfg Config) *Workspace {
	log := cfg.Logger.With().Str("session_id", id).Logger()

	store := session.NewStore(id, cfg.Tokens,
		session.WithTokenTTL(session.TTLFunc(cfg.TokenTTL)),
		session.WithLogger(log),
	)
	center := notify.NewCenter(cfg.NotifyCapacity)

	cacheOpts := []query.Option{
		query.WithStaleAfter(cfg.StaleAfter),
		query.WithObserver(metrics.CacheObserver{}),
		query.WithLogger(log),
	}
	if cfg.Scheduler != nil {
		cacheOpts = append(cacheOpts, query.WithScheduler(cfg.Scheduler))
	}
	cache := query.New(cacheOpts...)

	cl := cfg.Client.Bind(store, center).Clients()
	auth := service.NewAuthService(store, cl.Auth, cl.Tenants, cache, log)

	return &Workspace{
		ID:     id,
		Store:  store,
		Center: center,
		Cache:  cache,
		log:    log,
		Services: Services{
			Auth:        auth,
			Signup:      service.NewSignupService(cl.Auth, auth, cl.Settings, log),
			Tickets:     service.NewTicketService(store, cl.Tickets, cache, center, log),
			Departments: service.NewDepartmentService(cl.Departments, cache),
			Users:       service.NewUserService(store, cl.Users, cl.Auth, cache),
			Tenants:     service.NewTenantService(store, cl.Tenants, cache),
			Analytics:   service.NewAnalyticsService(store, cl.Analytics, cache),
			Settings:    service.NewSettingsService(cl.Settings, cache),
		},
	}
}
