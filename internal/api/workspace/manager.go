package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/api/metrics"
)

// Manager owns the workspaces of all browser sessions.
type Manager struct {
	cfg Config
	now func() time.Time
	log zerolog.Logger

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:   cfg,
		now:   time.Now,
		log:   cfg.Logger.With().Str("component", "workspaces").Logger(),
		items: make(map[string]*Workspace),
	}
}

// Get returns the workspace of session id, creating it on first use.
func (m *Manager) Get(id string) *Workspace {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.items[id]
	if !ok {
		w = newWorkspace(id, m.cfg)
		m.items[id] = w
		metrics.ActiveWorkspaces.Set(float64(len(m.items)))
	}
	w.touch(now)
	return w
}

// Drop removes the workspace of session id and erases its stored token. The
// id is never authenticated again unless a new login happens under it.
func (m *Manager) Drop(ctx context.Context, id string) error {
	m.mu.Lock()
	w, ok := m.items[id]
	delete(m.items, id)
	metrics.ActiveWorkspaces.Set(float64(len(m.items)))
	m.mu.Unlock()

	if !ok {
		return m.cfg.Tokens.Delete(ctx, id)
	}
	w.Cache.Reset()
	return w.Store.Logout(ctx)
}

// Len reports the number of workspaces held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// EvictIdle drops workspaces unused for the configured idle TTL and returns
// how many were dropped. Their tokens stay in the token store.
func (m *Manager) EvictIdle() int {
	if m.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, w := range m.items {
		if w.idleSince().Before(cutoff) {
			w.Cache.Reset()
			delete(m.items, id)
			n++
		}
	}
	metrics.ActiveWorkspaces.Set(float64(len(m.items)))
	return n
}

// Run evicts idle workspaces periodically until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	if m.cfg.IdleTTL <= 0 {
		return
	}
	interval := m.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.EvictIdle(); n > 0 {
				m.log.Debug().Int("evicted", n).Int("remaining", m.Len()).Msg("evicted idle workspaces")
			}
		}
	}
}
