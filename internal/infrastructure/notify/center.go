// Package notify buffers the toasts and forced navigations of one browser
// session until the dashboard polls for them.
package notify

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ticketdesk/dashboard/internal/api/metrics"
	"github.com/ticketdesk/dashboard/internal/core/domain"
)

const defaultCapacity = 50

// Events is what a poll returns. Notifications are in the order they were
// raised; Navigation is the most recent forced navigation, if any.
type Events struct {
	Notifications []domain.Notification `json:"notifications"`
	Navigation    *domain.Navigation    `json:"navigation,omitempty"`
}

// Center implements ports.Feedback for one session.
type Center struct {
	mu       sync.Mutex
	capacity int
	now      func() time.Time
	entropy  *ulid.MonotonicEntropy
	pending  []domain.Notification
	nav      *domain.Navigation
}

// NewCenter returns a Center that keeps at most capacity undelivered
// notifications, dropping the oldest. capacity <= 0 uses a default.
func NewCenter(capacity int) *Center {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Center{
		capacity: capacity,
		now:      time.Now,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// Notify queues a toast.
func (c *Center) Notify(kind domain.NotificationKind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UTC()
	c.pending = append(c.pending, domain.Notification{
		ID:        c.newIDLocked(now),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
	})
	if over := len(c.pending) - c.capacity; over > 0 {
		c.pending = append(c.pending[:0:0], c.pending[over:]...)
	}
	metrics.NotificationsTotal.WithLabelValues(string(kind)).Inc()
}

// Navigate records a forced navigation. A newer one replaces an undelivered
// older one.
func (c *Center) Navigate(target, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UTC()
	c.nav = &domain.Navigation{
		ID:        c.newIDLocked(now),
		Target:    target,
		Reason:    reason,
		CreatedAt: now,
	}
	metrics.ForcedNavigationsTotal.WithLabelValues(target).Inc()
}

// Drain returns and forgets everything queued so far.
func (c *Center) Drain() Events {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev := Events{Notifications: c.pending, Navigation: c.nav}
	if ev.Notifications == nil {
		ev.Notifications = []domain.Notification{}
	}
	c.pending = nil
	c.nav = nil
	return ev
}

// Pending reports how many notifications wait for delivery.
func (c *Center) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Center) newIDLocked(now time.Time) string {
	id, err := ulid.New(ulid.Timestamp(now), c.entropy)
	if err != nil {
		// Monotonic entropy overflows only within one millisecond.
		return ulid.Make().String()
	}
	return id.String()
}
