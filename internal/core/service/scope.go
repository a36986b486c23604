// Package service holds the per-screen data hooks of the dashboard. Reads go
// through the session's query cache; a successful mutation invalidates every
// cached kind it can affect.
package service

import (
	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/session"
)

// Cache kinds.
const (
	KindTickets      = "tickets"
	KindTicket       = "ticket"
	KindInteractions = "interactions"
	KindAnalytics    = "analytics"
	KindDepartments  = "departments"
	KindUsers        = "users"
	KindTenants      = "tenants"
	KindSettings     = "settings"
)

// scopedTenant returns the tenant filter to send for the current session.
// Tenant-scoped roles never send one; the backend uses their own tenant.
// A superAdmin defaults to the operating tenant.
func scopedTenant(store *session.Store, requested string) string {
	sess := store.Snapshot()
	if sess.Role().TenantScoped() {
		return ""
	}
	if requested != "" {
		return requested
	}
	return sess.OperatingTenantID
}

func currentRole(store *session.Store) domain.Role {
	return store.Snapshot().Role()
}
