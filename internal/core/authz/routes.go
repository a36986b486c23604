package authz

import "github.com/ticketdesk/dashboard/internal/core/domain"

// Screen roles. Routes and navigation both read these.
var (
	SelectTenantRoles = []domain.Role{domain.RoleSuperAdmin}
	AnalyticsRoles    = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin}
	TicketRoles       = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleEmployee}
	DepartmentRoles   = []domain.Role{domain.RoleAdmin}
	UserRoles         = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin}
	TenantRoles       = []domain.Role{domain.RoleSuperAdmin}
	SettingsRoles     = []domain.Role{domain.RoleAdmin}
)

// NavItem is one entry of the dashboard's navigation menu.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var navigation = []struct {
	item  NavItem
	roles []domain.Role
}{
	{NavItem{"Tenants", PathSelectTenant}, SelectTenantRoles},
	{NavItem{"Analytics", PathAnalytics}, AnalyticsRoles},
	{NavItem{"Tickets", "/tickets"}, TicketRoles},
	{NavItem{"Departments", "/departments"}, DepartmentRoles},
	{NavItem{"Users", "/users"}, UserRoles},
	{NavItem{"Companies", "/companies"}, TenantRoles},
	{NavItem{"Settings", "/settings"}, SettingsRoles},
}

// Navigation lists the menu entries role may see.
func Navigation(role domain.Role) []NavItem {
	items := make([]NavItem, 0, len(navigation))
	for _, n := range navigation {
		if Permits(role, n.roles...) {
			items = append(items, n.item)
		}
	}
	return items
}
