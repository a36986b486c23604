package domain

// Session is the authentication view of one browser session.
//
// OperatingTenantID is only meaningful for RoleSuperAdmin. For tenant-scoped
// roles it mirrors CurrentUser.TenantID.
type Session struct {
	IsAuthenticated   bool   `json:"is_authenticated"`
	CurrentUser       *User  `json:"current_user,omitempty"`
	OperatingTenantID string `json:"operating_tenant_id,omitempty"`
}

// Role returns the current user's role, or "" when there is no user.
func (s Session) Role() Role {
	if s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.Role
}

// Corrupted reports an authenticated session without a usable user record.
func (s Session) Corrupted() bool {
	return s.IsAuthenticated && (s.CurrentUser == nil || s.CurrentUser.Role == "")
}
