package domain

// Role is the backend's role string for a dashboard user.
type Role string

// Wire values used by the backend. superAdmin operates across tenants, admin
// manages a single tenant and employee works tickets inside one department.
const (
	RoleSuperAdmin Role = "superAdmin"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
)

// Valid reports whether r is one of the roles the dashboard understands.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// TenantScoped reports whether the role is bound to the user's own tenant.
func (r Role) TenantScoped() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is the gateway's read-mostly copy of the backend user record.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	TenantID     string `json:"tenant_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

// Clone returns a copy of u, or nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
