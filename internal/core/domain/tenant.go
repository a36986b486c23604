package domain

// Tenant is a customer company. The backend calls it a company.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MaxTokens int64     `json:"max_tokens"`
	APIKey    string    `json:"api_key,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// TenantInput creates or updates a tenant.
type TenantInput struct {
	Name      string `json:"name" validate:"required"`
	MaxTokens int64  `json:"max_tokens" validate:"gte=0"`
}

// TenantSettings is the tenant admin's integration view.
type TenantSettings struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	APIKey     string `json:"api_key"`
	WebhookURL string `json:"webhook_url,omitempty"`
}

// Department groups employees inside a tenant.
type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TenantID  string    `json:"tenant_id,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// ListFilter is the filter state shared by the tenant and department lists.
type ListFilter struct {
	PageRequest
	Search string `json:"search,omitempty"`
}

// UserFilter is the user management list's filter state.
type UserFilter struct {
	PageRequest
	TenantID     string `json:"tenant_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	Role         Role   `json:"role,omitempty"`
	Search       string `json:"search,omitempty"`
}

// UserUpdate is a partial update of a managed user. Empty fields are left
// unchanged by the backend.
type UserUpdate struct {
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         Role   `json:"role,omitempty"`
	TenantID     string `json:"tenant_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	Password     string `json:"password,omitempty"`
}

// Registration creates a tenant admin together with their tenant.
type Registration struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	TenantName string `json:"tenant_name"`
	MaxTokens  int64  `json:"max_tokens,omitempty"`
}

// EmployeeRegistration creates an employee inside the admin's tenant.
type EmployeeRegistration struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DepartmentID string `json:"department_id"`
}

// Credentials submitted on the login screen.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
