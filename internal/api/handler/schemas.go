package handler

import (
	"github.com/ticketdesk/dashboard/internal/core/authz"
	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Next     string `json:"next"     form:"next"     query:"next"`
}

type loginResponse struct {
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect"`
}

type loginScreenResponse struct {
	Authenticated bool   `json:"authenticated"`
	Redirect      string `json:"redirect,omitempty"`
	Next          string `json:"next,omitempty"`
}

type signupRequest struct {
	Username    string `json:"username"     validate:"required,min=3"`
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=8"`
	CompanyName string `json:"company_name" validate:"required"`
	MaxTokens   int64  `json:"max_tokens"   validate:"gte=0"`
	WebhookURL  string `json:"webhook_url"  validate:"omitempty,url"`
}

type signupResponse struct {
	User      *domain.User `json:"user,omitempty"`
	Redirect  string       `json:"redirect,omitempty"`
	Completed []string     `json:"completed,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// --- Home ---

type homeResponse struct {
	User              *domain.User    `json:"user"`
	OperatingTenantID string          `json:"operating_tenant_id,omitempty"`
	Navigation        []authz.NavItem `json:"navigation"`
}

// --- Tenants ---

type listRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"  validate:"omitempty,max=100"`
	Search string `query:"search"`
}

func (r listRequest) filter() domain.ListFilter {
	return domain.ListFilter{PageRequest: domain.PageRequest{Page: r.Page, Limit: r.Limit}, Search: r.Search}
}

type selectTenantRequest struct {
	TenantID string `json:"tenant_id" form:"tenant_id" validate:"required"`
}

type selectTenantResponse struct {
	Tenant   *domain.Tenant `json:"tenant"`
	Redirect string         `json:"redirect"`
}

type tenantRequest struct {
	Name      string `json:"name"       validate:"required"`
	MaxTokens int64  `json:"max_tokens" validate:"gte=0"`
}

// --- Departments ---

type departmentRequest struct {
	Name string `json:"name" validate:"required"`
}

// --- Users ---

type userListRequest struct {
	listRequest
	TenantID     string `query:"tenant_id"`
	DepartmentID string `query:"department_id"`
	Role         string `query:"role" validate:"omitempty,oneof=superAdmin admin employee"`
}

type createEmployeeRequest struct {
	Username     string `json:"username"      validate:"required,min=3"`
	Email        string `json:"email"         validate:"required,email"`
	Password     string `json:"password"      validate:"required,min=8"`
	DepartmentID string `json:"department_id" validate:"required"`
}

type updateUserRequest struct {
	Username     string `json:"username"      validate:"omitempty,min=3"`
	Email        string `json:"email"         validate:"omitempty,email"`
	Role         string `json:"role"          validate:"omitempty,oneof=superAdmin admin employee"`
	TenantID     string `json:"tenant_id"`
	DepartmentID string `json:"department_id"`
	Password     string `json:"password"      validate:"omitempty,min=8"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,nefield=CurrentPassword"`
}

// --- Tickets ---

type ticketListRequest struct {
	listRequest
	Status         string `query:"status"`
	Category       string `query:"category"`
	Priority       string `query:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	TenantID       string `query:"tenant_id"`
	DepartmentID   string `query:"department_id"`
	AssignedUserID string `query:"assigned_user_id"`
	CriticalOnly   bool   `query:"critical_only"`
	SortBy         string `query:"sort_by"`
	SortDirection  string `query:"sort_direction" validate:"omitempty,oneof=asc desc"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type rerouteRequest struct {
	DepartmentID string `json:"department_id" validate:"required"`
}

type contentRequest struct {
	Content string `json:"content" validate:"required"`
}

type draftRequest struct {
	Tone   string `json:"tone"   validate:"omitempty,max=40"`
	Prompt string `json:"prompt"`
}

type draftResponse struct {
	Reply string `json:"reply"`
}

type ticketDetailsRequest struct {
	Category       *string `json:"category"`
	Priority       *string `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	Sentiment      *string `json:"sentiment"`
	Status         *string `json:"status"`
	DepartmentID   *string `json:"department_id"`
	AssignedUserID *string `json:"assigned_user_id"`
}

type ticketDetailResponse struct {
	Ticket       *domain.Ticket       `json:"ticket"`
	Interactions []domain.Interaction `json:"interactions"`
}

// --- Analytics ---

type analyticsRequest struct {
	TenantID     string `query:"tenant_id"`
	DepartmentID string `query:"department_id"`
	UserID       string `query:"user_id"`
	From         string `query:"from"`
	To           string `query:"to"`
	Interval     string `query:"interval" validate:"omitempty,oneof=day week month"`
}

// --- Settings ---

type webhookRequest struct {
	WebhookURL string `json:"webhook_url" validate:"omitempty,url"`
}
