package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/ports"
)

// Auth is the client of /auth.
type Auth struct{ conn *Conn }

func NewAuth(conn *Conn) *Auth { return &Auth{conn: conn} }

// Login exchanges credentials for a bearer token. It is sent without the
// session's token so a 401 reads as bad credentials.
func (a *Auth) Login(ctx context.Context, creds domain.Credentials) (*ports.LoginResult, error) {
	var out wireLogin
	err := a.conn.do(ctx, request{
		method:    http.MethodPost,
		resource:  "auth",
		path:      "/auth/login",
		form:      url.Values{"username": {creds.Username}, "password": {creds.Password}},
		anonymous: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	res := &ports.LoginResult{Token: out.AccessToken}
	if out.User != nil {
		u := out.User.toDomain()
		res.User = &u
	}
	return res, nil
}

func (a *Auth) Me(ctx context.Context) (*domain.User, error) {
	var out wireUser
	if err := a.conn.get(ctx, "auth", "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	u := out.toDomain()
	return &u, nil
}

type wireRegisterUser struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
	MaxTokens   int64  `json:"max_tokens,omitempty"`
}

// RegisterUser creates a tenant admin together with a new tenant. It is
// public on the backend and sent without a token.
func (a *Auth) RegisterUser(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var out wireUser
	err := a.conn.do(ctx, request{
		method:   http.MethodPost,
		resource: "auth",
		path:     "/auth/register-user",
		body: wireRegisterUser{
			Username:    reg.Username,
			Email:       reg.Email,
			Password:    reg.Password,
			CompanyName: reg.TenantName,
			MaxTokens:   reg.MaxTokens,
		},
		anonymous: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	u := out.toDomain()
	return &u, nil
}

type wireRegisterEmployee struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DepartmentID string `json:"department_id"`
}

// RegisterEmployee creates an employee in the calling admin's tenant.
func (a *Auth) RegisterEmployee(ctx context.Context, reg domain.EmployeeRegistration) (*domain.User, error) {
	var out wireUser
	err := a.conn.send(ctx, http.MethodPost, "auth", "/auth/register-employee", wireRegisterEmployee{
		Username:     reg.Username,
		Email:        reg.Email,
		Password:     reg.Password,
		DepartmentID: reg.DepartmentID,
	}, &out)
	if err != nil {
		return nil, err
	}
	u := out.toDomain()
	return &u, nil
}
