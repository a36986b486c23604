package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// Users is the client of /users.
type Users struct{ conn *Conn }

func NewUsers(conn *Conn) *Users { return &Users{conn: conn} }

type wireUserList struct {
	Total  int        `json:"total"`
	Users  []wireUser `json:"users"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

type wireUserUpdate struct {
	Username     string      `json:"username,omitempty"`
	Email        string      `json:"email,omitempty"`
	Role         domain.Role `json:"role,omitempty"`
	CompanyID    string      `json:"company_id,omitempty"`
	DepartmentID string      `json:"department_id,omitempty"`
	Password     string      `json:"password,omitempty"`
}

func (u *Users) List(ctx context.Context, f domain.UserFilter) (domain.Page[domain.User], error) {
	req := f.PageRequest.Normalize()
	q := newParams(UserFields).
		str("tenantId", f.TenantID).
		str("departmentId", f.DepartmentID).
		str("role", string(f.Role)).
		str("search", f.Search).
		num("limit", req.Limit).
		num("offset", req.Offset())

	var out wireUserList
	if err := u.conn.get(ctx, "users", "/users/", q.encode(), &out); err != nil {
		return domain.Page[domain.User]{}, err
	}
	items := make([]domain.User, len(out.Users))
	for i, w := range out.Users {
		items[i] = w.toDomain()
	}
	return domain.NewPage(items, out.Total, req), nil
}

func (u *Users) Get(ctx context.Context, id string) (*domain.User, error) {
	var out wireUser
	if err := u.conn.get(ctx, "users", "/users/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	usr := out.toDomain()
	return &usr, nil
}

func (u *Users) Update(ctx context.Context, id string, in domain.UserUpdate) (*domain.User, error) {
	body := wireUserUpdate{
		Username:     in.Username,
		Email:        in.Email,
		Role:         in.Role,
		CompanyID:    in.TenantID,
		DepartmentID: in.DepartmentID,
		Password:     in.Password,
	}
	var out wireUser
	if err := u.conn.send(ctx, http.MethodPut, "users", "/users/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	usr := out.toDomain()
	return &usr, nil
}

func (u *Users) Delete(ctx context.Context, id string) error {
	var out messageResponse
	return u.conn.send(ctx, http.MethodDelete, "users", "/users/"+url.PathEscape(id), nil, &out)
}

// ChangePassword changes the calling user's own password.
func (u *Users) ChangePassword(ctx context.Context, current, next string) (*domain.User, error) {
	body := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{CurrentPassword: current, NewPassword: next}

	var out wireUser
	if err := u.conn.send(ctx, http.MethodPost, "users", "/users/change-password", body, &out); err != nil {
		return nil, err
	}
	usr := out.toDomain()
	return &usr, nil
}
