package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// Departments is the client of /departments. The backend scopes every call
// to the caller's own tenant.
type Departments struct{ conn *Conn }

func NewDepartments(conn *Conn) *Departments { return &Departments{conn: conn} }

type wireDepartmentList struct {
	Total       int              `json:"total"`
	Departments []wireDepartment `json:"departments"`
	Limit       int              `json:"limit"`
	Offset      int              `json:"offset"`
}

func (d *Departments) List(ctx context.Context, f domain.ListFilter) (domain.Page[domain.Department], error) {
	req := f.PageRequest.Normalize()
	q := newParams(DepartmentFields).
		str("search", f.Search).
		num("limit", req.Limit).
		num("offset", req.Offset())

	var out wireDepartmentList
	if err := d.conn.get(ctx, "departments", "/departments", q.encode(), &out); err != nil {
		return domain.Page[domain.Department]{}, err
	}
	items := make([]domain.Department, len(out.Departments))
	for i, dep := range out.Departments {
		items[i] = dep.toDomain()
	}
	return domain.NewPage(items, out.Total, req), nil
}

func (d *Departments) Get(ctx context.Context, id string) (*domain.Department, error) {
	var out wireDepartment
	if err := d.conn.get(ctx, "departments", "/departments/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	dep := out.toDomain()
	return &dep, nil
}

func (d *Departments) Create(ctx context.Context, name string) (*domain.Department, error) {
	var out wireDepartment
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	if err := d.conn.send(ctx, http.MethodPost, "departments", "/departments", body, &out); err != nil {
		return nil, err
	}
	dep := out.toDomain()
	return &dep, nil
}

// Rename sends the new name as a query parameter, as the backend expects.
func (d *Departments) Rename(ctx context.Context, id, name string) (*domain.Department, error) {
	var out wireDepartment
	err := d.conn.do(ctx, request{
		method:   http.MethodPut,
		resource: "departments",
		path:     "/departments/" + url.PathEscape(id),
		query:    url.Values{"name": {name}},
	}, &out)
	if err != nil {
		return nil, err
	}
	dep := out.toDomain()
	return &dep, nil
}

func (d *Departments) Delete(ctx context.Context, id string) error {
	var out messageResponse
	return d.conn.send(ctx, http.MethodDelete, "departments", "/departments/"+url.PathEscape(id), nil, &out)
}
