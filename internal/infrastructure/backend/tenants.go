package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// Tenants is the client of /companies.
type Tenants struct{ conn *Conn }

func NewTenants(conn *Conn) *Tenants { return &Tenants{conn: conn} }

type wireCompanyList struct {
	Total     int           `json:"total"`
	Companies []wireCompany `json:"companies"`
	Limit     int           `json:"limit"`
	Offset    int           `json:"offset"`
}

func (t *Tenants) List(ctx context.Context, f domain.ListFilter) (domain.Page[domain.Tenant], error) {
	req := f.PageRequest.Normalize()
	q := newParams(TenantFields).
		str("search", f.Search).
		num("limit", req.Limit).
		num("offset", req.Offset())

	var out wireCompanyList
	if err := t.conn.get(ctx, "companies", "/companies/", q.encode(), &out); err != nil {
		return domain.Page[domain.Tenant]{}, err
	}
	items := make([]domain.Tenant, len(out.Companies))
	for i, c := range out.Companies {
		items[i] = c.toDomain()
	}
	return domain.NewPage(items, out.Total, req), nil
}

func (t *Tenants) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	var out wireCompany
	if err := t.conn.get(ctx, "companies", "/companies/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	tn := out.toDomain()
	return &tn, nil
}

func (t *Tenants) Create(ctx context.Context, in domain.TenantInput) (*domain.Tenant, error) {
	var out wireCompany
	body := wireCompanyInput{Name: in.Name, MaxTokens: in.MaxTokens}
	if err := t.conn.send(ctx, http.MethodPost, "companies", "/companies/", body, &out); err != nil {
		return nil, err
	}
	tn := out.toDomain()
	return &tn, nil
}

func (t *Tenants) Update(ctx context.Context, id string, in domain.TenantInput) (*domain.Tenant, error) {
	var out wireCompany
	body := wireCompanyInput{Name: in.Name, MaxTokens: in.MaxTokens}
	if err := t.conn.send(ctx, http.MethodPut, "companies", "/companies/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	tn := out.toDomain()
	return &tn, nil
}

func (t *Tenants) Delete(ctx context.Context, id string) error {
	var out messageResponse
	return t.conn.send(ctx, http.MethodDelete, "companies", "/companies/"+url.PathEscape(id), nil, &out)
}
