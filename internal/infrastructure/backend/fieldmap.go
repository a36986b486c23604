package backend

import (
	"fmt"
	"net/url"
	"strconv"
)

// FieldMap translates UI filter names to the backend's query parameter
// names for one resource.
type FieldMap map[string]string

// Filter parameter tables, one per resource.
var (
	TicketFields = FieldMap{
		"status":         "status",
		"category":       "category",
		"priority":       "priority",
		"tenantId":       "company_id",
		"departmentId":   "department_id",
		"assignedUserId": "assigned_user_id",
		"criticalOnly":   "is_critical_only",
		"search":         "search",
		"sortBy":         "sort_by",
		"sortDirection":  "sort_order",
		"limit":          "limit",
		"offset":         "offset",
	}

	UserFields = FieldMap{
		"tenantId":     "company_id",
		"departmentId": "department_id",
		"role":         "role",
		"search":       "search",
		"limit":        "limit",
		"offset":       "offset",
	}

	TenantFields = FieldMap{
		"search": "search",
		"limit":  "limit",
		"offset": "offset",
	}

	DepartmentFields = FieldMap{
		"search": "search",
		"limit":  "limit",
		"offset": "offset",
	}

	AnalyticsFields = FieldMap{
		"tenantId":     "company_id",
		"departmentId": "department_id",
		"userId":       "user_id",
		"from":         "start_date",
		"to":           "end_date",
		"interval":     "interval",
	}
)

// TicketSortFields translates sortable ticket columns.
var TicketSortFields = FieldMap{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"lastActivity": "last_customer_interaction_at",
	"priority":     "priority",
	"status":       "status",
	"subject":      "subject",
}

// Wire returns the wire name of a UI field. Asking for an unmapped field is
// a programming error.
func (m FieldMap) Wire(field string) string {
	w, ok := m[field]
	if !ok {
		panic(fmt.Sprintf("backend: no wire mapping for filter field %q", field))
	}
	return w
}

// params builds a query string through a FieldMap. Empty values are
// omitted.
type params struct {
	fields FieldMap
	values url.Values
}

func newParams(fields FieldMap) *params {
	return &params{fields: fields, values: url.Values{}}
}

func (p *params) str(field, v string) *params {
	if v != "" {
		p.values.Set(p.fields.Wire(field), v)
	}
	return p
}

func (p *params) flag(field string, v bool) *params {
	if v {
		p.values.Set(p.fields.Wire(field), "true")
	}
	return p
}

func (p *params) num(field string, v int) *params {
	p.values.Set(p.fields.Wire(field), strconv.Itoa(v))
	return p
}

func (p *params) encode() url.Values { return p.values }
