package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// Tickets is the client of /tickets.
type Tickets struct{ conn *Conn }

func NewTickets(conn *Conn) *Tickets { return &Tickets{conn: conn} }

type wireTicketList struct {
	Tickets []wireTicket `json:"tickets"`
	Total   int          `json:"total"`
}

// TicketQuery renders a ticket filter as backend query parameters.
// Unknown sort columns are dropped and the backend default applies.
func TicketQuery(f domain.TicketFilter) url.Values {
	req := f.PageRequest.Normalize()
	q := newParams(TicketFields).
		str("status", string(f.Status)).
		str("category", f.Category).
		str("priority", string(f.Priority)).
		str("tenantId", f.TenantID).
		str("departmentId", f.DepartmentID).
		str("assignedUserId", f.AssignedUserID).
		flag("criticalOnly", f.CriticalOnly).
		str("search", f.Search).
		num("limit", req.Limit).
		num("offset", req.Offset())
	if col, ok := TicketSortFields[f.SortBy]; ok {
		q.str("sortBy", col)
	}
	if f.SortDirection == domain.SortAsc || f.SortDirection == domain.SortDesc {
		q.str("sortDirection", string(f.SortDirection))
	}
	return q.encode()
}

func (t *Tickets) List(ctx context.Context, f domain.TicketFilter) (domain.Page[domain.Ticket], error) {
	var out wireTicketList
	if err := t.conn.get(ctx, "tickets", "/tickets/", TicketQuery(f), &out); err != nil {
		return domain.Page[domain.Ticket]{}, err
	}
	items := make([]domain.Ticket, len(out.Tickets))
	for i, w := range out.Tickets {
		items[i] = w.toDomain()
	}
	return domain.NewPage(items, out.Total, f.PageRequest.Normalize()), nil
}

func (t *Tickets) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	var out wireTicket
	if err := t.conn.get(ctx, "tickets", ticketPath(id, ""), nil, &out); err != nil {
		return nil, err
	}
	tk := out.toDomain()
	return &tk, nil
}

func (t *Tickets) Interactions(ctx context.Context, id string) ([]domain.Interaction, error) {
	var out []wireInteraction
	if err := t.conn.get(ctx, "interactions", ticketPath(id, "/interactions"), nil, &out); err != nil {
		return nil, err
	}
	items := make([]domain.Interaction, len(out))
	for i, w := range out {
		items[i] = w.toDomain()
	}
	return items, nil
}

func (t *Tickets) SetStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	return t.putTicket(ctx, ticketPath(id, "/status"), url.Values{"new_status": {string(status)}}, nil)
}

func (t *Tickets) Reroute(ctx context.Context, id, departmentID string) (*domain.Ticket, error) {
	return t.putTicket(ctx, ticketPath(id, "/reroute"), url.Values{"new_department_id": {departmentID}}, nil)
}

func (t *Tickets) UpdateDetails(ctx context.Context, id string, in domain.TicketDetailsUpdate) (*domain.Ticket, error) {
	return t.putTicket(ctx, ticketPath(id, "/details"), nil, ticketDetailsToWire(in))
}

func (t *Tickets) AddInternalNote(ctx context.Context, id, content string) (*domain.Interaction, error) {
	var out wireInteraction
	err := t.conn.do(ctx, request{
		method:   http.MethodPost,
		resource: "tickets",
		path:     ticketPath(id, "/internal-note"),
		query:    url.Values{"content": {content}},
	}, &out)
	if err != nil {
		return nil, err
	}
	in := out.toDomain()
	return &in, nil
}

// DraftReply asks the backend's AI to draft a reply. Tone defaults to
// "polite".
func (t *Tickets) DraftReply(ctx context.Context, id string, in domain.ReplyDraft) (string, error) {
	body := struct {
		Tone   string `json:"tone"`
		Prompt string `json:"prompt,omitempty"`
	}{Tone: in.Tone, Prompt: in.Prompt}
	if body.Tone == "" {
		body.Tone = "polite"
	}

	var out struct {
		GeneratedReply string `json:"generated_reply"`
	}
	if err := t.conn.send(ctx, http.MethodPost, "tickets", ticketPath(id, "/generate-ai-reply"), body, &out); err != nil {
		return "", err
	}
	if out.GeneratedReply == "" {
		return "", errors.Join(errUnexpected, domain.ErrServerFault)
	}
	return out.GeneratedReply, nil
}

func (t *Tickets) Reply(ctx context.Context, id, content, author string) (*domain.Interaction, error) {
	body := struct {
		Content string `json:"content"`
		Author  string `json:"author"`
	}{Content: content, Author: author}

	var out wireInteraction
	if err := t.conn.send(ctx, http.MethodPost, "tickets", ticketPath(id, "/reply"), body, &out); err != nil {
		return nil, err
	}
	in := out.toDomain()
	return &in, nil
}

func (t *Tickets) putTicket(ctx context.Context, path string, query url.Values, body any) (*domain.Ticket, error) {
	var out wireTicket
	err := t.conn.do(ctx, request{
		method:   http.MethodPut,
		resource: "tickets",
		path:     path,
		query:    query,
		body:     body,
	}, &out)
	if err != nil {
		return nil, err
	}
	tk := out.toDomain()
	return &tk, nil
}

func ticketPath(id, suffix string) string {
	return "/tickets/" + url.PathEscape(id) + suffix
}
