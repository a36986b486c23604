package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/core/authz"
	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/ports"
	"github.com/ticketdesk/dashboard/internal/core/query"
	"github.com/ticketdesk/dashboard/internal/core/session"
)

const missingDepartmentMessage = "Your account is not assigned to a department. Ask your administrator to assign one, then log in again."

// Reply authors the backend accepts.
const (
	AuthorAdmin = "admin_reply"
	AuthorAgent = "agent_reply"
)

// ticketMutationKinds are invalidated by every ticket mutation.
var ticketMutationKinds = []string{KindTickets, KindTicket, KindInteractions, KindAnalytics}

// TicketList is one page of the ticket list. Stale is set while a refetch is
// pending.
type TicketList struct {
	domain.Page[domain.Ticket]
	Stale bool `json:"stale"`
}

// TicketService is the data hook of the ticket list and detail screens.
type TicketService struct {
	store    *session.Store
	tickets  ports.TicketClient
	cache    *query.Cache
	feedback ports.Feedback
	logger   zerolog.Logger
}

func NewTicketService(store *session.Store, tickets ports.TicketClient, cache *query.Cache, feedback ports.Feedback, logger zerolog.Logger) *TicketService {
	return &TicketService{store: store, tickets: tickets, cache: cache, feedback: feedback, logger: logger}
}

// List returns a page of tickets. An employee without a department cannot
// see any tickets: the session is ended, the user told why and sent to
// login.
func (s *TicketService) List(ctx context.Context, f domain.TicketFilter) (*TicketList, error) {
	if err := s.requireDepartment(ctx); err != nil {
		return nil, err
	}

	f.PageRequest = f.PageRequest.Normalize()
	f.TenantID = scopedTenant(s.store, f.TenantID)
	f.Search = strings.TrimSpace(f.Search)

	key := query.NewKey(KindTickets, f)
	page, stale, err := query.Get(ctx, s.cache, key, func(ctx context.Context) (domain.Page[domain.Ticket], error) {
		return s.tickets.List(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	return &TicketList{Page: page, Stale: stale}, nil
}

func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	key := query.NewKey(KindTicket, id)
	t, _, err := query.Get(ctx, s.cache, key, func(ctx context.Context) (*domain.Ticket, error) {
		return s.tickets.Get(ctx, id)
	})
	return t, err
}

func (s *TicketService) Interactions(ctx context.Context, id string) ([]domain.Interaction, error) {
	key := query.NewKey(KindInteractions, id)
	items, _, err := query.Get(ctx, s.cache, key, func(ctx context.Context) ([]domain.Interaction, error) {
		return s.tickets.Interactions(ctx, id)
	})
	return items, err
}

func (s *TicketService) SetStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, domain.ErrValidation
	}
	t, err := s.tickets.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ticketMutationKinds...)
	return t, nil
}

func (s *TicketService) Reroute(ctx context.Context, id, departmentID string) (*domain.Ticket, error) {
	t, err := s.tickets.Reroute(ctx, id, departmentID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ticketMutationKinds...)
	return t, nil
}

func (s *TicketService) AddInternalNote(ctx context.Context, id, content string) (*domain.Interaction, error) {
	in, err := s.tickets.AddInternalNote(ctx, id, content)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KindTicket, KindInteractions)
	return in, nil
}

func (s *TicketService) UpdateDetails(ctx context.Context, id string, in domain.TicketDetailsUpdate) (*domain.Ticket, error) {
	t, err := s.tickets.UpdateDetails(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ticketMutationKinds...)
	return t, nil
}

// DraftReply asks the backend for an AI-drafted reply. Nothing is sent to
// the customer.
func (s *TicketService) DraftReply(ctx context.Context, id string, in domain.ReplyDraft) (string, error) {
	return s.tickets.DraftReply(ctx, id, in)
}

// Reply sends content to the customer as the current user.
func (s *TicketService) Reply(ctx context.Context, id, content string) (*domain.Interaction, error) {
	author := AuthorAdmin
	if currentRole(s.store) == domain.RoleEmployee {
		author = AuthorAgent
	}
	in, err := s.tickets.Reply(ctx, id, content, author)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ticketMutationKinds...)
	return in, nil
}

func (s *TicketService) requireDepartment(ctx context.Context) error {
	u := s.store.CurrentUser()
	if u == nil || u.Role != domain.RoleEmployee || u.DepartmentID != "" {
		return nil
	}
	s.logger.Warn().Str("user_id", u.ID).Msg("employee without department; ending session")
	if err := s.store.Logout(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to erase token")
	}
	s.cache.Reset()
	s.feedback.Notify(domain.NotifyPermissionDenied, missingDepartmentMessage)
	s.feedback.Navigate(authz.PathLogin, "missing department")
	return domain.ErrMissingDepartment
}
