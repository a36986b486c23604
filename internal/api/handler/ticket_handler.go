package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// TicketHandler serves the ticket list and the ticket detail screen.
type TicketHandler struct{}

func NewTicketHandler() *TicketHandler { return &TicketHandler{} }

// List handles GET /tickets.
//
// @Summary      List tickets
// @Description  Employees only see their department's tickets. A superAdmin sees the operating tenant.
// @Tags         tickets
// @Produce      json
// @Param        page              query     int     false  "Page (1-based)"
// @Param        limit             query     int     false  "Page size"
// @Param        search            query     string  false  "Subject or customer search"
// @Param        status            query     string  false  "Status"
// @Param        category          query     string  false  "Category"
// @Param        priority          query     string  false  "Low, Medium, High or Critical"
// @Param        department_id     query     string  false  "Department"
// @Param        assigned_user_id  query     string  false  "Assignee"
// @Param        critical_only     query     bool    false  "Only critical tickets"
// @Param        sort_by           query     string  false  "Sort field"
// @Param        sort_direction    query     string  false  "asc or desc"
// @Success      200               {object}  service.TicketList
// @Failure      400               {object}  errorResponse
// @Failure      403               {object}  errorResponse
// @Router       /tickets [get]
func (h *TicketHandler) List(c echo.Context) error {
	var req ticketListRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	list, err := ws.Services.Tickets.List(c.Request().Context(), domain.TicketFilter{
		PageRequest:    domain.PageRequest{Page: req.Page, Limit: req.Limit},
		Status:         domain.TicketStatus(req.Status),
		Category:       req.Category,
		Priority:       domain.Priority(req.Priority),
		TenantID:       req.TenantID,
		DepartmentID:   req.DepartmentID,
		AssignedUserID: req.AssignedUserID,
		CriticalOnly:   req.CriticalOnly,
		Search:         req.Search,
		SortBy:         req.SortBy,
		SortDirection:  domain.SortDirection(req.SortDirection),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /tickets/:id. The ticket and its conversation load
// concurrently.
//
// @Summary      Ticket detail
// @Tags         tickets
// @Produce      json
// @Param        id   path      string  true  "Ticket id"
// @Success      200  {object}  ticketDetailResponse
// @Failure      404  {object}  errorResponse
// @Router       /tickets/{id} [get]
func (h *TicketHandler) Get(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	var out ticketDetailResponse
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		t, err := ws.Services.Tickets.Get(ctx, id)
		out.Ticket = t
		return err
	})
	g.Go(func() error {
		in, err := ws.Services.Tickets.Interactions(ctx, id)
		out.Interactions = in
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if out.Interactions == nil {
		out.Interactions = []domain.Interaction{}
	}
	return c.JSON(http.StatusOK, out)
}

// SetStatus handles PUT /tickets/:id/status.
//
// @Summary      Change ticket status
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Ticket id"
// @Param        body  body      statusRequest  true  "Status"
// @Success      200   {object}  domain.Ticket
// @Failure      409   {object}  errorResponse
// @Router       /tickets/{id}/status [put]
func (h *TicketHandler) SetStatus(c echo.Context) error {
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	t, err := ws.Services.Tickets.SetStatus(c.Request().Context(), c.Param("id"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// Reroute handles PUT /tickets/:id/department.
//
// @Summary      Reroute a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Ticket id"
// @Param        body  body      rerouteRequest  true  "Department"
// @Success      200   {object}  domain.Ticket
// @Router       /tickets/{id}/department [put]
func (h *TicketHandler) Reroute(c echo.Context) error {
	var req rerouteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	t, err := ws.Services.Tickets.Reroute(c.Request().Context(), c.Param("id"), req.DepartmentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateDetails handles PATCH /tickets/:id.
//
// @Summary      Edit ticket details
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Ticket id"
// @Param        body  body      ticketDetailsRequest  true  "Fields to change"
// @Success      200   {object}  domain.Ticket
// @Router       /tickets/{id} [patch]
func (h *TicketHandler) UpdateDetails(c echo.Context) error {
	var req ticketDetailsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	in := domain.TicketDetailsUpdate{
		Category:       req.Category,
		Sentiment:      req.Sentiment,
		DepartmentID:   req.DepartmentID,
		AssignedUserID: req.AssignedUserID,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		in.Priority = &p
	}
	if req.Status != nil {
		st := domain.TicketStatus(*req.Status)
		in.Status = &st
	}
	t, err := ws.Services.Tickets.UpdateDetails(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// AddNote handles POST /tickets/:id/notes.
//
// @Summary      Add an internal note
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Ticket id"
// @Param        body  body      contentRequest  true  "Note"
// @Success      201   {object}  domain.Interaction
// @Router       /tickets/{id}/notes [post]
func (h *TicketHandler) AddNote(c echo.Context) error {
	var req contentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	in, err := ws.Services.Tickets.AddInternalNote(c.Request().Context(), c.Param("id"), strings.TrimSpace(req.Content))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, in)
}

// DraftReply handles POST /tickets/:id/draft-reply.
//
// @Summary      Draft a reply with AI
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Ticket id"
// @Param        body  body      draftRequest  true  "Tone and prompt"
// @Success      200   {object}  draftResponse
// @Router       /tickets/{id}/draft-reply [post]
func (h *TicketHandler) DraftReply(c echo.Context) error {
	var req draftRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	reply, err := ws.Services.Tickets.DraftReply(c.Request().Context(), c.Param("id"), domain.ReplyDraft{Tone: req.Tone, Prompt: req.Prompt})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, draftResponse{Reply: reply})
}

// Reply handles POST /tickets/:id/reply.
//
// @Summary      Reply to the customer
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Ticket id"
// @Param        body  body      contentRequest  true  "Reply"
// @Success      201   {object}  domain.Interaction
// @Router       /tickets/{id}/reply [post]
func (h *TicketHandler) Reply(c echo.Context) error {
	var req contentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	in, err := ws.Services.Tickets.Reply(c.Request().Context(), c.Param("id"), strings.TrimSpace(req.Content))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, in)
}
