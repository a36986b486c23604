package domain

// TicketStatus is the lifecycle state of a ticket as reported by the backend.
type TicketStatus string

const (
	TicketNew                TicketStatus = "new"
	TicketAIProcessing       TicketStatus = "ai_processing"
	TicketAIReplied          TicketStatus = "ai_replied"
	TicketCustomerReplied    TicketStatus = "customer_replied"
	TicketPendingAdminReview TicketStatus = "pending_admin_review"
	TicketCriticalRouted     TicketStatus = "critical_routed"
	TicketResolvedByAI       TicketStatus = "resolved_by_ai"
	TicketResolvedManually   TicketStatus = "resolved_manually"
	TicketClosed             TicketStatus = "closed"
)

var ticketStatuses = map[TicketStatus]struct{}{
	TicketNew:                {},
	TicketAIProcessing:       {},
	TicketAIReplied:          {},
	TicketCustomerReplied:    {},
	TicketPendingAdminReview: {},
	TicketCriticalRouted:     {},
	TicketResolvedByAI:       {},
	TicketResolvedManually:   {},
	TicketClosed:             {},
}

// Valid reports whether s is a status the backend accepts.
func (s TicketStatus) Valid() bool {
	_, ok := ticketStatuses[s]
	return ok
}

// Resolved reports whether the ticket no longer needs work.
func (s TicketStatus) Resolved() bool {
	return s == TicketResolvedByAI || s == TicketResolvedManually || s == TicketClosed
}

// Priority of a ticket.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// InteractionType classifies an entry in a ticket's conversation.
type InteractionType string

const (
	InteractionCustomerComplaint InteractionType = "customer_complaint"
	InteractionAIReply           InteractionType = "ai_reply"
	InteractionCustomerReply     InteractionType = "customer_reply"
	InteractionAdminReply        InteractionType = "admin_reply"
	InteractionCriticalRoute     InteractionType = "system_event_critical_route"
	InteractionAdminReroute      InteractionType = "admin_reroute"
	InteractionInternalNote      InteractionType = "internal_note"
	InteractionTicketCreated     InteractionType = "system_event_ticket_created"
	InteractionAIClassified      InteractionType = "system_event_ai_classified"
)

// Interaction is one message or event on a ticket.
type Interaction struct {
	ID        string          `json:"id"`
	TicketID  string          `json:"ticket_id"`
	Type      InteractionType `json:"type"`
	Content   string          `json:"content"`
	Author    string          `json:"author"`
	Timestamp Timestamp       `json:"timestamp"`
	Metadata  string          `json:"metadata,omitempty"`
}

// Ticket is a customer support ticket.
type Ticket struct {
	ID                     string        `json:"id"`
	ExternalID             string        `json:"external_id,omitempty"`
	Subject                string        `json:"subject"`
	CustomerEmail          string        `json:"customer_email"`
	Status                 TicketStatus  `json:"status"`
	Category               string        `json:"category,omitempty"`
	AISolvable             *bool         `json:"ai_solvable,omitempty"`
	Sentiment              string        `json:"sentiment,omitempty"`
	Priority               Priority      `json:"priority,omitempty"`
	PotentialContinuation  bool          `json:"potential_continuation"`
	DepartmentID           string        `json:"department_id,omitempty"`
	DepartmentName         string        `json:"department_name,omitempty"`
	AssignedUserID         string        `json:"assigned_user_id,omitempty"`
	TenantID               string        `json:"tenant_id"`
	CreatedAt              Timestamp     `json:"created_at"`
	UpdatedAt              Timestamp     `json:"updated_at"`
	LastCustomerActivityAt Timestamp     `json:"last_customer_activity_at"`
	Interactions           []Interaction `json:"interactions,omitempty"`
}

// SortDirection of a list screen.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// TicketFilter is the ticket list screen's filter state. Field names are the
// UI's; the backend client translates them to wire parameters.
type TicketFilter struct {
	PageRequest
	Status         TicketStatus  `json:"status,omitempty"`
	Category       string        `json:"category,omitempty"`
	Priority       Priority      `json:"priority,omitempty"`
	TenantID       string        `json:"tenant_id,omitempty"`
	DepartmentID   string        `json:"department_id,omitempty"`
	AssignedUserID string        `json:"assigned_user_id,omitempty"`
	CriticalOnly   bool          `json:"critical_only,omitempty"`
	Search         string        `json:"search,omitempty"`
	SortBy         string        `json:"sort_by,omitempty"`
	SortDirection  SortDirection `json:"sort_direction,omitempty"`
}

// TicketDetailsUpdate is a partial update of a ticket's triage fields.
// Nil fields are left unchanged.
type TicketDetailsUpdate struct {
	Category       *string       `json:"category,omitempty"`
	Priority       *Priority     `json:"priority,omitempty"`
	Sentiment      *string       `json:"sentiment,omitempty"`
	Status         *TicketStatus `json:"status,omitempty"`
	DepartmentID   *string       `json:"department_id,omitempty"`
	AssignedUserID *string       `json:"assigned_user_id,omitempty"`
}

// ReplyDraft asks the backend to draft a reply for a ticket.
type ReplyDraft struct {
	Tone   string `json:"tone,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}
