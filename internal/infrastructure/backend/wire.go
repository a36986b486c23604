package backend

import "github.com/ticketdesk/dashboard/internal/core/domain"

// Backend payloads. Each has an explicit mapper to its domain type.

type wireUser struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	CompanyID    *string     `json:"company_id"`
	DepartmentID *string     `json:"department_id"`
}

func (w wireUser) toDomain() domain.User {
	return domain.User{
		ID:           w.ID,
		Username:     w.Username,
		Email:        w.Email,
		Role:         w.Role,
		TenantID:     deref(w.CompanyID),
		DepartmentID: deref(w.DepartmentID),
	}
}

type wireLogin struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        *wireUser `json:"user"`
}

type wireCompany struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	MaxTokens int64            `json:"max_tokens"`
	APIKey    string           `json:"api_key"`
	CreatedAt domain.Timestamp `json:"created_at"`
	UpdatedAt domain.Timestamp `json:"updated_at"`
}

func (w wireCompany) toDomain() domain.Tenant {
	return domain.Tenant{
		ID:        w.ID,
		Name:      w.Name,
		MaxTokens: w.MaxTokens,
		APIKey:    w.APIKey,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

type wireCompanyInput struct {
	Name      string `json:"name"`
	MaxTokens int64  `json:"max_tokens,omitempty"`
}

type wireDepartment struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CompanyID string           `json:"company_id"`
	CreatedAt domain.Timestamp `json:"created_at"`
	UpdatedAt domain.Timestamp `json:"updated_at"`
}

func (w wireDepartment) toDomain() domain.Department {
	return domain.Department{
		ID:        w.ID,
		Name:      w.Name,
		TenantID:  w.CompanyID,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

type wireInteraction struct {
	ID           string                 `json:"id"`
	TicketID     string                 `json:"ticket_id"`
	Type         domain.InteractionType `json:"interaction_type"`
	Content      string                 `json:"content"`
	Author       string                 `json:"author"`
	Timestamp    domain.Timestamp       `json:"timestamp"`
	MetadataJSON *string                `json:"metadata_json"`
}

func (w wireInteraction) toDomain() domain.Interaction {
	return domain.Interaction{
		ID:        w.ID,
		TicketID:  w.TicketID,
		Type:      w.Type,
		Content:   w.Content,
		Author:    w.Author,
		Timestamp: w.Timestamp,
		Metadata:  deref(w.MetadataJSON),
	}
}

type wireTicket struct {
	ID                        string              `json:"id"`
	ExternalID                *string             `json:"external_id"`
	Subject                   string              `json:"subject"`
	CustomerEmail             string              `json:"customer_email"`
	Status                    domain.TicketStatus `json:"status"`
	AICategory                *string             `json:"ai_category"`
	AISolvablePrediction      *bool               `json:"ai_solvable_prediction"`
	Sentiment                 *string             `json:"sentiment"`
	Priority                  *domain.Priority    `json:"priority"`
	IsPotentialContinuation   bool                `json:"is_potential_continuation"`
	AssignedDepartmentID      *string             `json:"assigned_department_id"`
	DepartmentName            *string             `json:"department_name"`
	AssignedUserID            *string             `json:"assigned_user_id"`
	CompanyID                 string              `json:"company_id"`
	CreatedAt                 domain.Timestamp    `json:"created_at"`
	UpdatedAt                 domain.Timestamp    `json:"updated_at"`
	LastCustomerInteractionAt domain.Timestamp    `json:"last_customer_interaction_at"`
	Interactions              []wireInteraction   `json:"interactions"`
}

func (w wireTicket) toDomain() domain.Ticket {
	t := domain.Ticket{
		ID:                     w.ID,
		ExternalID:             deref(w.ExternalID),
		Subject:                w.Subject,
		CustomerEmail:          w.CustomerEmail,
		Status:                 w.Status,
		Category:               deref(w.AICategory),
		AISolvable:             w.AISolvablePrediction,
		Sentiment:              deref(w.Sentiment),
		PotentialContinuation:  w.IsPotentialContinuation,
		DepartmentID:           deref(w.AssignedDepartmentID),
		DepartmentName:         deref(w.DepartmentName),
		AssignedUserID:         deref(w.AssignedUserID),
		TenantID:               w.CompanyID,
		CreatedAt:              w.CreatedAt,
		UpdatedAt:              w.UpdatedAt,
		LastCustomerActivityAt: w.LastCustomerInteractionAt,
	}
	if w.Priority != nil {
		t.Priority = *w.Priority
	}
	if len(w.Interactions) > 0 {
		t.Interactions = make([]domain.Interaction, len(w.Interactions))
		for i, in := range w.Interactions {
			t.Interactions[i] = in.toDomain()
		}
	}
	return t
}

// wireTicketDetails is the body of PUT /tickets/{id}/details.
type wireTicketDetails struct {
	AICategory           *string              `json:"ai_category,omitempty"`
	Priority             *domain.Priority     `json:"priority,omitempty"`
	Sentiment            *string              `json:"sentiment,omitempty"`
	Status               *domain.TicketStatus `json:"status,omitempty"`
	AssignedDepartmentID *string              `json:"assigned_department_id,omitempty"`
	AssignedUserID       *string              `json:"assigned_user_id,omitempty"`
}

func ticketDetailsToWire(in domain.TicketDetailsUpdate) wireTicketDetails {
	return wireTicketDetails{
		AICategory:           in.Category,
		Priority:             in.Priority,
		Sentiment:            in.Sentiment,
		Status:               in.Status,
		AssignedDepartmentID: in.DepartmentID,
		AssignedUserID:       in.AssignedUserID,
	}
}

type wireTrend struct {
	Direction string `json:"direction"`
	Value     int    `json:"value"`
}

func (w *wireTrend) toDomain() *domain.Trend {
	if w == nil {
		return nil
	}
	return &domain.Trend{Direction: w.Direction, Value: w.Value}
}

type wireKPIs struct {
	TotalTickets           int        `json:"total_tickets"`
	PendingTickets         int        `json:"pending_tickets"`
	AISolved               int        `json:"ai_solved"`
	ManuallySolved         int        `json:"manually_solved"`
	CriticalTickets        int        `json:"critical_tickets"`
	AvgResolutionTimeHours *float64   `json:"avg_resolution_time_hours"`
	TotalTrend             *wireTrend `json:"totalTrend"`
	PendingTrend           *wireTrend `json:"pendingTrend"`
	CriticalTrend          *wireTrend `json:"criticalTrend"`
	AISolvedTrend          *wireTrend `json:"aiSolvedTrend"`
	ManualSolvedTrend      *wireTrend `json:"manualSolvedTrend"`
	AvgResolutionTimeTrend *wireTrend `json:"avgResolutionTimeTrend"`
}

func (w wireKPIs) toDomain() domain.KPIs {
	return domain.KPIs{
		TotalTickets:           w.TotalTickets,
		PendingTickets:         w.PendingTickets,
		AISolved:               w.AISolved,
		ManuallySolved:         w.ManuallySolved,
		CriticalTickets:        w.CriticalTickets,
		AvgResolutionHours:     w.AvgResolutionTimeHours,
		TotalTrend:             w.TotalTrend.toDomain(),
		PendingTrend:           w.PendingTrend.toDomain(),
		CriticalTrend:          w.CriticalTrend.toDomain(),
		AISolvedTrend:          w.AISolvedTrend.toDomain(),
		ManuallySolvedTrend:    w.ManualSolvedTrend.toDomain(),
		AvgResolutionTimeTrend: w.AvgResolutionTimeTrend.toDomain(),
	}
}

type wireCategoryCount struct {
	Category *string `json:"category"`
	Count    int     `json:"count"`
}

type wireResolutionPoint struct {
	Date                string `json:"date"`
	ResolvedCount       int    `json:"resolved_count"`
	AISolvedCount       int    `json:"ai_solved_count"`
	ManuallySolvedCount int    `json:"manually_solved_count"`
}

type wireAgentPerformance struct {
	UserID            string   `json:"user_id"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Department        *string  `json:"department"`
	TicketsAssigned   int      `json:"tickets_assigned"`
	TicketsSolved     int      `json:"tickets_solved"`
	AvgResolutionTime *float64 `json:"avg_resolution_time"`
	ResolutionRate    float64  `json:"resolution_rate"`
}

type wireTokenUsage struct {
	CompanyID       string `json:"company_id"`
	CompanyName     string `json:"company_name"`
	TotalTokensUsed int64  `json:"total_tokens_used"`
}

type wireActivity struct {
	CompanyID              string `json:"company_id"`
	CompanyName            string `json:"company_name"`
	TicketsCreatedCount    int    `json:"tickets_created_count"`
	TotalInteractionsCount int    `json:"total_interactions_count"`
}

type wireTokenBreakdown struct {
	CompanyID       string `json:"company_id"`
	CompanyName     string `json:"company_name"`
	TokensToday     int64  `json:"tokens_today"`
	TokensThisMonth int64  `json:"tokens_this_month"`
	TokensLifetime  int64  `json:"tokens_lifetime"`
}

type wireCompanySettings struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	APIKey     string  `json:"api_key"`
	WebhookURL *string `json:"webhook_url"`
}

func (w wireCompanySettings) toDomain() domain.TenantSettings {
	return domain.TenantSettings{
		ID:         w.ID,
		Name:       w.Name,
		APIKey:     w.APIKey,
		WebhookURL: deref(w.WebhookURL),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
