package domain

import "time"

// AnalyticsFilter scopes every analytics query.
type AnalyticsFilter struct {
	TenantID     string    `json:"tenant_id,omitempty"`
	DepartmentID string    `json:"department_id,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	From         time.Time `json:"from,omitempty"`
	To           time.Time `json:"to,omitempty"`
	Interval     string    `json:"interval,omitempty"`
}

// Trend compares a KPI with the previous period.
type Trend struct {
	Direction string `json:"direction"`
	Value     int    `json:"value"`
}

// KPIs are the headline numbers of the analytics dashboard.
type KPIs struct {
	TotalTickets           int      `json:"total_tickets"`
	PendingTickets         int      `json:"pending_tickets"`
	AISolved               int      `json:"ai_solved"`
	ManuallySolved         int      `json:"manually_solved"`
	CriticalTickets        int      `json:"critical_tickets"`
	AvgResolutionHours     *float64 `json:"avg_resolution_hours,omitempty"`
	TotalTrend             *Trend   `json:"total_trend,omitempty"`
	PendingTrend           *Trend   `json:"pending_trend,omitempty"`
	CriticalTrend          *Trend   `json:"critical_trend,omitempty"`
	AISolvedTrend          *Trend   `json:"ai_solved_trend,omitempty"`
	ManuallySolvedTrend    *Trend   `json:"manually_solved_trend,omitempty"`
	AvgResolutionTimeTrend *Trend   `json:"avg_resolution_time_trend,omitempty"`
}

// CategoryCount is one slice of the tickets-by-category chart.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ResolutionPoint is one bucket of the resolution trend chart.
type ResolutionPoint struct {
	Date           string `json:"date"`
	Resolved       int    `json:"resolved"`
	AISolved       int    `json:"ai_solved"`
	ManuallySolved int    `json:"manually_solved"`
}

// AgentPerformance is one row of the agent leaderboard.
type AgentPerformance struct {
	UserID             string   `json:"user_id"`
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	Department         string   `json:"department"`
	TicketsAssigned    int      `json:"tickets_assigned"`
	TicketsSolved      int      `json:"tickets_solved"`
	AvgResolutionHours *float64 `json:"avg_resolution_hours,omitempty"`
	ResolutionRate     float64  `json:"resolution_rate"`
}

// TenantTokenUsage is AI token consumption of one tenant.
type TenantTokenUsage struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	TokensUsed int64  `json:"tokens_used"`
}

// TenantActivity is ticket traffic of one tenant.
type TenantActivity struct {
	TenantID          string `json:"tenant_id"`
	TenantName        string `json:"tenant_name"`
	TicketsCreated    int    `json:"tickets_created"`
	InteractionsCount int    `json:"interactions"`
}

// TenantTokenBreakdown is token usage of one tenant over several windows.
type TenantTokenBreakdown struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	Today      int64  `json:"today"`
	ThisMonth  int64  `json:"this_month"`
	Lifetime   int64  `json:"lifetime"`
}

// Dashboard is everything the analytics screen renders in one load.
type Dashboard struct {
	KPIs        KPIs               `json:"kpis"`
	ByStatus    map[string]int     `json:"by_status"`
	ByCategory  []CategoryCount    `json:"by_category"`
	Resolutions []ResolutionPoint  `json:"resolutions"`
	Agents      []AgentPerformance `json:"agents"`
}
