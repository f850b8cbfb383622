package domain

import "time"

// SLAConfig defines the contractual response/resolution bounds for a
// (zone, client, maintenance type) scope. A nil ClientID applies the
// config to every client in the zone. At most one active config exists
// per scope triple.
type SLAConfig struct {
	ID                    string
	ZoneID                string
	ClientID              *string
	MaintenanceType       MaintenanceType
	ResponseTime          string
	ResolutionTime        string
	ResponseTimeMinutes   int
	ResolutionTimeMinutes int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ViolationKind distinguishes which SLA bound was breached.
type ViolationKind string

const (
	ViolationResponseTime   ViolationKind = "RESPONSE_TIME"
	ViolationResolutionTime ViolationKind = "RESOLUTION_TIME"
)

// SLAViolation describes one breached bound for one ticket.
type SLAViolation struct {
	Kind            ViolationKind `json:"kind"`
	ExpectedMinutes int           `json:"expected_minutes"`
	ActualMinutes   int           `json:"actual_minutes"`
	ExcessMinutes   int           `json:"excess_minutes"`
	Recommendation  string        `json:"recommendation"`
}

// TicketCompliance is the per-ticket detail inside a compliance report.
// Nil minute values mean no maintenance record exists for the ticket, so
// the measurement is undefined rather than zero.
type TicketCompliance struct {
	TicketID            string `json:"ticket_id"`
	ResponseMinutes     *int   `json:"response_minutes,omitempty"`
	ResolutionMinutes   *int   `json:"resolution_minutes,omitempty"`
	ResponseCompliant   bool   `json:"response_compliant"`
	ResolutionCompliant bool   `json:"resolution_compliant"`
}

// ComplianceResult is a computed view over an SLA config and a time
// window. Built fresh on every query, never cached.
type ComplianceResult struct {
	SLAID                   string             `json:"sla_id"`
	PeriodStart             time.Time          `json:"period_start"`
	PeriodEnd               time.Time          `json:"period_end"`
	TotalTickets            int                `json:"total_tickets"`
	ResponseCompliancePct   float64            `json:"response_compliance_pct"`
	ResolutionCompliancePct float64            `json:"resolution_compliance_pct"`
	AvgResponseMinutes      float64            `json:"avg_response_minutes"`
	AvgResolutionMinutes    float64            `json:"avg_resolution_minutes"`
	Tickets                 []TicketCompliance `json:"tickets"`
	Recommendations         []string           `json:"recommendations"`
}

// ValidationResult is the outcome of checking one ticket against an SLA.
type ValidationResult struct {
	SLAID      string         `json:"sla_id"`
	TicketID   string         `json:"ticket_id"`
	IsValid    bool           `json:"is_valid"`
	Violations []SLAViolation `json:"violations"`
}
