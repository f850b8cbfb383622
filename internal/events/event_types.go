package events

import (
	"time"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTicketAssigned       EventType = "ticket_assigned"
	EventMaintenanceStarted   EventType = "maintenance_started"
	EventMaintenanceCompleted EventType = "maintenance_completed"
	EventSLAViolationDetected EventType = "sla_violation_detected"
	EventFollowUpRequired     EventType = "follow_up_required"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type         domain.ActorType `json:"type"`
	TechnicianID *string          `json:"technician_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ATMID    string                `json:"atm_id"`
	ZoneID   string                `json:"zone_id"`
	Type     domain.TicketType     `json:"type"`
	Priority domain.TicketPriority `json:"priority"`
	Title    string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TechnicianID *string `json:"technician_id,omitempty"`
}

// MaintenanceStartedPayload payload.
type MaintenanceStartedPayload struct {
	MaintenanceID string                 `json:"maintenance_id"`
	TechnicianID  string                 `json:"technician_id"`
	Type          domain.MaintenanceType `json:"maintenance_type"`
}

// MaintenanceCompletedPayload payload.
type MaintenanceCompletedPayload struct {
	MaintenanceID    string  `json:"maintenance_id"`
	TechnicianID     string  `json:"technician_id"`
	DurationMinutes  int     `json:"duration_minutes"`
	TotalCost        float64 `json:"total_cost"`
	RequiresFollowUp bool    `json:"requires_follow_up"`
}

// SLAViolationPayload payload.
type SLAViolationPayload struct {
	SLAID      string                `json:"sla_id"`
	Violations []domain.SLAViolation `json:"violations"`
}

// FollowUpRequiredPayload payload.
type FollowUpRequiredPayload struct {
	MaintenanceID string  `json:"maintenance_id"`
	Notes         *string `json:"notes,omitempty"`
}
