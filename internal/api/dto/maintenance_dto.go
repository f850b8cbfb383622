package dto

import (
	"time"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// StartMaintenanceRequest payload.
type StartMaintenanceRequest struct {
	TicketID     string                  `json:"ticket_id"`
	TechnicianID string                  `json:"technician_id"`
	Type         *domain.MaintenanceType `json:"type"`
}

// CompleteMaintenanceRequest payload. Nil fields keep the stored value.
type CompleteMaintenanceRequest struct {
	Diagnosis        *string                `json:"diagnosis"`
	WorkPerformed    *string                `json:"work_performed"`
	Parts            []domain.PartUsed      `json:"parts"`
	Measurements     []domain.Measurement   `json:"measurements"`
	Tasks            []domain.ChecklistTask `json:"tasks"`
	RequiresFollowUp *bool                  `json:"requires_follow_up"`
	FollowUpNotes    *string                `json:"follow_up_notes"`
	EndedAt          *time.Time             `json:"ended_at"`
}

// AddPartsRequest payload.
type AddPartsRequest struct {
	Parts []domain.PartUsed `json:"parts"`
}

// UpdateMeasurementsRequest payload.
type UpdateMeasurementsRequest struct {
	Measurements []domain.Measurement `json:"measurements"`
}

// FollowUpRequest payload.
type FollowUpRequest struct {
	Required bool    `json:"required"`
	Notes    *string `json:"notes"`
}

// MaintenanceResponse serializes a maintenance record.
type MaintenanceResponse struct {
	ID               string                 `json:"id"`
	TicketID         string                 `json:"ticket_id"`
	ATMID            string                 `json:"atm_id"`
	TechnicianID     string                 `json:"technician_id"`
	Type             domain.MaintenanceType `json:"type"`
	Diagnosis        string                 `json:"diagnosis"`
	WorkPerformed    string                 `json:"work_performed"`
	Parts            []domain.PartUsed      `json:"parts"`
	Measurements     []domain.Measurement   `json:"measurements"`
	Tasks            []domain.ChecklistTask `json:"tasks"`
	RequiresFollowUp bool                   `json:"requires_follow_up"`
	FollowUpNotes    *string                `json:"follow_up_notes,omitempty"`
	StartedAt        time.Time              `json:"started_at"`
	EndedAt          *time.Time             `json:"ended_at,omitempty"`
	DurationMinutes  *int                   `json:"duration_minutes,omitempty"`
	TotalPartsUsed   int                    `json:"total_parts_used"`
	TotalCost        float64                `json:"total_cost"`
	OpenTasks        int                    `json:"open_tasks"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// FromMaintenanceRecord maps a domain record including derived fields.
func FromMaintenanceRecord(record *domain.MaintenanceRecord) MaintenanceResponse {
	resp := MaintenanceResponse{
		ID:               record.ID,
		TicketID:         record.TicketID,
		ATMID:            record.ATMID,
		TechnicianID:     record.TechnicianID,
		Type:             record.Type,
		Diagnosis:        record.Diagnosis,
		WorkPerformed:    record.WorkPerformed,
		Parts:            record.Parts,
		Measurements:     record.Measurements,
		Tasks:            record.Tasks,
		RequiresFollowUp: record.RequiresFollowUp,
		FollowUpNotes:    record.FollowUpNotes,
		StartedAt:        record.StartedAt,
		EndedAt:          record.EndedAt,
		TotalPartsUsed:   record.TotalPartsUsed(),
		TotalCost:        record.TotalCost(),
		OpenTasks:        record.OpenTaskCount(),
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
	if duration, ok := record.Duration(); ok {
		minutes := int(duration.Minutes())
		resp.DurationMinutes = &minutes
	}
	return resp
}
