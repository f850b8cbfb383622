package dto

import (
	"time"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ATMID       string                `json:"atm_id"`
	Type        domain.TicketType     `json:"type"`
	Priority    domain.TicketPriority `json:"priority"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	DueDate     *time.Time            `json:"due_date"`
	SLADueDate  *time.Time            `json:"sla_due_date"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// AssignRequest payload.
type AssignRequest struct {
	TechnicianID string `json:"technician_id"`
}

// TicketResponse serializes a ticket.
type TicketResponse struct {
	ID           string                `json:"id"`
	ExternalKey  string                `json:"external_key"`
	ATMID        string                `json:"atm_id"`
	ZoneID       string                `json:"zone_id"`
	ClientID     string                `json:"client_id"`
	TechnicianID *string               `json:"technician_id,omitempty"`
	Type         domain.TicketType     `json:"type"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	DueDate      *time.Time            `json:"due_date,omitempty"`
	SLADueDate   *time.Time            `json:"sla_due_date,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
}

// TicketHistoryResponse serializes an audit entry.
type TicketHistoryResponse struct {
	ID            string            `json:"id"`
	ChangedByType domain.ActorType  `json:"changed_by_type"`
	ChangedByID   *string           `json:"changed_by_id,omitempty"`
	ChangeType    domain.ChangeType `json:"change_type"`
	OldValue      map[string]any    `json:"old_value"`
	NewValue      map[string]any    `json:"new_value"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ATMResponse serializes a serviced device.
type ATMResponse struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serial_number"`
	Model        string `json:"model"`
	ZoneID       string `json:"zone_id"`
	ClientID     string `json:"client_id"`
	Address      string `json:"address"`
	Active       bool   `json:"active"`
}

// ZoneResponse serializes a service zone.
type ZoneResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// FromZone maps a domain zone.
func FromZone(zone *domain.Zone) ZoneResponse {
	return ZoneResponse{ID: zone.ID, Name: zone.Name, Active: zone.Active}
}

// FromATM maps a domain ATM.
func FromATM(atm *domain.ATM) ATMResponse {
	return ATMResponse{
		ID:           atm.ID,
		SerialNumber: atm.SerialNumber,
		Model:        atm.Model,
		ZoneID:       atm.ZoneID,
		ClientID:     atm.ClientID,
		Address:      atm.Address,
		Active:       atm.Active,
	}
}

// FromTicket maps a domain ticket.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           ticket.ID,
		ExternalKey:  ticket.ExternalKey,
		ATMID:        ticket.ATMID,
		ZoneID:       ticket.ZoneID,
		ClientID:     ticket.ClientID,
		TechnicianID: ticket.TechnicianID,
		Type:         ticket.Type,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		DueDate:      ticket.DueDate,
		SLADueDate:   ticket.SLADueDate,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		CompletedAt:  ticket.CompletedAt,
	}
}
