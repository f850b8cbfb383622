package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	"github.com/spec-kit/atm-maintenance-service/internal/events"
	"github.com/spec-kit/atm-maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	atms        repository.ATMRepository
	zones       repository.ZoneRepository
	technicians repository.TechnicianRepository
	history     repository.TicketHistoryRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	ATMRepo        repository.ATMRepository
	ZoneRepo       repository.ZoneRepository
	TechnicianRepo repository.TechnicianRepository
	HistoryRepo    repository.TicketHistoryRepository
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ATMID       string
	Type        domain.TicketType
	Priority    domain.TicketPriority
	Title       string
	Description string
	DueDate     *time.Time
	SLADueDate  *time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		atms:        deps.ATMRepo,
		zones:       deps.ZoneRepo,
		technicians: deps.TechnicianRepo,
		history:     deps.HistoryRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket opens a ticket against an ATM. Zone and client are copied
// from the device.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	atm, err := s.atms.GetByID(ctx, input.ATMID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("atm", map[string]any{"atm_id": input.ATMID})
		}
		return nil, apperrors.MapError(err)
	}
	if !atm.Active {
		return nil, apperrors.NewConflict("atm inactive", map[string]any{"atm_id": atm.ID})
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		ATMID:       atm.ID,
		ZoneID:      atm.ZoneID,
		ClientID:    atm.ClientID,
		Type:        input.Type,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		SLADueDate:  input.SLADueDate,
	}
	if ticket.Type == "" {
		ticket.Type = domain.TicketTypeCorrective
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    systemActor(),
		Payload: events.TicketCreatedPayload{
			ATMID:    ticket.ATMID,
			ZoneID:   ticket.ZoneID,
			Type:     ticket.Type,
			Priority: ticket.Priority,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// GetTicketByKey fetches a ticket by its external key.
func (s *TicketService) GetTicketByKey(ctx context.Context, key string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByExternalKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"external_key": key})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Transition moves a ticket to a new status through the state machine.
// An illegal move fails without mutating the ticket.
func (s *TicketService) Transition(ctx context.Context, actorID *string, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	oldStatus := ticket.Status
	if !ticket.TransitionTo(newStatus, time.Now()) {
		return nil, apperrors.NewInvalidTransition("illegal status transition", map[string]any{
			"ticket_id":   ticketID,
			"from_status": oldStatus,
			"to_status":   newStatus,
		})
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordStatusChange(ctx, actorID, ticket.ID, oldStatus, newStatus, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actorFor(actorID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// AssignTechnician assigns an open ticket to an active technician and
// moves it to ASSIGNED.
func (s *TicketService) AssignTechnician(ctx context.Context, actorID *string, ticketID, technicianID string) (*domain.Ticket, error) {
	technician, err := s.technicians.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if !technician.Active {
		return nil, apperrors.NewConflict("technician inactive", map[string]any{"technician_id": technicianID})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !ticket.CanBeAssigned() {
		return nil, apperrors.NewInvalidTransition("ticket cannot be assigned in current status", map[string]any{
			"ticket_id": ticketID,
			"status":    ticket.Status,
		})
	}
	oldStatus := ticket.Status
	ticket.TechnicianID = &technician.ID
	if !ticket.TransitionTo(domain.TicketStatusAssigned, time.Now()) {
		return nil, apperrors.NewInvalidTransition("ticket cannot be assigned in current status", map[string]any{
			"ticket_id": ticketID,
			"status":    ticket.Status,
		})
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordAssignment(ctx, actorID, ticket.ID, technician.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordStatusChange(ctx, actorID, ticket.ID, oldStatus, ticket.Status, "assigned"); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actorFor(actorID),
		Payload: events.TicketAssignedPayload{
			TechnicianID: ticket.TechnicianID,
		},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket while it is still open.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	err := s.tickets.Delete(ctx, ticketID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	case errors.Is(err, repository.ErrNotDeletable):
		return apperrors.NewConflict("only open tickets can be deleted", map[string]any{"ticket_id": ticketID})
	default:
		return apperrors.MapError(err)
	}
}

// ListOverdue returns tickets whose due date has passed.
func (s *TicketService) ListOverdue(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	now := time.Now()
	overdue := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.IsOverdue(now) {
			overdue = append(overdue, ticket)
		}
	}
	return overdue, nil
}

// ListRequiringAttention returns the attention set: open, critical, or
// past-due-and-not-closed tickets, deduplicated by ticket id.
func (s *TicketService) ListRequiringAttention(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	now := time.Now()
	seen := make(map[string]struct{}, len(tickets))
	attention := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if !ticket.RequiresAttention(now) {
			continue
		}
		if _, dup := seen[ticket.ID]; dup {
			continue
		}
		seen[ticket.ID] = struct{}{}
		attention = append(attention, ticket)
	}
	return attention, nil
}

// ListZoneATMs returns the devices serviced in a zone.
func (s *TicketService) ListZoneATMs(ctx context.Context, zoneID string) ([]domain.ATM, error) {
	atms, err := s.atms.ListByZone(ctx, zoneID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return atms, nil
}

// ListZones returns all service zones.
func (s *TicketService) ListZones(ctx context.Context) ([]domain.Zone, error) {
	zones, err := s.zones.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return zones, nil
}

// ListHistory returns audit entries for a ticket.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) recordStatusChange(ctx context.Context, actorID *string, ticketID string, oldStatus, newStatus domain.TicketStatus, comment string) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: actorTypeFor(actorID),
		ChangedByID:   actorID,
		ChangeType:    domain.ChangeTypeStatus,
		OldValue: map[string]any{
			"status": oldStatus,
		},
		NewValue: map[string]any{
			"status":  newStatus,
			"comment": comment,
		},
	}
	return s.history.Create(ctx, entry)
}

func (s *TicketService) recordAssignment(ctx context.Context, actorID *string, ticketID, technicianID string) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: actorTypeFor(actorID),
		ChangedByID:   actorID,
		ChangeType:    domain.ChangeTypeTechnician,
		OldValue:      map[string]any{},
		NewValue: map[string]any{
			"technician_id": technicianID,
		},
	}
	return s.history.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "ATM-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func systemActor() events.Actor {
	return events.Actor{Type: domain.ActorTypeSystem}
}

func actorFor(technicianID *string) events.Actor {
	if technicianID == nil {
		return systemActor()
	}
	return events.Actor{Type: domain.ActorTypeTechnician, TechnicianID: technicianID}
}

func actorTypeFor(technicianID *string) domain.ActorType {
	if technicianID == nil {
		return domain.ActorTypeSystem
	}
	return domain.ActorTypeTechnician
}
