package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	"github.com/spec-kit/atm-maintenance-service/internal/events"
	"github.com/spec-kit/atm-maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

// TechnicianReservation is a fast-path claim on a technician before the
// database constraint settles the race for good. Implementations may be
// best-effort; the partial unique index stays authoritative.
type TechnicianReservation interface {
	Reserve(ctx context.Context, technicianID string) (bool, error)
	Release(ctx context.Context, technicianID string) error
}

// MaintenanceService owns the start/complete/parts/measurement/follow-up
// lifecycle of maintenance records.
type MaintenanceService struct {
	records      repository.MaintenanceRepository
	tickets      repository.TicketRepository
	technicians  repository.TechnicianRepository
	history      repository.TicketHistoryRepository
	reservations TechnicianReservation
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// MaintenanceDependencies bundles collaborators.
type MaintenanceDependencies struct {
	MaintenanceRepo repository.MaintenanceRepository
	TicketRepo      repository.TicketRepository
	TechnicianRepo  repository.TechnicianRepository
	HistoryRepo     repository.TicketHistoryRepository
	Reservations    TechnicianReservation
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// StartMaintenanceInput describes the start payload.
type StartMaintenanceInput struct {
	TicketID     string
	TechnicianID string
	Type         *domain.MaintenanceType
}

// CompletionInput describes the finalization payload. Nil fields leave
// the stored value in place.
type CompletionInput struct {
	Diagnosis        *string
	WorkPerformed    *string
	Parts            []domain.PartUsed
	Measurements     []domain.Measurement
	Tasks            []domain.ChecklistTask
	RequiresFollowUp *bool
	FollowUpNotes    *string
	EndedAt          *time.Time
}

// NewMaintenanceService constructs the service.
func NewMaintenanceService(deps MaintenanceDependencies) *MaintenanceService {
	return &MaintenanceService{
		records:      deps.MaintenanceRepo,
		tickets:      deps.TicketRepo,
		technicians:  deps.TechnicianRepo,
		history:      deps.HistoryRepo,
		reservations: deps.Reservations,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
	}
}

// StartMaintenance opens a maintenance record against a ticket. At most
// one incomplete record may exist per ticket and per technician; the
// existence checks here are a fast path and the database partial unique
// indexes settle concurrent starts.
func (s *MaintenanceService) StartMaintenance(ctx context.Context, input StartMaintenanceInput) (*domain.MaintenanceRecord, error) {
	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.TicketID})
		}
		return nil, apperrors.MapError(err)
	}
	technician, err := s.technicians.GetByID(ctx, input.TechnicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": input.TechnicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if !technician.Active {
		return nil, apperrors.NewConflict("technician inactive", map[string]any{"technician_id": technician.ID})
	}

	busy, err := s.records.HasActiveForTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if busy {
		return nil, apperrors.NewConflict("ticket already has an active maintenance", map[string]any{"ticket_id": ticket.ID})
	}
	busy, err = s.records.HasActiveForTechnician(ctx, technician.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if busy {
		return nil, apperrors.NewConflict("technician already has an active maintenance", map[string]any{"technician_id": technician.ID})
	}

	if s.reservations != nil {
		reserved, err := s.reservations.Reserve(ctx, technician.ID)
		if err != nil {
			s.logWarn("technician reservation unavailable", zap.Error(err))
		} else if !reserved {
			return nil, apperrors.NewConflict("technician already has an active maintenance", map[string]any{"technician_id": technician.ID})
		}
	}

	maintenanceType := domain.MaintenanceTypeFirstLine
	if input.Type != nil {
		maintenanceType = *input.Type
	}
	record := &domain.MaintenanceRecord{
		TicketID:     ticket.ID,
		ATMID:        ticket.ATMID,
		TechnicianID: technician.ID,
		Type:         maintenanceType,
		Parts:        []domain.PartUsed{},
		Measurements: []domain.Measurement{},
		Tasks:        []domain.ChecklistTask{},
		StartedAt:    time.Now(),
	}
	if err := s.records.Create(ctx, record); err != nil {
		s.releaseReservation(ctx, technician.ID)
		switch {
		case errors.Is(err, repository.ErrActiveForTicket):
			return nil, apperrors.NewConflict("ticket already has an active maintenance", map[string]any{"ticket_id": ticket.ID})
		case errors.Is(err, repository.ErrActiveForTechnician):
			return nil, apperrors.NewConflict("technician already has an active maintenance", map[string]any{"technician_id": technician.ID})
		default:
			return nil, apperrors.MapError(err)
		}
	}

	if ticket.CanBeStarted() {
		oldStatus := ticket.Status
		if ticket.TransitionTo(domain.TicketStatusInProgress, time.Now()) {
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return nil, apperrors.MapError(err)
			}
			s.recordTicketStatus(ctx, technician.ID, ticket.ID, oldStatus, ticket.Status, "maintenance started")
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventMaintenanceStarted,
		TicketID: ticket.ID,
		Actor:    actorFor(&technician.ID),
		Payload: events.MaintenanceStartedPayload{
			MaintenanceID: record.ID,
			TechnicianID:  technician.ID,
			Type:          record.Type,
		},
	})
	return record, nil
}

// CompleteMaintenance finalizes a record. Validation of the would-be
// final state happens before anything is persisted, so a failed
// validation leaves the record unchanged.
func (s *MaintenanceService) CompleteMaintenance(ctx context.Context, id string, input CompletionInput) (*domain.MaintenanceRecord, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.IsComplete() {
		return nil, apperrors.NewAlreadyComplete("maintenance record already complete", map[string]any{"maintenance_id": id})
	}

	candidate := *record
	if input.Diagnosis != nil {
		candidate.Diagnosis = strings.TrimSpace(*input.Diagnosis)
	}
	if input.WorkPerformed != nil {
		candidate.WorkPerformed = strings.TrimSpace(*input.WorkPerformed)
	}
	if len(input.Parts) > 0 {
		if err := validateParts(input.Parts); err != nil {
			return nil, err
		}
		candidate.Parts = append(append([]domain.PartUsed{}, candidate.Parts...), input.Parts...)
	}
	if input.Measurements != nil {
		candidate.Measurements = input.Measurements
	}
	if input.Tasks != nil {
		candidate.Tasks = input.Tasks
	}
	if input.RequiresFollowUp != nil {
		candidate.RequiresFollowUp = *input.RequiresFollowUp
	}
	if input.FollowUpNotes != nil {
		candidate.FollowUpNotes = input.FollowUpNotes
	}
	endedAt := time.Now()
	if input.EndedAt != nil {
		endedAt = *input.EndedAt
	}
	candidate.EndedAt = &endedAt

	missing := []string{}
	if strings.TrimSpace(candidate.Diagnosis) == "" {
		missing = append(missing, "diagnosis is required")
	}
	if strings.TrimSpace(candidate.WorkPerformed) == "" {
		missing = append(missing, "work performed description is required")
	}
	if len(candidate.Parts) == 0 {
		missing = append(missing, "at least one part is required")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("maintenance completion preconditions unmet", map[string]any{
			"maintenance_id": id,
			"missing":        missing,
		})
	}

	if err := s.records.Update(ctx, &candidate); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.releaseReservation(ctx, candidate.TechnicianID)

	ticket, err := s.tickets.GetByID(ctx, candidate.TicketID)
	if err == nil && ticket.Status == domain.TicketStatusInProgress {
		oldStatus := ticket.Status
		if ticket.TransitionTo(domain.TicketStatusResolved, time.Now()) {
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return nil, apperrors.MapError(err)
			}
			s.recordTicketStatus(ctx, candidate.TechnicianID, ticket.ID, oldStatus, ticket.Status, "maintenance completed")
		}
	}

	duration, _ := candidate.Duration()
	s.publishEvent(ctx, events.Event{
		Type:     events.EventMaintenanceCompleted,
		TicketID: candidate.TicketID,
		Actor:    actorFor(&candidate.TechnicianID),
		Payload: events.MaintenanceCompletedPayload{
			MaintenanceID:    candidate.ID,
			TechnicianID:     candidate.TechnicianID,
			DurationMinutes:  int(duration / time.Minute),
			TotalCost:        candidate.TotalCost(),
			RequiresFollowUp: candidate.RequiresFollowUp,
		},
	})
	if candidate.RequiresFollowUp {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventFollowUpRequired,
			TicketID: candidate.TicketID,
			Actor:    actorFor(&candidate.TechnicianID),
			Payload: events.FollowUpRequiredPayload{
				MaintenanceID: candidate.ID,
				Notes:         candidate.FollowUpNotes,
			},
		})
	}
	return &candidate, nil
}

// AddParts appends parts to an incomplete record.
func (s *MaintenanceService) AddParts(ctx context.Context, id string, parts []domain.PartUsed) (*domain.MaintenanceRecord, error) {
	if err := validateParts(parts); err != nil {
		return nil, err
	}
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.IsComplete() {
		return nil, apperrors.NewForbidden("cannot modify a completed maintenance record")
	}
	record.Parts = append(record.Parts, parts...)
	if err := s.records.Update(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}
	return record, nil
}

// UpdateMeasurements replaces the measurement list wholesale.
func (s *MaintenanceService) UpdateMeasurements(ctx context.Context, id string, measurements []domain.Measurement) (*domain.MaintenanceRecord, error) {
	for _, m := range measurements {
		if strings.TrimSpace(m.Name) == "" {
			return nil, apperrors.NewInvalidInput("measurement name is required", nil)
		}
	}
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.IsComplete() {
		return nil, apperrors.NewForbidden("cannot modify a completed maintenance record")
	}
	record.Measurements = measurements
	if err := s.records.Update(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}
	return record, nil
}

// SetFollowUp flags a record for follow-up. Allowed regardless of
// completion state; follow-up may be recognized after the fact.
func (s *MaintenanceService) SetFollowUp(ctx context.Context, id string, required bool, notes *string) (*domain.MaintenanceRecord, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	record.RequiresFollowUp = required
	if notes != nil {
		record.FollowUpNotes = notes
	}
	if err := s.records.Update(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}
	if required {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventFollowUpRequired,
			TicketID: record.TicketID,
			Actor:    actorFor(&record.TechnicianID),
			Payload: events.FollowUpRequiredPayload{
				MaintenanceID: record.ID,
				Notes:         record.FollowUpNotes,
			},
		})
	}
	return record, nil
}

// DeleteMaintenance removes an incomplete record.
func (s *MaintenanceService) DeleteMaintenance(ctx context.Context, id string) error {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return err
	}
	err = s.records.Delete(ctx, id)
	switch {
	case err == nil:
		s.releaseReservation(ctx, record.TechnicianID)
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("maintenance record", map[string]any{"maintenance_id": id})
	case errors.Is(err, repository.ErrRecordComplete):
		return apperrors.NewAlreadyComplete("completed maintenance records cannot be deleted", map[string]any{"maintenance_id": id})
	default:
		return apperrors.MapError(err)
	}
}

// GetMaintenance fetches a record by id.
func (s *MaintenanceService) GetMaintenance(ctx context.Context, id string) (*domain.MaintenanceRecord, error) {
	return s.getRecord(ctx, id)
}

// GetActiveForTicket returns the ticket's incomplete record, if any.
func (s *MaintenanceService) GetActiveForTicket(ctx context.Context, ticketID string) (*domain.MaintenanceRecord, error) {
	record, err := s.records.GetActiveByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("active maintenance record", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return record, nil
}

// ListByTicket returns all records for a ticket.
func (s *MaintenanceService) ListByTicket(ctx context.Context, ticketID string) ([]domain.MaintenanceRecord, error) {
	records, err := s.records.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

// ListByTechnician returns records for a technician.
func (s *MaintenanceService) ListByTechnician(ctx context.Context, technicianID string, limit, offset int) ([]domain.MaintenanceRecord, error) {
	records, err := s.records.ListByTechnician(ctx, technicianID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

func (s *MaintenanceService) getRecord(ctx context.Context, id string) (*domain.MaintenanceRecord, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("maintenance record", map[string]any{"maintenance_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return record, nil
}

func validateParts(parts []domain.PartUsed) error {
	if len(parts) == 0 {
		return apperrors.NewInvalidInput("at least one part is required", nil)
	}
	for i, part := range parts {
		if strings.TrimSpace(part.Name) == "" {
			return apperrors.NewInvalidInput("part name is required", map[string]any{"index": i})
		}
		if part.Quantity < 1 {
			return apperrors.NewInvalidInput("part quantity must be positive", map[string]any{
				"index":    i,
				"quantity": part.Quantity,
			})
		}
	}
	return nil
}

func (s *MaintenanceService) recordTicketStatus(ctx context.Context, technicianID, ticketID string, oldStatus, newStatus domain.TicketStatus, comment string) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: domain.ActorTypeTechnician,
		ChangedByID:   &technicianID,
		ChangeType:    domain.ChangeTypeStatus,
		OldValue: map[string]any{
			"status": oldStatus,
		},
		NewValue: map[string]any{
			"status":  newStatus,
			"comment": comment,
		},
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logWarn("failed to record ticket history", zap.Error(err))
	}
}

func (s *MaintenanceService) releaseReservation(ctx context.Context, technicianID string) {
	if s.reservations == nil {
		return
	}
	if err := s.reservations.Release(ctx, technicianID); err != nil {
		s.logWarn("failed to release technician reservation", zap.Error(err), zap.String("technician_id", technicianID))
	}
}

func (s *MaintenanceService) publishEvent(ctx context.Context, event events.Event) {
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

func (s *MaintenanceService) logWarn(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Warn(msg, fields...)
	}
}
