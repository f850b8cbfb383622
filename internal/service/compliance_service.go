package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	"github.com/spec-kit/atm-maintenance-service/internal/events"
	"github.com/spec-kit/atm-maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

// Recommendation thresholds. Advisory text only, never control flow.
const (
	responseComplianceFloor   = 90.0
	resolutionComplianceFloor = 85.0
	zoneAverageFactor         = 1.2
	complianceScanLimit       = 10000
)

// ComplianceService computes SLA compliance over ticket populations.
// Results are built fresh on every query and never cached.
type ComplianceService struct {
	slas       repository.SLARepository
	tickets    repository.TicketRepository
	records    repository.MaintenanceRepository
	dispatcher events.Dispatcher
}

// ComplianceDependencies bundles collaborators.
type ComplianceDependencies struct {
	SLARepo         repository.SLARepository
	TicketRepo      repository.TicketRepository
	MaintenanceRepo repository.MaintenanceRepository
	Dispatcher      events.Dispatcher
}

// NewComplianceService constructs the service.
func NewComplianceService(deps ComplianceDependencies) *ComplianceService {
	return &ComplianceService{
		slas:       deps.SLARepo,
		tickets:    deps.TicketRepo,
		records:    deps.MaintenanceRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ticketTiming holds the measured durations for one ticket. Nil values
// mean no maintenance exists for that measurement, so it is undefined.
type ticketTiming struct {
	ticketID   string
	response   *time.Duration
	resolution *time.Duration
}

// CalculateCompliance computes aggregate compliance for every ticket in
// the SLA's zone/client/type scope created within [start, end]. A window
// with zero matching tickets yields UNDEFINED_AGGREGATE, never a 0%.
func (s *ComplianceService) CalculateCompliance(ctx context.Context, slaID string, start, end time.Time) (*domain.ComplianceResult, error) {
	cfg, err := s.loadConfig(ctx, slaID)
	if err != nil {
		return nil, err
	}
	timings, err := s.collectTimings(ctx, cfg, start, end)
	if err != nil {
		return nil, err
	}
	if len(timings) == 0 {
		return nil, apperrors.NewUndefinedAggregate("no tickets in the requested period", map[string]any{
			"sla_id":       slaID,
			"period_start": start,
			"period_end":   end,
		})
	}

	result := &domain.ComplianceResult{
		SLAID:        cfg.ID,
		PeriodStart:  start,
		PeriodEnd:    end,
		TotalTickets: len(timings),
		Tickets:      make([]domain.TicketCompliance, 0, len(timings)),
	}

	responseBound := minutesToDuration(cfg.ResponseTimeMinutes)
	resolutionBound := minutesToDuration(cfg.ResolutionTimeMinutes)

	var (
		responseViolations   int
		resolutionViolations int
		responseSum          time.Duration
		resolutionSum        time.Duration
		responseCount        int
		resolutionCount      int
	)
	for _, timing := range timings {
		detail := domain.TicketCompliance{
			TicketID:            timing.ticketID,
			ResponseCompliant:   true,
			ResolutionCompliant: true,
		}
		if timing.response != nil {
			minutes := durationToMinutes(*timing.response)
			detail.ResponseMinutes = &minutes
			responseSum += *timing.response
			responseCount++
			if *timing.response > responseBound {
				detail.ResponseCompliant = false
				responseViolations++
			}
		}
		if timing.resolution != nil {
			minutes := durationToMinutes(*timing.resolution)
			detail.ResolutionMinutes = &minutes
			resolutionSum += *timing.resolution
			resolutionCount++
			if *timing.resolution > resolutionBound {
				detail.ResolutionCompliant = false
				resolutionViolations++
			}
		}
		result.Tickets = append(result.Tickets, detail)
	}

	total := float64(len(timings))
	result.ResponseCompliancePct = (total - float64(responseViolations)) / total * 100
	result.ResolutionCompliancePct = (total - float64(resolutionViolations)) / total * 100
	if responseCount > 0 {
		result.AvgResponseMinutes = responseSum.Minutes() / float64(responseCount)
	}
	if resolutionCount > 0 {
		result.AvgResolutionMinutes = resolutionSum.Minutes() / float64(resolutionCount)
	}

	zoneAvg, err := s.zoneAverageResponse(ctx, cfg.ZoneID, start, end)
	if err != nil {
		return nil, err
	}
	result.Recommendations = buildRecommendations(cfg, result, zoneAvg, responseCount)
	return result, nil
}

// ValidateSLA narrows compliance checking to one ticket and returns the
// structured violation list, under the same scope rules as the
// aggregate: the ticket must belong to the config's zone/client, and a
// ticket whose maintenance is of another type is governed by a
// different SLA. A ticket without maintenance has undefined timings and
// therefore no demonstrable breach.
func (s *ComplianceService) ValidateSLA(ctx context.Context, slaID, ticketID string) (*domain.ValidationResult, error) {
	cfg, err := s.loadConfig(ctx, slaID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.ZoneID != cfg.ZoneID || (cfg.ClientID != nil && ticket.ClientID != *cfg.ClientID) {
		return nil, apperrors.NewInvalidInput("ticket is outside the SLA scope", map[string]any{
			"sla_id":    cfg.ID,
			"ticket_id": ticket.ID,
			"zone_id":   ticket.ZoneID,
			"client_id": ticket.ClientID,
		})
	}

	result := &domain.ValidationResult{
		SLAID:      cfg.ID,
		TicketID:   ticket.ID,
		IsValid:    true,
		Violations: []domain.SLAViolation{},
	}

	records, err := s.recordsFor(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && records[0].Type != cfg.MaintenanceType {
		return result, nil
	}
	timing := buildTiming(ticket, records)
	if timing.response != nil && *timing.response > minutesToDuration(cfg.ResponseTimeMinutes) {
		actual := durationToMinutes(*timing.response)
		result.Violations = append(result.Violations, domain.SLAViolation{
			Kind:            domain.ViolationResponseTime,
			ExpectedMinutes: cfg.ResponseTimeMinutes,
			ActualMinutes:   actual,
			ExcessMinutes:   actual - cfg.ResponseTimeMinutes,
			Recommendation: fmt.Sprintf("dispatch exceeded the response window by %d minutes; review technician coverage in zone %s",
				actual-cfg.ResponseTimeMinutes, cfg.ZoneID),
		})
	}
	if timing.resolution != nil && *timing.resolution > minutesToDuration(cfg.ResolutionTimeMinutes) {
		actual := durationToMinutes(*timing.resolution)
		result.Violations = append(result.Violations, domain.SLAViolation{
			Kind:            domain.ViolationResolutionTime,
			ExpectedMinutes: cfg.ResolutionTimeMinutes,
			ActualMinutes:   actual,
			ExcessMinutes:   actual - cfg.ResolutionTimeMinutes,
			Recommendation: fmt.Sprintf("work overran the resolution window by %d minutes; review spare part availability and repair capacity in zone %s",
				actual-cfg.ResolutionTimeMinutes, cfg.ZoneID),
		})
	}

	if len(result.Violations) > 0 {
		result.IsValid = false
		s.publishViolations(ctx, cfg.ID, ticket.ID, result.Violations)
	}
	return result, nil
}

func (s *ComplianceService) loadConfig(ctx context.Context, slaID string) (*domain.SLAConfig, error) {
	cfg, err := s.slas.GetByID(ctx, slaID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sla configuration", map[string]any{"sla_id": slaID})
		}
		return nil, apperrors.MapError(err)
	}
	return cfg, nil
}

// collectTimings resolves the measured durations for every ticket in
// scope. A ticket with a maintenance record of another type belongs to a
// different SLA and is excluded entirely; a ticket with no maintenance
// at all stays in the population with undefined timings.
func (s *ComplianceService) collectTimings(ctx context.Context, cfg *domain.SLAConfig, start, end time.Time) ([]ticketTiming, error) {
	filter := repository.TicketFilter{
		ZoneID:      &cfg.ZoneID,
		ClientID:    cfg.ClientID,
		CreatedFrom: &start,
		CreatedTo:   &end,
		Limit:       complianceScanLimit,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	timings := make([]ticketTiming, 0, len(tickets))
	for i := range tickets {
		ticket := &tickets[i]
		records, err := s.recordsFor(ctx, ticket.ID)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 && records[0].Type != cfg.MaintenanceType {
			continue
		}
		timings = append(timings, buildTiming(ticket, records))
	}
	return timings, nil
}

// recordsFor lists a ticket's maintenance records, newest first.
func (s *ComplianceService) recordsFor(ctx context.Context, ticketID string) ([]domain.MaintenanceRecord, error) {
	records, err := s.records.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

// buildTiming derives the measured durations. Response runs to the
// first on-site start across all rounds; resolution runs to the end of
// the newest round, undefined while that round is still open.
func buildTiming(ticket *domain.Ticket, records []domain.MaintenanceRecord) ticketTiming {
	timing := ticketTiming{ticketID: ticket.ID}
	if len(records) == 0 {
		return timing
	}
	earliest := records[len(records)-1]
	response := earliest.StartedAt.Sub(ticket.CreatedAt)
	timing.response = &response
	latest := records[0]
	if latest.EndedAt != nil {
		resolution := latest.EndedAt.Sub(ticket.CreatedAt)
		timing.resolution = &resolution
	}
	return timing
}

// zoneAverageResponse computes the mean response time across every
// maintained ticket in the zone over the window, regardless of client or
// maintenance type. Returns 0 when nothing in the zone has a response.
func (s *ComplianceService) zoneAverageResponse(ctx context.Context, zoneID string, start, end time.Time) (float64, error) {
	filter := repository.TicketFilter{
		ZoneID:      &zoneID,
		CreatedFrom: &start,
		CreatedTo:   &end,
		Limit:       complianceScanLimit,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	var sum time.Duration
	count := 0
	for i := range tickets {
		records, err := s.recordsFor(ctx, tickets[i].ID)
		if err != nil {
			return 0, err
		}
		if len(records) == 0 {
			continue
		}
		earliest := records[len(records)-1]
		sum += earliest.StartedAt.Sub(tickets[i].CreatedAt)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum.Minutes() / float64(count), nil
}

func buildRecommendations(cfg *domain.SLAConfig, result *domain.ComplianceResult, zoneAvgMinutes float64, responseCount int) []string {
	recommendations := []string{}
	if result.ResponseCompliancePct < responseComplianceFloor {
		recommendations = append(recommendations, fmt.Sprintf(
			"response compliance at %.1f%%; review staffing levels for zone %s", result.ResponseCompliancePct, cfg.ZoneID))
	}
	if result.ResolutionCompliancePct < resolutionComplianceFloor {
		recommendations = append(recommendations, fmt.Sprintf(
			"resolution compliance at %.1f%%; review repair capacity and spare part stock for zone %s", result.ResolutionCompliancePct, cfg.ZoneID))
	}
	if responseCount > 0 && zoneAvgMinutes > 0 && result.AvgResponseMinutes > zoneAverageFactor*zoneAvgMinutes {
		recommendations = append(recommendations, fmt.Sprintf(
			"average response of %.0f minutes is well above the zone average of %.0f; consider local first-line capability", result.AvgResponseMinutes, zoneAvgMinutes))
	}
	return recommendations
}

func (s *ComplianceService) publishViolations(ctx context.Context, slaID, ticketID string, violations []domain.SLAViolation) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSLAViolationDetected,
		TicketID:  ticketID,
		Actor:     systemActor(),
		Timestamp: time.Now(),
		Payload: events.SLAViolationPayload{
			SLAID:      slaID,
			Violations: violations,
		},
	})
}

func minutesToDuration(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}

// durationToMinutes reports whole minutes, rounding part-minutes up so
// a sub-minute breach never reads as zero excess.
func durationToMinutes(d time.Duration) int {
	minutes := int(d / time.Minute)
	if d%time.Minute != 0 {
		minutes++
	}
	return minutes
}
