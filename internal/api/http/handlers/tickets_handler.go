package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/atm-maintenance-service/internal/api/dto"
	"github.com/spec-kit/atm-maintenance-service/internal/auth"
	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	"github.com/spec-kit/atm-maintenance-service/internal/repository"
	"github.com/spec-kit/atm-maintenance-service/internal/service"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ATMID == "" || strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("atm_id and title required", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), service.TicketCreateInput{
		ATMID:       req.ATMID,
		Type:        req.Type,
		Priority:    req.Priority,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		SLADueDate:  req.SLADueDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.Context(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// GetTicketByKey GET /tickets/key/:key.
func (h *TicketsHandler) GetTicketByKey(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicketByKey(c.Context(), c.Params("key"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Transition POST /tickets/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	ticket, err := h.service.Transition(c.Context(), actorID(c), c.Params("id"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" {
		return apperrors.NewValidationError("technician_id required", nil)
	}
	ticket, err := h.service.AssignTechnician(c.Context(), actorID(c), c.Params("id"), req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListOverdue GET /tickets/overdue.
func (h *TicketsHandler) ListOverdue(c *fiber.Ctx) error {
	tickets, err := h.service.ListOverdue(c.Context(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// ListRequiringAttention GET /tickets/attention.
func (h *TicketsHandler) ListRequiringAttention(c *fiber.Ctx) error {
	tickets, err := h.service.ListRequiringAttention(c.Context(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// ListHistory GET /tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	entries, err := h.service.ListHistory(c.Context(), c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TicketHistoryResponse{
			ID:            entry.ID,
			ChangedByType: entry.ChangedByType,
			ChangedByID:   entry.ChangedByID,
			ChangeType:    entry.ChangeType,
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListZones GET /zones.
func (h *TicketsHandler) ListZones(c *fiber.Ctx) error {
	zones, err := h.service.ListZones(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ZoneResponse, 0, len(zones))
	for i := range zones {
		items = append(items, dto.FromZone(&zones[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListZoneATMs GET /zones/:id/atms.
func (h *TicketsHandler) ListZoneATMs(c *fiber.Ctx) error {
	atms, err := h.service.ListZoneATMs(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ATMResponse, 0, len(atms))
	for i := range atms {
		items = append(items, dto.FromATM(&atms[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if zoneID := c.Query("zone_id"); zoneID != "" {
		filter.ZoneID = &zoneID
	}
	if clientID := c.Query("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}
	if atmID := c.Query("atm_id"); atmID != "" {
		filter.ATMID = &atmID
	}
	if technicianID := c.Query("technician_id"); technicianID != "" {
		filter.TechnicianID = &technicianID
	}
	if typeStr := c.Query("type"); typeStr != "" {
		ticketType := domain.TicketType(typeStr)
		filter.Type = &ticketType
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return items
}

func actorID(c *fiber.Ctx) *string {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Technician == nil {
		return nil
	}
	return &principal.Technician.ID
}
