package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/atm-maintenance-service/internal/api/dto"
	"github.com/spec-kit/atm-maintenance-service/internal/auth"
	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	"github.com/spec-kit/atm-maintenance-service/internal/service"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

// MaintenanceHandler manages maintenance record endpoints.
type MaintenanceHandler struct {
	service *service.MaintenanceService
}

// NewMaintenanceHandler constructs handler.
func NewMaintenanceHandler(maintenanceService *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{service: maintenanceService}
}

// Start POST /maintenance.
func (h *MaintenanceHandler) Start(c *fiber.Ctx) error {
	var req dto.StartMaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}
	technicianID := req.TechnicianID
	if technicianID == "" {
		// Technicians start work as themselves unless a supervisor
		// dispatches someone else.
		principal, ok := auth.PrincipalFromContext(c)
		if !ok || principal.Technician == nil {
			return apperrors.NewValidationError("technician_id required", nil)
		}
		technicianID = principal.Technician.ID
	}

	record, err := h.service.StartMaintenance(c.Context(), service.StartMaintenanceInput{
		TicketID:     req.TicketID,
		TechnicianID: technicianID,
		Type:         req.Type,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromMaintenanceRecord(record)})
}

// Get GET /maintenance/:id.
func (h *MaintenanceHandler) Get(c *fiber.Ctx) error {
	record, err := h.service.GetMaintenance(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromMaintenanceRecord(record)})
}

// Complete POST /maintenance/:id/complete.
func (h *MaintenanceHandler) Complete(c *fiber.Ctx) error {
	var req dto.CompleteMaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.service.CompleteMaintenance(c.Context(), c.Params("id"), service.CompletionInput{
		Diagnosis:        req.Diagnosis,
		WorkPerformed:    req.WorkPerformed,
		Parts:            req.Parts,
		Measurements:     req.Measurements,
		Tasks:            req.Tasks,
		RequiresFollowUp: req.RequiresFollowUp,
		FollowUpNotes:    req.FollowUpNotes,
		EndedAt:          req.EndedAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromMaintenanceRecord(record)})
}

// AddParts POST /maintenance/:id/parts.
func (h *MaintenanceHandler) AddParts(c *fiber.Ctx) error {
	var req dto.AddPartsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.service.AddParts(c.Context(), c.Params("id"), req.Parts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromMaintenanceRecord(record)})
}

// UpdateMeasurements PUT /maintenance/:id/measurements.
func (h *MaintenanceHandler) UpdateMeasurements(c *fiber.Ctx) error {
	var req dto.UpdateMeasurementsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.service.UpdateMeasurements(c.Context(), c.Params("id"), req.Measurements)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromMaintenanceRecord(record)})
}

// SetFollowUp POST /maintenance/:id/follow-up.
func (h *MaintenanceHandler) SetFollowUp(c *fiber.Ctx) error {
	var req dto.FollowUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.service.SetFollowUp(c.Context(), c.Params("id"), req.Required, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromMaintenanceRecord(record)})
}

// Delete DELETE /maintenance/:id.
func (h *MaintenanceHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteMaintenance(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListByTicket GET /tickets/:id/maintenance.
func (h *MaintenanceHandler) ListByTicket(c *fiber.Ctx) error {
	records, err := h.service.ListByTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": maintenanceResponses(records)})
}

// GetActiveByTicket GET /tickets/:id/maintenance/active.
func (h *MaintenanceHandler) GetActiveByTicket(c *fiber.Ctx) error {
	record, err := h.service.GetActiveForTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromMaintenanceRecord(record)})
}

// ListByTechnician GET /technicians/:id/maintenance.
func (h *MaintenanceHandler) ListByTechnician(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	records, err := h.service.ListByTechnician(c.Context(), c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": maintenanceResponses(records)})
}

func maintenanceResponses(records []domain.MaintenanceRecord) []dto.MaintenanceResponse {
	items := make([]dto.MaintenanceResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.FromMaintenanceRecord(&records[i]))
	}
	return items
}
