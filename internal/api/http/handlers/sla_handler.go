package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/atm-maintenance-service/internal/api/dto"
	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	"github.com/spec-kit/atm-maintenance-service/internal/service"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

// SLAHandler manages SLA configuration and compliance endpoints.
type SLAHandler struct {
	slas       *service.SLAService
	compliance *service.ComplianceService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService, complianceService *service.ComplianceService) *SLAHandler {
	return &SLAHandler{slas: slaService, compliance: complianceService}
}

// Create POST /slas.
func (h *SLAHandler) Create(c *fiber.Ctx) error {
	input, err := parseSLARequest(c)
	if err != nil {
		return err
	}
	cfg, err := h.slas.CreateSLA(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromSLAConfig(cfg)})
}

// Update PUT /slas/:id.
func (h *SLAHandler) Update(c *fiber.Ctx) error {
	input, err := parseSLARequest(c)
	if err != nil {
		return err
	}
	cfg, err := h.slas.UpdateSLA(c.Context(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSLAConfig(cfg)})
}

// Get GET /slas/:id.
func (h *SLAHandler) Get(c *fiber.Ctx) error {
	cfg, err := h.slas.GetSLA(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSLAConfig(cfg)})
}

// ListByZone GET /zones/:id/slas.
func (h *SLAHandler) ListByZone(c *fiber.Ctx) error {
	configs, err := h.slas.ListByZone(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.SLAResponse, 0, len(configs))
	for i := range configs {
		items = append(items, dto.FromSLAConfig(&configs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Delete DELETE /slas/:id.
func (h *SLAHandler) Delete(c *fiber.Ctx) error {
	if err := h.slas.DeleteSLA(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Compliance GET /slas/:id/compliance?period_start=...&period_end=...
func (h *SLAHandler) Compliance(c *fiber.Ctx) error {
	start := parseTime(c.Query("period_start"))
	end := parseTime(c.Query("period_end"))
	if start == nil || end == nil {
		return apperrors.NewValidationError("period_start and period_end required (RFC3339)", nil)
	}
	if end.Before(*start) {
		return apperrors.NewInvalidInput("period_end precedes period_start", map[string]any{
			"period_start": start.Format(time.RFC3339),
			"period_end":   end.Format(time.RFC3339),
		})
	}
	result, err := h.compliance.CalculateCompliance(c.Context(), c.Params("id"), *start, *end)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// Validate POST /slas/:id/validate/:ticket_id.
func (h *SLAHandler) Validate(c *fiber.Ctx) error {
	result, err := h.compliance.ValidateSLA(c.Context(), c.Params("id"), c.Params("ticket_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

func parseSLARequest(c *fiber.Ctx) (service.SLAInput, error) {
	var req dto.SLARequest
	if err := c.BodyParser(&req); err != nil {
		return service.SLAInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ZoneID == "" || req.ResponseTime == "" || req.ResolutionTime == "" {
		return service.SLAInput{}, apperrors.NewValidationError("zone_id, response_time, resolution_time required", nil)
	}
	maintenanceType := req.MaintenanceType
	if maintenanceType == "" {
		maintenanceType = domain.MaintenanceTypeFirstLine
	}
	return service.SLAInput{
		ZoneID:          req.ZoneID,
		ClientID:        req.ClientID,
		MaintenanceType: maintenanceType,
		ResponseTime:    req.ResponseTime,
		ResolutionTime:  req.ResolutionTime,
	}, nil
}
