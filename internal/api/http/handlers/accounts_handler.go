package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/atm-maintenance-service/internal/api/dto"
	"github.com/spec-kit/atm-maintenance-service/internal/auth"
	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	"github.com/spec-kit/atm-maintenance-service/internal/repository"
	"github.com/spec-kit/atm-maintenance-service/internal/service"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

// AccountsHandler manages authentication and technician administration.
type AccountsHandler struct {
	service *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accountService *service.AccountService) *AccountsHandler {
	return &AccountsHandler{service: accountService}
}

// Login POST /auth/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	result, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Account:   dto.FromTechnician(result.Technician),
	}})
}

// ChangePassword POST /auth/password/change.
func (h *AccountsHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Technician == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ChangePassword(c.Context(), principal.Technician.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// CreateTechnician POST /technicians.
func (h *AccountsHandler) CreateTechnician(c *fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	technician, err := h.service.CreateTechnician(c.Context(), service.TechnicianCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		ZoneID:   req.ZoneID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTechnician(technician)})
}

// ListTechnicians GET /technicians.
func (h *AccountsHandler) ListTechnicians(c *fiber.Ctx) error {
	filter := repository.TechnicianFilter{}
	if zoneID := c.Query("zone_id"); zoneID != "" {
		filter.ZoneID = &zoneID
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.TechnicianRole(roleStr)
		filter.Role = &role
	}
	if activeStr := c.Query("active"); activeStr != "" {
		active := activeStr == "true"
		filter.Active = &active
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	technicians, err := h.service.ListTechnicians(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(technicians))
	for i := range technicians {
		items = append(items, dto.FromTechnician(&technicians[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
