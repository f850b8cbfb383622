package dto

import (
	"time"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Account   TechnicianResponse `json:"account"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// CreateTechnicianRequest payload.
type CreateTechnicianRequest struct {
	Name     string                `json:"name"`
	Email    string                `json:"email"`
	Password string                `json:"password"`
	Role     domain.TechnicianRole `json:"role"`
	ZoneID   *string               `json:"zone_id"`
}

// TechnicianResponse serializes a technician without credentials.
type TechnicianResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	Role      domain.TechnicianRole `json:"role"`
	ZoneID    *string               `json:"zone_id,omitempty"`
	Active    bool                  `json:"active"`
	CreatedAt time.Time             `json:"created_at"`
}

// FromTechnician maps a domain technician.
func FromTechnician(technician *domain.Technician) TechnicianResponse {
	return TechnicianResponse{
		ID:        technician.ID,
		Name:      technician.Name,
		Email:     technician.Email,
		Role:      technician.Role,
		ZoneID:    technician.ZoneID,
		Active:    technician.Active,
		CreatedAt: technician.CreatedAt,
	}
}
