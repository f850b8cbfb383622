package dto

import (
	"time"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// SLARequest payload. Intervals arrive in the human-readable form, e.g.
// "2 hours" or "30 minutes".
type SLARequest struct {
	ZoneID          string                 `json:"zone_id"`
	ClientID        *string                `json:"client_id"`
	MaintenanceType domain.MaintenanceType `json:"maintenance_type"`
	ResponseTime    string                 `json:"response_time"`
	ResolutionTime  string                 `json:"resolution_time"`
}

// SLAResponse serializes an SLA configuration.
type SLAResponse struct {
	ID                    string                 `json:"id"`
	ZoneID                string                 `json:"zone_id"`
	ClientID              *string                `json:"client_id,omitempty"`
	MaintenanceType       domain.MaintenanceType `json:"maintenance_type"`
	ResponseTime          string                 `json:"response_time"`
	ResolutionTime        string                 `json:"resolution_time"`
	ResponseTimeMinutes   int                    `json:"response_time_minutes"`
	ResolutionTimeMinutes int                    `json:"resolution_time_minutes"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// FromSLAConfig maps a domain config.
func FromSLAConfig(cfg *domain.SLAConfig) SLAResponse {
	return SLAResponse{
		ID:                    cfg.ID,
		ZoneID:                cfg.ZoneID,
		ClientID:              cfg.ClientID,
		MaintenanceType:       cfg.MaintenanceType,
		ResponseTime:          cfg.ResponseTime,
		ResolutionTime:        cfg.ResolutionTime,
		ResponseTimeMinutes:   cfg.ResponseTimeMinutes,
		ResolutionTimeMinutes: cfg.ResolutionTimeMinutes,
		CreatedAt:             cfg.CreatedAt,
		UpdatedAt:             cfg.UpdatedAt,
	}
}
