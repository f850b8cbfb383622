package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	"github.com/spec-kit/atm-maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

// SLAService manages SLA configurations.
type SLAService struct {
	slas    repository.SLARepository
	zones   repository.ZoneRepository
	clients repository.ClientRepository
}

// SLADependencies bundles the service's collaborators.
type SLADependencies struct {
	SLARepo    repository.SLARepository
	ZoneRepo   repository.ZoneRepository
	ClientRepo repository.ClientRepository
}

// SLAInput describes an SLA configuration payload. Intervals are the
// human-readable form ("2 hours"); they are parsed and stored alongside
// their minute counts.
type SLAInput struct {
	ZoneID          string
	ClientID        *string
	MaintenanceType domain.MaintenanceType
	ResponseTime    string
	ResolutionTime  string
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies) *SLAService {
	return &SLAService{
		slas:    deps.SLARepo,
		zones:   deps.ZoneRepo,
		clients: deps.ClientRepo,
	}
}

// CreateSLA registers a new configuration. At most one config may cover
// a (zone, client-or-null, maintenance type) triple.
func (s *SLAService) CreateSLA(ctx context.Context, input SLAInput) (*domain.SLAConfig, error) {
	cfg, err := s.buildConfig(input)
	if err != nil {
		return nil, err
	}
	if err := s.verifyScope(ctx, cfg); err != nil {
		return nil, err
	}
	conflict, err := s.slas.HasScopeConflict(ctx, cfg.ZoneID, cfg.ClientID, cfg.MaintenanceType, "")
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if conflict {
		return nil, apperrors.NewConflict("an SLA configuration already covers this scope", map[string]any{
			"zone_id":          cfg.ZoneID,
			"client_id":        cfg.ClientID,
			"maintenance_type": cfg.MaintenanceType,
		})
	}
	if err := s.slas.Create(ctx, cfg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return cfg, nil
}

// UpdateSLA replaces an existing configuration, re-checking the scope
// uniqueness against every other config.
func (s *SLAService) UpdateSLA(ctx context.Context, id string, input SLAInput) (*domain.SLAConfig, error) {
	existing, err := s.GetSLA(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.buildConfig(input)
	if err != nil {
		return nil, err
	}
	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt

	if err := s.verifyScope(ctx, cfg); err != nil {
		return nil, err
	}
	conflict, err := s.slas.HasScopeConflict(ctx, cfg.ZoneID, cfg.ClientID, cfg.MaintenanceType, cfg.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if conflict {
		return nil, apperrors.NewConflict("an SLA configuration already covers this scope", map[string]any{
			"zone_id":          cfg.ZoneID,
			"client_id":        cfg.ClientID,
			"maintenance_type": cfg.MaintenanceType,
		})
	}
	if err := s.slas.Update(ctx, cfg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return cfg, nil
}

// GetSLA fetches a configuration by id.
func (s *SLAService) GetSLA(ctx context.Context, id string) (*domain.SLAConfig, error) {
	cfg, err := s.slas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sla configuration", map[string]any{"sla_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return cfg, nil
}

// ListByZone returns all configurations in a zone.
func (s *SLAService) ListByZone(ctx context.Context, zoneID string) ([]domain.SLAConfig, error) {
	configs, err := s.slas.ListByZone(ctx, zoneID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return configs, nil
}

// DeleteSLA removes a configuration.
func (s *SLAService) DeleteSLA(ctx context.Context, id string) error {
	err := s.slas.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("sla configuration", map[string]any{"sla_id": id})
	default:
		return apperrors.MapError(err)
	}
}

// verifyScope checks that the zone, and the client when one is set,
// actually exist before a configuration binds to them.
func (s *SLAService) verifyScope(ctx context.Context, cfg *domain.SLAConfig) error {
	if _, err := s.zones.GetByID(ctx, cfg.ZoneID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("zone", map[string]any{"zone_id": cfg.ZoneID})
		}
		return apperrors.MapError(err)
	}
	if cfg.ClientID == nil {
		return nil
	}
	if _, err := s.clients.GetByID(ctx, *cfg.ClientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("client", map[string]any{"client_id": *cfg.ClientID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *SLAService) buildConfig(input SLAInput) (*domain.SLAConfig, error) {
	responseMinutes, err := domain.ParseInterval(input.ResponseTime)
	if err != nil {
		return nil, err
	}
	resolutionMinutes, err := domain.ParseInterval(input.ResolutionTime)
	if err != nil {
		return nil, err
	}
	return &domain.SLAConfig{
		ZoneID:                input.ZoneID,
		ClientID:              input.ClientID,
		MaintenanceType:       input.MaintenanceType,
		ResponseTime:          input.ResponseTime,
		ResolutionTime:        input.ResolutionTime,
		ResponseTimeMinutes:   responseMinutes,
		ResolutionTimeMinutes: resolutionMinutes,
	}, nil
}
