package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// SLARepository encapsulates SLA configuration persistence.
type SLARepository interface {
	Create(ctx context.Context, cfg *domain.SLAConfig) error
	Update(ctx context.Context, cfg *domain.SLAConfig) error
	GetByID(ctx context.Context, id string) (*domain.SLAConfig, error)
	ListByZone(ctx context.Context, zoneID string) ([]domain.SLAConfig, error)
	// HasScopeConflict reports whether another config already covers the
	// (zone, client-or-null, maintenance type) triple. excludeID skips the
	// config being updated.
	HasScopeConflict(ctx context.Context, zoneID string, clientID *string, maintenanceType domain.MaintenanceType, excludeID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type slaRepository struct {
	pool *pgxpool.Pool
}

// NewSLARepository instantiates repository.
func NewSLARepository(pool *pgxpool.Pool) SLARepository {
	return &slaRepository{pool: pool}
}

const slaColumns = `id, zone_id, client_id, maintenance_type, response_time, resolution_time,
               response_time_minutes, resolution_time_minutes, created_at, updated_at`

func (r *slaRepository) Create(ctx context.Context, cfg *domain.SLAConfig) error {
	const query = `
        INSERT INTO sla_configs (zone_id, client_id, maintenance_type, response_time, resolution_time,
            response_time_minutes, resolution_time_minutes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		cfg.ZoneID,
		cfg.ClientID,
		cfg.MaintenanceType,
		cfg.ResponseTime,
		cfg.ResolutionTime,
		cfg.ResponseTimeMinutes,
		cfg.ResolutionTimeMinutes,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
}

func (r *slaRepository) Update(ctx context.Context, cfg *domain.SLAConfig) error {
	const query = `
        UPDATE sla_configs SET zone_id=$1, client_id=$2, maintenance_type=$3, response_time=$4,
            resolution_time=$5, response_time_minutes=$6, resolution_time_minutes=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		cfg.ZoneID,
		cfg.ClientID,
		cfg.MaintenanceType,
		cfg.ResponseTime,
		cfg.ResolutionTime,
		cfg.ResponseTimeMinutes,
		cfg.ResolutionTimeMinutes,
		cfg.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaRepository) GetByID(ctx context.Context, id string) (*domain.SLAConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM sla_configs WHERE id=$1`, slaColumns)
	var cfg domain.SLAConfig
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&cfg.ID,
		&cfg.ZoneID,
		&cfg.ClientID,
		&cfg.MaintenanceType,
		&cfg.ResponseTime,
		&cfg.ResolutionTime,
		&cfg.ResponseTimeMinutes,
		&cfg.ResolutionTimeMinutes,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *slaRepository) ListByZone(ctx context.Context, zoneID string) ([]domain.SLAConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM sla_configs WHERE zone_id=$1 ORDER BY created_at`, slaColumns)
	rows, err := r.pool.Query(ctx, query, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAConfig
	for rows.Next() {
		var cfg domain.SLAConfig
		if err := rows.Scan(
			&cfg.ID,
			&cfg.ZoneID,
			&cfg.ClientID,
			&cfg.MaintenanceType,
			&cfg.ResponseTime,
			&cfg.ResolutionTime,
			&cfg.ResponseTimeMinutes,
			&cfg.ResolutionTimeMinutes,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, cfg)
	}
	return result, rows.Err()
}

func (r *slaRepository) HasScopeConflict(ctx context.Context, zoneID string, clientID *string, maintenanceType domain.MaintenanceType, excludeID string) (bool, error) {
	const query = `
        SELECT EXISTS(
            SELECT 1 FROM sla_configs
            WHERE zone_id=$1
              AND client_id IS NOT DISTINCT FROM $2
              AND maintenance_type=$3
              AND ($4 = '' OR id <> $4::uuid)
        )`
	var exists bool
	err := r.pool.QueryRow(ctx, query, zoneID, clientID, maintenanceType, excludeID).Scan(&exists)
	return exists, err
}

func (r *slaRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sla_configs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
