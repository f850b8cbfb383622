package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// ZoneRepository encapsulates zone persistence.
type ZoneRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Zone, error)
	List(ctx context.Context) ([]domain.Zone, error)
}

type zoneRepository struct {
	pool *pgxpool.Pool
}

// NewZoneRepository instantiates repository.
func NewZoneRepository(pool *pgxpool.Pool) ZoneRepository {
	return &zoneRepository{pool: pool}
}

const zoneColumns = `id, name, active, created_at, updated_at`

func (r *zoneRepository) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	query := fmt.Sprintf(`SELECT %s FROM zones WHERE id=$1`, zoneColumns)
	var zone domain.Zone
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&zone.ID,
		&zone.Name,
		&zone.Active,
		&zone.CreatedAt,
		&zone.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *zoneRepository) List(ctx context.Context) ([]domain.Zone, error) {
	query := fmt.Sprintf(`SELECT %s FROM zones ORDER BY name`, zoneColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []domain.Zone
	for rows.Next() {
		var zone domain.Zone
		if err := rows.Scan(
			&zone.ID,
			&zone.Name,
			&zone.Active,
			&zone.CreatedAt,
			&zone.UpdatedAt,
		); err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, rows.Err()
}
