package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// ATMRepository encapsulates ATM persistence.
type ATMRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ATM, error)
	ListByZone(ctx context.Context, zoneID string) ([]domain.ATM, error)
}

type atmRepository struct {
	pool *pgxpool.Pool
}

// NewATMRepository instantiates repository.
func NewATMRepository(pool *pgxpool.Pool) ATMRepository {
	return &atmRepository{pool: pool}
}

const atmColumns = `id, serial_number, model, zone_id, client_id, address, active, created_at, updated_at`

func (r *atmRepository) GetByID(ctx context.Context, id string) (*domain.ATM, error) {
	query := fmt.Sprintf(`SELECT %s FROM atms WHERE id=$1`, atmColumns)
	var atm domain.ATM
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&atm.ID,
		&atm.SerialNumber,
		&atm.Model,
		&atm.ZoneID,
		&atm.ClientID,
		&atm.Address,
		&atm.Active,
		&atm.CreatedAt,
		&atm.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &atm, nil
}

func (r *atmRepository) ListByZone(ctx context.Context, zoneID string) ([]domain.ATM, error) {
	query := fmt.Sprintf(`SELECT %s FROM atms WHERE zone_id=$1 ORDER BY serial_number`, atmColumns)
	rows, err := r.pool.Query(ctx, query, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ATM
	for rows.Next() {
		var atm domain.ATM
		if err := rows.Scan(
			&atm.ID,
			&atm.SerialNumber,
			&atm.Model,
			&atm.ZoneID,
			&atm.ClientID,
			&atm.Address,
			&atm.Active,
			&atm.CreatedAt,
			&atm.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, atm)
	}
	return result, rows.Err()
}
