package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// ClientRepository encapsulates client persistence.
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Client, error)
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository instantiates repository.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

const clientColumns = `id, name, active, created_at, updated_at`

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE id=$1`, clientColumns)
	var client domain.Client
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.Active,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &client, nil
}
