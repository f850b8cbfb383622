package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// TechnicianFilter captures technician search parameters.
type TechnicianFilter struct {
	ZoneID *string
	Role   *domain.TechnicianRole
	Active *bool
	Limit  int
	Offset int
}

// TechnicianRepository encapsulates technician persistence.
type TechnicianRepository interface {
	Create(ctx context.Context, technician *domain.Technician) error
	Update(ctx context.Context, technician *domain.Technician) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	GetByEmail(ctx context.Context, email string) (*domain.Technician, error)
	List(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, error)
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

const technicianColumns = `id, name, email, password_hash, role, zone_id, active, created_at, updated_at`

func (r *technicianRepository) Create(ctx context.Context, technician *domain.Technician) error {
	const query = `
        INSERT INTO technicians (name, email, password_hash, role, zone_id, active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		technician.Name,
		technician.Email,
		technician.PasswordHash,
		technician.Role,
		technician.ZoneID,
		technician.Active,
	).Scan(&technician.ID, &technician.CreatedAt, &technician.UpdatedAt)
}

func (r *technicianRepository) Update(ctx context.Context, technician *domain.Technician) error {
	const query = `
        UPDATE technicians SET name=$1, email=$2, password_hash=$3, role=$4, zone_id=$5, active=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		technician.Name,
		technician.Email,
		technician.PasswordHash,
		technician.Role,
		technician.ZoneID,
		technician.Active,
		technician.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	query := fmt.Sprintf(`SELECT %s FROM technicians WHERE id=$1`, technicianColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *technicianRepository) GetByEmail(ctx context.Context, email string) (*domain.Technician, error) {
	query := fmt.Sprintf(`SELECT %s FROM technicians WHERE LOWER(email)=LOWER($1)`, technicianColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *technicianRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Technician, error) {
	var technician domain.Technician
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&technician.ID,
		&technician.Name,
		&technician.Email,
		&technician.PasswordHash,
		&technician.Role,
		&technician.ZoneID,
		&technician.Active,
		&technician.CreatedAt,
		&technician.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &technician, nil
}

func (r *technicianRepository) List(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, error) {
	base := fmt.Sprintf(`SELECT %s FROM technicians`, technicianColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ZoneID != nil {
		args = append(args, *filter.ZoneID)
		clauses = append(clauses, fmt.Sprintf("zone_id=$%d", len(args)))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY name LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Technician
	for rows.Next() {
		var technician domain.Technician
		if err := rows.Scan(
			&technician.ID,
			&technician.Name,
			&technician.Email,
			&technician.PasswordHash,
			&technician.Role,
			&technician.ZoneID,
			&technician.Active,
			&technician.CreatedAt,
			&technician.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, technician)
	}
	return result, rows.Err()
}
