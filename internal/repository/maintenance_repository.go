package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// Partial unique index names enforcing one incomplete record per ticket
// and per technician. A 23505 on either is the authoritative conflict
// signal; the service-level existence checks are only a fast path.
const (
	activeTicketIdx     = "maintenance_records_active_ticket_idx"
	activeTechnicianIdx = "maintenance_records_active_technician_idx"
)

// ErrActiveForTicket and ErrActiveForTechnician report which uniqueness
// invariant a concurrent insert lost against.
var (
	ErrActiveForTicket     = errors.New("ticket already has an incomplete maintenance record")
	ErrActiveForTechnician = errors.New("technician already has an incomplete maintenance record")
	ErrRecordComplete      = errors.New("maintenance record already complete")
)

// MaintenanceRepository encapsulates maintenance record persistence.
type MaintenanceRepository interface {
	Create(ctx context.Context, record *domain.MaintenanceRecord) error
	Update(ctx context.Context, record *domain.MaintenanceRecord) error
	GetByID(ctx context.Context, id string) (*domain.MaintenanceRecord, error)
	GetActiveByTicket(ctx context.Context, ticketID string) (*domain.MaintenanceRecord, error)
	HasActiveForTicket(ctx context.Context, ticketID string) (bool, error)
	HasActiveForTechnician(ctx context.Context, technicianID string) (bool, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.MaintenanceRecord, error)
	ListByTechnician(ctx context.Context, technicianID string, limit, offset int) ([]domain.MaintenanceRecord, error)
	Delete(ctx context.Context, id string) error
}

type maintenanceRepository struct {
	pool *pgxpool.Pool
}

// NewMaintenanceRepository instantiates repository.
func NewMaintenanceRepository(pool *pgxpool.Pool) MaintenanceRepository {
	return &maintenanceRepository{pool: pool}
}

const maintenanceColumns = `id, ticket_id, atm_id, technician_id, type, diagnosis, work_performed,
               parts, measurements, tasks, requires_follow_up, follow_up_notes,
               started_at, ended_at, created_at, updated_at`

func (r *maintenanceRepository) Create(ctx context.Context, record *domain.MaintenanceRecord) error {
	const query = `
        INSERT INTO maintenance_records (ticket_id, atm_id, technician_id, type, diagnosis, work_performed,
            parts, measurements, tasks, requires_follow_up, follow_up_notes, started_at, ended_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		record.TicketID,
		record.ATMID,
		record.TechnicianID,
		record.Type,
		record.Diagnosis,
		record.WorkPerformed,
		record.Parts,
		record.Measurements,
		record.Tasks,
		record.RequiresFollowUp,
		record.FollowUpNotes,
		record.StartedAt,
		record.EndedAt,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *maintenanceRepository) Update(ctx context.Context, record *domain.MaintenanceRecord) error {
	const query = `
        UPDATE maintenance_records SET type=$1, diagnosis=$2, work_performed=$3, parts=$4,
            measurements=$5, tasks=$6, requires_follow_up=$7, follow_up_notes=$8, ended_at=$9,
            updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		record.Type,
		record.Diagnosis,
		record.WorkPerformed,
		record.Parts,
		record.Measurements,
		record.Tasks,
		record.RequiresFollowUp,
		record.FollowUpNotes,
		record.EndedAt,
		record.ID,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *maintenanceRepository) GetByID(ctx context.Context, id string) (*domain.MaintenanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM maintenance_records WHERE id=$1`, maintenanceColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *maintenanceRepository) GetActiveByTicket(ctx context.Context, ticketID string) (*domain.MaintenanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM maintenance_records WHERE ticket_id=$1 AND ended_at IS NULL`, maintenanceColumns)
	return r.fetchSingle(ctx, query, ticketID)
}

func (r *maintenanceRepository) HasActiveForTicket(ctx context.Context, ticketID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM maintenance_records WHERE ticket_id=$1 AND ended_at IS NULL)`,
		ticketID).Scan(&exists)
	return exists, err
}

func (r *maintenanceRepository) HasActiveForTechnician(ctx context.Context, technicianID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM maintenance_records WHERE technician_id=$1 AND ended_at IS NULL)`,
		technicianID).Scan(&exists)
	return exists, err
}

func (r *maintenanceRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.MaintenanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM maintenance_records WHERE ticket_id=$1 ORDER BY started_at DESC`, maintenanceColumns)
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaintenanceRecords(rows)
}

func (r *maintenanceRepository) ListByTechnician(ctx context.Context, technicianID string, limit, offset int) ([]domain.MaintenanceRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM maintenance_records WHERE technician_id=$1 ORDER BY started_at DESC LIMIT %d OFFSET %d`,
		maintenanceColumns, limit, offset)
	rows, err := r.pool.Query(ctx, query, technicianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaintenanceRecords(rows)
}

// Delete removes a record; complete records are never deleted.
func (r *maintenanceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM maintenance_records WHERE id=$1 AND ended_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM maintenance_records WHERE id=$1)`, id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrRecordComplete
		}
		return pgx.ErrNoRows
	}
	return nil
}

func (r *maintenanceRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.MaintenanceRecord, error) {
	var record domain.MaintenanceRecord
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&record.ID,
		&record.TicketID,
		&record.ATMID,
		&record.TechnicianID,
		&record.Type,
		&record.Diagnosis,
		&record.WorkPerformed,
		&record.Parts,
		&record.Measurements,
		&record.Tasks,
		&record.RequiresFollowUp,
		&record.FollowUpNotes,
		&record.StartedAt,
		&record.EndedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func scanMaintenanceRecords(rows pgx.Rows) ([]domain.MaintenanceRecord, error) {
	var result []domain.MaintenanceRecord
	for rows.Next() {
		var record domain.MaintenanceRecord
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.ATMID,
			&record.TechnicianID,
			&record.Type,
			&record.Diagnosis,
			&record.WorkPerformed,
			&record.Parts,
			&record.Measurements,
			&record.Tasks,
			&record.RequiresFollowUp,
			&record.FollowUpNotes,
			&record.StartedAt,
			&record.EndedAt,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case activeTicketIdx:
			return ErrActiveForTicket
		case activeTechnicianIdx:
			return ErrActiveForTechnician
		}
	}
	return err
}
