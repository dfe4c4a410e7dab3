package repository

import (
	"context"
	"errors"
	"time"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MaintenanceRepository interface {
	Create(ctx context.Context, window *domain.MaintenanceWindow) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceWindow, error)
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]domain.MaintenanceWindow, error)
	ListOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time) ([]domain.MaintenanceWindow, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MaintenanceStatus) error
}

type PGMaintenanceRepository struct {
	db *pgxpool.Pool
}

func NewMaintenanceRepository(db *pgxpool.Pool) MaintenanceRepository {
	return &PGMaintenanceRepository{db: db}
}

const maintenanceColumns = `id, resource_id, maintenance_type, description, scheduled_start, scheduled_end, status, created_by, created_at`

func (r *PGMaintenanceRepository) Create(ctx context.Context, window *domain.MaintenanceWindow) error {
	return r.db.QueryRow(ctx, `INSERT INTO maintenance_windows
		(id, resource_id, maintenance_type, description, scheduled_start, scheduled_end, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		window.ID, window.ResourceID, window.Type, window.Description,
		window.ScheduledStart, window.ScheduledEnd, window.Status, window.CreatedBy).
		Scan(&window.CreatedAt)
}

func (r *PGMaintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceWindow, error) {
	var w domain.MaintenanceWindow
	err := r.db.QueryRow(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_windows WHERE id=$1`, id).
		Scan(&w.ID, &w.ResourceID, &w.Type, &w.Description,
			&w.ScheduledStart, &w.ScheduledEnd, &w.Status, &w.CreatedBy, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMaintenanceNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *PGMaintenanceRepository) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]domain.MaintenanceWindow, error) {
	rows, err := r.db.Query(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_windows
		WHERE resource_id=$1 ORDER BY scheduled_start`, resourceID)
	if err != nil {
		return nil, err
	}
	return collectMaintenances(rows)
}

// ListOverlapping returns active windows intersecting [start, end).
func (r *PGMaintenanceRepository) ListOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time) ([]domain.MaintenanceWindow, error) {
	rows, err := r.db.Query(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_windows
		WHERE resource_id=$1 AND status IN ('scheduled', 'in_progress')
		  AND scheduled_start < $3 AND scheduled_end > $2
		ORDER BY scheduled_start`, resourceID, start, end)
	if err != nil {
		return nil, err
	}
	return collectMaintenances(rows)
}

func (r *PGMaintenanceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MaintenanceStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE maintenance_windows SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMaintenanceNotFound
	}
	return nil
}

func collectMaintenances(rows pgx.Rows) ([]domain.MaintenanceWindow, error) {
	defer rows.Close()

	windows := make([]domain.MaintenanceWindow, 0)
	for rows.Next() {
		var w domain.MaintenanceWindow
		if err := rows.Scan(&w.ID, &w.ResourceID, &w.Type, &w.Description,
			&w.ScheduledStart, &w.ScheduledEnd, &w.Status, &w.CreatedBy, &w.CreatedAt); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

var _ MaintenanceRepository = (*PGMaintenanceRepository)(nil)
