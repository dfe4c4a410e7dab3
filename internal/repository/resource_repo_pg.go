package repository

import (
	"context"
	"errors"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *domain.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error)
	List(ctx context.Context) ([]domain.Resource, error)
	ListAccessible(ctx context.Context, clubIDs []uuid.UUID) ([]domain.Resource, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ResourceStatus) error
}

type PGResourceRepository struct {
	db *pgxpool.Pool
}

func NewResourceRepository(db *pgxpool.Pool) ResourceRepository {
	return &PGResourceRepository{db: db}
}

const resourceColumns = `id, name, description, resource_type, category, location, capacity, status, booking_type,
	requires_training, max_booking_duration_hours, min_advance_booking_hours, max_advance_booking_hours,
	created_by, created_at, updated_at`

func (r *PGResourceRepository) Create(ctx context.Context, resource *domain.Resource) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO resources
		(id, name, description, resource_type, category, location, capacity, status, booking_type,
		 requires_training, max_booking_duration_hours, min_advance_booking_hours, max_advance_booking_hours, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`,
		resource.ID, resource.Name, resource.Description, resource.Type, resource.Category,
		resource.Location, resource.Capacity, resource.Status, resource.BookingType,
		resource.RequiresTraining, resource.MaxBookingDurationHours,
		resource.MinAdvanceBookingHours, resource.MaxAdvanceBookingHours, resource.CreatedBy).
		Scan(&resource.CreatedAt, &resource.UpdatedAt); err != nil {
		return err
	}

	for _, clubID := range resource.AllowedClubIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO resource_allowed_clubs (resource_id, club_id) VALUES ($1, $2)`,
			resource.ID, clubID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error) {
	row := r.db.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id=$1`, id)
	res, err := scanResource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, err
	}
	if err := r.loadAllowedClubs(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *PGResourceRepository) List(ctx context.Context) ([]domain.Resource, error) {
	rows, err := r.db.Query(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

// ListAccessible returns available resources whose allowed-club list is
// empty or intersects the given clubs.
func (r *PGResourceRepository) ListAccessible(ctx context.Context, clubIDs []uuid.UUID) ([]domain.Resource, error) {
	rows, err := r.db.Query(ctx, `SELECT `+resourceColumns+` FROM resources res
		WHERE res.status = $1
		  AND (NOT EXISTS (SELECT 1 FROM resource_allowed_clubs ac WHERE ac.resource_id = res.id)
		       OR EXISTS (SELECT 1 FROM resource_allowed_clubs ac WHERE ac.resource_id = res.id AND ac.club_id = ANY($2)))
		ORDER BY res.name`, domain.ResourceStatusAvailable, clubIDs)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *PGResourceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ResourceStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE resources SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *PGResourceRepository) collect(ctx context.Context, rows pgx.Rows) ([]domain.Resource, error) {
	defer rows.Close()

	resources := make([]domain.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range resources {
		if err := r.loadAllowedClubs(ctx, &resources[i]); err != nil {
			return nil, err
		}
	}
	return resources, nil
}

func (r *PGResourceRepository) loadAllowedClubs(ctx context.Context, res *domain.Resource) error {
	rows, err := r.db.Query(ctx, `SELECT club_id FROM resource_allowed_clubs WHERE resource_id=$1`, res.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var clubID uuid.UUID
		if err := rows.Scan(&clubID); err != nil {
			return err
		}
		res.AllowedClubIDs = append(res.AllowedClubIDs, clubID)
	}
	return rows.Err()
}

func scanResource(row pgx.Row) (*domain.Resource, error) {
	var res domain.Resource
	if err := row.Scan(&res.ID, &res.Name, &res.Description, &res.Type, &res.Category,
		&res.Location, &res.Capacity, &res.Status, &res.BookingType,
		&res.RequiresTraining, &res.MaxBookingDurationHours,
		&res.MinAdvanceBookingHours, &res.MaxAdvanceBookingHours,
		&res.CreatedBy, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	return &res, nil
}

var _ ResourceRepository = (*PGResourceRepository)(nil)
