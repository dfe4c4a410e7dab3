package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// CreateIfFree inserts the booking only if no active booking or
	// maintenance window overlaps its interval. The check and the insert run
	// in one transaction with the resource row locked, so concurrent
	// requests for the same slot cannot both commit.
	CreateIfFree(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]domain.Booking, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListUpcoming(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
	ListCurrent(ctx context.Context, at time.Time) ([]domain.Booking, error)
	Approve(ctx context.Context, id, approverID uuid.UUID, at time.Time) (*domain.Booking, error)
	Reject(ctx context.Context, id, approverID uuid.UUID, reason string) (*domain.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	CheckIn(ctx context.Context, log *domain.UsageLog) (*domain.Booking, error)
	CheckOut(ctx context.Context, bookingID, actorID uuid.UUID, at time.Time, conditionAfter map[string]string, issues string) (*domain.Booking, *domain.UsageLog, error)
	OpenUsageLog(ctx context.Context, bookingID uuid.UUID) (*domain.UsageLog, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, resource_id, requester_id, purpose, start_time, end_time, status,
	club_id, event_id, approved_by, approved_at, rejection_reason,
	actual_start_time, actual_end_time, created_at, updated_at`

const activeStatuses = `'pending', 'approved', 'confirmed', 'ongoing'`

func (r *PGBookingRepository) CreateIfFree(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Serializes concurrent creates on the same resource.
	var resourceID uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM resources WHERE id=$1 FOR UPDATE`, booking.ResourceID).Scan(&resourceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrResourceNotFound
		}
		return err
	}

	var conflict bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE resource_id=$1 AND status IN (`+activeStatuses+`)
			  AND start_time < $3 AND end_time > $2)`,
		booking.ResourceID, booking.StartTime, booking.EndTime).Scan(&conflict); err != nil {
		return err
	}
	if conflict {
		return domain.NewValidationError(domain.CodeConflict, "resource already booked for this time slot")
	}

	if err := tx.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM maintenance_windows
			WHERE resource_id=$1 AND status IN ('scheduled', 'in_progress')
			  AND scheduled_start < $3 AND scheduled_end > $2)`,
		booking.ResourceID, booking.StartTime, booking.EndTime).Scan(&conflict); err != nil {
		return err
	}
	if conflict {
		return domain.NewValidationError(domain.CodeMaintenanceConflict, "resource has scheduled maintenance during this time")
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings
		(id, resource_id, requester_id, purpose, start_time, end_time, status,
		 club_id, event_id, approved_by, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		booking.ID, booking.ResourceID, booking.RequesterID, booking.Purpose,
		booking.StartTime, booking.EndTime, booking.Status,
		booking.ClubID, booking.EventID, booking.ApprovedBy, booking.ApprovedAt).
		Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ListOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE resource_id=$1 AND status IN (`+activeStatuses+`)
		  AND start_time < $3 AND end_time > $2 AND id <> $4
		ORDER BY start_time`, resourceID, start, end, exclude)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE requester_id=$1 ORDER BY start_time DESC`, requesterID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY start_time DESC`)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListUpcoming(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status IN ('pending', 'approved') AND start_time > $1 AND start_time <= $2
		ORDER BY start_time`, from, to)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListCurrent(ctx context.Context, at time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status IN ('approved', 'ongoing') AND start_time <= $1 AND end_time >= $1
		ORDER BY start_time`, at)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// Approve re-runs the conflict checks inside the transaction: the gap
// between submission and approval is unbounded and another booking may have
// taken the slot since.
func (r *PGBookingRepository) Approve(ctx context.Context, id, approverID uuid.UUID, at time.Time) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := lockBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, domain.ErrNotPending
	}

	var conflict bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE resource_id=$1 AND status IN (`+activeStatuses+`)
			  AND start_time < $3 AND end_time > $2 AND id <> $4)`,
		current.ResourceID, current.StartTime, current.EndTime, id).Scan(&conflict); err != nil {
		return nil, err
	}
	if !conflict {
		if err := tx.QueryRow(ctx, `SELECT EXISTS (
				SELECT 1 FROM maintenance_windows
				WHERE resource_id=$1 AND status IN ('scheduled', 'in_progress')
				  AND scheduled_start < $3 AND scheduled_end > $2)`,
			current.ResourceID, current.StartTime, current.EndTime).Scan(&conflict); err != nil {
			return nil, err
		}
	}
	if conflict {
		return nil, domain.ErrConflictAtApproval
	}

	row := tx.QueryRow(ctx, `UPDATE bookings
		SET status=$1, approved_by=$2, approved_at=$3, updated_at=now()
		WHERE id=$4 RETURNING `+bookingColumns,
		domain.BookingStatusApproved, approverID, at, id)
	updated, err := scanBooking(row)
	if err != nil {
		return nil, err
	}
	return updated, tx.Commit(ctx)
}

func (r *PGBookingRepository) Reject(ctx context.Context, id, approverID uuid.UUID, reason string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := lockBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, domain.ErrNotPending
	}

	row := tx.QueryRow(ctx, `UPDATE bookings
		SET status=$1, approved_by=$2, rejection_reason=$3, updated_at=now()
		WHERE id=$4 RETURNING `+bookingColumns,
		domain.BookingStatusRejected, approverID, reason, id)
	updated, err := scanBooking(row)
	if err != nil {
		return nil, err
	}
	return updated, tx.Commit(ctx)
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := lockBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !current.Cancellable() {
		return nil, domain.ErrAlreadyTerminal
	}

	row := tx.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE id=$2 RETURNING `+bookingColumns, domain.BookingStatusCancelled, id)
	updated, err := scanBooking(row)
	if err != nil {
		return nil, err
	}
	return updated, tx.Commit(ctx)
}

// CheckIn opens a usage log and moves the booking to ongoing. The open-log
// check and the insert share a transaction so a duplicate check-in cannot
// slip in between them.
func (r *PGBookingRepository) CheckIn(ctx context.Context, log *domain.UsageLog) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := lockBooking(ctx, tx, log.BookingID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusApproved {
		return nil, domain.ErrNotApproved
	}

	var open bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM usage_logs WHERE booking_id=$1 AND check_out_time IS NULL)`,
		log.BookingID).Scan(&open); err != nil {
		return nil, err
	}
	if open {
		return nil, domain.ErrAlreadyCheckedIn
	}

	conditionBefore, err := json.Marshal(log.ConditionBefore)
	if err != nil {
		return nil, err
	}
	if err := tx.QueryRow(ctx, `INSERT INTO usage_logs
		(id, booking_id, check_in_time, check_in_by, condition_before)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		log.ID, log.BookingID, log.CheckInTime, log.CheckInBy, conditionBefore).
		Scan(&log.CreatedAt); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `UPDATE bookings SET status=$1, actual_start_time=$2, updated_at=now()
		WHERE id=$3 RETURNING `+bookingColumns,
		domain.BookingStatusOngoing, log.CheckInTime, log.BookingID)
	updated, err := scanBooking(row)
	if err != nil {
		return nil, err
	}
	return updated, tx.Commit(ctx)
}

// CheckOut closes the open usage log, completes the booking and, when issues
// were reported, flips the resource into maintenance — all in one
// transaction so a failed step never leaves partial state.
func (r *PGBookingRepository) CheckOut(ctx context.Context, bookingID, actorID uuid.UUID, at time.Time, conditionAfter map[string]string, issues string) (*domain.Booking, *domain.UsageLog, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	current, err := lockBooking(ctx, tx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if current.Status != domain.BookingStatusOngoing {
		return nil, nil, domain.ErrNotOngoing
	}

	row := tx.QueryRow(ctx, `SELECT `+usageLogColumns+` FROM usage_logs
		WHERE booking_id=$1 AND check_out_time IS NULL FOR UPDATE`, bookingID)
	log, err := scanUsageLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrNoActiveCheckIn
		}
		return nil, nil, err
	}

	conditionJSON, err := json.Marshal(conditionAfter)
	if err != nil {
		return nil, nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE usage_logs
		SET check_out_time=$1, check_out_by=$2, condition_after=$3, issues_reported=$4
		WHERE id=$5`, at, actorID, conditionJSON, issues, log.ID); err != nil {
		return nil, nil, err
	}
	log.CheckOutTime = &at
	log.CheckOutBy = &actorID
	log.ConditionAfter = conditionAfter
	log.IssuesReported = issues

	bookingRow := tx.QueryRow(ctx, `UPDATE bookings SET status=$1, actual_end_time=$2, updated_at=now()
		WHERE id=$3 RETURNING `+bookingColumns,
		domain.BookingStatusCompleted, at, bookingID)
	updated, err := scanBooking(bookingRow)
	if err != nil {
		return nil, nil, err
	}

	if issues != "" {
		if _, err := tx.Exec(ctx, `UPDATE resources SET status=$1, updated_at=now() WHERE id=$2`,
			domain.ResourceStatusMaintenance, updated.ResourceID); err != nil {
			return nil, nil, err
		}
	}

	return updated, log, tx.Commit(ctx)
}

func (r *PGBookingRepository) OpenUsageLog(ctx context.Context, bookingID uuid.UUID) (*domain.UsageLog, error) {
	row := r.db.QueryRow(ctx, `SELECT `+usageLogColumns+` FROM usage_logs
		WHERE booking_id=$1 AND check_out_time IS NULL`, bookingID)
	log, err := scanUsageLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActiveCheckIn
		}
		return nil, err
	}
	return log, nil
}

func lockBooking(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Booking, error) {
	row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var rejectionReason *string
	if err := row.Scan(&b.ID, &b.ResourceID, &b.RequesterID, &b.Purpose,
		&b.StartTime, &b.EndTime, &b.Status,
		&b.ClubID, &b.EventID, &b.ApprovedBy, &b.ApprovedAt, &rejectionReason,
		&b.ActualStartTime, &b.ActualEndTime, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if rejectionReason != nil {
		b.RejectionReason = *rejectionReason
	}
	return &b, nil
}

const usageLogColumns = `id, booking_id, check_in_time, check_out_time, check_in_by, check_out_by,
	condition_before, condition_after, issues_reported, created_at`

func scanUsageLog(row pgx.Row) (*domain.UsageLog, error) {
	var log domain.UsageLog
	var before, after []byte
	var issues *string
	if err := row.Scan(&log.ID, &log.BookingID, &log.CheckInTime, &log.CheckOutTime,
		&log.CheckInBy, &log.CheckOutBy, &before, &after, &issues, &log.CreatedAt); err != nil {
		return nil, err
	}
	if len(before) > 0 {
		if err := json.Unmarshal(before, &log.ConditionBefore); err != nil {
			return nil, err
		}
	}
	if len(after) > 0 {
		if err := json.Unmarshal(after, &log.ConditionAfter); err != nil {
			return nil, err
		}
	}
	if issues != nil {
		log.IssuesReported = *issues
	}
	return &log, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
