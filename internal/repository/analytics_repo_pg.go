package repository

import (
	"context"
	"time"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalyticsRepository loads the aggregates the dashboard computations run
// over. All queries are point-in-time reads.
type AnalyticsRepository interface {
	ClubStats(ctx context.Context, clubID uuid.UUID) (*domain.ClubStats, error)
	ResourceUsage(ctx context.Context, resourceID uuid.UUID, since time.Time) (*domain.ResourceUsage, error)
}

type PGAnalyticsRepository struct {
	db *pgxpool.Pool
}

func NewAnalyticsRepository(db *pgxpool.Pool) AnalyticsRepository {
	return &PGAnalyticsRepository{db: db}
}

func (r *PGAnalyticsRepository) ClubStats(ctx context.Context, clubID uuid.UUID) (*domain.ClubStats, error) {
	var stats domain.ClubStats

	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM club_memberships
		WHERE club_id=$1 AND role IN ('head', 'coordinator', 'member')`, clubID).
		Scan(&stats.MemberCount); err != nil {
		return nil, err
	}

	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM events WHERE primary_club_id=$1`, clubID).
		Scan(&stats.EventCount); err != nil {
		return nil, err
	}

	if err := r.db.QueryRow(ctx, `SELECT coalesce(sum(max_participants), 0) FROM events
		WHERE primary_club_id=$1`, clubID).Scan(&stats.TotalCapacity); err != nil {
		return nil, err
	}

	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM event_registrations reg
		JOIN events e ON e.id = reg.event_id
		WHERE e.primary_club_id=$1 AND reg.status IN ('registered', 'attended')`, clubID).
		Scan(&stats.RegistrationCount); err != nil {
		return nil, err
	}

	if err := r.db.QueryRow(ctx, `SELECT coalesce(avg(fb.rating), 0) FROM event_feedback fb
		JOIN events e ON e.id = fb.event_id
		WHERE e.primary_club_id=$1`, clubID).Scan(&stats.AverageRating); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *PGAnalyticsRepository) ResourceUsage(ctx context.Context, resourceID uuid.UUID, since time.Time) (*domain.ResourceUsage, error) {
	var usage domain.ResourceUsage
	if err := r.db.QueryRow(ctx, `SELECT count(*),
			coalesce(sum(extract(epoch FROM end_time - start_time) / 3600), 0)
		FROM bookings
		WHERE resource_id=$1 AND start_time >= $2
		  AND status IN ('approved', 'confirmed', 'ongoing', 'completed')`,
		resourceID, since).Scan(&usage.TotalBookings, &usage.BookedHours); err != nil {
		return nil, err
	}
	usage.WindowHours = time.Since(since).Hours()
	return &usage, nil
}

var _ AnalyticsRepository = (*PGAnalyticsRepository)(nil)
