package repository

import (
	"context"
	"errors"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MembershipRepository is the club-membership lookup the booking engine
// consults for access control.
type MembershipRepository interface {
	IsMember(ctx context.Context, userID, clubID uuid.UUID) (bool, error)
	RoleOf(ctx context.Context, userID, clubID uuid.UUID) (domain.ClubRole, error)
	ClubsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type PGMembershipRepository struct {
	db *pgxpool.Pool
}

func NewMembershipRepository(db *pgxpool.Pool) MembershipRepository {
	return &PGMembershipRepository{db: db}
}

func (r *PGMembershipRepository) IsMember(ctx context.Context, userID, clubID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM club_memberships WHERE user_id=$1 AND club_id=$2)`, userID, clubID).Scan(&exists)
	return exists, err
}

func (r *PGMembershipRepository) RoleOf(ctx context.Context, userID, clubID uuid.UUID) (domain.ClubRole, error) {
	var role domain.ClubRole
	err := r.db.QueryRow(ctx, `SELECT role FROM club_memberships WHERE user_id=$1 AND club_id=$2`,
		userID, clubID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrClubNotFound
	}
	return role, err
}

func (r *PGMembershipRepository) ClubsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT club_id FROM club_memberships WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		clubs = append(clubs, id)
	}
	return clubs, rows.Err()
}

var _ MembershipRepository = (*PGMembershipRepository)(nil)
