package domain

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleOrganizer   Role = "organizer"
	RoleParticipant Role = "participant"
)

// Actor identifies who performs an operation. Every engine operation takes
// an explicit actor instead of relying on ambient request state.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanApprove reports whether the actor may approve or reject bookings and
// manage resources.
func (a Actor) CanApprove() bool {
	return a.Role == RoleAdmin || a.Role == RoleOrganizer
}

// ClubRole is a member's role inside a club.
type ClubRole string

const (
	ClubRoleHead        ClubRole = "head"
	ClubRoleCoordinator ClubRole = "coordinator"
	ClubRoleMember      ClubRole = "member"
)
