package domain

import (
	"time"

	"github.com/google/uuid"
)

type ResourceType string

const (
	ResourceTypeRoom      ResourceType = "room"
	ResourceTypeEquipment ResourceType = "equipment"
	ResourceTypeVehicle   ResourceType = "vehicle"
	ResourceTypeOther     ResourceType = "other"
)

type ResourceStatus string

const (
	ResourceStatusAvailable   ResourceStatus = "available"
	ResourceStatusInUse       ResourceStatus = "in_use"
	ResourceStatusMaintenance ResourceStatus = "maintenance"
	ResourceStatusUnavailable ResourceStatus = "unavailable"
)

type BookingType string

const (
	BookingTypeAuto   BookingType = "auto"
	BookingTypeManual BookingType = "manual"
)

// Resource is a bookable asset. AllowedClubIDs is its access-control list:
// an empty list means the resource is unrestricted.
type Resource struct {
	ID                      uuid.UUID
	Name                    string
	Description             string
	Type                    ResourceType
	Category                string
	Location                string
	Capacity                int
	Status                  ResourceStatus
	BookingType             BookingType
	AllowedClubIDs          []uuid.UUID
	RequiresTraining        bool
	MaxBookingDurationHours int
	MinAdvanceBookingHours  int
	MaxAdvanceBookingHours  int
	CreatedBy               uuid.UUID
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (r *Resource) IsAvailable() bool {
	return r.Status == ResourceStatusAvailable
}

// AccessibleBy reports whether any of the given clubs may book the resource.
// An empty allowed-club list grants access to everyone.
func (r *Resource) AccessibleBy(clubIDs []uuid.UUID) bool {
	if len(r.AllowedClubIDs) == 0 {
		return true
	}
	for _, allowed := range r.AllowedClubIDs {
		for _, id := range clubIDs {
			if allowed == id {
				return true
			}
		}
	}
	return false
}

// AllowsClub reports whether a specific club is on the allowed list.
func (r *Resource) AllowsClub(clubID uuid.UUID) bool {
	if len(r.AllowedClubIDs) == 0 {
		return true
	}
	for _, allowed := range r.AllowedClubIDs {
		if allowed == clubID {
			return true
		}
	}
	return false
}
