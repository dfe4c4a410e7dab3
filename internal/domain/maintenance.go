package domain

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceType string

const (
	MaintenanceTypeScheduled  MaintenanceType = "scheduled"
	MaintenanceTypeRepair     MaintenanceType = "repair"
	MaintenanceTypeInspection MaintenanceType = "inspection"
	MaintenanceTypeOther      MaintenanceType = "other"
)

type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
	MaintenanceStatusCancelled  MaintenanceStatus = "cancelled"
)

// MaintenanceWindow blocks a resource for a time range. Active windows are
// hard exclusion zones for bookings.
type MaintenanceWindow struct {
	ID             uuid.UUID
	ResourceID     uuid.UUID
	Type           MaintenanceType
	Description    string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	Status         MaintenanceStatus
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
}

func (m *MaintenanceWindow) Active() bool {
	return m.Status == MaintenanceStatusScheduled || m.Status == MaintenanceStatusInProgress
}
