package domain

import (
	"time"

	"github.com/google/uuid"
)

// UsageLog records actual occupancy against a booking. At most one log per
// booking may be open (check-out time unset) at a time.
type UsageLog struct {
	ID              uuid.UUID
	BookingID       uuid.UUID
	CheckInTime     time.Time
	CheckOutTime    *time.Time
	CheckInBy       uuid.UUID
	CheckOutBy      *uuid.UUID
	ConditionBefore map[string]string
	ConditionAfter  map[string]string
	IssuesReported  string
	CreatedAt       time.Time
}

func (l *UsageLog) Open() bool {
	return l.CheckOutTime == nil
}
