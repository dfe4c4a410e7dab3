package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusOngoing   BookingStatus = "ongoing"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses that hold a time slot and therefore
// count toward conflicts.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusApproved,
	BookingStatusConfirmed,
	BookingStatusOngoing,
}

type Booking struct {
	ID              uuid.UUID
	ResourceID      uuid.UUID
	RequesterID     uuid.UUID
	Purpose         string
	StartTime       time.Time
	EndTime         time.Time
	Status          BookingStatus
	ClubID          *uuid.UUID
	EventID         *uuid.UUID
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	RejectionReason string
	ActualStartTime *time.Time
	ActualEndTime   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Active reports whether the booking still holds its time slot.
func (b *Booking) Active() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusApproved, BookingStatusConfirmed, BookingStatusOngoing:
		return true
	}
	return false
}

// Terminal reports whether the booking reached a final state.
func (b *Booking) Terminal() bool {
	switch b.Status {
	case BookingStatusRejected, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether the booking may still be cancelled.
// Bookings that are already in use or finished cannot be.
func (b *Booking) Cancellable() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusApproved, BookingStatusConfirmed:
		return true
	}
	return false
}

func (b *Booking) DurationHours() float64 {
	return b.EndTime.Sub(b.StartTime).Hours()
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [cStart, cEnd) intersect. Touching intervals do not overlap.
func Overlaps(aStart, aEnd, cStart, cEnd time.Time) bool {
	return aStart.Before(cEnd) && cStart.Before(aEnd)
}
