package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	testCases := []struct {
		name     string
		aStart   time.Time
		aEnd     time.Time
		cStart   time.Time
		cEnd     time.Time
		expected bool
	}{
		{"identical intervals", at(0, 0), at(2, 0), at(0, 0), at(2, 0), true},
		{"partial overlap at end", at(0, 0), at(2, 0), at(1, 0), at(3, 0), true},
		{"partial overlap at start", at(1, 0), at(3, 0), at(0, 0), at(2, 0), true},
		{"candidate inside existing", at(0, 0), at(3, 0), at(1, 0), at(2, 0), true},
		{"existing inside candidate", at(1, 0), at(2, 0), at(0, 0), at(3, 0), true},
		{"one second of overlap", at(0, 0), at(2, 0).Add(time.Second), at(2, 0), at(4, 0), true},
		{"touching, candidate after", at(0, 0), at(2, 0), at(2, 0), at(4, 0), false},
		{"touching, candidate before", at(2, 0), at(4, 0), at(0, 0), at(2, 0), false},
		{"disjoint", at(0, 0), at(1, 0), at(2, 0), at(3, 0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Overlaps(tc.aStart, tc.aEnd, tc.cStart, tc.cEnd))
		})
	}
}

func TestBookingStatePredicates(t *testing.T) {
	active := []BookingStatus{BookingStatusPending, BookingStatusApproved, BookingStatusConfirmed, BookingStatusOngoing}
	terminal := []BookingStatus{BookingStatusRejected, BookingStatusCompleted, BookingStatusCancelled}

	for _, status := range active {
		b := Booking{Status: status}
		assert.True(t, b.Active(), "status %s should be active", status)
		assert.False(t, b.Terminal(), "status %s should not be terminal", status)
	}
	for _, status := range terminal {
		b := Booking{Status: status}
		assert.False(t, b.Active(), "status %s should not be active", status)
		assert.True(t, b.Terminal(), "status %s should be terminal", status)
	}

	assert.True(t, (&Booking{Status: BookingStatusPending}).Cancellable())
	assert.True(t, (&Booking{Status: BookingStatusApproved}).Cancellable())
	assert.True(t, (&Booking{Status: BookingStatusConfirmed}).Cancellable())
	assert.False(t, (&Booking{Status: BookingStatusOngoing}).Cancellable())
	assert.False(t, (&Booking{Status: BookingStatusCompleted}).Cancellable())
	assert.False(t, (&Booking{Status: BookingStatusCancelled}).Cancellable())
}

func TestDurationHours(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	b := Booking{StartTime: start, EndTime: start.Add(90 * time.Minute)}
	assert.InDelta(t, 1.5, b.DurationHours(), 1e-9)
}
