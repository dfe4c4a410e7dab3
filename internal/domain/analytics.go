package domain

import "time"

// Availability lists everything that blocks a resource within a time range.
type Availability struct {
	Bookings     []Booking
	Maintenances []MaintenanceWindow
	RangeStart   time.Time
	RangeEnd     time.Time
}

// ClubStats are the aggregates the engagement score is computed from.
type ClubStats struct {
	MemberCount       int
	EventCount        int
	TotalCapacity     int
	RegistrationCount int
	AverageRating     float64
}

// ResourceUsage summarizes bookings against a resource over a window.
type ResourceUsage struct {
	TotalBookings int
	BookedHours   float64
	WindowHours   float64
}

// UtilizationRate is booked hours as a percentage of the window.
func (u ResourceUsage) UtilizationRate() float64 {
	if u.WindowHours <= 0 {
		return 0
	}
	return u.BookedHours / u.WindowHours * 100
}
