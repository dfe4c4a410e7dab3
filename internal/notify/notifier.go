package notify

import (
	"context"
	"log"

	"github.com/clubhub/campusbooking/internal/kafka"
)

// Notifier turns lifecycle events into user-facing notifications. Delivery
// channels (email, push) sit behind external services; here a notification
// is considered delivered once it is logged.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Send(ctx context.Context, event kafka.BookingEvent) error {
	log.Printf("notify user %s: %s for booking %s (resource %s, %s)",
		event.RequesterID, subjectFor(event), event.BookingID, event.ResourceID,
		event.StartTime.Format("2006-01-02 15:04"))
	return nil
}

func subjectFor(event kafka.BookingEvent) string {
	switch event.Type {
	case "booking_created":
		return "your booking request was received"
	case "booking_approved":
		return "your booking was approved"
	case "booking_rejected":
		return "your booking was rejected"
	case "booking_cancelled":
		return "your booking was cancelled"
	case "booking_checked_in":
		return "you checked in"
	case "booking_completed":
		return "your booking is complete"
	case "booking_reminder":
		return "your booking starts soon"
	default:
		return "booking update"
	}
}
