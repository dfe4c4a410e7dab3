package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/clubhub/campusbooking/internal/kafka"
	"github.com/clubhub/campusbooking/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*domain.Booking, error)
	ApproveBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.Booking, error)
	RejectBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, reason string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.Booking, error)
	CheckIn(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, conditionBefore map[string]string) (*domain.UsageLog, error)
	CheckOut(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, conditionAfter map[string]string, issues string) (*domain.UsageLog, error)
	ListBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error)
	ListUpcoming(ctx context.Context, actor domain.Actor) ([]domain.Booking, error)
	ListCurrent(ctx context.Context, actor domain.Actor) ([]domain.Booking, error)
	OpenUsageLog(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.UsageLog, error)
	RemindUpcoming(ctx context.Context) (int, error)
}

// Availability enumerates what blocks a resource in a time range. The
// resources service implements it.
type Availability interface {
	Overlaps(ctx context.Context, resourceID uuid.UUID, start, end time.Time, exclude uuid.UUID) (*domain.Availability, error)
}

type Cache interface {
	AcquireSlotLock(ctx context.Context, resourceID uuid.UUID, start, end time.Time, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, resourceID uuid.UUID, start, end time.Time) error
	MarkReminded(ctx context.Context, bookingID uuid.UUID, ttl time.Duration) (bool, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	resources          repository.ResourceRepository
	memberships        repository.MembershipRepository
	availability       Availability
	cache              Cache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	lockTTL            time.Duration
	checkInGrace       time.Duration
	reminderHorizon    time.Duration
	now                func() time.Time
}

type CreateBookingInput struct {
	ResourceID uuid.UUID  `json:"resource_id"`
	Purpose    string     `json:"purpose"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
	ClubID     *uuid.UUID `json:"club_id,omitempty"`
	EventID    *uuid.UUID `json:"event_id,omitempty"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithReminderHorizon(horizon time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.reminderHorizon = horizon
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	resources repository.ResourceRepository,
	memberships repository.MembershipRepository,
	availability Availability,
	cache Cache,
	producer Producer,
	eventsTopic string,
	lockTTL, checkInGrace time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		resources:       resources,
		memberships:     memberships,
		availability:    availability,
		cache:           cache,
		producer:        producer,
		eventsTopic:     eventsTopic,
		lockTTL:         lockTTL,
		checkInGrace:    checkInGrace,
		reminderHorizon: 24 * time.Hour,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking validates the request and persists it. The repository
// re-checks conflicts inside its transaction, so two racing requests for
// the same slot cannot both commit even if both pass validation here.
func (s *BookingService) CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*domain.Booking, error) {
	booking, err := s.validate(ctx, actor, input)
	if err != nil {
		return nil, err
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSlotLock(ctx, input.ResourceID, input.StartTime, input.EndTime, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.NewValidationError(domain.CodeConflict, "resource already booked for this time slot")
		}
		locked = true
	}
	if locked {
		defer func() {
			_ = s.cache.ReleaseSlotLock(ctx, input.ResourceID, input.StartTime, input.EndTime)
		}()
	}

	if err := s.bookings.CreateIfFree(ctx, booking); err != nil {
		return nil, err
	}

	eventType := "booking_created"
	if booking.Status == domain.BookingStatusApproved {
		eventType = "booking_approved"
	}
	s.publish(ctx, eventType, booking, "")
	return booking, nil
}

// validate runs the acceptance checks in order; the first failure wins.
func (s *BookingService) validate(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*domain.Booking, error) {
	resource, err := s.resources.GetByID(ctx, input.ResourceID)
	if err != nil {
		if errors.Is(err, domain.ErrResourceNotFound) {
			return nil, domain.NewValidationError(domain.CodeResourceUnavailable, "resource not found")
		}
		return nil, err
	}
	if !resource.IsAvailable() {
		return nil, domain.NewValidationError(domain.CodeResourceUnavailable, "resource is currently %s", resource.Status)
	}

	now := s.now()
	if !input.StartTime.Before(input.EndTime) {
		return nil, domain.NewValidationError(domain.CodeInvalidRange, "end time must be after start time")
	}
	if input.StartTime.Before(now) {
		return nil, domain.NewValidationError(domain.CodePastStart, "cannot book in the past")
	}
	minAdvance := time.Duration(resource.MinAdvanceBookingHours) * time.Hour
	if input.StartTime.Before(now.Add(minAdvance)) {
		return nil, domain.NewValidationError(domain.CodeTooSoon, "must book at least %d hours in advance", resource.MinAdvanceBookingHours)
	}
	maxAdvance := time.Duration(resource.MaxAdvanceBookingHours) * time.Hour
	if input.StartTime.After(now.Add(maxAdvance)) {
		return nil, domain.NewValidationError(domain.CodeTooFarAhead, "cannot book more than %d hours in advance", resource.MaxAdvanceBookingHours)
	}
	maxDuration := time.Duration(resource.MaxBookingDurationHours) * time.Hour
	if input.EndTime.Sub(input.StartTime) > maxDuration {
		return nil, domain.NewValidationError(domain.CodeDurationExceeded, "maximum booking duration is %d hours", resource.MaxBookingDurationHours)
	}

	blocked, err := s.availability.Overlaps(ctx, input.ResourceID, input.StartTime, input.EndTime, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if len(blocked.Bookings) > 0 {
		return nil, domain.NewValidationError(domain.CodeConflict, "resource already booked for this time slot")
	}
	if len(blocked.Maintenances) > 0 {
		return nil, domain.NewValidationError(domain.CodeMaintenanceConflict, "resource has scheduled maintenance during this time")
	}

	if err := s.checkClubAccess(ctx, actor, resource, input.ClubID); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:          uuid.New(),
		ResourceID:  input.ResourceID,
		RequesterID: actor.ID,
		Purpose:     input.Purpose,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Status:      domain.BookingStatusPending,
		ClubID:      input.ClubID,
		EventID:     input.EventID,
	}
	if resource.BookingType == domain.BookingTypeAuto {
		booking.Status = domain.BookingStatusApproved
		approvedAt := now
		approver := actor.ID
		booking.ApprovedBy = &approver
		booking.ApprovedAt = &approvedAt
	}
	return booking, nil
}

// checkClubAccess enforces the resource's allowed-club list. A booking made
// on behalf of a club must name an allowed club the requester belongs to;
// otherwise any of the requester's memberships may grant access.
func (s *BookingService) checkClubAccess(ctx context.Context, actor domain.Actor, resource *domain.Resource, clubID *uuid.UUID) error {
	if len(resource.AllowedClubIDs) == 0 {
		return nil
	}
	if clubID != nil {
		if !resource.AllowsClub(*clubID) {
			return domain.NewValidationError(domain.CodeAccessDenied, "club does not have access to this resource")
		}
		member, err := s.memberships.IsMember(ctx, actor.ID, *clubID)
		if err != nil {
			return err
		}
		if !member {
			return domain.NewValidationError(domain.CodeAccessDenied, "you are not a member of this club")
		}
		return nil
	}
	clubs, err := s.memberships.ClubsOf(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !resource.AccessibleBy(clubs) {
		return domain.NewValidationError(domain.CodeAccessDenied, "none of your clubs have access to this resource")
	}
	return nil
}

// ApproveBooking moves a pending booking to approved. The repository
// re-runs the conflict check in its transaction: the slot may have been
// taken since submission.
func (s *BookingService) ApproveBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.Booking, error) {
	if !actor.CanApprove() {
		return nil, domain.ErrForbidden
	}

	updated, err := s.bookings.Approve(ctx, bookingID, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_approved", updated, "")
	return updated, nil
}

func (s *BookingService) RejectBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, reason string) (*domain.Booking, error) {
	if !actor.CanApprove() {
		return nil, domain.ErrForbidden
	}

	updated, err := s.bookings.Reject(ctx, bookingID, actor.ID, reason)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_rejected", updated, reason)
	return updated, nil
}

// CancelBooking cancels on behalf of the requester, an admin, or an officer
// of the club the booking was made for.
func (s *BookingService) CancelBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.RequesterID != actor.ID && !actor.IsAdmin() {
		allowed, err := s.isClubOfficer(ctx, actor, current.ClubID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, domain.ErrForbidden
		}
	}

	updated, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_cancelled", updated, "")
	return updated, nil
}

func (s *BookingService) isClubOfficer(ctx context.Context, actor domain.Actor, clubID *uuid.UUID) (bool, error) {
	if clubID == nil {
		return false, nil
	}
	role, err := s.memberships.RoleOf(ctx, actor.ID, *clubID)
	if err != nil {
		if errors.Is(err, domain.ErrClubNotFound) {
			return false, nil
		}
		return false, err
	}
	return role == domain.ClubRoleHead || role == domain.ClubRoleCoordinator, nil
}

// CheckIn opens a usage log and moves the booking to ongoing. Allowed from
// checkInGrace before the scheduled start; there is no upper bound, late
// check-ins are fine.
func (s *BookingService) CheckIn(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, conditionBefore map[string]string) (*domain.UsageLog, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.RequesterID != actor.ID && !actor.CanApprove() {
		return nil, domain.ErrForbidden
	}
	if current.Status != domain.BookingStatusApproved {
		return nil, domain.ErrNotApproved
	}

	now := s.now()
	if now.Before(current.StartTime.Add(-s.checkInGrace)) {
		return nil, domain.ErrTooEarly
	}

	usageLog := &domain.UsageLog{
		ID:              uuid.New(),
		BookingID:       bookingID,
		CheckInTime:     now,
		CheckInBy:       actor.ID,
		ConditionBefore: conditionBefore,
	}
	updated, err := s.bookings.CheckIn(ctx, usageLog)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_checked_in", updated, "")
	return usageLog, nil
}

// CheckOut closes the open usage log and completes the booking. Reported
// issues flip the resource into maintenance as part of the same
// transaction.
func (s *BookingService) CheckOut(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, conditionAfter map[string]string, issues string) (*domain.UsageLog, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.RequesterID != actor.ID && !actor.CanApprove() {
		return nil, domain.ErrForbidden
	}
	if current.Status != domain.BookingStatusOngoing {
		return nil, domain.ErrNotOngoing
	}

	updated, usageLog, err := s.bookings.CheckOut(ctx, bookingID, actor.ID, s.now(), conditionAfter, issues)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_completed", updated, issues)
	return usageLog, nil
}

func (s *BookingService) ListBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	if actor.IsAdmin() {
		return s.bookings.ListAll(ctx)
	}
	return s.bookings.ListByRequester(ctx, actor.ID)
}

func (s *BookingService) ListUpcoming(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	now := s.now()
	upcoming, err := s.bookings.ListUpcoming(ctx, now, now.Add(s.reminderHorizon))
	if err != nil {
		return nil, err
	}
	return filterForActor(upcoming, actor), nil
}

func (s *BookingService) ListCurrent(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	current, err := s.bookings.ListCurrent(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return filterForActor(current, actor), nil
}

// OpenUsageLog returns the booking's open usage log, if a check-in is in
// progress.
func (s *BookingService) OpenUsageLog(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.UsageLog, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.RequesterID != actor.ID && !actor.CanApprove() {
		return nil, domain.ErrForbidden
	}
	return s.bookings.OpenUsageLog(ctx, bookingID)
}

// RemindUpcoming fires reminder events for bookings starting within the
// horizon. It only reads booking state; dedup lives in the cache so the
// sweep can run repeatedly without spamming.
func (s *BookingService) RemindUpcoming(ctx context.Context) (int, error) {
	now := s.now()
	upcoming, err := s.bookings.ListUpcoming(ctx, now, now.Add(s.reminderHorizon))
	if err != nil {
		return 0, err
	}

	reminded := 0
	for i := range upcoming {
		b := &upcoming[i]
		if s.cache != nil {
			fresh, err := s.cache.MarkReminded(ctx, b.ID, s.reminderHorizon)
			if err != nil {
				log.Printf("WARNING: reminder dedup for booking %s: %v", b.ID, err)
				continue
			}
			if !fresh {
				continue
			}
		}
		s.publish(ctx, "booking_reminder", b, "")
		reminded++
	}
	return reminded, nil
}

// publish is fire-and-forget: delivery failures are logged, never returned.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, reason string) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		BookingID:   booking.ID.String(),
		ResourceID:  booking.ResourceID.String(),
		RequesterID: booking.RequesterID.String(),
		Status:      string(booking.Status),
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		Reason:      reason,
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, event.BookingID, event); err != nil {
		log.Printf("WARNING: failed to publish %s for booking %s: %v", eventType, event.BookingID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.BookingID, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %s: %v", eventType, event.BookingID, err)
		}
	}
}

func filterForActor(bookings []domain.Booking, actor domain.Actor) []domain.Booking {
	if actor.IsAdmin() {
		return bookings
	}
	own := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.RequesterID == actor.ID {
			own = append(own, b)
		}
	}
	return own
}

var _ BookingUseCase = (*BookingService)(nil)
