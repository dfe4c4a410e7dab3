package resources

import (
	"context"
	"time"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/clubhub/campusbooking/internal/repository"
	"github.com/google/uuid"
)

type ResourceUseCase interface {
	Create(ctx context.Context, actor domain.Actor, input CreateResourceInput) (*domain.Resource, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Resource, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Resource, error)
	Availability(ctx context.Context, resourceID uuid.UUID, start, end time.Time) (*domain.Availability, error)
	Overlaps(ctx context.Context, resourceID uuid.UUID, start, end time.Time, exclude uuid.UUID) (*domain.Availability, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.ResourceStatus) (*domain.Resource, error)
	ScheduleMaintenance(ctx context.Context, actor domain.Actor, input MaintenanceInput) (*domain.MaintenanceWindow, error)
	MaintenanceWindows(ctx context.Context, resourceID uuid.UUID) ([]domain.MaintenanceWindow, error)
	UpdateMaintenanceStatus(ctx context.Context, actor domain.Actor, windowID uuid.UUID, status domain.MaintenanceStatus) (*domain.MaintenanceWindow, error)
}

type Cache interface {
	GetCatalog(ctx context.Context) ([]domain.Resource, error)
	SetCatalog(ctx context.Context, resources []domain.Resource) error
	InvalidateCatalog(ctx context.Context) error
}

type ResourceService struct {
	resources    repository.ResourceRepository
	bookings     repository.BookingRepository
	maintenances repository.MaintenanceRepository
	memberships  repository.MembershipRepository
	cache        Cache
}

type CreateResourceInput struct {
	Name                    string            `json:"name"`
	Description             string            `json:"description"`
	Type                    string            `json:"resource_type"`
	Category                string            `json:"category"`
	Location                string            `json:"location"`
	Capacity                int               `json:"capacity"`
	BookingType             string            `json:"booking_type"`
	AllowedClubIDs          []uuid.UUID       `json:"allowed_club_ids"`
	RequiresTraining        bool              `json:"requires_training"`
	MaxBookingDurationHours int               `json:"max_booking_duration_hours"`
	MinAdvanceBookingHours  int               `json:"min_advance_booking_hours"`
	MaxAdvanceBookingHours  int               `json:"max_advance_booking_hours"`
}

type MaintenanceInput struct {
	ResourceID     uuid.UUID `json:"resource_id"`
	Type           string    `json:"maintenance_type"`
	Description    string    `json:"description"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
}

func NewResourceService(
	resources repository.ResourceRepository,
	bookings repository.BookingRepository,
	maintenances repository.MaintenanceRepository,
	memberships repository.MembershipRepository,
	cache Cache,
) *ResourceService {
	return &ResourceService{
		resources:    resources,
		bookings:     bookings,
		maintenances: maintenances,
		memberships:  memberships,
		cache:        cache,
	}
}

func (s *ResourceService) Create(ctx context.Context, actor domain.Actor, input CreateResourceInput) (*domain.Resource, error) {
	if !actor.CanApprove() {
		return nil, domain.ErrForbidden
	}
	if input.Name == "" {
		return nil, domain.NewValidationError(domain.CodeInvalidRange, "name is required")
	}
	if input.MaxBookingDurationHours <= 0 {
		return nil, domain.NewValidationError(domain.CodeInvalidRange, "max booking duration must be positive")
	}
	if input.MinAdvanceBookingHours < 0 || input.MaxAdvanceBookingHours <= 0 {
		return nil, domain.NewValidationError(domain.CodeInvalidRange, "advance booking hours must be positive")
	}
	if input.MinAdvanceBookingHours > input.MaxAdvanceBookingHours {
		return nil, domain.NewValidationError(domain.CodeInvalidRange, "min advance must not exceed max advance")
	}

	resourceType := domain.ResourceType(input.Type)
	if resourceType == "" {
		resourceType = domain.ResourceTypeOther
	}
	bookingType := domain.BookingType(input.BookingType)
	if bookingType == "" {
		bookingType = domain.BookingTypeManual
	}

	resource := &domain.Resource{
		ID:                      uuid.New(),
		Name:                    input.Name,
		Description:             input.Description,
		Type:                    resourceType,
		Category:                input.Category,
		Location:                input.Location,
		Capacity:                input.Capacity,
		Status:                  domain.ResourceStatusAvailable,
		BookingType:             bookingType,
		AllowedClubIDs:          input.AllowedClubIDs,
		RequiresTraining:        input.RequiresTraining,
		MaxBookingDurationHours: input.MaxBookingDurationHours,
		MinAdvanceBookingHours:  input.MinAdvanceBookingHours,
		MaxAdvanceBookingHours:  input.MaxAdvanceBookingHours,
		CreatedBy:               actor.ID,
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateCatalog(ctx)
	}
	return resource, nil
}

func (s *ResourceService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Resource, error) {
	resource, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return resource, nil
	}
	clubs, err := s.memberships.ClubsOf(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !resource.AccessibleBy(clubs) {
		return nil, domain.ErrForbidden
	}
	return resource, nil
}

// List returns everything for admins; everyone else sees available
// resources their clubs can access.
func (s *ResourceService) List(ctx context.Context, actor domain.Actor) ([]domain.Resource, error) {
	if actor.IsAdmin() {
		if s.cache != nil {
			if cached, err := s.cache.GetCatalog(ctx); err == nil && cached != nil {
				return cached, nil
			}
		}
		resources, err := s.resources.List(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			_ = s.cache.SetCatalog(ctx, resources)
		}
		return resources, nil
	}

	clubs, err := s.memberships.ClubsOf(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.resources.ListAccessible(ctx, clubs)
}

// Availability lists bookings and maintenance windows blocking the resource
// within [start, end).
func (s *ResourceService) Availability(ctx context.Context, resourceID uuid.UUID, start, end time.Time) (*domain.Availability, error) {
	return s.Overlaps(ctx, resourceID, start, end, uuid.Nil)
}

// Overlaps is the conflict enumeration the booking validator runs on. It
// always reads committed state; nothing is cached between calls.
func (s *ResourceService) Overlaps(ctx context.Context, resourceID uuid.UUID, start, end time.Time, exclude uuid.UUID) (*domain.Availability, error) {
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListOverlapping(ctx, resourceID, start, end, exclude)
	if err != nil {
		return nil, err
	}
	maintenances, err := s.maintenances.ListOverlapping(ctx, resourceID, start, end)
	if err != nil {
		return nil, err
	}

	return &domain.Availability{
		Bookings:     bookings,
		Maintenances: maintenances,
		RangeStart:   start,
		RangeEnd:     end,
	}, nil
}

func (s *ResourceService) ScheduleMaintenance(ctx context.Context, actor domain.Actor, input MaintenanceInput) (*domain.MaintenanceWindow, error) {
	if !actor.CanApprove() {
		return nil, domain.ErrForbidden
	}
	if !input.ScheduledStart.Before(input.ScheduledEnd) {
		return nil, domain.NewValidationError(domain.CodeInvalidRange, "scheduled end must be after start")
	}
	if _, err := s.resources.GetByID(ctx, input.ResourceID); err != nil {
		return nil, err
	}

	maintenanceType := domain.MaintenanceType(input.Type)
	if maintenanceType == "" {
		maintenanceType = domain.MaintenanceTypeScheduled
	}

	window := &domain.MaintenanceWindow{
		ID:             uuid.New(),
		ResourceID:     input.ResourceID,
		Type:           maintenanceType,
		Description:    input.Description,
		ScheduledStart: input.ScheduledStart,
		ScheduledEnd:   input.ScheduledEnd,
		Status:         domain.MaintenanceStatusScheduled,
		CreatedBy:      actor.ID,
	}
	if err := s.maintenances.Create(ctx, window); err != nil {
		return nil, err
	}
	return window, nil
}

func (s *ResourceService) MaintenanceWindows(ctx context.Context, resourceID uuid.UUID) ([]domain.MaintenanceWindow, error) {
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		return nil, err
	}
	return s.maintenances.ListByResource(ctx, resourceID)
}

// UpdateStatus is how resources are taken out of rotation; they are never
// deleted while bookings reference them.
func (s *ResourceService) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.ResourceStatus) (*domain.Resource, error) {
	if !actor.CanApprove() {
		return nil, domain.ErrForbidden
	}
	switch status {
	case domain.ResourceStatusAvailable, domain.ResourceStatusInUse,
		domain.ResourceStatusMaintenance, domain.ResourceStatusUnavailable:
	default:
		return nil, domain.NewValidationError(domain.CodeInvalidRange, "unknown resource status %q", status)
	}

	resource, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resources.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	resource.Status = status
	if s.cache != nil {
		_ = s.cache.InvalidateCatalog(ctx)
	}
	return resource, nil
}

// UpdateMaintenanceStatus moves a maintenance window through its lifecycle.
// Starting work puts the resource into maintenance; finishing or cancelling
// the window restores it to available if maintenance is what held it.
func (s *ResourceService) UpdateMaintenanceStatus(ctx context.Context, actor domain.Actor, windowID uuid.UUID, status domain.MaintenanceStatus) (*domain.MaintenanceWindow, error) {
	if !actor.CanApprove() {
		return nil, domain.ErrForbidden
	}
	switch status {
	case domain.MaintenanceStatusScheduled, domain.MaintenanceStatusInProgress,
		domain.MaintenanceStatusCompleted, domain.MaintenanceStatusCancelled:
	default:
		return nil, domain.NewValidationError(domain.CodeInvalidRange, "unknown maintenance status %q", status)
	}

	window, err := s.maintenances.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if err := s.maintenances.UpdateStatus(ctx, windowID, status); err != nil {
		return nil, err
	}
	window.Status = status

	switch status {
	case domain.MaintenanceStatusInProgress:
		if err := s.resources.UpdateStatus(ctx, window.ResourceID, domain.ResourceStatusMaintenance); err != nil {
			return nil, err
		}
	case domain.MaintenanceStatusCompleted, domain.MaintenanceStatusCancelled:
		resource, err := s.resources.GetByID(ctx, window.ResourceID)
		if err != nil {
			return nil, err
		}
		if resource.Status == domain.ResourceStatusMaintenance {
			if err := s.resources.UpdateStatus(ctx, window.ResourceID, domain.ResourceStatusAvailable); err != nil {
				return nil, err
			}
		}
	}
	if s.cache != nil {
		_ = s.cache.InvalidateCatalog(ctx)
	}
	return window, nil
}

var _ ResourceUseCase = (*ResourceService)(nil)
