package resources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) Create(ctx context.Context, resource *domain.Resource) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *MockResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resource), args.Error(1)
}

func (m *MockResourceRepository) List(ctx context.Context) ([]domain.Resource, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Resource), args.Error(1)
}

func (m *MockResourceRepository) ListAccessible(ctx context.Context, clubIDs []uuid.UUID) ([]domain.Resource, error) {
	args := m.Called(ctx, clubIDs)
	return args.Get(0).([]domain.Resource), args.Error(1)
}

func (m *MockResourceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ResourceStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateIfFree(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]domain.Booking, error) {
	args := m.Called(ctx, resourceID, start, end, exclude)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]domain.Booking, error) {
	args := m.Called(ctx, requesterID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListUpcoming(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListCurrent(ctx context.Context, at time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, at)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Approve(ctx context.Context, id, approverID uuid.UUID, at time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, id, approverID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Reject(ctx context.Context, id, approverID uuid.UUID, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, id, approverID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CheckIn(ctx context.Context, log *domain.UsageLog) (*domain.Booking, error) {
	args := m.Called(ctx, log)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CheckOut(ctx context.Context, bookingID, actorID uuid.UUID, at time.Time, conditionAfter map[string]string, issues string) (*domain.Booking, *domain.UsageLog, error) {
	args := m.Called(ctx, bookingID, actorID, at, conditionAfter, issues)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Get(1).(*domain.UsageLog), args.Error(2)
}

func (m *MockBookingRepository) OpenUsageLog(ctx context.Context, bookingID uuid.UUID) (*domain.UsageLog, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageLog), args.Error(1)
}

type MockMaintenanceRepository struct {
	mock.Mock
}

func (m *MockMaintenanceRepository) Create(ctx context.Context, window *domain.MaintenanceWindow) error {
	args := m.Called(ctx, window)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceWindow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceWindow), args.Error(1)
}

func (m *MockMaintenanceRepository) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]domain.MaintenanceWindow, error) {
	args := m.Called(ctx, resourceID)
	return args.Get(0).([]domain.MaintenanceWindow), args.Error(1)
}

func (m *MockMaintenanceRepository) ListOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time) ([]domain.MaintenanceWindow, error) {
	args := m.Called(ctx, resourceID, start, end)
	return args.Get(0).([]domain.MaintenanceWindow), args.Error(1)
}

func (m *MockMaintenanceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MaintenanceStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) IsMember(ctx context.Context, userID, clubID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, clubID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) RoleOf(ctx context.Context, userID, clubID uuid.UUID) (domain.ClubRole, error) {
	args := m.Called(ctx, userID, clubID)
	return args.Get(0).(domain.ClubRole), args.Error(1)
}

func (m *MockMembershipRepository) ClubsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetCatalog(ctx context.Context) ([]domain.Resource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resource), args.Error(1)
}

func (m *MockCache) SetCatalog(ctx context.Context, resources []domain.Resource) error {
	args := m.Called(ctx, resources)
	return args.Error(0)
}

func (m *MockCache) InvalidateCatalog(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newService(
	resources *MockResourceRepository,
	bookings *MockBookingRepository,
	maintenances *MockMaintenanceRepository,
	memberships *MockMembershipRepository,
	cache *MockCache,
) *ResourceService {
	return NewResourceService(resources, bookings, maintenances, memberships, cache)
}

func TestResourceService_Create(t *testing.T) {
	ctx := context.Background()
	organizer := domain.Actor{ID: uuid.New(), Role: domain.RoleOrganizer}

	t.Run("success invalidates catalog", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockCache := &MockCache{}
		service := newService(mockResources, &MockBookingRepository{}, &MockMaintenanceRepository{}, &MockMembershipRepository{}, mockCache)

		mockResources.On("Create", ctx, mock.AnythingOfType("*domain.Resource")).Return(nil).Once()
		mockCache.On("InvalidateCatalog", ctx).Return(nil).Once()

		created, err := service.Create(ctx, organizer, CreateResourceInput{
			Name:                    "Sound System",
			Type:                    "equipment",
			MaxBookingDurationHours: 8,
			MinAdvanceBookingHours:  1,
			MaxAdvanceBookingHours:  168,
		})

		assert.NoError(t, err)
		assert.Equal(t, domain.ResourceStatusAvailable, created.Status)
		assert.Equal(t, domain.BookingTypeManual, created.BookingType)
		mockCache.AssertExpectations(t)
	})

	t.Run("participant forbidden", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		service := newService(mockResources, &MockBookingRepository{}, &MockMaintenanceRepository{}, &MockMembershipRepository{}, &MockCache{})

		created, err := service.Create(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleParticipant}, CreateResourceInput{
			Name:                    "Sound System",
			MaxBookingDurationHours: 8,
			MaxAdvanceBookingHours:  168,
		})

		assert.Nil(t, created)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		mockResources.AssertNotCalled(t, "Create")
	})

	t.Run("min advance above max advance", func(t *testing.T) {
		service := newService(&MockResourceRepository{}, &MockBookingRepository{}, &MockMaintenanceRepository{}, &MockMembershipRepository{}, &MockCache{})

		created, err := service.Create(ctx, organizer, CreateResourceInput{
			Name:                    "Van",
			MaxBookingDurationHours: 8,
			MinAdvanceBookingHours:  200,
			MaxAdvanceBookingHours:  168,
		})

		assert.Nil(t, created)
		ve, ok := domain.AsValidationError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeInvalidRange, ve.Code)
	})
}

func TestResourceService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	resourceID := uuid.New()

	t.Run("disable a resource", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockCache := &MockCache{}
		service := newService(mockResources, &MockBookingRepository{}, &MockMaintenanceRepository{}, &MockMembershipRepository{}, mockCache)

		mockResources.On("GetByID", ctx, resourceID).
			Return(&domain.Resource{ID: resourceID, Status: domain.ResourceStatusAvailable}, nil).Once()
		mockResources.On("UpdateStatus", ctx, resourceID, domain.ResourceStatusUnavailable).Return(nil).Once()
		mockCache.On("InvalidateCatalog", ctx).Return(nil).Once()

		updated, err := service.UpdateStatus(ctx, admin, resourceID, domain.ResourceStatusUnavailable)

		assert.NoError(t, err)
		assert.Equal(t, domain.ResourceStatusUnavailable, updated.Status)
		mockCache.AssertExpectations(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		service := newService(&MockResourceRepository{}, &MockBookingRepository{}, &MockMaintenanceRepository{}, &MockMembershipRepository{}, &MockCache{})

		updated, err := service.UpdateStatus(ctx, admin, resourceID, domain.ResourceStatus("retired"))

		assert.Nil(t, updated)
		ve, ok := domain.AsValidationError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeInvalidRange, ve.Code)
	})

	t.Run("participant forbidden", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		service := newService(mockResources, &MockBookingRepository{}, &MockMaintenanceRepository{}, &MockMembershipRepository{}, &MockCache{})

		updated, err := service.UpdateStatus(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleParticipant}, resourceID, domain.ResourceStatusUnavailable)

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		mockResources.AssertNotCalled(t, "UpdateStatus")
	})
}

func TestResourceService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("admin list served from cache", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockCache := &MockCache{}
		service := newService(mockResources, &MockBookingRepository{}, &MockMaintenanceRepository{}, &MockMembershipRepository{}, mockCache)

		cached := []domain.Resource{{ID: uuid.New(), Name: "Main Auditorium"}}
		mockCache.On("GetCatalog", ctx).Return(cached, nil).Once()

		result, err := service.List(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin})

		assert.NoError(t, err)
		assert.Equal(t, cached, result)
		mockResources.AssertNotCalled(t, "List")
	})

	t.Run("admin cache miss falls through and fills", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockCache := &MockCache{}
		service := newService(mockResources, &MockBookingRepository{}, &MockMaintenanceRepository{}, &MockMembershipRepository{}, mockCache)

		listed := []domain.Resource{{ID: uuid.New()}}
		mockCache.On("GetCatalog", ctx).Return(nil, errors.New("redis: nil")).Once()
		mockResources.On("List", ctx).Return(listed, nil).Once()
		mockCache.On("SetCatalog", ctx, listed).Return(nil).Once()

		result, err := service.List(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin})

		assert.NoError(t, err)
		assert.Equal(t, listed, result)
		mockCache.AssertExpectations(t)
	})

	t.Run("participant sees accessible resources", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockMemberships := &MockMembershipRepository{}
		service := newService(mockResources, &MockBookingRepository{}, &MockMaintenanceRepository{}, mockMemberships, &MockCache{})

		actor := domain.Actor{ID: uuid.New(), Role: domain.RoleParticipant}
		clubs := []uuid.UUID{uuid.New()}
		accessible := []domain.Resource{{ID: uuid.New()}}
		mockMemberships.On("ClubsOf", ctx, actor.ID).Return(clubs, nil).Once()
		mockResources.On("ListAccessible", ctx, clubs).Return(accessible, nil).Once()

		result, err := service.List(ctx, actor)

		assert.NoError(t, err)
		assert.Equal(t, accessible, result)
	})
}

func TestResourceService_Overlaps(t *testing.T) {
	ctx := context.Background()
	resourceID := uuid.New()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	t.Run("collects bookings and maintenance", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockBookings := &MockBookingRepository{}
		mockMaintenances := &MockMaintenanceRepository{}
		service := newService(mockResources, mockBookings, mockMaintenances, &MockMembershipRepository{}, &MockCache{})

		mockResources.On("GetByID", ctx, resourceID).Return(&domain.Resource{ID: resourceID}, nil).Once()
		blocking := []domain.Booking{{ID: uuid.New(), Status: domain.BookingStatusApproved}}
		windows := []domain.MaintenanceWindow{{ID: uuid.New(), Status: domain.MaintenanceStatusScheduled}}
		mockBookings.On("ListOverlapping", ctx, resourceID, start, end, uuid.Nil).Return(blocking, nil).Once()
		mockMaintenances.On("ListOverlapping", ctx, resourceID, start, end).Return(windows, nil).Once()

		availability, err := service.Overlaps(ctx, resourceID, start, end, uuid.Nil)

		assert.NoError(t, err)
		assert.Len(t, availability.Bookings, 1)
		assert.Len(t, availability.Maintenances, 1)
		assert.Equal(t, start, availability.RangeStart)
		assert.Equal(t, end, availability.RangeEnd)
	})

	t.Run("unknown resource", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockBookings := &MockBookingRepository{}
		service := newService(mockResources, mockBookings, &MockMaintenanceRepository{}, &MockMembershipRepository{}, &MockCache{})

		mockResources.On("GetByID", ctx, resourceID).Return(nil, domain.ErrResourceNotFound).Once()

		availability, err := service.Overlaps(ctx, resourceID, start, end, uuid.Nil)

		assert.Nil(t, availability)
		assert.ErrorIs(t, err, domain.ErrResourceNotFound)
		mockBookings.AssertNotCalled(t, "ListOverlapping")
	})
}

func TestResourceService_ScheduleMaintenance(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	resourceID := uuid.New()
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockMaintenances := &MockMaintenanceRepository{}
		service := newService(mockResources, &MockBookingRepository{}, mockMaintenances, &MockMembershipRepository{}, &MockCache{})

		mockResources.On("GetByID", ctx, resourceID).Return(&domain.Resource{ID: resourceID}, nil).Once()
		mockMaintenances.On("Create", ctx, mock.AnythingOfType("*domain.MaintenanceWindow")).Return(nil).Once()

		window, err := service.ScheduleMaintenance(ctx, admin, MaintenanceInput{
			ResourceID:     resourceID,
			Description:    "annual inspection",
			ScheduledStart: start,
			ScheduledEnd:   start.Add(4 * time.Hour),
		})

		assert.NoError(t, err)
		assert.Equal(t, domain.MaintenanceStatusScheduled, window.Status)
		assert.Equal(t, domain.MaintenanceTypeScheduled, window.Type)
	})

	t.Run("list windows for resource", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockMaintenances := &MockMaintenanceRepository{}
		service := newService(mockResources, &MockBookingRepository{}, mockMaintenances, &MockMembershipRepository{}, &MockCache{})

		windows := []domain.MaintenanceWindow{{ID: uuid.New(), ResourceID: resourceID}}
		mockResources.On("GetByID", ctx, resourceID).Return(&domain.Resource{ID: resourceID}, nil).Once()
		mockMaintenances.On("ListByResource", ctx, resourceID).Return(windows, nil).Once()

		result, err := service.MaintenanceWindows(ctx, resourceID)

		assert.NoError(t, err)
		assert.Len(t, result, 1)
	})

	t.Run("window progression updates resource status", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockMaintenances := &MockMaintenanceRepository{}
		mockCache := &MockCache{}
		service := newService(mockResources, &MockBookingRepository{}, mockMaintenances, &MockMembershipRepository{}, mockCache)

		windowID := uuid.New()
		window := &domain.MaintenanceWindow{ID: windowID, ResourceID: resourceID, Status: domain.MaintenanceStatusScheduled}
		mockMaintenances.On("GetByID", ctx, windowID).Return(window, nil).Once()
		mockMaintenances.On("UpdateStatus", ctx, windowID, domain.MaintenanceStatusInProgress).Return(nil).Once()
		mockResources.On("UpdateStatus", ctx, resourceID, domain.ResourceStatusMaintenance).Return(nil).Once()
		mockCache.On("InvalidateCatalog", ctx).Return(nil).Once()

		updated, err := service.UpdateMaintenanceStatus(ctx, admin, windowID, domain.MaintenanceStatusInProgress)

		assert.NoError(t, err)
		assert.Equal(t, domain.MaintenanceStatusInProgress, updated.Status)
		mockResources.AssertExpectations(t)
	})

	t.Run("completing a window releases the resource", func(t *testing.T) {
		mockResources := &MockResourceRepository{}
		mockMaintenances := &MockMaintenanceRepository{}
		mockCache := &MockCache{}
		service := newService(mockResources, &MockBookingRepository{}, mockMaintenances, &MockMembershipRepository{}, mockCache)

		windowID := uuid.New()
		window := &domain.MaintenanceWindow{ID: windowID, ResourceID: resourceID, Status: domain.MaintenanceStatusInProgress}
		mockMaintenances.On("GetByID", ctx, windowID).Return(window, nil).Once()
		mockMaintenances.On("UpdateStatus", ctx, windowID, domain.MaintenanceStatusCompleted).Return(nil).Once()
		mockResources.On("GetByID", ctx, resourceID).
			Return(&domain.Resource{ID: resourceID, Status: domain.ResourceStatusMaintenance}, nil).Once()
		mockResources.On("UpdateStatus", ctx, resourceID, domain.ResourceStatusAvailable).Return(nil).Once()
		mockCache.On("InvalidateCatalog", ctx).Return(nil).Once()

		updated, err := service.UpdateMaintenanceStatus(ctx, admin, windowID, domain.MaintenanceStatusCompleted)

		assert.NoError(t, err)
		assert.Equal(t, domain.MaintenanceStatusCompleted, updated.Status)
		mockResources.AssertExpectations(t)
	})

	t.Run("inverted range", func(t *testing.T) {
		service := newService(&MockResourceRepository{}, &MockBookingRepository{}, &MockMaintenanceRepository{}, &MockMembershipRepository{}, &MockCache{})

		window, err := service.ScheduleMaintenance(ctx, admin, MaintenanceInput{
			ResourceID:     resourceID,
			ScheduledStart: start,
			ScheduledEnd:   start,
		})

		assert.Nil(t, window)
		ve, ok := domain.AsValidationError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeInvalidRange, ve.Code)
	})
}
