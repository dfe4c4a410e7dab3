package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/clubhub/campusbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, actor domain.Actor, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ApproveBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) RejectBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CheckIn(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, conditionBefore map[string]string) (*domain.UsageLog, error) {
	args := m.Called(ctx, actor, bookingID, conditionBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageLog), args.Error(1)
}

func (m *MockBookingUseCase) CheckOut(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, conditionAfter map[string]string, issues string) (*domain.UsageLog, error) {
	args := m.Called(ctx, actor, bookingID, conditionAfter, issues)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageLog), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListUpcoming(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListCurrent(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) OpenUsageLog(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.UsageLog, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageLog), args.Error(1)
}

func (m *MockBookingUseCase) RemindUpcoming(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func testContext(t *testing.T, method, path string, body interface{}, actor domain.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("X-User-ID", actor.ID.String())
	c.Request.Header.Set("X-User-Role", string(actor.Role))
	return c, w
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleParticipant}
	start := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)
	input := booking.CreateBookingInput{
		ResourceID: uuid.New(),
		Purpose:    "rehearsal",
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
	}
	c, w := testContext(t, "POST", "/bookings", input, actor)

	created := &domain.Booking{
		ID:          uuid.New(),
		ResourceID:  input.ResourceID,
		RequesterID: actor.ID,
		Purpose:     "rehearsal",
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Status:      domain.BookingStatusPending,
	}
	mockService.On("CreateBooking", c.Request.Context(), actor, input).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, response.ID)
	assert.Equal(t, string(domain.BookingStatusPending), response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_validationError(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleParticipant}
	start := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)
	input := booking.CreateBookingInput{
		ResourceID: uuid.New(),
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
	}
	c, w := testContext(t, "POST", "/bookings", input, actor)

	mockService.On("CreateBooking", c.Request.Context(), actor, input).
		Return(nil, domain.NewValidationError(domain.CodeConflict, "resource already booked for this time slot"))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Conflict", response["code"])
}

func TestBookingHandler_create_missingIdentity(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(nil))

	handler.create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking")
}

func TestBookingHandler_approve(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleOrganizer}
	bookingID := uuid.New()
	c, w := testContext(t, "POST", "/bookings/"+bookingID.String()+"/approve", nil, actor)
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}

	approved := &domain.Booking{ID: bookingID, Status: domain.BookingStatusApproved, ApprovedBy: &actor.ID}
	mockService.On("ApproveBooking", c.Request.Context(), actor, bookingID).Return(approved, nil)

	handler.approve(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusApproved), response.Status)
}

func TestBookingHandler_approve_conflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	bookingID := uuid.New()
	c, w := testContext(t, "POST", "/bookings/"+bookingID.String()+"/approve", nil, actor)
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}

	mockService.On("ApproveBooking", c.Request.Context(), actor, bookingID).
		Return(nil, domain.ErrConflictAtApproval)

	handler.approve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_reject(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleOrganizer}
	bookingID := uuid.New()
	c, w := testContext(t, "POST", "/bookings/"+bookingID.String()+"/reject",
		rejectBookingRequest{Reason: "double booked"}, actor)
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}

	rejected := &domain.Booking{ID: bookingID, Status: domain.BookingStatusRejected, RejectionReason: "double booked"}
	mockService.On("RejectBooking", c.Request.Context(), actor, bookingID, "double booked").Return(rejected, nil)

	handler.reject(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "double booked", response.RejectionReason)
}

func TestBookingHandler_cancel_forbidden(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleParticipant}
	bookingID := uuid.New()
	c, w := testContext(t, "POST", "/bookings/"+bookingID.String()+"/cancel", nil, actor)
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}

	mockService.On("CancelBooking", c.Request.Context(), actor, bookingID).Return(nil, domain.ErrForbidden)

	handler.cancel(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_checkIn(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleParticipant}
	bookingID := uuid.New()
	condition := map[string]string{"projector": "working"}
	c, w := testContext(t, "POST", "/bookings/"+bookingID.String()+"/check-in",
		checkInRequest{ConditionBefore: condition}, actor)
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}

	usageLog := &domain.UsageLog{
		ID:              uuid.New(),
		BookingID:       bookingID,
		CheckInTime:     time.Date(2026, 3, 12, 13, 45, 0, 0, time.UTC),
		CheckInBy:       actor.ID,
		ConditionBefore: condition,
	}
	mockService.On("CheckIn", c.Request.Context(), actor, bookingID, condition).Return(usageLog, nil)

	handler.checkIn(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response usageLogResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, bookingID, response.BookingID)
	assert.Nil(t, response.CheckOutTime)
}

func TestBookingHandler_checkIn_tooEarly(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleParticipant}
	bookingID := uuid.New()
	c, w := testContext(t, "POST", "/bookings/"+bookingID.String()+"/check-in", checkInRequest{}, actor)
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}

	mockService.On("CheckIn", c.Request.Context(), actor, bookingID, map[string]string(nil)).
		Return(nil, domain.ErrTooEarly)

	handler.checkIn(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_checkOut(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleParticipant}
	bookingID := uuid.New()
	condition := map[string]string{"projector": "broken"}
	c, w := testContext(t, "POST", "/bookings/"+bookingID.String()+"/check-out",
		checkOutRequest{ConditionAfter: condition, IssuesReported: "projector bulb burnt out"}, actor)
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}

	checkedOut := time.Date(2026, 3, 12, 16, 0, 0, 0, time.UTC)
	usageLog := &domain.UsageLog{
		ID:             uuid.New(),
		BookingID:      bookingID,
		CheckOutTime:   &checkedOut,
		ConditionAfter: condition,
		IssuesReported: "projector bulb burnt out",
	}
	mockService.On("CheckOut", c.Request.Context(), actor, bookingID, condition, "projector bulb burnt out").
		Return(usageLog, nil)

	handler.checkOut(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response usageLogResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotNil(t, response.CheckOutTime)
	assert.Equal(t, "projector bulb burnt out", response.IssuesReported)
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	c, w := testContext(t, "GET", "/bookings", nil, actor)

	bookings := []domain.Booking{
		{ID: uuid.New(), Status: domain.BookingStatusPending},
		{ID: uuid.New(), Status: domain.BookingStatusApproved},
	}
	mockService.On("ListBookings", c.Request.Context(), actor).Return(bookings, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 2)
}
