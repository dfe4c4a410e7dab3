package api

import (
	"net/http"
	"time"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/clubhub/campusbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	ResourceID uuid.UUID  `json:"resource_id" binding:"required"`
	Purpose    string     `json:"purpose"`
	StartTime  time.Time  `json:"start_time" binding:"required"`
	EndTime    time.Time  `json:"end_time" binding:"required"`
	ClubID     *uuid.UUID `json:"club_id"`
	EventID    *uuid.UUID `json:"event_id"`
}

type rejectBookingRequest struct {
	Reason string `json:"reason"`
}

type checkInRequest struct {
	ConditionBefore map[string]string `json:"condition_before"`
}

type checkOutRequest struct {
	ConditionAfter map[string]string `json:"condition_after"`
	IssuesReported string            `json:"issues_reported"`
}

type bookingResponse struct {
	ID              uuid.UUID  `json:"id"`
	ResourceID      uuid.UUID  `json:"resource_id"`
	RequesterID     uuid.UUID  `json:"requester_id"`
	Purpose         string     `json:"purpose"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	Status          string     `json:"status"`
	ClubID          *uuid.UUID `json:"club_id,omitempty"`
	EventID         *uuid.UUID `json:"event_id,omitempty"`
	ApprovedBy      *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ActualStartTime *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time `json:"actual_end_time,omitempty"`
}

type usageLogResponse struct {
	ID              uuid.UUID         `json:"id"`
	BookingID       uuid.UUID         `json:"booking_id"`
	CheckInTime     time.Time         `json:"check_in_time"`
	CheckOutTime    *time.Time        `json:"check_out_time,omitempty"`
	ConditionBefore map[string]string `json:"condition_before,omitempty"`
	ConditionAfter  map[string]string `json:"condition_after,omitempty"`
	IssuesReported  string            `json:"issues_reported,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/upcoming", h.upcoming)
	router.GET("/current", h.current)
	router.POST("/:id/approve", h.approve)
	router.POST("/:id/reject", h.reject)
	router.POST("/:id/cancel", h.cancel)
	router.POST("/:id/check-in", h.checkIn)
	router.POST("/:id/check-out", h.checkOut)
	router.GET("/:id/usage-log", h.usageLog)
}

func (h *BookingHandler) create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), actor, booking.CreateBookingInput{
		ResourceID: req.ResourceID,
		Purpose:    req.Purpose,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ClubID:     req.ClubID,
		EventID:    req.EventID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookings, err := h.service.ListBookings(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) upcoming(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookings, err := h.service.ListUpcoming(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) current(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookings, err := h.service.ListCurrent(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) approve(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	updated, err := h.service.ApproveBooking(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) reject(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	var req rejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.RejectBooking(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	updated, err := h.service.CancelBooking(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) checkIn(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	usageLog, err := h.service.CheckIn(c.Request.Context(), actor, id, req.ConditionBefore)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUsageLogResponse(usageLog))
}

func (h *BookingHandler) checkOut(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	var req checkOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	usageLog, err := h.service.CheckOut(c.Request.Context(), actor, id, req.ConditionAfter, req.IssuesReported)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUsageLogResponse(usageLog))
}

func (h *BookingHandler) usageLog(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	usageLog, err := h.service.OpenUsageLog(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUsageLogResponse(usageLog))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		ResourceID:      b.ResourceID,
		RequesterID:     b.RequesterID,
		Purpose:         b.Purpose,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Status:          string(b.Status),
		ClubID:          b.ClubID,
		EventID:         b.EventID,
		ApprovedBy:      b.ApprovedBy,
		ApprovedAt:      b.ApprovedAt,
		RejectionReason: b.RejectionReason,
		ActualStartTime: b.ActualStartTime,
		ActualEndTime:   b.ActualEndTime,
	}
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}

func toUsageLogResponse(l *domain.UsageLog) usageLogResponse {
	return usageLogResponse{
		ID:              l.ID,
		BookingID:       l.BookingID,
		CheckInTime:     l.CheckInTime,
		CheckOutTime:    l.CheckOutTime,
		ConditionBefore: l.ConditionBefore,
		ConditionAfter:  l.ConditionAfter,
		IssuesReported:  l.IssuesReported,
	}
}
