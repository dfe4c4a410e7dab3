package api

import (
	"net/http"
	"time"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/clubhub/campusbooking/internal/service/resources"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ResourceHandler struct {
	service resources.ResourceUseCase
}

type createResourceRequest struct {
	Name                    string      `json:"name" binding:"required"`
	Description             string      `json:"description"`
	Type                    string      `json:"resource_type"`
	Category                string      `json:"category"`
	Location                string      `json:"location"`
	Capacity                int         `json:"capacity"`
	BookingType             string      `json:"booking_type"`
	AllowedClubIDs          []uuid.UUID `json:"allowed_club_ids"`
	RequiresTraining        bool        `json:"requires_training"`
	MaxBookingDurationHours int         `json:"max_booking_duration_hours" binding:"required"`
	MinAdvanceBookingHours  int         `json:"min_advance_booking_hours"`
	MaxAdvanceBookingHours  int         `json:"max_advance_booking_hours" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type scheduleMaintenanceRequest struct {
	Type           string    `json:"maintenance_type"`
	Description    string    `json:"description"`
	ScheduledStart time.Time `json:"scheduled_start" binding:"required"`
	ScheduledEnd   time.Time `json:"scheduled_end" binding:"required"`
}

type resourceResponse struct {
	ID                      uuid.UUID   `json:"id"`
	Name                    string      `json:"name"`
	Description             string      `json:"description"`
	Type                    string      `json:"resource_type"`
	Category                string      `json:"category"`
	Location                string      `json:"location"`
	Capacity                int         `json:"capacity"`
	Status                  string      `json:"status"`
	BookingType             string      `json:"booking_type"`
	AllowedClubIDs          []uuid.UUID `json:"allowed_club_ids,omitempty"`
	RequiresTraining        bool        `json:"requires_training"`
	MaxBookingDurationHours int         `json:"max_booking_duration_hours"`
	MinAdvanceBookingHours  int         `json:"min_advance_booking_hours"`
	MaxAdvanceBookingHours  int         `json:"max_advance_booking_hours"`
}

type maintenanceResponse struct {
	ID             uuid.UUID `json:"id"`
	ResourceID     uuid.UUID `json:"resource_id"`
	Type           string    `json:"maintenance_type"`
	Description    string    `json:"description"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
	Status         string    `json:"status"`
}

type availabilityResponse struct {
	ResourceID   uuid.UUID             `json:"resource_id"`
	RangeStart   time.Time             `json:"range_start"`
	RangeEnd     time.Time             `json:"range_end"`
	Available    bool                  `json:"available"`
	Bookings     []bookingResponse     `json:"bookings"`
	Maintenances []maintenanceResponse `json:"maintenances"`
}

func NewResourceHandler(service resources.ResourceUseCase) *ResourceHandler {
	return &ResourceHandler{service: service}
}

func (h *ResourceHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/availability", h.availability)
	router.PUT("/:id/status", h.updateStatus)
	router.POST("/:id/maintenance", h.scheduleMaintenance)
	router.GET("/:id/maintenance", h.listMaintenance)
}

// RegisterMaintenance wires the window-level routes; they live under their
// own prefix because windows are addressed by window id, not resource id.
func (h *ResourceHandler) RegisterMaintenance(router *gin.RouterGroup) {
	router.PUT("/:id/status", h.updateMaintenanceStatus)
}

func (h *ResourceHandler) create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), actor, resources.CreateResourceInput{
		Name:                    req.Name,
		Description:             req.Description,
		Type:                    req.Type,
		Category:                req.Category,
		Location:                req.Location,
		Capacity:                req.Capacity,
		BookingType:             req.BookingType,
		AllowedClubIDs:          req.AllowedClubIDs,
		RequiresTraining:        req.RequiresTraining,
		MaxBookingDurationHours: req.MaxBookingDurationHours,
		MinAdvanceBookingHours:  req.MinAdvanceBookingHours,
		MaxAdvanceBookingHours:  req.MaxAdvanceBookingHours,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResourceResponse(created))
}

func (h *ResourceHandler) list(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	listed, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]resourceResponse, 0, len(listed))
	for i := range listed {
		out = append(out, toResourceResponse(&listed[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ResourceHandler) get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	resource, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResourceResponse(resource))
}

// availability reports what blocks the resource between ?start and ?end
// (RFC 3339). The range defaults to the next 7 days.
func (h *ResourceHandler) availability(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	start := time.Now()
	end := start.Add(7 * 24 * time.Hour)
	if raw := c.Query("start"); raw != "" {
		if start, err = time.Parse(time.RFC3339, raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start time"})
			return
		}
	}
	if raw := c.Query("end"); raw != "" {
		if end, err = time.Parse(time.RFC3339, raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end time"})
			return
		}
	}
	if !start.Before(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be after start"})
		return
	}

	availability, err := h.service.Availability(c.Request.Context(), id, start, end)
	if err != nil {
		writeError(c, err)
		return
	}

	maintenances := make([]maintenanceResponse, 0, len(availability.Maintenances))
	for i := range availability.Maintenances {
		maintenances = append(maintenances, toMaintenanceResponse(&availability.Maintenances[i]))
	}
	c.JSON(http.StatusOK, availabilityResponse{
		ResourceID:   id,
		RangeStart:   availability.RangeStart,
		RangeEnd:     availability.RangeEnd,
		Available:    len(availability.Bookings) == 0 && len(availability.Maintenances) == 0,
		Bookings:     toBookingResponses(availability.Bookings),
		Maintenances: maintenances,
	})
}

func (h *ResourceHandler) scheduleMaintenance(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}
	var req scheduleMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	window, err := h.service.ScheduleMaintenance(c.Request.Context(), actor, resources.MaintenanceInput{
		ResourceID:     id,
		Type:           req.Type,
		Description:    req.Description,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMaintenanceResponse(window))
}

func (h *ResourceHandler) updateStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource, err := h.service.UpdateStatus(c.Request.Context(), actor, id, domain.ResourceStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResourceResponse(resource))
}

func (h *ResourceHandler) updateMaintenanceStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maintenance window id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	window, err := h.service.UpdateMaintenanceStatus(c.Request.Context(), actor, id, domain.MaintenanceStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMaintenanceResponse(window))
}

func (h *ResourceHandler) listMaintenance(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	windows, err := h.service.MaintenanceWindows(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]maintenanceResponse, 0, len(windows))
	for i := range windows {
		out = append(out, toMaintenanceResponse(&windows[i]))
	}
	c.JSON(http.StatusOK, out)
}

func toResourceResponse(r *domain.Resource) resourceResponse {
	return resourceResponse{
		ID:                      r.ID,
		Name:                    r.Name,
		Description:             r.Description,
		Type:                    string(r.Type),
		Category:                r.Category,
		Location:                r.Location,
		Capacity:                r.Capacity,
		Status:                  string(r.Status),
		BookingType:             string(r.BookingType),
		AllowedClubIDs:          r.AllowedClubIDs,
		RequiresTraining:        r.RequiresTraining,
		MaxBookingDurationHours: r.MaxBookingDurationHours,
		MinAdvanceBookingHours:  r.MinAdvanceBookingHours,
		MaxAdvanceBookingHours:  r.MaxAdvanceBookingHours,
	}
}

func toMaintenanceResponse(m *domain.MaintenanceWindow) maintenanceResponse {
	return maintenanceResponse{
		ID:             m.ID,
		ResourceID:     m.ResourceID,
		Type:           string(m.Type),
		Description:    m.Description,
		ScheduledStart: m.ScheduledStart,
		ScheduledEnd:   m.ScheduledEnd,
		Status:         string(m.Status),
	}
}
