package api

import (
	"net/http"
	"time"

	"github.com/clubhub/campusbooking/internal/service/analytics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AnalyticsHandler struct {
	service analytics.AnalyticsUseCase
}

func NewAnalyticsHandler(service analytics.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) Register(router *gin.RouterGroup) {
	router.GET("/clubs/:id/engagement", h.clubEngagement)
	router.GET("/resources/:id/utilization", h.resourceUtilization)
}

func (h *AnalyticsHandler) clubEngagement(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid club id"})
		return
	}

	report, err := h.service.ClubEngagement(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// resourceUtilization reports usage since ?since (RFC 3339, defaults to 30
// days ago).
func (h *AnalyticsHandler) resourceUtilization(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	since := time.Now().Add(-30 * 24 * time.Hour)
	if raw := c.Query("since"); raw != "" {
		if since, err = time.Parse(time.RFC3339, raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since time"})
			return
		}
	}

	report, err := h.service.ResourceUtilization(c.Request.Context(), id, since)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
