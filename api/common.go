package api

import (
	"errors"
	"net/http"

	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorFrom reads the caller identity the gateway injects. Requests without
// a valid user id are rejected before any handler logic runs.
func actorFrom(c *gin.Context) (domain.Actor, bool) {
	id, err := uuid.Parse(c.GetHeader("X-User-ID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-User-ID header"})
		return domain.Actor{}, false
	}
	role := domain.Role(c.GetHeader("X-User-Role"))
	if role == "" {
		role = domain.RoleParticipant
	}
	return domain.Actor{ID: id, Role: role}, true
}

func writeError(c *gin.Context, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "code": string(ve.Code)})
		return
	}

	switch {
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrResourceNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrClubNotFound),
		errors.Is(err, domain.ErrMaintenanceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflictAtApproval):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case domain.IsStateError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
