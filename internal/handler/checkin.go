package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vitalog/backend/internal/service"
	"github.com/vitalog/backend/pkg/api"
	"go.uber.org/zap"
)

// CheckInHandler implements the daily check-in API endpoints
type CheckInHandler struct {
	service *service.CheckInService
	logger  *zap.Logger
}

// NewCheckInHandler creates a new CheckInHandler
func NewCheckInHandler(service *service.CheckInService, logger *zap.Logger) *CheckInHandler {
	return &CheckInHandler{
		service: service,
		logger:  logger,
	}
}

// GetStatus reports whether the user has already checked in today
func (h *CheckInHandler) GetStatus(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	checkedIn, last, err := h.service.Status(c.Request.Context(), userID, time.Now())
	if err != nil {
		writeServiceError(c, err, "Failed to read check-in status")
		return
	}

	c.JSON(http.StatusOK, api.CheckInStatusResponse{
		CheckedInToday: checkedIn,
		LastCheckIn:    last,
	})
}

// PostCheckIn records today's check-in. A repeat on the same calendar day
// is rejected with a conflict.
func (h *CheckInHandler) PostCheckIn(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	if err := h.service.CheckIn(c.Request.Context(), userID, time.Now()); err != nil {
		writeServiceError(c, err, "Failed to record check-in")
		return
	}

	h.logger.Info("check-in recorded", zap.String("user_id", userID))
	c.Status(http.StatusNoContent)
}
