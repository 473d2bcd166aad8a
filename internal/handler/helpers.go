package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vitalog/backend/internal/repository"
	"github.com/vitalog/backend/internal/service"
	"github.com/vitalog/backend/pkg/api"
	"github.com/vitalog/backend/pkg/model"
)

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// writeServiceError maps a service-layer error onto the common error
// payload. Validation failures carry the per-field messages; everything
// unrecognized becomes an opaque internal error.
func writeServiceError(c *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "One or more fields are invalid",
			Fields:  verr.Fields,
		})
	case errors.Is(err, service.ErrEmptyLog):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "EMPTY_LOG",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, api.ErrorResponse{
			Code:    "ALREADY_CHECKED_IN",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrApplicationPending):
		c.JSON(http.StatusConflict, api.ErrorResponse{
			Code:    "APPLICATION_PENDING",
			Message: err.Error(),
		})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Requested resource does not exist",
		})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: fallback,
			Details: stringPtr(err.Error()),
		})
	}
}

// writeBindError reports a malformed request body
func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{
		Code:    "VALIDATION_ERROR",
		Message: "Invalid request body",
		Details: stringPtr(err.Error()),
	})
}

// toAPIMessage converts a stored chat message to its wire form
func toAPIMessage(msg model.ChatMessage) api.ChatMessage {
	return api.ChatMessage{
		MessageID: msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
	}
}

// parseDateParam parses a YYYY-MM-DD query parameter
func parseDateParam(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
