package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalog/backend/internal/service"
	"github.com/vitalog/backend/pkg/api"
	"go.uber.org/zap"
)

// TrainerHandler implements the trainer application API endpoints
type TrainerHandler struct {
	service *service.TrainerService
	logger  *zap.Logger
}

// NewTrainerHandler creates a new TrainerHandler
func NewTrainerHandler(service *service.TrainerService, logger *zap.Logger) *TrainerHandler {
	return &TrainerHandler{
		service: service,
		logger:  logger,
	}
}

// Apply submits a trainer application
func (h *TrainerHandler) Apply(c *gin.Context) {
	var req api.TrainerApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		writeBindError(c, err)
		return
	}

	app, err := h.service.Apply(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err, "Failed to submit trainer application")
		return
	}

	c.JSON(http.StatusCreated, app)
}

// ListApplications lists all applications of a user
func (h *TrainerHandler) ListApplications(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	apps, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "Failed to list trainer applications")
		return
	}

	c.JSON(http.StatusOK, apps)
}

// Review approves or rejects a pending application
func (h *TrainerHandler) Review(c *gin.Context) {
	var req struct {
		ReviewerID string `json:"reviewer_id" binding:"required"`
		Approved   bool   `json:"approved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		writeBindError(c, err)
		return
	}

	if err := h.service.Review(c.Request.Context(), req.ReviewerID, c.Param("id"), req.Approved); err != nil {
		writeServiceError(c, err, "Failed to review trainer application")
		return
	}

	c.Status(http.StatusNoContent)
}
