package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalog/backend/internal/service"
	"github.com/vitalog/backend/pkg/api"
	"go.uber.org/zap"
)

// ReminderHandler implements the reminder plan API endpoints
type ReminderHandler struct {
	service *service.ReminderService
	logger  *zap.Logger
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(service *service.ReminderService, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		service: service,
		logger:  logger,
	}
}

// CreateReminder adds a new reminder plan
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req api.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		writeBindError(c, err)
		return
	}

	plan, err := h.service.CreateReminder(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err, "Failed to create reminder")
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// ListReminders lists all reminder plans of a user
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	plans, err := h.service.ListReminders(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "Failed to list reminders")
		return
	}

	c.JSON(http.StatusOK, plans)
}

// UpdateReminder replaces a plan's title, type, time and frequency
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	var req api.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		writeBindError(c, err)
		return
	}

	plan, err := h.service.UpdateReminder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err, "Failed to update reminder")
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ToggleReminder flips only the active flag of a plan
func (h *ReminderHandler) ToggleReminder(c *gin.Context) {
	var req api.ToggleReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		writeBindError(c, err)
		return
	}

	if err := h.service.ToggleReminder(c.Request.Context(), c.Param("id"), req.IsActive); err != nil {
		writeServiceError(c, err, "Failed to toggle reminder")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteReminder removes a reminder plan
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	if err := h.service.DeleteReminder(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err, "Failed to delete reminder")
		return
	}

	c.Status(http.StatusNoContent)
}
