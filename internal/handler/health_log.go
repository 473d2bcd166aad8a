package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vitalog/backend/internal/service"
	"github.com/vitalog/backend/internal/validate"
	"github.com/vitalog/backend/pkg/api"
	"go.uber.org/zap"
)

// HealthLogHandler implements the health log API endpoints
type HealthLogHandler struct {
	service *service.HealthLogService
	logger  *zap.Logger
}

// NewHealthLogHandler creates a new HealthLogHandler
func NewHealthLogHandler(service *service.HealthLogService, logger *zap.Logger) *HealthLogHandler {
	return &HealthLogHandler{
		service: service,
		logger:  logger,
	}
}

// CreateHealthLog adds a new health log entry
func (h *HealthLogHandler) CreateHealthLog(c *gin.Context) {
	var req api.CreateHealthLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		writeBindError(c, err)
		return
	}

	entry, err := h.service.CreateLog(c.Request.Context(), req.UserID, req.HealthLogInput)
	if err != nil {
		writeServiceError(c, err, "Failed to create health log")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ListHealthLogs lists all health log entries of a user, newest first
func (h *HealthLogHandler) ListHealthLogs(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	entries, err := h.service.ListLogs(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list health logs",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		writeServiceError(c, err, "Failed to list health logs")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetHealthLog retrieves a single health log entry
func (h *HealthLogHandler) GetHealthLog(c *gin.Context) {
	entry, err := h.service.GetLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "Failed to get health log")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// UpdateHealthLog replaces a health log entry in full
func (h *HealthLogHandler) UpdateHealthLog(c *gin.Context) {
	var req api.UpdateHealthLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		writeBindError(c, err)
		return
	}

	entry, err := h.service.UpdateLog(c.Request.Context(), c.Param("id"), req.HealthLogInput)
	if err != nil {
		writeServiceError(c, err, "Failed to update health log")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteHealthLog removes a health log entry
func (h *HealthLogHandler) DeleteHealthLog(c *gin.Context) {
	if err := h.service.DeleteLog(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err, "Failed to delete health log")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetStatistics aggregates a user's logs over a date range. The range
// defaults to the last 30 days.
func (h *HealthLogHandler) GetStatistics(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if raw := c.Query("start"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			writeBindError(c, fmt.Errorf("invalid start date: %w", err))
			return
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			writeBindError(c, fmt.Errorf("invalid end date: %w", err))
			return
		}
		// include the whole end day
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	stats, err := h.service.Statistics(c.Request.Context(), userID, start, end)
	if err != nil {
		writeServiceError(c, err, "Failed to compute statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportHealthLogs streams a user's health logs as an XLSX workbook
func (h *HealthLogHandler) ExportHealthLogs(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	data, err := h.service.ExportLogs(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to export health logs",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		writeServiceError(c, err, "Failed to export health logs")
		return
	}

	filename := fmt.Sprintf("health-logs-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GetHeartRateStatus labels a heart rate value as Low, Normal or High
func (h *HealthLogHandler) GetHeartRateStatus(c *gin.Context) {
	value := c.Query("value")
	if value == "" || validate.HeartRate(value) != "" {
		msg := validate.HeartRate(value)
		if msg == "" {
			msg = "Heart rate is required"
		}
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "One or more fields are invalid",
			Fields:  map[string]string{"value": msg},
		})
		return
	}

	parsed, _ := strconv.ParseFloat(value, 64)
	rate := int(parsed)
	c.JSON(http.StatusOK, api.HeartRateStatusResponse{
		HeartRate: rate,
		Status:    validate.HeartRateStatus(rate),
	})
}

// SyncProviderLogs imports new logs from the connected fitness provider
func (h *HealthLogHandler) SyncProviderLogs(c *gin.Context) {
	userID := c.Query("user_id")
	providerUserID := c.Query("provider_user_id")
	if userID == "" || providerUserID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id and provider_user_id query parameters are required",
		})
		return
	}

	since := time.Now().AddDate(0, 0, -7)
	if raw := c.Query("since"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			writeBindError(c, fmt.Errorf("invalid since date: %w", err))
			return
		}
		since = parsed
	}

	imported, skipped, err := h.service.ImportFromProvider(c.Request.Context(), userID, providerUserID, since)
	if err != nil {
		h.logger.Error("provider sync failed",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		writeServiceError(c, err, "Failed to sync provider logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"skipped":  skipped,
	})
}
