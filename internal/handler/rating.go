package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalog/backend/internal/service"
	"github.com/vitalog/backend/pkg/api"
	"go.uber.org/zap"
)

// RatingHandler implements the subscription rating API endpoints
type RatingHandler struct {
	service *service.RatingService
	logger  *zap.Logger
}

// NewRatingHandler creates a new RatingHandler
func NewRatingHandler(service *service.RatingService, logger *zap.Logger) *RatingHandler {
	return &RatingHandler{
		service: service,
		logger:  logger,
	}
}

// SubmitRating creates or overwrites the user's rating of a subscription.
// The client never decides which: the server resolves it from prior
// existence.
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	var req api.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		writeBindError(c, err)
		return
	}

	rating, created, err := h.service.SubmitRating(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("failed to submit rating",
			zap.Error(err),
			zap.String("user_id", req.UserID),
			zap.String("subscription_id", req.SubscriptionID),
		)
		writeServiceError(c, err, "Failed to submit rating")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, api.SubmitRatingResponse{
		RatingID: rating.ID,
		Created:  created,
	})
}
