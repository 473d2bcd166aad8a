package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalog/backend/internal/service"
	"github.com/vitalog/backend/pkg/api"
	"go.uber.org/zap"
)

// PaymentHandler implements the subscription payment API endpoints
type PaymentHandler struct {
	service *service.PaymentService
	logger  *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger,
	}
}

// InitiatePayment starts a subscription payment at the gateway and
// returns the redirect target to complete it at.
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req api.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		writeBindError(c, err)
		return
	}

	payment, err := h.service.Initiate(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("failed to initiate payment",
			zap.Error(err),
			zap.String("user_id", req.UserID),
			zap.String("subscription_id", req.SubscriptionID),
		)
		writeServiceError(c, err, "Failed to initiate payment")
		return
	}

	c.JSON(http.StatusCreated, api.InitiatePaymentResponse{
		PaymentID:   payment.ID,
		Status:      string(payment.Status),
		RedirectURL: payment.RedirectURL,
	})
}

// GetPayment retrieves a payment record
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.service.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "Failed to get payment")
		return
	}

	c.JSON(http.StatusOK, payment)
}
