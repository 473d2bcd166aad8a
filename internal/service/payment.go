package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vitalog/backend/internal/audit"
	"github.com/vitalog/backend/internal/gateway"
	"github.com/vitalog/backend/pkg/api"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

// PaymentGateway initiates a payment at the external provider
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req gateway.InitiationRequest) (*gateway.InitiationResult, error)
}

// PaymentStore is the durable store of payments
type PaymentStore interface {
	Save(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error
}

// PaymentService handles subscription payment business logic
type PaymentService struct {
	repo    PaymentStore
	gateway PaymentGateway
	audit   *audit.Logger
	logger  *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repo PaymentStore, gw PaymentGateway, auditLogger *audit.Logger, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		repo:    repo,
		gateway: gw,
		audit:   auditLogger,
		logger:  logger,
	}
}

// Initiate starts a payment at the gateway and records it. The caller
// receives the redirect target to complete the payment at.
func (s *PaymentService) Initiate(ctx context.Context, req api.InitiatePaymentRequest) (*model.Payment, error) {
	if req.Amount <= 0 {
		return nil, &ValidationError{Fields: map[string]string{
			"amount": "Amount must be greater than zero",
		}}
	}
	if len(req.Currency) != 3 {
		return nil, &ValidationError{Fields: map[string]string{
			"currency": "Currency must be a 3-letter ISO code",
		}}
	}

	result, err := s.gateway.InitiatePayment(ctx, gateway.InitiationRequest{
		SubscriptionID: req.SubscriptionID,
		UserID:         req.UserID,
		Amount:         req.Amount,
		Currency:       req.Currency,
	})
	if err != nil {
		s.logger.Error("gateway payment initiation failed",
			zap.Error(err),
			zap.String("user_id", req.UserID),
			zap.String("subscription_id", req.SubscriptionID),
		)
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}

	payment := &model.Payment{
		ID:               uuid.New().String(),
		UserID:           req.UserID,
		SubscriptionID:   req.SubscriptionID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		GatewayPaymentID: result.PaymentID,
		Status:           mapGatewayStatus(result.Status),
	}
	if result.RedirectURL != "" {
		url := result.RedirectURL
		payment.RedirectURL = &url
	}

	if err := s.repo.Save(ctx, payment); err != nil {
		s.logger.Error("failed to save payment",
			zap.Error(err),
			zap.String("gateway_payment_id", result.PaymentID),
		)
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.LogCreate(ctx, req.UserID, audit.ResourcePayment, payment.ID); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	s.logger.Info("payment initiated",
		zap.String("payment_id", payment.ID),
		zap.String("gateway_payment_id", payment.GatewayPaymentID),
		zap.String("status", string(payment.Status)),
	)

	return payment, nil
}

// GetPayment retrieves a payment record
func (s *PaymentService) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// mapGatewayStatus maps a gateway status word onto the internal payment
// lifecycle. Unknown statuses are treated as pending, not failed.
func mapGatewayStatus(status string) model.PaymentStatus {
	switch status {
	case "completed", "succeeded", "paid":
		return model.PaymentStatusCompleted
	case "failed", "declined", "cancelled":
		return model.PaymentStatusFailed
	default:
		return model.PaymentStatusPending
	}
}
