package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

// PaymentRepository manages payment records
type PaymentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *pgxpool.Pool, logger *zap.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts a payment record
func (r *PaymentRepository) Save(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, user_id, subscription_id, amount, currency,
			gateway_payment_id, redirect_url, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.UserID,
		payment.SubscriptionID,
		payment.Amount,
		payment.Currency,
		payment.GatewayPaymentID,
		payment.RedirectURL,
		payment.Status,
	)

	if err != nil {
		r.logger.Error("failed to save payment",
			zap.Error(err),
			zap.String("user_id", payment.UserID),
		)
		return fmt.Errorf("failed to save payment: %w", err)
	}

	return nil
}

// GetByID retrieves a payment record
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	query := `
		SELECT id, user_id, subscription_id, amount, currency,
		       gateway_payment_id, redirect_url, status, created_at, updated_at
		FROM payments
		WHERE id = $1
	`

	var payment model.Payment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.SubscriptionID,
		&payment.Amount,
		&payment.Currency,
		&payment.GatewayPaymentID,
		&payment.RedirectURL,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get payment", zap.Error(err), zap.String("payment_id", id))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

// UpdateStatus moves a payment to a new lifecycle state
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		r.logger.Error("failed to update payment status",
			zap.Error(err),
			zap.String("payment_id", id),
		)
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
