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

// ReminderRepository manages reminder plans
type ReminderRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewReminderRepository creates a new ReminderRepository
func NewReminderRepository(db *pgxpool.Pool, logger *zap.Logger) *ReminderRepository {
	return &ReminderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a reminder plan
func (r *ReminderRepository) Create(ctx context.Context, plan *model.ReminderPlan) error {
	query := `
		INSERT INTO reminder_plans (
			id, user_id, title, type, time, frequency, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

	_, err := r.db.Exec(ctx, query,
		plan.ID,
		plan.UserID,
		plan.Title,
		plan.Type,
		plan.Time,
		plan.Frequency,
		plan.IsActive,
	)

	if err != nil {
		r.logger.Error("failed to create reminder plan",
			zap.Error(err),
			zap.String("user_id", plan.UserID),
		)
		return fmt.Errorf("failed to create reminder plan: %w", err)
	}

	return nil
}

// GetByID retrieves a reminder plan
func (r *ReminderRepository) GetByID(ctx context.Context, id string) (*model.ReminderPlan, error) {
	query := `
		SELECT id, user_id, title, type, time, frequency, is_active, created_at, updated_at
		FROM reminder_plans
		WHERE id = $1
	`

	var plan model.ReminderPlan
	err := r.db.QueryRow(ctx, query, id).Scan(
		&plan.ID,
		&plan.UserID,
		&plan.Title,
		&plan.Type,
		&plan.Time,
		&plan.Frequency,
		&plan.IsActive,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get reminder plan", zap.Error(err), zap.String("plan_id", id))
		return nil, fmt.Errorf("failed to get reminder plan: %w", err)
	}

	return &plan, nil
}

// GetByUserID retrieves all reminder plans of a user
func (r *ReminderRepository) GetByUserID(ctx context.Context, userID string) ([]model.ReminderPlan, error) {
	query := `
		SELECT id, user_id, title, type, time, frequency, is_active, created_at, updated_at
		FROM reminder_plans
		WHERE user_id = $1
		ORDER BY time ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to get reminder plans", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get reminder plans: %w", err)
	}
	defer rows.Close()

	var plans []model.ReminderPlan
	for rows.Next() {
		var plan model.ReminderPlan
		err := rows.Scan(
			&plan.ID,
			&plan.UserID,
			&plan.Title,
			&plan.Type,
			&plan.Time,
			&plan.Frequency,
			&plan.IsActive,
			&plan.CreatedAt,
			&plan.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan reminder plan", zap.Error(err))
			continue
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating reminder plans", zap.Error(err))
		return nil, fmt.Errorf("error iterating reminder plans: %w", err)
	}

	return plans, nil
}

// Update replaces the mutable fields of a reminder plan except its active flag
func (r *ReminderRepository) Update(ctx context.Context, plan *model.ReminderPlan) error {
	query := `
		UPDATE reminder_plans
		SET title = $1, type = $2, time = $3, frequency = $4, updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.db.Exec(ctx, query,
		plan.Title,
		plan.Type,
		plan.Time,
		plan.Frequency,
		plan.ID,
	)

	if err != nil {
		r.logger.Error("failed to update reminder plan",
			zap.Error(err),
			zap.String("plan_id", plan.ID),
		)
		return fmt.Errorf("failed to update reminder plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetActive toggles only the active flag of a reminder plan
func (r *ReminderRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.Exec(ctx,
		`UPDATE reminder_plans SET is_active = $1, updated_at = NOW() WHERE id = $2`,
		active, id,
	)
	if err != nil {
		r.logger.Error("failed to toggle reminder plan",
			zap.Error(err),
			zap.String("plan_id", id),
		)
		return fmt.Errorf("failed to toggle reminder plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a reminder plan
func (r *ReminderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reminder_plans WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete reminder plan", zap.Error(err), zap.String("plan_id", id))
		return fmt.Errorf("failed to delete reminder plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
