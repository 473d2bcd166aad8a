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

// RatingRepository manages subscription ratings. A unique constraint on
// (user_id, subscription_id) backs the one-rating-per-pair rule.
type RatingRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewRatingRepository creates a new RatingRepository
func NewRatingRepository(db *pgxpool.Pool, logger *zap.Logger) *RatingRepository {
	return &RatingRepository{
		db:     db,
		logger: logger,
	}
}

// FindByUserAndSubscription returns the user's rating of a subscription,
// or nil when none exists.
func (r *RatingRepository) FindByUserAndSubscription(ctx context.Context, userID, subscriptionID string) (*model.SubscriptionRating, error) {
	query := `
		SELECT id, subscription_id, user_id, trainer_id, rating, feedback_text, created_at, updated_at
		FROM subscription_ratings
		WHERE user_id = $1 AND subscription_id = $2
	`

	var rating model.SubscriptionRating
	err := r.db.QueryRow(ctx, query, userID, subscriptionID).Scan(
		&rating.ID,
		&rating.SubscriptionID,
		&rating.UserID,
		&rating.TrainerID,
		&rating.Rating,
		&rating.FeedbackText,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to look up rating",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("subscription_id", subscriptionID),
		)
		return nil, fmt.Errorf("failed to look up rating: %w", err)
	}

	return &rating, nil
}

// Create inserts a new subscription rating
func (r *RatingRepository) Create(ctx context.Context, rating *model.SubscriptionRating) error {
	query := `
		INSERT INTO subscription_ratings (
			id, subscription_id, user_id, trainer_id, rating, feedback_text,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.db.Exec(ctx, query,
		rating.ID,
		rating.SubscriptionID,
		rating.UserID,
		rating.TrainerID,
		rating.Rating,
		rating.FeedbackText,
	)

	if err != nil {
		r.logger.Error("failed to create rating",
			zap.Error(err),
			zap.String("user_id", rating.UserID),
			zap.String("subscription_id", rating.SubscriptionID),
		)
		return fmt.Errorf("failed to create rating: %w", err)
	}

	return nil
}

// Update replaces the rating value, feedback and trainer of an existing rating
func (r *RatingRepository) Update(ctx context.Context, rating *model.SubscriptionRating) error {
	query := `
		UPDATE subscription_ratings
		SET rating = $1, feedback_text = $2, trainer_id = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.db.Exec(ctx, query,
		rating.Rating,
		rating.FeedbackText,
		rating.TrainerID,
		rating.ID,
	)

	if err != nil {
		r.logger.Error("failed to update rating",
			zap.Error(err),
			zap.String("rating_id", rating.ID),
		)
		return fmt.Errorf("failed to update rating: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
