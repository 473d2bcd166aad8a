package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vitalog/backend/internal/audit"
	"github.com/vitalog/backend/pkg/api"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

// RatingStore is the durable store of subscription ratings
type RatingStore interface {
	FindByUserAndSubscription(ctx context.Context, userID, subscriptionID string) (*model.SubscriptionRating, error)
	Create(ctx context.Context, rating *model.SubscriptionRating) error
	Update(ctx context.Context, rating *model.SubscriptionRating) error
}

// RatingService handles subscription rating business logic
type RatingService struct {
	repo   RatingStore
	audit  *audit.Logger
	logger *zap.Logger
}

// NewRatingService creates a new RatingService
func NewRatingService(repo RatingStore, auditLogger *audit.Logger, logger *zap.Logger) *RatingService {
	return &RatingService{
		repo:   repo,
		audit:  auditLogger,
		logger: logger,
	}
}

// SubmitRating stores a rating for a subscription. Whether it creates a
// new rating or overwrites the user's previous one is decided here, from
// the prior existence of a rating for the same (user, subscription)
// pair, never by the caller.
func (s *RatingService) SubmitRating(ctx context.Context, req api.SubmitRatingRequest) (*model.SubscriptionRating, bool, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, false, &ValidationError{Fields: map[string]string{
			"rating": "Rating must be between 1 and 5",
		}}
	}

	existing, err := s.repo.FindByUserAndSubscription(ctx, req.UserID, req.SubscriptionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up existing rating: %w", err)
	}

	if existing == nil {
		rating := &model.SubscriptionRating{
			ID:             uuid.New().String(),
			SubscriptionID: req.SubscriptionID,
			UserID:         req.UserID,
			TrainerID:      req.TrainerID,
			Rating:         req.Rating,
			FeedbackText:   req.FeedbackText,
		}

		if err := s.repo.Create(ctx, rating); err != nil {
			s.logger.Error("failed to create rating",
				zap.Error(err),
				zap.String("user_id", req.UserID),
				zap.String("subscription_id", req.SubscriptionID),
			)
			return nil, false, fmt.Errorf("failed to create rating: %w", err)
		}

		if s.audit != nil {
			if err := s.audit.LogCreate(ctx, req.UserID, audit.ResourceSubscriptionRating, rating.ID); err != nil {
				s.logger.Warn("audit write failed", zap.Error(err))
			}
		}

		s.logger.Info("rating created",
			zap.String("rating_id", rating.ID),
			zap.String("subscription_id", req.SubscriptionID),
			zap.Int("rating", req.Rating),
		)

		return rating, true, nil
	}

	existing.Rating = req.Rating
	existing.FeedbackText = req.FeedbackText
	existing.TrainerID = req.TrainerID

	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error("failed to update rating",
			zap.Error(err),
			zap.String("rating_id", existing.ID),
		)
		return nil, false, fmt.Errorf("failed to update rating: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.LogUpdate(ctx, req.UserID, audit.ResourceSubscriptionRating, existing.ID); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	s.logger.Info("rating updated",
		zap.String("rating_id", existing.ID),
		zap.String("subscription_id", req.SubscriptionID),
		zap.Int("rating", req.Rating),
	)

	return existing, false, nil
}
