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

// ErrApplicationPending is returned when a user applies while an earlier
// application is still awaiting review.
var ErrApplicationPending = fmt.Errorf("a trainer application is already pending review")

// TrainerStore is the durable store of trainer applications
type TrainerStore interface {
	Create(ctx context.Context, app *model.TrainerApplication) error
	GetByUserID(ctx context.Context, userID string) ([]model.TrainerApplication, error)
	UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) error
}

// TrainerService handles trainer application business logic
type TrainerService struct {
	repo   TrainerStore
	audit  *audit.Logger
	logger *zap.Logger
}

// NewTrainerService creates a new TrainerService
func NewTrainerService(repo TrainerStore, auditLogger *audit.Logger, logger *zap.Logger) *TrainerService {
	return &TrainerService{
		repo:   repo,
		audit:  auditLogger,
		logger: logger,
	}
}

// Apply submits a new trainer application. A user can hold at most one
// pending application at a time.
func (s *TrainerService) Apply(ctx context.Context, req api.TrainerApplicationRequest) (*model.TrainerApplication, error) {
	if req.ExperienceYrs < 0 {
		return nil, &ValidationError{Fields: map[string]string{
			"experience_years": "Experience years cannot be negative",
		}}
	}

	existing, err := s.repo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing applications: %w", err)
	}
	for _, app := range existing {
		if app.Status == model.ApplicationStatusPending {
			return nil, ErrApplicationPending
		}
	}

	app := &model.TrainerApplication{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		FullName:       req.FullName,
		Qualifications: req.Qualifications,
		ExperienceYrs:  req.ExperienceYrs,
		Motivation:     req.Motivation,
		Status:         model.ApplicationStatusPending,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		s.logger.Error("failed to create trainer application",
			zap.Error(err),
			zap.String("user_id", req.UserID),
		)
		return nil, fmt.Errorf("failed to create trainer application: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.LogCreate(ctx, req.UserID, audit.ResourceTrainerApplication, app.ID); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	s.logger.Info("trainer application submitted",
		zap.String("application_id", app.ID),
		zap.String("user_id", req.UserID),
	)

	return app, nil
}

// ListByUser retrieves all applications of a user, newest first
func (s *TrainerService) ListByUser(ctx context.Context, userID string) ([]model.TrainerApplication, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	apps, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainer applications: %w", err)
	}

	return apps, nil
}

// Review approves or rejects a pending application
func (s *TrainerService) Review(ctx context.Context, reviewerID, applicationID string, approved bool) error {
	status := model.ApplicationStatusRejected
	if approved {
		status = model.ApplicationStatusApproved
	}

	if err := s.repo.UpdateStatus(ctx, applicationID, status); err != nil {
		s.logger.Error("failed to review trainer application",
			zap.Error(err),
			zap.String("application_id", applicationID),
		)
		return err
	}

	if s.audit != nil {
		if err := s.audit.LogUpdate(ctx, reviewerID, audit.ResourceTrainerApplication, applicationID); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	s.logger.Info("trainer application reviewed",
		zap.String("application_id", applicationID),
		zap.String("status", string(status)),
	)

	return nil
}
