package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vitalog/backend/internal/audit"
	"github.com/vitalog/backend/pkg/api"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

var reminderTypes = map[model.ReminderType]bool{
	model.ReminderTypeDrink:    true,
	model.ReminderTypeMeal:     true,
	model.ReminderTypeExercise: true,
	model.ReminderTypeSleep:    true,
}

// ReminderStore is the durable store of reminder plans
type ReminderStore interface {
	Create(ctx context.Context, plan *model.ReminderPlan) error
	GetByID(ctx context.Context, id string) (*model.ReminderPlan, error)
	GetByUserID(ctx context.Context, userID string) ([]model.ReminderPlan, error)
	Update(ctx context.Context, plan *model.ReminderPlan) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// ReminderService handles reminder plan business logic
type ReminderService struct {
	repo   ReminderStore
	audit  *audit.Logger
	logger *zap.Logger
}

// NewReminderService creates a new ReminderService
func NewReminderService(repo ReminderStore, auditLogger *audit.Logger, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		repo:   repo,
		audit:  auditLogger,
		logger: logger,
	}
}

// CreateReminder validates and stores a new reminder plan. New plans
// start active.
func (s *ReminderService) CreateReminder(ctx context.Context, req api.CreateReminderRequest) (*model.ReminderPlan, error) {
	if fields := validateReminder(req.Type, req.Time); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	plan := &model.ReminderPlan{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Title:     req.Title,
		Type:      model.ReminderType(req.Type),
		Time:      req.Time,
		Frequency: req.Frequency,
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, plan); err != nil {
		s.logger.Error("failed to create reminder",
			zap.Error(err),
			zap.String("user_id", req.UserID),
		)
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.LogCreate(ctx, req.UserID, audit.ResourceReminderPlan, plan.ID); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	s.logger.Info("reminder created",
		zap.String("reminder_id", plan.ID),
		zap.String("type", string(plan.Type)),
	)

	return plan, nil
}

// ListReminders retrieves all reminder plans of a user
func (s *ReminderService) ListReminders(ctx context.Context, userID string) ([]model.ReminderPlan, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	plans, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	return plans, nil
}

// UpdateReminder replaces a plan's title, type, time and frequency. The
// active flag is not touched here; ToggleReminder owns it.
func (s *ReminderService) UpdateReminder(ctx context.Context, id string, req api.UpdateReminderRequest) (*model.ReminderPlan, error) {
	if fields := validateReminder(req.Type, req.Time); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	plan.Title = req.Title
	plan.Type = model.ReminderType(req.Type)
	plan.Time = req.Time
	plan.Frequency = req.Frequency

	if err := s.repo.Update(ctx, plan); err != nil {
		s.logger.Error("failed to update reminder",
			zap.Error(err),
			zap.String("reminder_id", id),
		)
		return nil, err
	}

	if s.audit != nil {
		if err := s.audit.LogUpdate(ctx, plan.UserID, audit.ResourceReminderPlan, plan.ID); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	return plan, nil
}

// ToggleReminder flips only the active flag of a plan
func (s *ReminderService) ToggleReminder(ctx context.Context, id string, active bool) error {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		s.logger.Error("failed to toggle reminder",
			zap.Error(err),
			zap.String("reminder_id", id),
		)
		return err
	}

	if s.audit != nil {
		if err := s.audit.LogUpdate(ctx, plan.UserID, audit.ResourceReminderPlan, id); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	s.logger.Info("reminder toggled",
		zap.String("reminder_id", id),
		zap.Bool("is_active", active),
	)

	return nil
}

// DeleteReminder removes a reminder plan
func (s *ReminderService) DeleteReminder(ctx context.Context, id string) error {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete reminder",
			zap.Error(err),
			zap.String("reminder_id", id),
		)
		return err
	}

	if s.audit != nil {
		if err := s.audit.LogDelete(ctx, plan.UserID, audit.ResourceReminderPlan, id); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	return nil
}

// validateReminder checks the reminder type and HH:MM time of day
func validateReminder(reminderType, timeOfDay string) map[string]string {
	fields := make(map[string]string)

	if !reminderTypes[model.ReminderType(reminderType)] {
		fields["type"] = "Type must be one of drink, meal, exercise, sleep"
	}
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		fields["time"] = "Time must be in 24-hour HH:MM format"
	}

	return fields
}
