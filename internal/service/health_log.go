package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vitalog/backend/internal/audit"
	"github.com/vitalog/backend/internal/provider"
	"github.com/vitalog/backend/internal/validate"
	"github.com/vitalog/backend/pkg/api"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

// ErrEmptyLog is returned when a submission carries no metric at all
var ErrEmptyLog = errors.New("at least one health metric must be provided")

// ValidationError carries per-field validation messages
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

const (
	sourceManual   = "manual"
	sourceProvider = "provider"
)

// HealthLogStore is the durable store of health log entries
type HealthLogStore interface {
	Save(ctx context.Context, entry *model.HealthLogEntry) error
	GetByID(ctx context.Context, id string) (*model.HealthLogEntry, error)
	GetByUserID(ctx context.Context, userID string) ([]model.HealthLogEntry, error)
	Update(ctx context.Context, entry *model.HealthLogEntry) error
	Delete(ctx context.Context, id string) error
	ExternalLogExists(ctx context.Context, sourceDataID string) (bool, error)
	Stats(ctx context.Context, userID string, start, end time.Time) (*model.HealthLogStats, error)
}

// ProviderAPI fetches externally recorded health logs
type ProviderAPI interface {
	FetchLogs(ctx context.Context, providerUserID string, since time.Time) ([]provider.LogEntry, error)
}

// HealthLogService handles health log business logic
type HealthLogService struct {
	repo     HealthLogStore
	provider ProviderAPI
	audit    *audit.Logger
	logger   *zap.Logger
}

// NewHealthLogService creates a new HealthLogService
func NewHealthLogService(repo HealthLogStore, providerAPI ProviderAPI, auditLogger *audit.Logger, logger *zap.Logger) *HealthLogService {
	return &HealthLogService{
		repo:     repo,
		provider: providerAPI,
		audit:    auditLogger,
		logger:   logger,
	}
}

// CreateLog validates and stores a new health log entry. An entry where
// every metric is empty is rejected before any store access.
func (s *HealthLogService) CreateLog(ctx context.Context, userID string, in api.HealthLogInput) (*model.HealthLogEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	if allMetricsEmpty(in) {
		return nil, ErrEmptyLog
	}

	if fields := validateInput(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	entry := toEntry(in)
	entry.ID = uuid.New().String()
	entry.UserID = userID
	entry.Source = sourceManual

	if err := s.repo.Save(ctx, entry); err != nil {
		s.logger.Error("failed to create health log",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to create health log: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.LogCreate(ctx, userID, audit.ResourceHealthLog, entry.ID); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	s.logger.Info("health log created",
		zap.String("log_id", entry.ID),
		zap.String("user_id", userID),
	)

	return entry, nil
}

// ListLogs retrieves all health log entries of a user, newest first
func (s *HealthLogService) ListLogs(ctx context.Context, userID string) ([]model.HealthLogEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	entries, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list health logs: %w", err)
	}

	return entries, nil
}

// GetLog retrieves a single health log entry
func (s *HealthLogService) GetLog(ctx context.Context, id string) (*model.HealthLogEntry, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateLog replaces a health log entry in full. The edit form re-sends
// the whole entry, so validation runs on all fields again.
func (s *HealthLogService) UpdateLog(ctx context.Context, id string, in api.HealthLogInput) (*model.HealthLogEntry, error) {
	if allMetricsEmpty(in) {
		return nil, ErrEmptyLog
	}

	if fields := validateInput(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := toEntry(in)
	entry.ID = existing.ID
	entry.UserID = existing.UserID
	entry.Source = existing.Source
	entry.SourceDataID = existing.SourceDataID
	if in.RecordedAt == nil {
		entry.RecordedAt = existing.RecordedAt
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("failed to update health log",
			zap.Error(err),
			zap.String("log_id", id),
		)
		return nil, err
	}

	if s.audit != nil {
		if err := s.audit.LogUpdate(ctx, entry.UserID, audit.ResourceHealthLog, entry.ID); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	return entry, nil
}

// DeleteLog removes a health log entry
func (s *HealthLogService) DeleteLog(ctx context.Context, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete health log",
			zap.Error(err),
			zap.String("log_id", id),
		)
		return err
	}

	if s.audit != nil {
		if err := s.audit.LogDelete(ctx, existing.UserID, audit.ResourceHealthLog, id); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	return nil
}

// Statistics aggregates a user's health logs over a date range
func (s *HealthLogService) Statistics(ctx context.Context, userID string, start, end time.Time) (*model.HealthLogStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if start.After(end) {
		return nil, fmt.Errorf("start date must be before or equal to end date")
	}

	return s.repo.Stats(ctx, userID, start, end)
}

// ImportFromProvider pulls logs recorded at the fitness provider and
// stores the ones not yet imported, deduplicating by the provider-side
// id. Entries that fail validation are skipped, not fatal.
func (s *HealthLogService) ImportFromProvider(ctx context.Context, userID, providerUserID string, since time.Time) (imported, skipped int, err error) {
	if userID == "" {
		return 0, 0, fmt.Errorf("user ID is required")
	}
	if s.provider == nil {
		return 0, 0, fmt.Errorf("no fitness provider configured")
	}

	remote, err := s.provider.FetchLogs(ctx, providerUserID, since)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch provider logs: %w", err)
	}

	for _, rl := range remote {
		in := api.HealthLogInput{
			BloodPressure:    rl.BloodPressure,
			HeartRate:        rl.HeartRate,
			BloodOxygenLevel: rl.BloodOxygen,
			SleepDuration:    rl.SleepDuration,
		}
		if !rl.RecordedAt.IsZero() {
			recordedAt := rl.RecordedAt
			in.RecordedAt = &recordedAt
		}

		if allMetricsEmpty(in) {
			skipped++
			continue
		}
		if fields := validateInput(in); len(fields) > 0 {
			s.logger.Warn("skipping invalid provider log",
				zap.String("source_data_id", rl.SourceID),
				zap.Any("fields", fields),
			)
			skipped++
			continue
		}

		exists, err := s.repo.ExternalLogExists(ctx, rl.SourceID)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check provider log existence: %w", err)
		}
		if exists {
			skipped++
			continue
		}

		entry := toEntry(in)
		entry.ID = uuid.New().String()
		entry.UserID = userID
		entry.Source = sourceProvider
		sourceID := rl.SourceID
		entry.SourceDataID = &sourceID

		if err := s.repo.Save(ctx, entry); err != nil {
			return imported, skipped, fmt.Errorf("failed to save provider log: %w", err)
		}
		imported++
	}

	s.logger.Info("provider logs imported",
		zap.String("user_id", userID),
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
		zap.Int("total", len(remote)),
	)

	return imported, skipped, nil
}

// validateInput runs every field validator and collects the failures
func validateInput(in api.HealthLogInput) map[string]string {
	fields := make(map[string]string)

	checks := map[string]string{
		"blood_pressure":     validate.BloodPressure(in.BloodPressure),
		"heart_rate":         validate.HeartRate(in.HeartRate),
		"blood_oxygen_level": validate.BloodOxygen(in.BloodOxygenLevel),
		"sleep_duration":     validate.SleepDuration(in.SleepDuration),
		"sleep_quality":      validate.SleepQuality(in.SleepQuality),
		"stress_level":       validate.StressLevel(in.StressLevel),
		"mood":               validate.Mood(in.Mood),
	}

	for name, msg := range checks {
		if msg != "" {
			fields[name] = msg
		}
	}

	return fields
}

// allMetricsEmpty reports whether no metric field was filled in
func allMetricsEmpty(in api.HealthLogInput) bool {
	return in.BloodPressure == "" &&
		in.HeartRate == "" &&
		in.BloodOxygenLevel == "" &&
		in.SleepDuration == "" &&
		in.SleepQuality == "" &&
		in.StressLevel == "" &&
		in.Mood == ""
}

// toEntry converts validated form values into a typed entry. Inputs must
// have passed validateInput; parse failures cannot happen here.
func toEntry(in api.HealthLogInput) *model.HealthLogEntry {
	entry := &model.HealthLogEntry{RecordedAt: time.Now()}
	if in.RecordedAt != nil {
		entry.RecordedAt = *in.RecordedAt
	}

	if in.BloodPressure != "" {
		bp := in.BloodPressure
		entry.BloodPressure = &bp
	}
	if in.HeartRate != "" {
		v, _ := strconv.ParseFloat(in.HeartRate, 64)
		hr := int(v)
		entry.HeartRate = &hr
	}
	if in.BloodOxygenLevel != "" {
		v, _ := strconv.ParseFloat(in.BloodOxygenLevel, 64)
		entry.BloodOxygenLevel = &v
	}
	if in.SleepDuration != "" {
		v, _ := strconv.ParseFloat(in.SleepDuration, 64)
		entry.SleepDuration = &v
	}
	if in.SleepQuality != "" {
		sq := in.SleepQuality
		entry.SleepQuality = &sq
	}
	if in.StressLevel != "" {
		sl := in.StressLevel
		entry.StressLevel = &sl
	}
	if in.Mood != "" {
		mood := in.Mood
		entry.Mood = &mood
	}

	return entry
}
