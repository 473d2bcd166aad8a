package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// HealthLogRepository manages health log entries
type HealthLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewHealthLogRepository creates a new HealthLogRepository
func NewHealthLogRepository(db *pgxpool.Pool, logger *zap.Logger) *HealthLogRepository {
	return &HealthLogRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts a health log entry
func (r *HealthLogRepository) Save(ctx context.Context, entry *model.HealthLogEntry) error {
	query := `
		INSERT INTO health_logs (
			id, user_id, blood_pressure, heart_rate, blood_oxygen_level,
			sleep_duration, sleep_quality, stress_level, mood,
			source, source_data_id, recorded_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.BloodPressure,
		entry.HeartRate,
		entry.BloodOxygenLevel,
		entry.SleepDuration,
		entry.SleepQuality,
		entry.StressLevel,
		entry.Mood,
		entry.Source,
		entry.SourceDataID,
		entry.RecordedAt,
	)

	if err != nil {
		r.logger.Error("failed to save health log",
			zap.Error(err),
			zap.String("user_id", entry.UserID),
		)
		return fmt.Errorf("failed to save health log: %w", err)
	}

	return nil
}

// GetByID retrieves a single health log entry
func (r *HealthLogRepository) GetByID(ctx context.Context, id string) (*model.HealthLogEntry, error) {
	query := `
		SELECT
			id, user_id, blood_pressure, heart_rate, blood_oxygen_level,
			sleep_duration, sleep_quality, stress_level, mood,
			source, source_data_id, recorded_at, created_at, updated_at
		FROM health_logs
		WHERE id = $1
	`

	var entry model.HealthLogEntry
	err := r.db.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.BloodPressure,
		&entry.HeartRate,
		&entry.BloodOxygenLevel,
		&entry.SleepDuration,
		&entry.SleepQuality,
		&entry.StressLevel,
		&entry.Mood,
		&entry.Source,
		&entry.SourceDataID,
		&entry.RecordedAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get health log", zap.Error(err), zap.String("log_id", id))
		return nil, fmt.Errorf("failed to get health log: %w", err)
	}

	return &entry, nil
}

// GetByUserID retrieves health log entries for a user, newest first
func (r *HealthLogRepository) GetByUserID(ctx context.Context, userID string) ([]model.HealthLogEntry, error) {
	query := `
		SELECT
			id, user_id, blood_pressure, heart_rate, blood_oxygen_level,
			sleep_duration, sleep_quality, stress_level, mood,
			source, source_data_id, recorded_at, created_at, updated_at
		FROM health_logs
		WHERE user_id = $1
		ORDER BY recorded_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to get health logs", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get health logs: %w", err)
	}
	defer rows.Close()

	var entries []model.HealthLogEntry
	for rows.Next() {
		var entry model.HealthLogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.BloodPressure,
			&entry.HeartRate,
			&entry.BloodOxygenLevel,
			&entry.SleepDuration,
			&entry.SleepQuality,
			&entry.StressLevel,
			&entry.Mood,
			&entry.Source,
			&entry.SourceDataID,
			&entry.RecordedAt,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan health log", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating health logs", zap.Error(err))
		return nil, fmt.Errorf("error iterating health logs: %w", err)
	}

	return entries, nil
}

// Update replaces all metric fields of a health log entry
func (r *HealthLogRepository) Update(ctx context.Context, entry *model.HealthLogEntry) error {
	query := `
		UPDATE health_logs
		SET blood_pressure = $1, heart_rate = $2, blood_oxygen_level = $3,
		    sleep_duration = $4, sleep_quality = $5, stress_level = $6,
		    mood = $7, recorded_at = $8, updated_at = NOW()
		WHERE id = $9
	`

	result, err := r.db.Exec(ctx, query,
		entry.BloodPressure,
		entry.HeartRate,
		entry.BloodOxygenLevel,
		entry.SleepDuration,
		entry.SleepQuality,
		entry.StressLevel,
		entry.Mood,
		entry.RecordedAt,
		entry.ID,
	)

	if err != nil {
		r.logger.Error("failed to update health log",
			zap.Error(err),
			zap.String("log_id", entry.ID),
		)
		return fmt.Errorf("failed to update health log: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a health log entry
func (r *HealthLogRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM health_logs WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete health log", zap.Error(err), zap.String("log_id", id))
		return fmt.Errorf("failed to delete health log: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ExternalLogExists checks if a provider-sourced entry was already imported
func (r *HealthLogRepository) ExternalLogExists(ctx context.Context, sourceDataID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM health_logs WHERE source_data_id = $1)`

	var exists bool
	err := r.db.QueryRow(ctx, query, sourceDataID).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check external log existence",
			zap.Error(err),
			zap.String("source_data_id", sourceDataID),
		)
		return false, fmt.Errorf("failed to check external log existence: %w", err)
	}

	return exists, nil
}

// Stats aggregates a user's health logs over a date range
func (r *HealthLogRepository) Stats(ctx context.Context, userID string, start, end time.Time) (*model.HealthLogStats, error) {
	query := `
		SELECT
			COUNT(*),
			AVG(heart_rate),
			AVG(blood_oxygen_level),
			AVG(sleep_duration),
			MAX(recorded_at)
		FROM health_logs
		WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
	`

	stats := &model.HealthLogStats{
		UserID:     userID,
		RangeStart: start,
		RangeEnd:   end,
	}

	err := r.db.QueryRow(ctx, query, userID, start, end).Scan(
		&stats.EntryCount,
		&stats.AvgHeartRate,
		&stats.AvgBloodOxygen,
		&stats.AvgSleepHours,
		&stats.LastRecordedAt,
	)
	if err != nil {
		r.logger.Error("failed to aggregate health logs",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to aggregate health logs: %w", err)
	}

	return stats, nil
}
