package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

// TrainerRepository manages trainer applications
type TrainerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewTrainerRepository creates a new TrainerRepository
func NewTrainerRepository(db *pgxpool.Pool, logger *zap.Logger) *TrainerRepository {
	return &TrainerRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a trainer application
func (r *TrainerRepository) Create(ctx context.Context, app *model.TrainerApplication) error {
	query := `
		INSERT INTO trainer_applications (
			id, user_id, full_name, qualifications, experience_years,
			motivation, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

	_, err := r.db.Exec(ctx, query,
		app.ID,
		app.UserID,
		app.FullName,
		app.Qualifications,
		app.ExperienceYrs,
		app.Motivation,
		app.Status,
	)

	if err != nil {
		r.logger.Error("failed to create trainer application",
			zap.Error(err),
			zap.String("user_id", app.UserID),
		)
		return fmt.Errorf("failed to create trainer application: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user's trainer applications, newest first
func (r *TrainerRepository) GetByUserID(ctx context.Context, userID string) ([]model.TrainerApplication, error) {
	query := `
		SELECT id, user_id, full_name, qualifications, experience_years,
		       motivation, status, created_at, updated_at
		FROM trainer_applications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to get trainer applications", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get trainer applications: %w", err)
	}
	defer rows.Close()

	var apps []model.TrainerApplication
	for rows.Next() {
		var app model.TrainerApplication
		err := rows.Scan(
			&app.ID,
			&app.UserID,
			&app.FullName,
			&app.Qualifications,
			&app.ExperienceYrs,
			&app.Motivation,
			&app.Status,
			&app.CreatedAt,
			&app.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan trainer application", zap.Error(err))
			continue
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating trainer applications", zap.Error(err))
		return nil, fmt.Errorf("error iterating trainer applications: %w", err)
	}

	return apps, nil
}

// UpdateStatus moves an application to a new review state
func (r *TrainerRepository) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE trainer_applications SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		r.logger.Error("failed to update application status",
			zap.Error(err),
			zap.String("application_id", id),
		)
		return fmt.Errorf("failed to update application status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
