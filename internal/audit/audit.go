package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
)

// ResourceType represents the type of resource being accessed
type ResourceType string

const (
	ResourceHealthLog          ResourceType = "health_log"
	ResourceChatSession        ResourceType = "chat_session"
	ResourceReminderPlan       ResourceType = "reminder_plan"
	ResourceSubscriptionRating ResourceType = "subscription_rating"
	ResourceTrainerApplication ResourceType = "trainer_application"
	ResourcePayment            ResourceType = "payment"
)

// Entry represents an audit log entry
type Entry struct {
	UserID        string
	OperationType OperationType
	ResourceType  ResourceType
	ResourceID    string
	Timestamp     time.Time
	IPAddress     string
}

// Logger records mutating operations on health resources
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewLogger creates a new audit logger
func NewLogger(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	return &Logger{
		db:     db,
		logger: logger,
	}
}

// Log writes an audit entry to the structured log and the database. A
// database failure is reported to the caller but must not abort the
// operation being audited.
func (l *Logger) Log(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.logger.Info("audit log entry",
		zap.String("user_id", entry.UserID),
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.Time("timestamp", entry.Timestamp),
		zap.String("ip_address", entry.IPAddress),
	)

	query := `
		INSERT INTO audit_logs (
			user_id, operation_type, resource_type, resource_id, timestamp, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := l.db.Exec(ctx, query,
		entry.UserID,
		entry.OperationType,
		entry.ResourceType,
		entry.ResourceID,
		entry.Timestamp,
		entry.IPAddress,
	)

	if err != nil {
		l.logger.Error("failed to write audit log to database",
			zap.Error(err),
			zap.String("user_id", entry.UserID),
			zap.String("operation", string(entry.OperationType)),
			zap.String("resource_type", string(entry.ResourceType)),
		)
		return err
	}

	return nil
}

// LogCreate logs a CREATE operation
func (l *Logger) LogCreate(ctx context.Context, userID string, resource ResourceType, resourceID string) error {
	return l.Log(ctx, Entry{
		UserID:        userID,
		OperationType: OperationCreate,
		ResourceType:  resource,
		ResourceID:    resourceID,
	})
}

// LogUpdate logs an UPDATE operation
func (l *Logger) LogUpdate(ctx context.Context, userID string, resource ResourceType, resourceID string) error {
	return l.Log(ctx, Entry{
		UserID:        userID,
		OperationType: OperationUpdate,
		ResourceType:  resource,
		ResourceID:    resourceID,
	})
}

// LogDelete logs a DELETE operation
func (l *Logger) LogDelete(ctx context.Context, userID string, resource ResourceType, resourceID string) error {
	return l.Log(ctx, Entry{
		UserID:        userID,
		OperationType: OperationDelete,
		ResourceType:  resource,
		ResourceID:    resourceID,
	})
}
