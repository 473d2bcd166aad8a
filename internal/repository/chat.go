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

// ChatRepository manages consultation sessions and their messages
type ChatRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

// CreateSession inserts a new consultation session
func (r *ChatRepository) CreateSession(ctx context.Context, session *model.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, status, started_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.Status,
		session.StartedAt,
	)

	if err != nil {
		r.logger.Error("failed to create chat session",
			zap.Error(err),
			zap.String("user_id", session.UserID),
		)
		return fmt.Errorf("failed to create chat session: %w", err)
	}

	return nil
}

// GetSession retrieves a consultation session by id
func (r *ChatRepository) GetSession(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	query := `
		SELECT id, user_id, status, started_at, deleted_at
		FROM chat_sessions
		WHERE id = $1
	`

	var session model.ChatSession
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.Status,
		&session.StartedAt,
		&session.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get chat session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}

	return &session, nil
}

// DeleteSession marks a session deleted and removes its messages
func (r *ChatRepository) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, sessionID); err != nil {
		r.logger.Error("failed to delete chat messages", zap.Error(err), zap.String("session_id", sessionID))
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE chat_sessions SET status = $1, deleted_at = NOW() WHERE id = $2`,
		model.SessionStatusDeleted, sessionID,
	)
	if err != nil {
		r.logger.Error("failed to delete chat session", zap.Error(err), zap.String("session_id", sessionID))
		return fmt.Errorf("failed to delete chat session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// SaveMessage inserts a chat message
func (r *ChatRepository) SaveMessage(ctx context.Context, msg *model.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		msg.ID,
		msg.SessionID,
		msg.Role,
		msg.Content,
		msg.CreatedAt,
	)

	if err != nil {
		r.logger.Error("failed to save chat message",
			zap.Error(err),
			zap.String("session_id", msg.SessionID),
		)
		return fmt.Errorf("failed to save chat message: %w", err)
	}

	return nil
}

// DeleteMessage removes a single chat message. Used to roll back an
// optimistic user message when the assistant call fails.
func (r *ChatRepository) DeleteMessage(ctx context.Context, messageID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chat_messages WHERE id = $1`, messageID)
	if err != nil {
		r.logger.Error("failed to delete chat message", zap.Error(err), zap.String("message_id", messageID))
		return fmt.Errorf("failed to delete chat message: %w", err)
	}

	return nil
}

// ListMessages retrieves all messages of a session in chronological order
func (r *ChatRepository) ListMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		r.logger.Error("failed to list chat messages", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.Role,
			&msg.Content,
			&msg.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan chat message", zap.Error(err))
			continue
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating chat messages", zap.Error(err))
		return nil, fmt.Errorf("error iterating chat messages: %w", err)
	}

	return messages, nil
}
