// Package kvstore is the small per-user key-value layer backed by Redis.
// It holds the state the product keeps outside of Postgres: the pointer to
// a user's current consultation session, the cached session transcript,
// and the timestamp of the last daily check-in.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vitalog/backend/internal/security"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix    = "chat:session:"
	transcriptKeyPrefix = "chat:transcript:"
	checkInKeyPrefix    = "checkin:last:"
)

// Store wraps a Redis client with typed accessors per concern
type Store struct {
	rdb       *redis.Client
	encryptor *security.Encryptor // nil disables transcript encryption
	logger    *zap.Logger
}

// NewStore creates a Store. The encryptor may be nil, in which case
// transcripts are cached in plaintext.
func NewStore(rdb *redis.Client, encryptor *security.Encryptor, logger *zap.Logger) *Store {
	return &Store{
		rdb:       rdb,
		encryptor: encryptor,
		logger:    logger,
	}
}

// Ping verifies connectivity to Redis
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// SessionID returns the persisted consultation session id for a user, or
// the empty string when none is stored.
func (s *Store) SessionID(ctx context.Context, userID string) (string, error) {
	id, err := s.rdb.Get(ctx, sessionKeyPrefix+userID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session id: %w", err)
	}
	return id, nil
}

// SetSessionID persists the consultation session id for a user
func (s *Store) SetSessionID(ctx context.Context, userID, sessionID string) error {
	if err := s.rdb.Set(ctx, sessionKeyPrefix+userID, sessionID, 0).Err(); err != nil {
		return fmt.Errorf("failed to store session id: %w", err)
	}
	return nil
}

// Transcript returns the cached transcript for a user. A missing or
// unreadable cache yields an empty transcript rather than an error: the
// cache is rebuilt from the repository whenever a session is established.
func (s *Store) Transcript(ctx context.Context, userID string) ([]model.ChatMessage, error) {
	raw, err := s.rdb.Get(ctx, transcriptKeyPrefix+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript cache: %w", err)
	}

	if s.encryptor != nil {
		raw, err = s.encryptor.Decrypt(raw)
		if err != nil {
			s.logger.Warn("discarding undecryptable transcript cache",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil, nil
		}
	}

	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		s.logger.Warn("discarding malformed transcript cache",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, nil
	}

	return messages, nil
}

// SetTranscript replaces the cached transcript for a user wholesale
func (s *Store) SetTranscript(ctx context.Context, userID string, messages []model.ChatMessage) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to serialize transcript: %w", err)
	}

	payload := string(raw)
	if s.encryptor != nil {
		payload, err = s.encryptor.Encrypt(payload)
		if err != nil {
			return fmt.Errorf("failed to encrypt transcript: %w", err)
		}
	}

	if err := s.rdb.Set(ctx, transcriptKeyPrefix+userID, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store transcript cache: %w", err)
	}
	return nil
}

// Clear removes the session pointer and cached transcript for a user
func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+userID, transcriptKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	return nil
}

// LastCheckIn returns the timestamp of the user's most recent daily
// check-in. The second return value reports whether one exists.
func (s *Store) LastCheckIn(ctx context.Context, userID string) (time.Time, bool, error) {
	raw, err := s.rdb.Get(ctx, checkInKeyPrefix+userID).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last check-in: %w", err)
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		s.logger.Warn("discarding malformed last check-in value",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return time.Time{}, false, nil
	}

	return t, true, nil
}

// SetLastCheckIn records the timestamp of a daily check-in
func (s *Store) SetLastCheckIn(ctx context.Context, userID string, t time.Time) error {
	if err := s.rdb.Set(ctx, checkInKeyPrefix+userID, t.Format(time.RFC3339), 0).Err(); err != nil {
		return fmt.Errorf("failed to store last check-in: %w", err)
	}
	return nil
}
