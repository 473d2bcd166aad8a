package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vitalog/backend/internal/audit"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

// SessionState names a state of the consultation session lifecycle
type SessionState string

const (
	SessionUninitialized SessionState = "uninitialized"
	SessionValidating    SessionState = "validating"
	SessionValid         SessionState = "valid"
	SessionSending       SessionState = "sending"
	SessionInvalidated   SessionState = "invalidated"
)

// sessionTransitions is the legal transition table of the session
// lifecycle. An invalidated session always funnels back into validating,
// which is what makes recovery idempotent: the only exit from a bad
// persisted session id is a fresh session.
var sessionTransitions = map[SessionState][]SessionState{
	SessionUninitialized: {SessionValidating},
	SessionValidating:    {SessionValid, SessionInvalidated},
	SessionInvalidated:   {SessionValidating},
	SessionValid:         {SessionSending},
	SessionSending:       {SessionValid},
}

// sessionFSM tracks lifecycle state over one service call
type sessionFSM struct {
	state  SessionState
	logger *zap.Logger
}

func newSessionFSM(logger *zap.Logger) *sessionFSM {
	return &sessionFSM{state: SessionUninitialized, logger: logger}
}

// to transitions the machine, rejecting transitions outside the table
func (f *sessionFSM) to(next SessionState) error {
	for _, allowed := range sessionTransitions[f.state] {
		if allowed == next {
			f.logger.Debug("session state transition",
				zap.String("from", string(f.state)),
				zap.String("to", string(next)),
			)
			f.state = next
			return nil
		}
	}
	return fmt.Errorf("illegal session transition: %s -> %s", f.state, next)
}

// ChatRepository is the durable store of sessions and messages
type ChatRepository interface {
	CreateSession(ctx context.Context, session *model.ChatSession) error
	GetSession(ctx context.Context, sessionID string) (*model.ChatSession, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SaveMessage(ctx context.Context, msg *model.ChatMessage) error
	DeleteMessage(ctx context.Context, messageID string) error
	ListMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
}

// SessionStore is the per-user key-value state: the session pointer and
// the cached transcript.
type SessionStore interface {
	SessionID(ctx context.Context, userID string) (string, error)
	SetSessionID(ctx context.Context, userID, sessionID string) error
	Transcript(ctx context.Context, userID string) ([]model.ChatMessage, error)
	SetTranscript(ctx context.Context, userID string, messages []model.ChatMessage) error
	Clear(ctx context.Context, userID string) error
}

// Assistant produces consultation replies
type Assistant interface {
	Reply(ctx context.Context, history []model.ChatMessage, prompt string) (string, error)
}

// SendResult carries the outcome of a successful message exchange
type SendResult struct {
	Session          *model.ChatSession
	UserMessage      model.ChatMessage
	AssistantMessage model.ChatMessage
}

// ChatService manages the consultation session lifecycle
type ChatService struct {
	repo      ChatRepository
	store     SessionStore
	assistant Assistant
	audit     *audit.Logger
	logger    *zap.Logger
}

// NewChatService creates a new ChatService
func NewChatService(repo ChatRepository, store SessionStore, assistant Assistant, auditLogger *audit.Logger, logger *zap.Logger) *ChatService {
	return &ChatService{
		repo:      repo,
		store:     store,
		assistant: assistant,
		audit:     auditLogger,
		logger:    logger,
	}
}

// EnsureSession establishes a usable session for the user and returns it
// with its full history. A missing, foreign, deleted or unreadable
// persisted session id never surfaces as an error: the session is
// re-created and the transcript cache reset, trading the old session for
// availability.
func (s *ChatService) EnsureSession(ctx context.Context, userID string) (*model.ChatSession, []model.ChatMessage, error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("user ID is required")
	}

	fsm := newSessionFSM(s.logger)
	return s.ensureSession(ctx, userID, fsm)
}

func (s *ChatService) ensureSession(ctx context.Context, userID string, fsm *sessionFSM) (*model.ChatSession, []model.ChatMessage, error) {
	if err := fsm.to(SessionValidating); err != nil {
		return nil, nil, err
	}

	sessionID, err := s.store.SessionID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to read persisted session id, treating as absent",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		sessionID = ""
	}

	if sessionID != "" {
		session, messages, ok := s.validateSession(ctx, userID, sessionID)
		if ok {
			if err := fsm.to(SessionValid); err != nil {
				return nil, nil, err
			}
			// Rebuild the cache wholesale from the repository; the old
			// cache contents are never merged in.
			if err := s.store.SetTranscript(ctx, userID, messages); err != nil {
				s.logger.Warn("failed to refresh transcript cache", zap.Error(err))
			}
			return session, messages, nil
		}

		if err := fsm.to(SessionInvalidated); err != nil {
			return nil, nil, err
		}
		s.logger.Info("persisted session invalid, re-creating",
			zap.String("user_id", userID),
			zap.String("session_id", sessionID),
		)
		if err := s.store.Clear(ctx, userID); err != nil {
			s.logger.Warn("failed to clear stale session state", zap.Error(err))
		}
		if err := fsm.to(SessionValidating); err != nil {
			return nil, nil, err
		}
	}

	session, err := s.createSession(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if err := fsm.to(SessionValid); err != nil {
		return nil, nil, err
	}

	return session, nil, nil
}

// validateSession checks a persisted session id against the repository.
// Any failure, including a read error on the message history, reports the
// session as unusable.
func (s *ChatService) validateSession(ctx context.Context, userID, sessionID string) (*model.ChatSession, []model.ChatMessage, bool) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, false
	}

	if session.UserID != userID || session.Status != model.SessionStatusActive {
		return nil, nil, false
	}

	messages, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, nil, false
	}

	return session, messages, true
}

// createSession starts a fresh session and resets the user's cached state
func (s *ChatService) createSession(ctx context.Context, userID string) (*model.ChatSession, error) {
	session := &model.ChatSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    model.SessionStatusActive,
		StartedAt: time.Now(),
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.store.SetSessionID(ctx, userID, session.ID); err != nil {
		s.logger.Warn("failed to persist session id", zap.Error(err))
	}
	if err := s.store.SetTranscript(ctx, userID, nil); err != nil {
		s.logger.Warn("failed to reset transcript cache", zap.Error(err))
	}

	if s.audit != nil {
		if err := s.audit.LogCreate(ctx, userID, audit.ResourceChatSession, session.ID); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	s.logger.Info("consultation session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
	)

	return session, nil
}

// SendMessage appends the user's message optimistically, asks the
// assistant for a reply, and persists both. If the assistant call fails,
// the optimistic message is removed from the repository and the cache so
// that both match their pre-send state exactly.
func (s *ChatService) SendMessage(ctx context.Context, userID, content string) (*SendResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content cannot be empty")
	}

	fsm := newSessionFSM(s.logger)
	session, history, err := s.ensureSession(ctx, userID, fsm)
	if err != nil {
		return nil, err
	}

	if err := fsm.to(SessionSending); err != nil {
		return nil, err
	}

	userMsg := model.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}

	withUser := append(append([]model.ChatMessage{}, history...), userMsg)
	if err := s.store.SetTranscript(ctx, userID, withUser); err != nil {
		s.logger.Warn("failed to cache optimistic message", zap.Error(err))
	}

	if err := s.repo.SaveMessage(ctx, &userMsg); err != nil {
		s.rollbackTranscript(ctx, userID, history)
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	replyText, err := s.assistant.Reply(ctx, history, content)
	if err != nil {
		s.logger.Error("assistant reply failed, rolling back optimistic message",
			zap.String("session_id", session.ID),
			zap.String("message_id", userMsg.ID),
			zap.Error(err),
		)
		if derr := s.repo.DeleteMessage(ctx, userMsg.ID); derr != nil {
			s.logger.Error("failed to remove optimistic message", zap.Error(derr))
		}
		s.rollbackTranscript(ctx, userID, history)
		return nil, fmt.Errorf("assistant reply failed: %w", err)
	}

	assistantMsg := model.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: session.ID,
		Role:      model.MessageRoleAssistant,
		Content:   replyText,
		CreatedAt: time.Now(),
	}

	if err := s.repo.SaveMessage(ctx, &assistantMsg); err != nil {
		// The reply was produced; keep it in the cache even if the
		// durable write failed, it will be dropped on the next rebuild.
		s.logger.Error("failed to save assistant message", zap.Error(err))
	}

	if err := s.store.SetTranscript(ctx, userID, append(withUser, assistantMsg)); err != nil {
		s.logger.Warn("failed to cache assistant message", zap.Error(err))
	}

	if err := fsm.to(SessionValid); err != nil {
		return nil, err
	}

	s.logger.Info("consultation exchange completed",
		zap.String("session_id", session.ID),
		zap.String("user_message_id", userMsg.ID),
		zap.String("assistant_message_id", assistantMsg.ID),
	)

	return &SendResult{
		Session:          session,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}, nil
}

// rollbackTranscript restores the cached transcript to its pre-send state
func (s *ChatService) rollbackTranscript(ctx context.Context, userID string, history []model.ChatMessage) {
	if err := s.store.SetTranscript(ctx, userID, history); err != nil {
		s.logger.Error("failed to roll back transcript cache",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

// DeleteSession removes the user's current session. The persisted session
// id and cached transcript are cleared even when the repository delete
// fails: the user always ends up with a clean slate.
func (s *ChatService) DeleteSession(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}

	sessionID, err := s.store.SessionID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to read persisted session id", zap.Error(err))
		sessionID = ""
	}

	if sessionID != "" {
		if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
			s.logger.Error("failed to delete session from repository, clearing local state anyway",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}

	if err := s.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}

	if s.audit != nil && sessionID != "" {
		if err := s.audit.LogDelete(ctx, userID, audit.ResourceChatSession, sessionID); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	s.logger.Info("consultation session deleted",
		zap.String("user_id", userID),
		zap.String("session_id", sessionID),
	)

	return nil
}
