package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

// fakeChatRepo is an in-memory session and message store. The fakes are
// stateful instead of mocked because the interesting behavior here is
// what ends up stored, not which calls were made.
type fakeChatRepo struct {
	sessions     map[string]*model.ChatSession
	messages     map[string][]model.ChatMessage
	failSave     bool
	failDelete   bool
	failMessages bool
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		sessions: make(map[string]*model.ChatSession),
		messages: make(map[string][]model.ChatMessage),
	}
}

func (r *fakeChatRepo) CreateSession(_ context.Context, session *model.ChatSession) error {
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeChatRepo) GetSession(_ context.Context, sessionID string) (*model.ChatSession, error) {
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.New("session not found")
	}
	cp := *session
	return &cp, nil
}

func (r *fakeChatRepo) DeleteSession(_ context.Context, sessionID string) error {
	if r.failDelete {
		return errors.New("delete failed")
	}
	session, ok := r.sessions[sessionID]
	if !ok {
		return errors.New("session not found")
	}
	session.Status = model.SessionStatusDeleted
	delete(r.messages, sessionID)
	return nil
}

func (r *fakeChatRepo) SaveMessage(_ context.Context, msg *model.ChatMessage) error {
	if r.failSave {
		return errors.New("save failed")
	}
	r.messages[msg.SessionID] = append(r.messages[msg.SessionID], *msg)
	return nil
}

func (r *fakeChatRepo) DeleteMessage(_ context.Context, messageID string) error {
	for sessionID, msgs := range r.messages {
		for i, msg := range msgs {
			if msg.ID == messageID {
				r.messages[sessionID] = append(msgs[:i:i], msgs[i+1:]...)
				return nil
			}
		}
	}
	return errors.New("message not found")
}

func (r *fakeChatRepo) ListMessages(_ context.Context, sessionID string) ([]model.ChatMessage, error) {
	if r.failMessages {
		return nil, errors.New("read failed")
	}
	return append([]model.ChatMessage{}, r.messages[sessionID]...), nil
}

type fakeSessionStore struct {
	sessionIDs  map[string]string
	transcripts map[string][]model.ChatMessage
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessionIDs:  make(map[string]string),
		transcripts: make(map[string][]model.ChatMessage),
	}
}

func (s *fakeSessionStore) SessionID(_ context.Context, userID string) (string, error) {
	return s.sessionIDs[userID], nil
}

func (s *fakeSessionStore) SetSessionID(_ context.Context, userID, sessionID string) error {
	s.sessionIDs[userID] = sessionID
	return nil
}

func (s *fakeSessionStore) Transcript(_ context.Context, userID string) ([]model.ChatMessage, error) {
	return append([]model.ChatMessage{}, s.transcripts[userID]...), nil
}

func (s *fakeSessionStore) SetTranscript(_ context.Context, userID string, messages []model.ChatMessage) error {
	s.transcripts[userID] = append([]model.ChatMessage{}, messages...)
	return nil
}

func (s *fakeSessionStore) Clear(_ context.Context, userID string) error {
	delete(s.sessionIDs, userID)
	delete(s.transcripts, userID)
	return nil
}

type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) Reply(ctx context.Context, history []model.ChatMessage, prompt string) (string, error) {
	args := m.Called(ctx, history, prompt)
	return args.String(0), args.Error(1)
}

func newTestChatService(repo *fakeChatRepo, store *fakeSessionStore, assistant *MockAssistant) *ChatService {
	return NewChatService(repo, store, assistant, nil, zap.NewNop())
}

func TestEnsureSession_CreatesFreshSession(t *testing.T) {
	repo := newFakeChatRepo()
	store := newFakeSessionStore()
	service := newTestChatService(repo, store, new(MockAssistant))

	session, messages, err := service.EnsureSession(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, model.SessionStatusActive, session.Status)
	assert.Empty(t, messages)
	assert.Equal(t, session.ID, store.sessionIDs["user-1"])
}

func TestEnsureSession_ReusesValidSession(t *testing.T) {
	repo := newFakeChatRepo()
	store := newFakeSessionStore()
	service := newTestChatService(repo, store, new(MockAssistant))

	ctx := context.Background()
	first, _, err := service.EnsureSession(ctx, "user-1")
	require.NoError(t, err)

	repo.messages[first.ID] = []model.ChatMessage{
		{ID: "m1", SessionID: first.ID, Role: model.MessageRoleUser, Content: "hello"},
		{ID: "m2", SessionID: first.ID, Role: model.MessageRoleAssistant, Content: "hi"},
	}

	second, messages, err := service.EnsureSession(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Content)
	// cache is rebuilt wholesale from the repository
	assert.Equal(t, messages, store.transcripts["user-1"])
}

func TestEnsureSession_RecoversFromUnknownSessionID(t *testing.T) {
	repo := newFakeChatRepo()
	store := newFakeSessionStore()
	store.sessionIDs["user-1"] = "no-such-session"
	store.transcripts["user-1"] = []model.ChatMessage{{ID: "stale"}}
	service := newTestChatService(repo, store, new(MockAssistant))

	session, messages, err := service.EnsureSession(context.Background(), "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, "no-such-session", session.ID)
	assert.Empty(t, messages)
	assert.Equal(t, session.ID, store.sessionIDs["user-1"])
	assert.Empty(t, store.transcripts["user-1"], "stale transcript must be discarded")
}

func TestEnsureSession_RecoversFromForeignSession(t *testing.T) {
	repo := newFakeChatRepo()
	store := newFakeSessionStore()
	repo.sessions["other"] = &model.ChatSession{
		ID:     "other",
		UserID: "someone-else",
		Status: model.SessionStatusActive,
	}
	store.sessionIDs["user-1"] = "other"
	service := newTestChatService(repo, store, new(MockAssistant))

	session, _, err := service.EnsureSession(context.Background(), "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, "other", session.ID)
	assert.Equal(t, "user-1", session.UserID)
}

func TestEnsureSession_RecoversFromDeletedSession(t *testing.T) {
	repo := newFakeChatRepo()
	store := newFakeSessionStore()
	repo.sessions["gone"] = &model.ChatSession{
		ID:     "gone",
		UserID: "user-1",
		Status: model.SessionStatusDeleted,
	}
	store.sessionIDs["user-1"] = "gone"
	service := newTestChatService(repo, store, new(MockAssistant))

	session, _, err := service.EnsureSession(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, "gone", session.ID)
}

func TestEnsureSession_RecoveryIsIdempotent(t *testing.T) {
	repo := newFakeChatRepo()
	store := newFakeSessionStore()
	store.sessionIDs["user-1"] = "bogus"
	service := newTestChatService(repo, store, new(MockAssistant))

	ctx := context.Background()
	first, msgs1, err := service.EnsureSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, msgs1)

	// every subsequent call lands on the same recovered session
	second, msgs2, err := service.EnsureSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, msgs2)
}

func TestEnsureSession_RequiresUserID(t *testing.T) {
	service := newTestChatService(newFakeChatRepo(), newFakeSessionStore(), new(MockAssistant))

	_, _, err := service.EnsureSession(context.Background(), "")
	assert.Error(t, err)
}

func TestSendMessage_PersistsExchange(t *testing.T) {
	repo := newFakeChatRepo()
	store := newFakeSessionStore()
	assistant := new(MockAssistant)
	assistant.On("Reply", mock.Anything, mock.Anything, "how do I sleep better?").
		Return("Keep a regular schedule.", nil)
	service := newTestChatService(repo, store, assistant)

	result, err := service.SendMessage(context.Background(), "user-1", "how do I sleep better?")
	require.NoError(t, err)

	assert.Equal(t, model.MessageRoleUser, result.UserMessage.Role)
	assert.Equal(t, "how do I sleep better?", result.UserMessage.Content)
	assert.Equal(t, model.MessageRoleAssistant, result.AssistantMessage.Role)
	assert.Equal(t, "Keep a regular schedule.", result.AssistantMessage.Content)

	stored := repo.messages[result.Session.ID]
	require.Len(t, stored, 2)

	cached := store.transcripts["user-1"]
	require.Len(t, cached, 2)
	assert.Equal(t, result.UserMessage.ID, cached[0].ID)
	assert.Equal(t, result.AssistantMessage.ID, cached[1].ID)

	assistant.AssertExpectations(t)
}

func TestSendMessage_RollsBackOnAssistantFailure(t *testing.T) {
	repo := newFakeChatRepo()
	store := newFakeSessionStore()
	assistant := new(MockAssistant)
	service := newTestChatService(repo, store, assistant)

	ctx := context.Background()
	session, _, err := service.EnsureSession(ctx, "user-1")
	require.NoError(t, err)

	history := []model.ChatMessage{
		{ID: "m1", SessionID: session.ID, Role: model.MessageRoleUser, Content: "hi", CreatedAt: time.Now()},
		{ID: "m2", SessionID: session.ID, Role: model.MessageRoleAssistant, Content: "hello", CreatedAt: time.Now()},
	}
	repo.messages[session.ID] = append([]model.ChatMessage{}, history...)
	store.transcripts["user-1"] = append([]model.ChatMessage{}, history...)

	assistant.On("Reply", mock.Anything, mock.Anything, "broken").
		Return("", errors.New("upstream timeout"))

	_, err = service.SendMessage(ctx, "user-1", "broken")
	require.Error(t, err)

	// repository and cache both match their pre-send state exactly
	stored := repo.messages[session.ID]
	require.Len(t, stored, 2)
	assert.Equal(t, "m1", stored[0].ID)
	assert.Equal(t, "m2", stored[1].ID)

	cached := store.transcripts["user-1"]
	require.Len(t, cached, 2)
	assert.Equal(t, "m1", cached[0].ID)
	assert.Equal(t, "m2", cached[1].ID)
}

func TestSendMessage_RejectsEmptyContent(t *testing.T) {
	service := newTestChatService(newFakeChatRepo(), newFakeSessionStore(), new(MockAssistant))

	_, err := service.SendMessage(context.Background(), "user-1", "   ")
	assert.Error(t, err)
}

func TestDeleteSession_ClearsState(t *testing.T) {
	repo := newFakeChatRepo()
	store := newFakeSessionStore()
	service := newTestChatService(repo, store, new(MockAssistant))

	ctx := context.Background()
	session, _, err := service.EnsureSession(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, service.DeleteSession(ctx, "user-1"))

	assert.Empty(t, store.sessionIDs["user-1"])
	assert.Equal(t, model.SessionStatusDeleted, repo.sessions[session.ID].Status)
}

func TestDeleteSession_ClearsStateEvenWhenRepoFails(t *testing.T) {
	repo := newFakeChatRepo()
	store := newFakeSessionStore()
	service := newTestChatService(repo, store, new(MockAssistant))

	ctx := context.Background()
	_, _, err := service.EnsureSession(ctx, "user-1")
	require.NoError(t, err)

	repo.failDelete = true
	require.NoError(t, service.DeleteSession(ctx, "user-1"))
	assert.Empty(t, store.sessionIDs["user-1"])

	// the user can immediately start over
	session, messages, err := service.EnsureSession(ctx, "user-1")
	require.NoError(t, err)
	assert.NotNil(t, session)
	assert.Empty(t, messages)
}

func TestSessionFSM_TransitionTable(t *testing.T) {
	tests := []struct {
		name  string
		path  []SessionState
		legal bool
	}{
		{"validate then valid", []SessionState{SessionValidating, SessionValid}, true},
		{"full send cycle", []SessionState{SessionValidating, SessionValid, SessionSending, SessionValid}, true},
		{"recovery loop", []SessionState{SessionValidating, SessionInvalidated, SessionValidating, SessionValid}, true},
		{"send before validation", []SessionState{SessionSending}, false},
		{"valid without validating", []SessionState{SessionValid}, false},
		{"invalidated cannot send", []SessionState{SessionValidating, SessionInvalidated, SessionSending}, false},
		{"sending cannot invalidate", []SessionState{SessionValidating, SessionValid, SessionSending, SessionInvalidated}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsm := newSessionFSM(zap.NewNop())
			var err error
			for _, next := range tt.path {
				if err = fsm.to(next); err != nil {
					break
				}
			}
			if tt.legal {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
