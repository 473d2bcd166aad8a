package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vitalog/backend/internal/repository"
	"github.com/vitalog/backend/pkg/api"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

type MockReminderStore struct {
	mock.Mock
}

func (m *MockReminderStore) Create(ctx context.Context, plan *model.ReminderPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockReminderStore) GetByID(ctx context.Context, id string) (*model.ReminderPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReminderPlan), args.Error(1)
}

func (m *MockReminderStore) GetByUserID(ctx context.Context, userID string) ([]model.ReminderPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReminderPlan), args.Error(1)
}

func (m *MockReminderStore) Update(ctx context.Context, plan *model.ReminderPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockReminderStore) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockReminderStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func storedPlan() *model.ReminderPlan {
	return &model.ReminderPlan{
		ID:        "plan-1",
		UserID:    "user-1",
		Title:     "Morning water",
		Type:      model.ReminderTypeDrink,
		Time:      "08:00",
		Frequency: "daily",
		IsActive:  true,
	}
}

func TestCreateReminder_StartsActive(t *testing.T) {
	repo := new(MockReminderStore)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.ReminderPlan) bool {
		return p.IsActive && p.Type == model.ReminderTypeDrink
	})).Return(nil)
	service := NewReminderService(repo, nil, zap.NewNop())

	plan, err := service.CreateReminder(context.Background(), api.CreateReminderRequest{
		UserID:    "user-1",
		Title:     "Morning water",
		Type:      "drink",
		Time:      "08:00",
		Frequency: "daily",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	assert.True(t, plan.IsActive)

	repo.AssertExpectations(t)
}

func TestCreateReminder_RejectsInvalidPlan(t *testing.T) {
	repo := new(MockReminderStore)
	service := NewReminderService(repo, nil, zap.NewNop())

	_, err := service.CreateReminder(context.Background(), api.CreateReminderRequest{
		UserID:    "user-1",
		Title:     "Nap",
		Type:      "nap",
		Time:      "noon",
		Frequency: "daily",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "type")
	assert.Contains(t, verr.Fields, "time")

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestToggleReminder_FlipsOnlyTheActiveFlag(t *testing.T) {
	repo := new(MockReminderStore)
	repo.On("GetByID", mock.Anything, "plan-1").Return(storedPlan(), nil)
	repo.On("SetActive", mock.Anything, "plan-1", false).Return(nil)
	service := NewReminderService(repo, nil, zap.NewNop())

	require.NoError(t, service.ToggleReminder(context.Background(), "plan-1", false))

	// the flag is flipped through SetActive, never a full-plan update
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestToggleReminder_UnknownPlan(t *testing.T) {
	repo := new(MockReminderStore)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
	service := NewReminderService(repo, nil, zap.NewNop())

	err := service.ToggleReminder(context.Background(), "missing", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	repo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateReminder_DoesNotTouchActiveFlag(t *testing.T) {
	repo := new(MockReminderStore)
	repo.On("GetByID", mock.Anything, "plan-1").Return(storedPlan(), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *model.ReminderPlan) bool {
		// the stored flag rides along unchanged
		return p.ID == "plan-1" && p.IsActive && p.Title == "Evening water"
	})).Return(nil)
	service := NewReminderService(repo, nil, zap.NewNop())

	plan, err := service.UpdateReminder(context.Background(), "plan-1", api.UpdateReminderRequest{
		Title:     "Evening water",
		Type:      "drink",
		Time:      "20:00",
		Frequency: "daily",
	})
	require.NoError(t, err)

	assert.True(t, plan.IsActive)
	assert.Equal(t, "20:00", plan.Time)

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReminder_RemovesPlan(t *testing.T) {
	repo := new(MockReminderStore)
	repo.On("GetByID", mock.Anything, "plan-1").Return(storedPlan(), nil)
	repo.On("Delete", mock.Anything, "plan-1").Return(nil)
	service := NewReminderService(repo, nil, zap.NewNop())

	require.NoError(t, service.DeleteReminder(context.Background(), "plan-1"))
	repo.AssertExpectations(t)
}

func TestValidateReminder(t *testing.T) {
	tests := []struct {
		name         string
		reminderType string
		timeOfDay    string
		wantFields   []string
	}{
		{"valid drink reminder", "drink", "08:00", nil},
		{"valid sleep reminder", "sleep", "22:30", nil},
		{"midnight is valid", "meal", "00:00", nil},
		{"unknown type", "nap", "08:00", []string{"type"}},
		{"uppercase type rejected", "Drink", "08:00", []string{"type"}},
		{"12h clock rejected", "exercise", "8:00 PM", []string{"time"}},
		{"out of range hour", "exercise", "25:00", []string{"time"}},
		{"missing minutes", "meal", "08", []string{"time"}},
		{"both invalid", "nap", "noon", []string{"type", "time"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validateReminder(tt.reminderType, tt.timeOfDay)
			if len(tt.wantFields) == 0 {
				assert.Empty(t, fields)
				return
			}
			assert.Len(t, fields, len(tt.wantFields))
			for _, name := range tt.wantFields {
				assert.Contains(t, fields, name)
			}
		})
	}
}
