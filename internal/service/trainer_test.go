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

type MockTrainerStore struct {
	mock.Mock
}

func (m *MockTrainerStore) Create(ctx context.Context, app *model.TrainerApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockTrainerStore) GetByUserID(ctx context.Context, userID string) ([]model.TrainerApplication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TrainerApplication), args.Error(1)
}

func (m *MockTrainerStore) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func applicationRequest() api.TrainerApplicationRequest {
	return api.TrainerApplicationRequest{
		UserID:         "user-1",
		FullName:       "Jamie Kovacs",
		Qualifications: "NASM CPT",
		ExperienceYrs:  4,
	}
}

func TestApply_SubmitsPendingApplication(t *testing.T) {
	repo := new(MockTrainerStore)
	repo.On("GetByUserID", mock.Anything, "user-1").Return([]model.TrainerApplication{}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(app *model.TrainerApplication) bool {
		return app.Status == model.ApplicationStatusPending && app.UserID == "user-1"
	})).Return(nil)
	service := NewTrainerService(repo, nil, zap.NewNop())

	app, err := service.Apply(context.Background(), applicationRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, app.ID)
	assert.Equal(t, model.ApplicationStatusPending, app.Status)
	assert.Equal(t, "Jamie Kovacs", app.FullName)

	repo.AssertExpectations(t)
}

func TestApply_RejectsWhilePendingApplicationExists(t *testing.T) {
	repo := new(MockTrainerStore)
	repo.On("GetByUserID", mock.Anything, "user-1").Return([]model.TrainerApplication{
		{ID: "app-0", UserID: "user-1", Status: model.ApplicationStatusPending},
	}, nil)
	service := NewTrainerService(repo, nil, zap.NewNop())

	_, err := service.Apply(context.Background(), applicationRequest())
	assert.ErrorIs(t, err, ErrApplicationPending)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApply_AllowsReapplyAfterRejection(t *testing.T) {
	repo := new(MockTrainerStore)
	repo.On("GetByUserID", mock.Anything, "user-1").Return([]model.TrainerApplication{
		{ID: "app-0", UserID: "user-1", Status: model.ApplicationStatusRejected},
	}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	service := NewTrainerService(repo, nil, zap.NewNop())

	app, err := service.Apply(context.Background(), applicationRequest())
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusPending, app.Status)

	repo.AssertExpectations(t)
}

func TestApply_RejectsNegativeExperience(t *testing.T) {
	repo := new(MockTrainerStore)
	service := NewTrainerService(repo, nil, zap.NewNop())

	req := applicationRequest()
	req.ExperienceYrs = -1
	_, err := service.Apply(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "experience_years")

	repo.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
}

func TestReview_MapsDecisionToStatus(t *testing.T) {
	tests := []struct {
		name     string
		approved bool
		want     model.ApplicationStatus
	}{
		{"approval", true, model.ApplicationStatusApproved},
		{"rejection", false, model.ApplicationStatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTrainerStore)
			repo.On("UpdateStatus", mock.Anything, "app-1", tt.want).Return(nil)
			service := NewTrainerService(repo, nil, zap.NewNop())

			require.NoError(t, service.Review(context.Background(), "admin-1", "app-1", tt.approved))
			repo.AssertExpectations(t)
		})
	}
}

func TestReview_UnknownApplication(t *testing.T) {
	repo := new(MockTrainerStore)
	repo.On("UpdateStatus", mock.Anything, "missing", model.ApplicationStatusApproved).
		Return(repository.ErrNotFound)
	service := NewTrainerService(repo, nil, zap.NewNop())

	err := service.Review(context.Background(), "admin-1", "missing", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
