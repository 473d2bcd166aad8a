package service

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vitalog/backend/pkg/api"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

type MockRatingStore struct {
	mock.Mock
}

func (m *MockRatingStore) FindByUserAndSubscription(ctx context.Context, userID, subscriptionID string) (*model.SubscriptionRating, error) {
	args := m.Called(ctx, userID, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubscriptionRating), args.Error(1)
}

func (m *MockRatingStore) Create(ctx context.Context, rating *model.SubscriptionRating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingStore) Update(ctx context.Context, rating *model.SubscriptionRating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func ratingRequest(rating int) api.SubmitRatingRequest {
	return api.SubmitRatingRequest{
		UserID:         "user-1",
		SubscriptionID: "sub-1",
		TrainerID:      "trainer-1",
		Rating:         rating,
	}
}

func TestSubmitRating_CreatesWhenNoneExists(t *testing.T) {
	repo := new(MockRatingStore)
	repo.On("FindByUserAndSubscription", mock.Anything, "user-1", "sub-1").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	service := NewRatingService(repo, nil, zap.NewNop())

	stored, created, err := service.SubmitRating(context.Background(), ratingRequest(4))
	require.NoError(t, err)

	assert.True(t, created)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, 4, stored.Rating)

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSubmitRating_UpdatesExistingInPlace(t *testing.T) {
	existing := &model.SubscriptionRating{
		ID:             "rating-1",
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		TrainerID:      "trainer-1",
		Rating:         2,
	}

	repo := new(MockRatingStore)
	repo.On("FindByUserAndSubscription", mock.Anything, "user-1", "sub-1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(r *model.SubscriptionRating) bool {
		return r.ID == "rating-1" && r.Rating == 5
	})).Return(nil)
	service := NewRatingService(repo, nil, zap.NewNop())

	stored, created, err := service.SubmitRating(context.Background(), ratingRequest(5))
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, "rating-1", stored.ID, "existing rating keeps its identity")
	assert.Equal(t, 5, stored.Rating)

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitRating_RejectsOutOfRange(t *testing.T) {
	repo := new(MockRatingStore)
	service := NewRatingService(repo, nil, zap.NewNop())

	for _, rating := range []int{0, -1, 6, 100} {
		_, _, err := service.SubmitRating(context.Background(), ratingRequest(rating))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "rating %d", rating)
		assert.Contains(t, verr.Fields, "rating")
	}

	repo.AssertNotCalled(t, "FindByUserAndSubscription", mock.Anything, mock.Anything, mock.Anything)
}

// The create-vs-update decision is driven entirely by prior existence:
// a lookup miss creates a new row, a hit overwrites that same row.
func TestProperty_RatingUpsertFollowsExistence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Upsert path determined by prior existence", prop.ForAll(
		func(exists bool, rating int) bool {
			repo := new(MockRatingStore)
			if exists {
				repo.On("FindByUserAndSubscription", mock.Anything, "user-1", "sub-1").
					Return(&model.SubscriptionRating{ID: "rating-1", UserID: "user-1", SubscriptionID: "sub-1", Rating: 3}, nil)
				repo.On("Update", mock.Anything, mock.Anything).Return(nil)
			} else {
				repo.On("FindByUserAndSubscription", mock.Anything, "user-1", "sub-1").Return(nil, nil)
				repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			}
			service := NewRatingService(repo, nil, zap.NewNop())

			stored, created, err := service.SubmitRating(context.Background(), ratingRequest(rating))
			if err != nil {
				return false
			}
			if created == exists {
				return false
			}
			if exists && stored.ID != "rating-1" {
				return false
			}
			return stored.Rating == rating
		},
		gen.Bool(),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
