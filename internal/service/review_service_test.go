package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"natours/internal/errors"
	"natours/internal/model"
)

func TestRatingAggregator_Recalculate(t *testing.T) {
	tests := []struct {
		name            string
		stats           []model.RatingStats
		expectedCount   int64
		expectedAverage float64
	}{
		{
			name:            "rounds the average to one decimal",
			stats:           []model.RatingStats{{NRating: 3, AvgRating: 4.666666}},
			expectedCount:   3,
			expectedAverage: 4.7,
		},
		{
			name:            "no reviews left",
			stats:           []model.RatingStats{},
			expectedCount:   0,
			expectedAverage: model.DefaultRatingsAverage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews, tours := new(MockReviewRepository), new(MockTourRepository)
			tourID := uuid.New()
			reviews.On("Stats", mock.Anything, tourID).Return(tt.stats, nil)
			tours.On("UpdateRatings", mock.Anything, tourID, tt.expectedCount, tt.expectedAverage).Return(nil)

			err := NewRatingAggregator(reviews, tours, nil).Recalculate(context.Background(), tourID)
			require.NoError(t, err)
			tours.AssertExpectations(t)
		})
	}
}

func TestRatingAggregator_DropsCachedTour(t *testing.T) {
	reviews, tours := new(MockReviewRepository), new(MockTourRepository)
	c := newTestCache(t)
	tour := sampleTour()
	require.NoError(t, c.SetJSON(context.Background(), tourCacheKey(tour.ID), tour, time.Minute))
	reviews.On("Stats", mock.Anything, tour.ID).Return([]model.RatingStats{{NRating: 1, AvgRating: 5}}, nil)
	tours.On("UpdateRatings", mock.Anything, tour.ID, int64(1), 5.0).Return(nil)

	require.NoError(t, NewRatingAggregator(reviews, tours, c).Recalculate(context.Background(), tour.ID))

	var cached model.Tour
	assert.False(t, c.GetJSON(context.Background(), tourCacheKey(tour.ID), &cached))
}

func newTestReviewService(reviews *MockReviewRepository, tours *MockTourRepository) ReviewService {
	return NewReviewService(reviews, tours, NewRatingAggregator(reviews, tours, nil), zap.NewNop())
}

func TestReviewService_CreateReview(t *testing.T) {
	tour := sampleTour()
	userID := uuid.New()

	tests := []struct {
		name          string
		review        model.Review
		setupMock     func(*MockReviewRepository, *MockTourRepository)
		expectedError error
	}{
		{
			name:   "recalculates the tour rating",
			review: model.Review{Review: "Amazing!", Rating: 5, TourID: tour.ID, UserID: userID},
			setupMock: func(r *MockReviewRepository, tr *MockTourRepository) {
				tr.On("FindByID", mock.Anything, tour.ID).Return(tour, nil)
				r.On("Create", mock.Anything, mock.AnythingOfType("*model.Review")).Return(nil)
				r.On("Stats", mock.Anything, tour.ID).Return([]model.RatingStats{{NRating: 1, AvgRating: 5}}, nil)
				tr.On("UpdateRatings", mock.Anything, tour.ID, int64(1), 5.0).Return(nil)
			},
		},
		{
			name:   "aggregation failure does not fail the write",
			review: model.Review{Review: "Amazing!", Rating: 4, TourID: tour.ID, UserID: userID},
			setupMock: func(r *MockReviewRepository, tr *MockTourRepository) {
				tr.On("FindByID", mock.Anything, tour.ID).Return(tour, nil)
				r.On("Create", mock.Anything, mock.AnythingOfType("*model.Review")).Return(nil)
				r.On("Stats", mock.Anything, tour.ID).Return(nil, stderrors.New("db gone"))
			},
		},
		{
			name:   "duplicate review",
			review: model.Review{Review: "Again", Rating: 4, TourID: tour.ID, UserID: userID},
			setupMock: func(r *MockReviewRepository, tr *MockTourRepository) {
				tr.On("FindByID", mock.Anything, tour.ID).Return(tour, nil)
				r.On("Create", mock.Anything, mock.Anything).Return(errors.ErrDuplicateReview)
			},
			expectedError: errors.ErrDuplicateReview,
		},
		{
			name:   "unknown tour",
			review: model.Review{Review: "Nice", Rating: 4, TourID: tour.ID, UserID: userID},
			setupMock: func(_ *MockReviewRepository, tr *MockTourRepository) {
				tr.On("FindByID", mock.Anything, tour.ID).Return(nil, nil)
			},
			expectedError: errors.ErrTourNotFound,
		},
		{
			name:          "rating out of range",
			review:        model.Review{Review: "Nice", Rating: 6, TourID: tour.ID, UserID: userID},
			setupMock:     func(*MockReviewRepository, *MockTourRepository) {},
			expectedError: errors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews, tours := new(MockReviewRepository), new(MockTourRepository)
			tt.setupMock(reviews, tours)
			svc := newTestReviewService(reviews, tours)

			review := tt.review
			_, err := svc.CreateReview(context.Background(), &review)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				reviews.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			reviews.AssertExpectations(t)
			tours.AssertExpectations(t)
		})
	}
}

func TestReviewService_UpdateReviewKeepsOwnership(t *testing.T) {
	reviews, tours := new(MockReviewRepository), new(MockTourRepository)
	existing := &model.Review{ID: uuid.New(), Review: "Good", Rating: 4, TourID: uuid.New(), UserID: uuid.New()}
	tourID, userID := existing.TourID, existing.UserID

	reviews.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	reviews.On("Update", mock.Anything, existing).Return(nil)
	reviews.On("Stats", mock.Anything, tourID).Return([]model.RatingStats{{NRating: 1, AvgRating: 2}}, nil)
	tours.On("UpdateRatings", mock.Anything, tourID, int64(1), 2.0).Return(nil)
	svc := newTestReviewService(reviews, tours)

	updated, err := svc.UpdateReview(context.Background(), existing.ID, func(r *model.Review) error {
		r.Rating = 2
		r.TourID = uuid.New()
		r.UserID = uuid.New()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, updated.Rating)
	assert.Equal(t, tourID, updated.TourID)
	assert.Equal(t, userID, updated.UserID)
	tours.AssertExpectations(t)
}

func TestReviewService_DeleteReview(t *testing.T) {
	t.Run("resets the rating of an unreviewed tour", func(t *testing.T) {
		reviews, tours := new(MockReviewRepository), new(MockTourRepository)
		existing := &model.Review{ID: uuid.New(), TourID: uuid.New()}
		reviews.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
		reviews.On("Delete", mock.Anything, existing.ID).Return(nil)
		reviews.On("Stats", mock.Anything, existing.TourID).Return([]model.RatingStats{}, nil)
		tours.On("UpdateRatings", mock.Anything, existing.TourID, int64(0), 4.5).Return(nil)
		svc := newTestReviewService(reviews, tours)

		require.NoError(t, svc.DeleteReview(context.Background(), existing.ID))
		tours.AssertExpectations(t)
	})

	t.Run("unknown review", func(t *testing.T) {
		reviews := new(MockReviewRepository)
		id := uuid.New()
		reviews.On("FindByID", mock.Anything, id).Return(nil, nil)
		svc := newTestReviewService(reviews, new(MockTourRepository))

		assert.ErrorIs(t, svc.DeleteReview(context.Background(), id), errors.ErrReviewNotFound)
	})
}
