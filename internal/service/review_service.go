package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"natours/internal/cache"
	"natours/internal/errors"
	"natours/internal/model"
	"natours/internal/repository"
)

// RatingAggregator keeps a tour's rating summary in step with its reviews.
type RatingAggregator struct {
	reviews repository.ReviewRepository
	tours   repository.TourRepository
	cache   *cache.Client
}

// NewRatingAggregator creates an aggregator over the review and tour stores.
func NewRatingAggregator(reviews repository.ReviewRepository, tours repository.TourRepository, cache *cache.Client) *RatingAggregator {
	return &RatingAggregator{reviews: reviews, tours: tours, cache: cache}
}

// Recalculate recomputes the number of ratings and their average for tourID.
// A tour without reviews goes back to zero ratings and the default average.
func (a *RatingAggregator) Recalculate(ctx context.Context, tourID uuid.UUID) error {
	stats, err := a.reviews.Stats(ctx, tourID)
	if err != nil {
		return fmt.Errorf("review stats: %w", err)
	}

	quantity, average := int64(0), model.DefaultRatingsAverage
	if len(stats) > 0 && stats[0].NRating > 0 {
		quantity = stats[0].NRating
		average = math.Round(stats[0].AvgRating*10) / 10
	}
	if err := a.tours.UpdateRatings(ctx, tourID, quantity, average); err != nil {
		return fmt.Errorf("update ratings: %w", err)
	}
	_ = a.cache.Delete(ctx, tourCacheKey(tourID))
	return nil
}

// ReviewService exposes review operations. Every write refreshes the rating
// summary of the reviewed tour.
type ReviewService interface {
	ListReviews(ctx context.Context, tourID *uuid.UUID) ([]model.Review, error)
	GetReview(ctx context.Context, id uuid.UUID) (*model.Review, error)
	CreateReview(ctx context.Context, review *model.Review) (*model.Review, error)
	UpdateReview(ctx context.Context, id uuid.UUID, apply func(*model.Review) error) (*model.Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error
}

type reviewService struct {
	reviews    repository.ReviewRepository
	tours      repository.TourRepository
	aggregator *RatingAggregator
	log        *zap.Logger
}

// NewReviewService creates a review service.
func NewReviewService(reviews repository.ReviewRepository, tours repository.TourRepository, aggregator *RatingAggregator, log *zap.Logger) ReviewService {
	return &reviewService{reviews: reviews, tours: tours, aggregator: aggregator, log: log}
}

func (s *reviewService) ListReviews(ctx context.Context, tourID *uuid.UUID) ([]model.Review, error) {
	return s.reviews.List(ctx, tourID)
}

func (s *reviewService) GetReview(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, errors.ErrReviewNotFound
	}
	return review, nil
}

func (s *reviewService) CreateReview(ctx context.Context, review *model.Review) (*model.Review, error) {
	if err := review.Validate(); err != nil {
		return nil, err
	}
	tour, err := s.tours.FindByID(ctx, review.TourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, errors.ErrTourNotFound
	}
	review.ID = uuid.Nil
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	s.refresh(ctx, review.TourID)
	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, id uuid.UUID, apply func(*model.Review) error) (*model.Review, error) {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	tourID, userID := review.TourID, review.UserID
	if err := apply(review); err != nil {
		return nil, err
	}
	review.ID, review.TourID, review.UserID = id, tourID, userID
	if err := review.Validate(); err != nil {
		return nil, err
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	s.refresh(ctx, review.TourID)
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, id uuid.UUID) error {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx, review.TourID)
	return nil
}

func (s *reviewService) refresh(ctx context.Context, tourID uuid.UUID) {
	if err := s.aggregator.Recalculate(ctx, tourID); err != nil {
		s.log.Error("rating aggregation failed", zap.String("tour_id", tourID.String()), zap.Error(err))
	}
}
