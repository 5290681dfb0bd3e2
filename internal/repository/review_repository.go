package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"natours/internal/errors"
	"natours/internal/model"
)

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	List(ctx context.Context, tourID *uuid.UUID) ([]model.Review, error)
	// Stats groups the reviews of one tour. The result is empty when the
	// tour has no reviews and holds a single row otherwise.
	Stats(ctx context.Context, tourID uuid.UUID) ([]model.RatingStats, error)
	DeleteAll(ctx context.Context) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// withAuthor preloads the public part of the reviewer.
func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "photo")
	})
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	err := r.db.WithContext(ctx).Create(review).Error
	if errIsDuplicate(err) {
		return errors.ErrDuplicateReview
	}
	return err
}

func (r *reviewRepository) Update(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("User").Save(review).Error
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).Scopes(withAuthor).Where("id = ?", id).First(&review).Error
	return found(&review, err)
}

func (r *reviewRepository) List(ctx context.Context, tourID *uuid.UUID) ([]model.Review, error) {
	q := r.db.WithContext(ctx).Scopes(withAuthor)
	if tourID != nil {
		q = q.Where("tour_id = ?", *tourID)
	}
	reviews := []model.Review{}
	if err := q.Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) Stats(ctx context.Context, tourID uuid.UUID) ([]model.RatingStats, error) {
	stats := []model.RatingStats{}
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("COUNT(*) AS n_rating, AVG(rating) AS avg_rating").
		Where("tour_id = ?", tourID).
		Group("tour_id").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *reviewRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Review{}).Error
}
