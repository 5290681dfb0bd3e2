package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"natours/internal/errors"
	"natours/internal/model"
)

// DefaultPageSize is used when a listing does not ask for a limit.
const DefaultPageSize = 100

// TourFilter narrows and orders a tour listing.
type TourFilter struct {
	Difficulty  string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MaxDuration int
	MinRating   float64
	// Sort holds API field names, "-" prefixed for descending order.
	Sort  []string
	Page  int
	Limit int
}

var tourSortColumns = map[string]string{
	"price":           "price",
	"ratingsAverage":  "ratings_average",
	"ratingsQuantity": "ratings_quantity",
	"duration":        "duration",
	"name":            "name",
	"createdAt":       "created_at",
	"maxGroupSize":    "max_group_size",
}

// TourRepository defines tour persistence operations.
type TourRepository interface {
	Create(ctx context.Context, tour *model.Tour) error
	Update(ctx context.Context, tour *model.Tour) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tour, error)
	FindBySlug(ctx context.Context, slug string) (*model.Tour, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Tour, error)
	List(ctx context.Context, filter TourFilter) ([]model.Tour, error)
	Stats(ctx context.Context, minRating float64) ([]model.TourStats, error)
	UpdateRatings(ctx context.Context, id uuid.UUID, quantity int64, average float64) error
	Upsert(ctx context.Context, tours []model.Tour) error
	DeleteAll(ctx context.Context) error
}

type tourRepository struct {
	db *gorm.DB
}

// NewTourRepository creates a new tour repository.
func NewTourRepository(db *gorm.DB) TourRepository {
	return &tourRepository{db: db}
}

// publicTours hides secret tours from every read.
func publicTours(db *gorm.DB) *gorm.DB {
	return db.Where("secret_tour = ?", false)
}

func (r *tourRepository) Create(ctx context.Context, tour *model.Tour) error {
	err := r.db.WithContext(ctx).Create(tour).Error
	if errIsDuplicate(err) {
		return fmt.Errorf("%w. A tour named %q already exists", errors.ErrValidation, tour.Name)
	}
	return err
}

func (r *tourRepository) Update(ctx context.Context, tour *model.Tour) error {
	err := r.db.WithContext(ctx).Save(tour).Error
	if errIsDuplicate(err) {
		return fmt.Errorf("%w. A tour named %q already exists", errors.ErrValidation, tour.Name)
	}
	return err
}

func (r *tourRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Tour{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrTourNotFound
	}
	return nil
}

func (r *tourRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	var tour model.Tour
	err := r.db.WithContext(ctx).Scopes(publicTours).Where("id = ?", id).First(&tour).Error
	return found(&tour, err)
}

func (r *tourRepository) FindBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	var tour model.Tour
	err := r.db.WithContext(ctx).Scopes(publicTours).Where("slug = ?", slug).First(&tour).Error
	return found(&tour, err)
}

func (r *tourRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Tour, error) {
	tours := []model.Tour{}
	if len(ids) == 0 {
		return tours, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tours).Error; err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *tourRepository) List(ctx context.Context, filter TourFilter) ([]model.Tour, error) {
	q := r.db.WithContext(ctx).Scopes(publicTours)
	if filter.Difficulty != "" {
		q = q.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MaxDuration > 0 {
		q = q.Where("duration <= ?", filter.MaxDuration)
	}
	if filter.MinRating > 0 {
		q = q.Where("ratings_average >= ?", filter.MinRating)
	}
	q = q.Order(tourOrder(filter.Sort))

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	q = q.Limit(limit).Offset((page - 1) * limit)

	tours := []model.Tour{}
	if err := q.Find(&tours).Error; err != nil {
		return nil, err
	}
	return tours, nil
}

// tourOrder builds an ORDER BY clause from API sort fields. Unknown fields are ignored.
func tourOrder(fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		dir := "ASC"
		if strings.HasPrefix(f, "-") {
			dir = "DESC"
			f = f[1:]
		}
		if col, ok := tourSortColumns[f]; ok {
			parts = append(parts, col+" "+dir)
		}
	}
	if len(parts) == 0 {
		return "created_at DESC"
	}
	return strings.Join(parts, ", ")
}

func (r *tourRepository) Stats(ctx context.Context, minRating float64) ([]model.TourStats, error) {
	stats := []model.TourStats{}
	err := r.db.WithContext(ctx).Model(&model.Tour{}).Scopes(publicTours).
		Select("UPPER(difficulty) AS difficulty, COUNT(*) AS num_tours, SUM(ratings_quantity) AS num_ratings, " +
			"AVG(ratings_average) AS avg_rating, AVG(price) AS avg_price, MIN(price) AS min_price, MAX(price) AS max_price").
		Where("ratings_average >= ?", minRating).
		Group("difficulty").
		Order("avg_price").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *tourRepository) UpdateRatings(ctx context.Context, id uuid.UUID, quantity int64, average float64) error {
	return r.db.WithContext(ctx).Model(&model.Tour{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"ratings_quantity": quantity,
			"ratings_average":  average,
		}).Error
}

// Upsert inserts tours or overwrites existing rows with the same id.
func (r *tourRepository) Upsert(ctx context.Context, tours []model.Tour) error {
	if len(tours) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(tours, 100).Error
}

func (r *tourRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Tour{}).Error
}
