package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"natours/internal/errors"
	"natours/internal/model"
)

// BookingRepository defines booking persistence operations.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	Update(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	List(ctx context.Context) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Booking, error)
	DeleteAll(ctx context.Context) error
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// withTourAndUser preloads what a booking listing shows.
func withTourAndUser(db *gorm.DB) *gorm.DB {
	return db.Preload("Tour", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "slug")
	}).Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "email")
	})
}

// Create creates a new booking record.
func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Omit("Tour", "User").Create(booking).Error
}

// Update updates an existing booking record.
func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Omit("Tour", "User").Save(booking).Error
}

// Delete removes a booking.
func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Booking{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrBookingNotFound
	}
	return nil
}

// FindByID finds a booking by ID.
func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).Scopes(withTourAndUser).Where("id = ?", id).First(&booking).Error
	return found(&booking, err)
}

// List returns every booking, newest first.
func (r *bookingRepository) List(ctx context.Context) ([]model.Booking, error) {
	bookings := []model.Booking{}
	if err := r.db.WithContext(ctx).Scopes(withTourAndUser).Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListByUser returns the bookings of one user.
func (r *bookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Booking, error) {
	bookings := []model.Booking{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Booking{}).Error
}
