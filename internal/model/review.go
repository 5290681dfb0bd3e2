package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a user's rating of a tour. A user reviews a tour at most once.
type Review struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Review    string    `json:"review" gorm:"type:text;not null" validate:"required"`
	Rating    float64   `json:"rating" gorm:"not null" validate:"required,gte=1,lte=5"`
	TourID    uuid.UUID `json:"tour" gorm:"type:char(36);not null;uniqueIndex:idx_review_tour_user,priority:1"`
	UserID    uuid.UUID `json:"-" gorm:"type:char(36);not null;uniqueIndex:idx_review_tour_user,priority:2"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Validate checks the review text and the rating range.
func (r *Review) Validate() error {
	return validateStruct(r)
}

// RatingStats is the aggregate of every review of one tour.
type RatingStats struct {
	NRating   int64
	AvgRating float64
}
