package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"natours/internal/errors"
)

// DefaultRatingsAverage is the rating a tour shows before anyone reviews it.
const DefaultRatingsAverage = 4.5

// Tour difficulties.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// Tour is a bookable trip.
type Tour struct {
	ID              uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name            string          `json:"name" gorm:"size:40;uniqueIndex;not null" validate:"required,min=10,max=40"`
	Slug            string          `json:"slug" gorm:"size:64;index"`
	Duration        int             `json:"duration" gorm:"not null" validate:"required,gt=0"`
	MaxGroupSize    int             `json:"maxGroupSize" gorm:"not null" validate:"required,gt=0"`
	Difficulty      string          `json:"difficulty" gorm:"size:16;not null;index" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64         `json:"ratingsAverage" gorm:"not null;default:4.5" validate:"gte=1,lte=5"`
	RatingsQuantity int             `json:"ratingsQuantity" gorm:"not null;default:0"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;index"`
	PriceDiscount   decimal.Decimal `json:"priceDiscount" gorm:"type:decimal(10,2);not null;default:0"`
	Summary         string          `json:"summary" gorm:"size:255;not null" validate:"required"`
	Description     string          `json:"description" gorm:"type:text"`
	ImageCover      string          `json:"imageCover" gorm:"size:255;not null" validate:"required"`
	Images          []string        `json:"images" gorm:"serializer:json"`
	StartDates      []time.Time     `json:"startDates" gorm:"serializer:json"`
	SecretTour      bool            `json:"secretTour" gorm:"not null;default:false"`
	GuideIDs        []uuid.UUID     `json:"guides" gorm:"serializer:json"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Tour) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the slug in step with the name.
func (t *Tour) BeforeSave(tx *gorm.DB) error {
	t.Slug = slug.Make(t.Name)
	return nil
}

// DurationWeeks is the duration expressed in weeks.
func (t *Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}

// Validate checks tag constraints plus the price rules.
func (t *Tour) Validate() error {
	if t.RatingsAverage == 0 {
		t.RatingsAverage = DefaultRatingsAverage
	}
	if err := validateStruct(t); err != nil {
		return err
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("%w. Price must be greater than 0", errors.ErrValidation)
	}
	if t.PriceDiscount.IsNegative() || t.PriceDiscount.GreaterThanOrEqual(t.Price) {
		return fmt.Errorf("%w. Discount price (%s) should be below regular price", errors.ErrValidation, t.PriceDiscount.String())
	}
	return nil
}

// TourStats is one row of the per-difficulty statistics.
type TourStats struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int64   `json:"numTours"`
	NumRatings int64   `json:"numRatings"`
	AvgRating  float64 `json:"avgRating"`
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}

// MonthlyPlan lists the tours starting in a month of a year.
type MonthlyPlan struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"numTourStarts"`
	Tours         []string `json:"tours"`
}
