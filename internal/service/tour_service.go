package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"natours/internal/cache"
	"natours/internal/errors"
	"natours/internal/metrics"
	"natours/internal/model"
	"natours/internal/repository"
)

const (
	tourCacheTTL = 5 * time.Minute
	// statsMinRating restricts the statistics to well rated tours.
	statsMinRating = 4.5
	topCheapLimit  = 5
)

// TourService exposes tour operations.
type TourService interface {
	CreateTour(ctx context.Context, tour *model.Tour) (*model.Tour, error)
	// UpdateTour loads the tour, lets apply modify it, then validates and saves it.
	UpdateTour(ctx context.Context, id uuid.UUID, apply func(*model.Tour) error) (*model.Tour, error)
	DeleteTour(ctx context.Context, id uuid.UUID) error
	GetTour(ctx context.Context, id uuid.UUID) (*model.Tour, error)
	GetTourBySlug(ctx context.Context, slug string) (*model.Tour, error)
	ListTours(ctx context.Context, filter repository.TourFilter) ([]model.Tour, error)
	TopCheap(ctx context.Context, filter repository.TourFilter) ([]model.Tour, error)
	Stats(ctx context.Context) ([]model.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error)
}

type tourService struct {
	repo    repository.TourRepository
	cache   *cache.Client
	metrics *metrics.Metrics
}

// NewTourService builds a TourService with repository and cache.
func NewTourService(repo repository.TourRepository, cache *cache.Client, m *metrics.Metrics) TourService {
	return &tourService{repo: repo, cache: cache, metrics: m}
}

func tourCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("tour:%s", id)
}

func (s *tourService) CreateTour(ctx context.Context, tour *model.Tour) (*model.Tour, error) {
	tour.ID = uuid.Nil
	if err := tour.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

func (s *tourService) UpdateTour(ctx context.Context, id uuid.UUID, apply func(*model.Tour) error) (*model.Tour, error) {
	tour, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, errors.ErrTourNotFound
	}
	if err := apply(tour); err != nil {
		return nil, err
	}
	tour.ID = id
	if err := tour.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tour); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, tourCacheKey(id))
	return tour, nil
}

func (s *tourService) DeleteTour(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, tourCacheKey(id))
	return nil
}

func (s *tourService) GetTour(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	var cached model.Tour
	if s.cache.GetJSON(ctx, tourCacheKey(id), &cached) {
		s.metrics.CacheLookup("tour", true)
		return &cached, nil
	}
	s.metrics.CacheLookup("tour", false)

	tour, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, errors.ErrTourNotFound
	}
	_ = s.cache.SetJSON(ctx, tourCacheKey(id), tour, tourCacheTTL)
	return tour, nil
}

func (s *tourService) GetTourBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	tour, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, errors.ErrTourNotFound
	}
	return tour, nil
}

func (s *tourService) ListTours(ctx context.Context, filter repository.TourFilter) ([]model.Tour, error) {
	return s.repo.List(ctx, filter)
}

// TopCheap lists the five best rated tours, cheapest first among equals.
func (s *tourService) TopCheap(ctx context.Context, filter repository.TourFilter) ([]model.Tour, error) {
	filter.Limit = topCheapLimit
	filter.Page = 1
	filter.Sort = []string{"-ratingsAverage", "price"}
	return s.repo.List(ctx, filter)
}

func (s *tourService) Stats(ctx context.Context) ([]model.TourStats, error) {
	return s.repo.Stats(ctx, statsMinRating)
}

// MonthlyPlan counts the tour starts of each month of year, busiest month first.
func (s *tourService) MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error) {
	byMonth := map[int]*model.MonthlyPlan{}
	for page := 1; ; page++ {
		tours, err := s.repo.List(ctx, repository.TourFilter{Page: page, Limit: repository.DefaultPageSize, Sort: []string{"name"}})
		if err != nil {
			return nil, err
		}
		for _, t := range tours {
			for _, start := range t.StartDates {
				if start.UTC().Year() != year {
					continue
				}
				month := int(start.UTC().Month())
				plan, ok := byMonth[month]
				if !ok {
					plan = &model.MonthlyPlan{Month: month, Tours: []string{}}
					byMonth[month] = plan
				}
				plan.NumTourStarts++
				plan.Tours = append(plan.Tours, t.Name)
			}
		}
		if len(tours) < repository.DefaultPageSize {
			break
		}
	}

	plans := make([]model.MonthlyPlan, 0, len(byMonth))
	for _, p := range byMonth {
		plans = append(plans, *p)
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].NumTourStarts != plans[j].NumTourStarts {
			return plans[i].NumTourStarts > plans[j].NumTourStarts
		}
		return plans[i].Month < plans[j].Month
	})
	return plans, nil
}
