package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"natours/internal/errors"
	"natours/internal/model"
	"natours/internal/payment"
	"natours/internal/repository"
)

// BookingService exposes checkout and booking administration.
type BookingService interface {
	// CheckoutSession opens a hosted checkout for user buying tourID. Links
	// in the session point back to baseURL.
	CheckoutSession(ctx context.Context, user *model.User, tourID uuid.UUID, baseURL string) (*payment.CheckoutSession, error)
	// ConfirmCheckout records the paid booking the checkout success page
	// reports. The price is always the stored tour price.
	ConfirmCheckout(ctx context.Context, user *model.User, tourID, userID uuid.UUID) (*model.Booking, error)
	MyTours(ctx context.Context, userID uuid.UUID) ([]model.Tour, error)
	ListBookings(ctx context.Context) ([]model.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	CreateBooking(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, apply func(*model.Booking) error) (*model.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
}

type bookingService struct {
	bookings repository.BookingRepository
	tours    repository.TourRepository
	gateway  payment.CheckoutGateway
}

// NewBookingService creates a booking service.
func NewBookingService(bookings repository.BookingRepository, tours repository.TourRepository, gateway payment.CheckoutGateway) BookingService {
	return &bookingService{bookings: bookings, tours: tours, gateway: gateway}
}

func (s *bookingService) tour(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	tour, err := s.tours.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, errors.ErrTourNotFound
	}
	return tour, nil
}

func (s *bookingService) CheckoutSession(ctx context.Context, user *model.User, tourID uuid.UUID, baseURL string) (*payment.CheckoutSession, error) {
	tour, err := s.tour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	base := strings.TrimRight(baseURL, "/")

	q := url.Values{}
	q.Set("tour", tour.ID.String())
	q.Set("user", user.ID.String())

	req := payment.CheckoutRequest{
		TourID:        tour.ID.String(),
		TourName:      tour.Name,
		TourSummary:   tour.Summary,
		Price:         tour.Price,
		CustomerEmail: user.Email,
		SuccessURL:    base + "/api/v1/booking/checkout-success?" + q.Encode(),
		CancelURL:     base + "/tour/" + tour.Slug,
	}
	if tour.ImageCover != "" {
		req.ImageURL = base + "/img/tours/" + tour.ImageCover
	}
	return s.gateway.CreateSession(ctx, req)
}

func (s *bookingService) ConfirmCheckout(ctx context.Context, user *model.User, tourID, userID uuid.UUID) (*model.Booking, error) {
	if user.ID != userID {
		return nil, errors.ErrForbidden
	}
	tour, err := s.tour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	booking := &model.Booking{TourID: tour.ID, UserID: userID, Price: tour.Price, Paid: true}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) MyTours(ctx context.Context, userID uuid.UUID) ([]model.Tour, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]bool, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		if !seen[b.TourID] {
			seen[b.TourID] = true
			ids = append(ids, b.TourID)
		}
	}
	return s.tours.FindByIDs(ctx, ids)
}

func (s *bookingService) ListBookings(ctx context.Context) ([]model.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *bookingService) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, errors.ErrBookingNotFound
	}
	return booking, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	tour, err := s.tour(ctx, booking.TourID)
	if err != nil {
		return nil, err
	}
	if booking.UserID == uuid.Nil {
		return nil, errors.ErrValidation
	}
	if !booking.Price.IsPositive() {
		booking.Price = tour.Price
	}
	booking.ID = uuid.Nil
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, id uuid.UUID, apply func(*model.Booking) error) (*model.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(booking); err != nil {
		return nil, err
	}
	booking.ID = id
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	return s.bookings.Delete(ctx, id)
}
