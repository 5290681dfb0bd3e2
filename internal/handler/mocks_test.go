package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"natours/internal/model"
	"natours/internal/payment"
	"natours/internal/repository"
	"natours/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, in service.SignupInput, profileURL string) (*service.AuthResult, error) {
	args := m.Called(ctx, in, profileURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) RequestReset(ctx context.Context, email string, resetURL func(token string) string) error {
	args := m.Called(ctx, email, resetURL)
	return args.Error(0)
}

func (m *MockAuthService) RedeemReset(ctx context.Context, token, password, confirm string) (*service.AuthResult, error) {
	args := m.Called(ctx, token, password, confirm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) UpdatePassword(ctx context.Context, user *model.User, current, password, confirm string) (*service.AuthResult, error) {
	args := m.Called(ctx, user, current, password, confirm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) UpdateMe(ctx context.Context, user *model.User, upd service.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, user, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) DeleteMe(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uuid.UUID, upd service.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockTourService struct {
	mock.Mock
}

func (m *MockTourService) CreateTour(ctx context.Context, tour *model.Tour) (*model.Tour, error) {
	args := m.Called(ctx, tour)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourService) UpdateTour(ctx context.Context, id uuid.UUID, apply func(*model.Tour) error) (*model.Tour, error) {
	args := m.Called(ctx, id, apply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourService) DeleteTour(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTourService) GetTour(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourService) GetTourBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourService) ListTours(ctx context.Context, filter repository.TourFilter) ([]model.Tour, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Tour), args.Error(1)
}

func (m *MockTourService) TopCheap(ctx context.Context, filter repository.TourFilter) ([]model.Tour, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Tour), args.Error(1)
}

func (m *MockTourService) Stats(ctx context.Context) ([]model.TourStats, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.TourStats), args.Error(1)
}

func (m *MockTourService) MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error) {
	args := m.Called(ctx, year)
	return args.Get(0).([]model.MonthlyPlan), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CheckoutSession(ctx context.Context, user *model.User, tourID uuid.UUID, baseURL string) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, user, tourID, baseURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}

func (m *MockBookingService) ConfirmCheckout(ctx context.Context, user *model.User, tourID, userID uuid.UUID) (*model.Booking, error) {
	args := m.Called(ctx, user, tourID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingService) MyTours(ctx context.Context, userID uuid.UUID) ([]model.Tour, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Tour), args.Error(1)
}

func (m *MockBookingService) ListBookings(ctx context.Context) ([]model.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingService) UpdateBooking(ctx context.Context, id uuid.UUID, apply func(*model.Booking) error) (*model.Booking, error) {
	args := m.Called(ctx, id, apply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingService) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
