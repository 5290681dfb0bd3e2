package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"natours/internal/middleware"
	"natours/internal/model"
	"natours/internal/service"
)

// BookingHandler handles checkout and booking endpoints.
type BookingHandler struct {
	svc       service.BookingService
	publicURL string
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(svc service.BookingService, publicURL string) *BookingHandler {
	return &BookingHandler{svc: svc, publicURL: publicURL}
}

// BookingRequest is the administrative booking payload.
type BookingRequest struct {
	Tour  uuid.UUID       `json:"tour" validate:"required"`
	User  uuid.UUID       `json:"user" validate:"required"`
	Price decimal.Decimal `json:"price"`
	// Paid defaults to true.
	Paid *bool `json:"paid"`
}

// UpdateBookingRequest changes price or payment state of a booking.
type UpdateBookingRequest struct {
	Price *decimal.Decimal `json:"price"`
	Paid  *bool            `json:"paid"`
}

// CheckoutSession godoc
// @Summary Open a checkout session for a tour
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param tourId path string true "Tour ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /booking/checkout-session/{tourId} [get]
func (h *BookingHandler) CheckoutSession(c echo.Context) error {
	tourID, err := paramID(c, "tourId")
	if err != nil {
		return err
	}
	session, err := h.svc.CheckoutSession(c.Request().Context(), middleware.CurrentUser(c), tourID, baseURL(c, h.publicURL))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  statusSuccess,
		"session": session,
	})
}

// CheckoutSuccess godoc
// @Summary Record the booking of a completed checkout
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param tour query string true "Tour ID"
// @Param user query string true "User ID"
// @Success 201 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /booking/checkout-success [get]
func (h *BookingHandler) CheckoutSuccess(c echo.Context) error {
	tourID, err := uuid.Parse(c.QueryParam("tour"))
	if err != nil {
		return invalidQuery("tour", c.QueryParam("tour"))
	}
	userID, err := uuid.Parse(c.QueryParam("user"))
	if err != nil {
		return invalidQuery("user", c.QueryParam("user"))
	}

	booking, err := h.svc.ConfirmCheckout(c.Request().Context(), middleware.CurrentUser(c), tourID, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "booking", booking)
}

// MyTours godoc
// @Summary Tours the logged in user booked
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Router /booking/my-tours [get]
func (h *BookingHandler) MyTours(c echo.Context) error {
	tours, err := h.svc.MyTours(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return respondList(c, "tours", tours)
}

// ListBookings godoc
// @Summary List bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Router /booking [get]
func (h *BookingHandler) ListBookings(c echo.Context) error {
	bookings, err := h.svc.ListBookings(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, "bookings", bookings)
}

// GetBooking godoc
// @Summary Get booking by id
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /booking/{id} [get]
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "booking", booking)
}

// CreateBooking godoc
// @Summary Create a booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BookingRequest true "Booking"
// @Success 201 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Router /booking [post]
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req BookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	booking, err := h.svc.CreateBooking(c.Request().Context(), &model.Booking{
		TourID: req.Tour,
		UserID: req.User,
		Price:  req.Price,
		Paid:   req.Paid == nil || *req.Paid,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "booking", booking)
}

// UpdateBooking godoc
// @Summary Update a booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body UpdateBookingRequest true "Fields to change"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /booking/{id} [patch]
func (h *BookingHandler) UpdateBooking(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	booking, err := h.svc.UpdateBooking(c.Request().Context(), id, func(b *model.Booking) error {
		if req.Price != nil {
			b.Price = *req.Price
		}
		if req.Paid != nil {
			b.Paid = *req.Paid
		}
		return nil
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "booking", booking)
}

// DeleteBooking godoc
// @Summary Delete a booking
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /booking/{id} [delete]
func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBooking(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
