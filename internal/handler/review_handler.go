package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"natours/internal/middleware"
	"natours/internal/model"
	"natours/internal/service"
)

// ReviewHandler serves reviews, standalone and nested under a tour.
type ReviewHandler struct {
	svc service.ReviewService
}

// NewReviewHandler creates a review handler.
func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// CreateReviewRequest is a new review. Tour may be omitted on the nested route.
type CreateReviewRequest struct {
	Review string    `json:"review"`
	Rating float64   `json:"rating"`
	Tour   uuid.UUID `json:"tour"`
}

// UpdateReviewRequest changes the text or the rating of a review.
type UpdateReviewRequest struct {
	Review *string  `json:"review"`
	Rating *float64 `json:"rating"`
}

// tourScope returns the tour a request is nested under, or the tourId query filter.
func tourScope(c echo.Context) (*uuid.UUID, error) {
	raw := c.Param("tourId")
	if raw == "" {
		raw = c.QueryParam("tourId")
	}
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalidQuery("tourId", raw)
	}
	return &id, nil
}

// ListReviews godoc
// @Summary List reviews, optionally of one tour
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param tourId query string false "Tour ID"
// @Success 200 {object} Envelope
// @Router /reviews [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	tourID, err := tourScope(c)
	if err != nil {
		return err
	}
	reviews, err := h.svc.ListReviews(c.Request().Context(), tourID)
	if err != nil {
		return err
	}
	return respondList(c, "reviews", reviews)
}

// GetReview godoc
// @Summary Get review by id
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /reviews/{id} [get]
func (h *ReviewHandler) GetReview(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	review, err := h.svc.GetReview(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "review", review)
}

// CreateReview godoc
// @Summary Review a tour as the logged in user
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /reviews [post]
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	var req CreateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tourID, err := tourScope(c)
	if err != nil {
		return err
	}
	if tourID != nil {
		req.Tour = *tourID
	}

	review, err := h.svc.CreateReview(c.Request().Context(), &model.Review{
		Review: req.Review,
		Rating: req.Rating,
		TourID: req.Tour,
		UserID: middleware.CurrentUser(c).ID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "review", review)
}

// UpdateReview godoc
// @Summary Update a review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body UpdateReviewRequest true "Fields to change"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /reviews/{id} [patch]
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := h.svc.UpdateReview(c.Request().Context(), id, func(r *model.Review) error {
		if req.Review != nil {
			r.Review = *req.Review
		}
		if req.Rating != nil {
			r.Rating = *req.Rating
		}
		return nil
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "review", review)
}

// DeleteReview godoc
// @Summary Delete a review
// @Tags reviews
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteReview(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
