package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"natours/internal/errors"
	"natours/internal/model"
	"natours/internal/repository"
	"natours/internal/service"
)

// TourHandler serves the tour catalogue.
type TourHandler struct {
	svc service.TourService
}

// NewTourHandler creates a tour handler.
func NewTourHandler(svc service.TourService) *TourHandler {
	return &TourHandler{svc: svc}
}

func invalidQuery(key, value string) error {
	return fmt.Errorf("%w. Invalid %s: %s", errors.ErrValidation, key, value)
}

// query returns the first non-empty value among keys.
func query(c echo.Context, keys ...string) (string, string) {
	for _, k := range keys {
		if v := c.QueryParam(k); v != "" {
			return k, v
		}
	}
	return "", ""
}

func queryInt(c echo.Context, keys ...string) (int, error) {
	k, v := query(c, keys...)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, invalidQuery(k, v)
	}
	return n, nil
}

func queryDecimal(c echo.Context, keys ...string) (*decimal.Decimal, error) {
	k, v := query(c, keys...)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, invalidQuery(k, v)
	}
	return &d, nil
}

// tourFilter reads listing filters. Both the bracket form (price[lte]=500)
// and plain names (maxPrice=500) are accepted.
func tourFilter(c echo.Context) (repository.TourFilter, error) {
	f := repository.TourFilter{Difficulty: c.QueryParam("difficulty")}
	var err error
	if f.MinPrice, err = queryDecimal(c, "price[gte]", "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryDecimal(c, "price[lte]", "maxPrice"); err != nil {
		return f, err
	}
	if f.MaxDuration, err = queryInt(c, "duration[lte]", "maxDuration"); err != nil {
		return f, err
	}
	if k, v := query(c, "ratingsAverage[gte]", "minRating"); v != "" {
		if f.MinRating, err = strconv.ParseFloat(v, 64); err != nil {
			return f, invalidQuery(k, v)
		}
	}
	if f.Page, err = queryInt(c, "page"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(c, "limit"); err != nil {
		return f, err
	}
	if s := c.QueryParam("sort"); s != "" {
		f.Sort = strings.Split(s, ",")
	}
	return f, nil
}

// ListTours godoc
// @Summary List tours
// @Tags tours
// @Produce json
// @Param difficulty query string false "easy, medium or difficult"
// @Param minPrice query number false "Lowest price"
// @Param maxPrice query number false "Highest price"
// @Param maxDuration query int false "Longest duration in days"
// @Param sort query string false "Comma separated fields, - for descending"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Router /tours [get]
func (h *TourHandler) ListTours(c echo.Context) error {
	filter, err := tourFilter(c)
	if err != nil {
		return err
	}
	tours, err := h.svc.ListTours(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respondList(c, "tours", tours)
}

// TopCheap godoc
// @Summary Five best rated tours, cheapest first
// @Tags tours
// @Produce json
// @Success 200 {object} Envelope
// @Router /tours/top-5-cheap [get]
func (h *TourHandler) TopCheap(c echo.Context) error {
	filter, err := tourFilter(c)
	if err != nil {
		return err
	}
	tours, err := h.svc.TopCheap(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respondList(c, "tours", tours)
}

// GetTour godoc
// @Summary Get tour by id
// @Tags tours
// @Produce json
// @Param id path string true "Tour ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /tours/{id} [get]
func (h *TourHandler) GetTour(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	tour, err := h.svc.GetTour(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "tour", tour)
}

// GetTourBySlug godoc
// @Summary Get tour by slug
// @Tags tours
// @Produce json
// @Param slug path string true "Tour slug"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /tours/slug/{slug} [get]
func (h *TourHandler) GetTourBySlug(c echo.Context) error {
	tour, err := h.svc.GetTourBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "tour", tour)
}

// CreateTour godoc
// @Summary Create tour
// @Tags tours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tour body model.Tour true "Tour payload"
// @Success 201 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /tours [post]
func (h *TourHandler) CreateTour(c echo.Context) error {
	var tour model.Tour
	if err := c.Bind(&tour); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.CreateTour(c.Request().Context(), &tour)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "tour", created)
}

// UpdateTour godoc
// @Summary Update tour fields
// @Tags tours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tour ID"
// @Param tour body model.Tour true "Fields to change"
// @Success 200 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tours/{id} [patch]
func (h *TourHandler) UpdateTour(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	tour, err := h.svc.UpdateTour(c.Request().Context(), id, func(t *model.Tour) error {
		if err := c.Bind(t); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		return nil
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "tour", tour)
}

// DeleteTour godoc
// @Summary Delete tour
// @Tags tours
// @Security BearerAuth
// @Param id path string true "Tour ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /tours/{id} [delete]
func (h *TourHandler) DeleteTour(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTour(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// TourStats godoc
// @Summary Statistics per difficulty over well rated tours
// @Tags tours
// @Produce json
// @Success 200 {object} Envelope
// @Router /tours/tour-stats [get]
func (h *TourHandler) TourStats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "stats", stats)
}

// MonthlyPlan godoc
// @Summary Tour starts per month of a year
// @Tags tours
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Success 200 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Router /tours/monthly-plan/{year} [get]
func (h *TourHandler) MonthlyPlan(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		return invalidQuery("year", c.Param("year"))
	}
	plan, err := h.svc.MonthlyPlan(c.Request().Context(), year)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "plan", plan)
}
