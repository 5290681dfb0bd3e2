package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"natours/internal/errors"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Status  string      `json:"status"`
	Results *int        `json:"results,omitempty"`
	Token   string      `json:"token,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

const statusSuccess = "success"

func respond(c echo.Context, code int, key string, value interface{}) error {
	return c.JSON(code, Envelope{Status: statusSuccess, Data: map[string]interface{}{key: value}})
}

func respondList[T any](c echo.Context, key string, items []T) error {
	n := len(items)
	return c.JSON(http.StatusOK, Envelope{Status: statusSuccess, Results: &n, Data: map[string]interface{}{key: items}})
}

// bind decodes the request and runs the registered validator.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}

func paramID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w. Invalid %s: %s", errors.ErrValidation, name, c.Param(name))
	}
	return id, nil
}

// baseURL is the public origin links in emails and checkout pages point to.
// The request Host is only trusted outside production, where Config.Validate
// guarantees an explicit origin.
func baseURL(c echo.Context, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	return c.Scheme() + "://" + c.Request().Host
}
