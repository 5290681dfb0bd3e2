package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"natours/internal/errors"
	"natours/internal/middleware"
	"natours/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateMeRequest lists the profile fields a user may change on their own account.
type UpdateMeRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Photo           *string `json:"photo"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"passwordConfirm"`
}

// UpdateUserRequest is the administrative user update.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Photo *string `json:"photo"`
	Role  *string `json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
}

// GetMe godoc
// @Summary Profile of the logged in user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c echo.Context) error {
	return respond(c, http.StatusOK, "user", middleware.CurrentUser(c))
}

// UpdateMe godoc
// @Summary Update name, email or photo of the logged in user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateMeRequest true "Profile fields"
// @Success 200 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/updateMe [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req UpdateMeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Password != "" || req.PasswordConfirm != "" {
		return errors.ErrPasswordUpdateNotAllowed
	}

	user, err := h.svc.UpdateMe(c.Request().Context(), middleware.CurrentUser(c), service.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Photo: req.Photo,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", user)
}

// DeleteMe godoc
// @Summary Deactivate the logged in user
// @Tags users
// @Security BearerAuth
// @Success 204
// @Router /users/deleteMe [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	if err := h.svc.DeleteMe(c.Request().Context(), middleware.CurrentUser(c).ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", user)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, "users", users)
}

// UpdateUser godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "User fields"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.svc.UpdateUser(c.Request().Context(), id, service.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Photo: req.Photo,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
