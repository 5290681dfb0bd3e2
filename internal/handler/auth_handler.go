package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"natours/internal/middleware"
	"natours/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	cookies     *CookieIssuer
	publicURL   string
}

// NewAuthHandler creates a new auth handler. publicURL may be empty, in
// which case links are built from the request host.
func NewAuthHandler(authService service.AuthService, cookies *CookieIssuer, publicURL string) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, publicURL: publicURL}
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Name            string `json:"name" validate:"max=255"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

// LoginRequest represents a user login request. Missing fields are reported
// by the service so the error carries its own code.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

// UpdatePasswordRequest changes the password of the logged in user.
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	// CurrentPassword is accepted as an alias of PasswordCurrent.
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

func (h *AuthHandler) sendToken(c echo.Context, code int, res *service.AuthResult) error {
	h.cookies.Issue(c, res.Token)
	return c.JSON(code, Envelope{
		Status: statusSuccess,
		Token:  res.Token,
		Data:   map[string]interface{}{"user": res.User},
	})
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Account data"
// @Success 201 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Signup(c.Request().Context(), service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	}, baseURL(c, h.publicURL)+"/me")
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusCreated, res)
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, res)
}

// Logout godoc
// @Summary Log out by replacing the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} Envelope
// @Router /users/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.Clear(c)
	return c.JSON(http.StatusOK, Envelope{Status: statusSuccess})
}

// ForgotPassword godoc
// @Summary Email a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/forgotPassword [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	base := baseURL(c, h.publicURL)
	err := h.authService.RequestReset(c.Request().Context(), req.Email, func(token string) string {
		return base + "/api/v1/users/resetPassword/" + token
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Envelope{Status: statusSuccess, Message: "Token sent to email!"})
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/resetPassword/{token} [patch]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.RedeemReset(c.Request().Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, res)
}

// UpdateMyPassword godoc
// @Summary Change the password of the logged in user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePasswordRequest true "Current and new password"
// @Success 200 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/updateMyPassword [patch]
func (h *AuthHandler) UpdateMyPassword(c echo.Context) error {
	var req UpdatePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	current := req.PasswordCurrent
	if current == "" {
		current = req.CurrentPassword
	}

	res, err := h.authService.UpdatePassword(c.Request().Context(), middleware.CurrentUser(c), current, req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, res)
}

// Session godoc
// @Summary Current user, or null for anonymous visitors
// @Tags auth
// @Produce json
// @Success 200 {object} Envelope
// @Router /users/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return respond(c, http.StatusOK, "user", middleware.CurrentUser(c))
}
