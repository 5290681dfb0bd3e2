package errors

import (
	"errors"
	"net/http"
)

// Authentication failures. Every one of them is reported as 401.
var (
	// ErrNotAuthenticated is the generic session failure.
	ErrNotAuthenticated = errors.New("you are not logged in, please log in to get access")
	// ErrNotLoggedIn is returned when neither the Authorization header nor the jwt cookie carries a token.
	ErrNotLoggedIn = errors.New("you are not logged in, please log in to get access")
	// ErrInvalidToken is returned when a session token is malformed, badly signed or expired.
	ErrInvalidToken = errors.New("invalid or expired token, please log in again")
	// ErrUserNoLongerExists is returned when the token subject was deleted after issuance.
	ErrUserNoLongerExists = errors.New("the user belonging to this token no longer exists")
	// ErrPasswordChanged is returned for a token issued before the latest password change.
	ErrPasswordChanged = errors.New("user recently changed password, please log in again")
	// ErrInvalidCredentials is returned when login email or password is incorrect.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrWrongPassword is returned when the current password does not match on change.
	ErrWrongPassword = errors.New("your current password is wrong")
)

var (
	// ErrForbidden is returned when the user's role is not allowed to perform an action.
	ErrForbidden = errors.New("you do not have permission to perform this action")
	// ErrTokenInvalidOrExpired is returned for an unknown or elapsed password reset token.
	ErrTokenInvalidOrExpired = errors.New("token is invalid or has expired")
	// ErrNotFound is returned when no user has the email a reset was requested for.
	ErrNotFound = errors.New("there is no user with this email address")
	// ErrDeliveryFailed is returned when the reset email could not be sent.
	ErrDeliveryFailed = errors.New("there was an error sending the email, try again later")
	// ErrMissingCredentials is returned when login is attempted without email or password.
	ErrMissingCredentials = errors.New("please provide email and password")
	// ErrPasswordMismatch is returned when password and passwordConfirm differ.
	ErrPasswordMismatch = errors.New("passwords are not the same")
	// ErrPasswordTooShort is returned when a new password is shorter than the minimum length.
	ErrPasswordTooShort = errors.New("password must have at least 6 characters")
	// ErrPasswordUpdateNotAllowed is returned when updateMe carries password fields.
	ErrPasswordUpdateNotAllowed = errors.New("this route is not for password updates, please use /updateMyPassword")
	// ErrUserAlreadyExists is returned when the email is already taken.
	ErrUserAlreadyExists = errors.New("a user with this email already exists")
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = errors.New("no user found with that id")
	// ErrTourNotFound is returned when a tour id or slug does not exist.
	ErrTourNotFound = errors.New("no tour found with that id")
	// ErrReviewNotFound is returned when a review id does not exist.
	ErrReviewNotFound = errors.New("no review found with that id")
	// ErrBookingNotFound is returned when a booking id does not exist.
	ErrBookingNotFound = errors.New("no booking found with that id")
	// ErrDuplicateReview is returned when a user reviews the same tour twice.
	ErrDuplicateReview = errors.New("you have already reviewed this tour")
	// ErrValidation wraps model validation failures.
	ErrValidation = errors.New("invalid input data")
	// ErrPaymentUnavailable is returned when the checkout provider cannot create a session.
	ErrPaymentUnavailable = errors.New("payment provider is unavailable")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Code   string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse. Client errors are
// reported as "fail", server errors as "error".
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	status := "fail"
	if e.StatusCode >= http.StatusInternalServerError {
		status = "error"
	}
	return ErrorResponse{
		Status: status,
		Error:  e.Message,
		Code:   e.Code,
	}
}

type mapping struct {
	target error
	status int
	code   string
}

var mappings = []mapping{
	{ErrNotLoggedIn, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{ErrInvalidToken, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{ErrUserNoLongerExists, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{ErrPasswordChanged, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{ErrNotAuthenticated, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrWrongPassword, http.StatusUnauthorized, "WRONG_PASSWORD"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrTokenInvalidOrExpired, http.StatusBadRequest, "TOKEN_INVALID_OR_EXPIRED"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrDeliveryFailed, http.StatusInternalServerError, "DELIVERY_FAILED"},
	{ErrMissingCredentials, http.StatusBadRequest, "MISSING_CREDENTIALS"},
	{ErrPasswordMismatch, http.StatusBadRequest, "PASSWORD_MISMATCH"},
	{ErrPasswordTooShort, http.StatusBadRequest, "PASSWORD_TOO_SHORT"},
	{ErrPasswordUpdateNotAllowed, http.StatusBadRequest, "PASSWORD_UPDATE_NOT_ALLOWED"},
	{ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrTourNotFound, http.StatusNotFound, "TOUR_NOT_FOUND"},
	{ErrReviewNotFound, http.StatusNotFound, "REVIEW_NOT_FOUND"},
	{ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND"},
	{ErrDuplicateReview, http.StatusConflict, "DUPLICATE_REVIEW"},
	{ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrPaymentUnavailable, http.StatusBadGateway, "PAYMENT_UNAVAILABLE"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors keep their
// full message so validation details reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return NewHTTPError(m.status, err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// IsNotAuthenticated reports whether err is one of the 401 session failures.
func IsNotAuthenticated(err error) bool {
	for _, target := range []error{ErrNotAuthenticated, ErrNotLoggedIn, ErrInvalidToken, ErrUserNoLongerExists, ErrPasswordChanged} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
