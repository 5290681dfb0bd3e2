package router

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"natours/internal/config"
	"natours/internal/errors"
	"natours/internal/handler"
	"natours/internal/metrics"
	"natours/internal/middleware"
	"natours/internal/model"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Tour    *handler.TourHandler
	Review  *handler.ReviewHandler
	Booking *handler.BookingHandler
	Health  *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	authn *middleware.Authenticator,
	h Handlers,
) {
	e.HTTPErrorHandler = ErrorHandler(cfg.IsProduction(), log)
	e.Validator = NewValidator()

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(m.Middleware())
	e.Use(echomw.BodyLimit("10K"))

	e.GET("/healthz", h.Health.Liveness)
	e.GET("/readyz", h.Health.Readiness)
	if m != nil {
		e.GET("/metrics", m.Handler())
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	protect := authn.Protect()
	admin := middleware.RestrictTo(model.RoleAdmin)
	staff := middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide)

	// Users
	users := api.Group("/users")
	users.POST("/signup", h.Auth.Signup)
	users.POST("/login", h.Auth.Login)
	users.GET("/logout", h.Auth.Logout)
	users.POST("/forgotPassword", h.Auth.ForgotPassword)
	users.PATCH("/resetPassword/:token", h.Auth.ResetPassword)
	users.GET("/session", h.Auth.Session, authn.IsLoggedIn())

	users.PATCH("/updateMyPassword", h.Auth.UpdateMyPassword, protect)
	users.GET("/me", h.User.GetMe, protect)
	users.PATCH("/updateMe", h.User.UpdateMe, protect)
	users.DELETE("/deleteMe", h.User.DeleteMe, protect)

	users.GET("", h.User.ListUsers, protect, admin)
	users.GET("/:id", h.User.GetUser, protect, admin)
	users.PATCH("/:id", h.User.UpdateUser, protect, admin)
	users.DELETE("/:id", h.User.DeleteUser, protect, admin)

	// Tours
	tours := api.Group("/tours")
	tours.GET("", h.Tour.ListTours)
	tours.GET("/top-5-cheap", h.Tour.TopCheap)
	tours.GET("/tour-stats", h.Tour.TourStats)
	tours.GET("/monthly-plan/:year", h.Tour.MonthlyPlan,
		protect, middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide, model.RoleGuide))
	tours.GET("/slug/:slug", h.Tour.GetTourBySlug)
	tours.GET("/:id", h.Tour.GetTour)
	tours.POST("", h.Tour.CreateTour, protect, staff)
	tours.PATCH("/:id", h.Tour.UpdateTour, protect, staff)
	tours.DELETE("/:id", h.Tour.DeleteTour, protect, staff)

	tours.GET("/:tourId/reviews", h.Review.ListReviews, protect)
	tours.POST("/:tourId/reviews", h.Review.CreateReview, protect, middleware.RestrictTo(model.RoleUser))

	// Reviews
	reviews := api.Group("/reviews")
	reviews.GET("", h.Review.ListReviews, protect)
	reviews.POST("", h.Review.CreateReview, protect, middleware.RestrictTo(model.RoleUser))
	reviews.GET("/:id", h.Review.GetReview, protect)
	reviews.PATCH("/:id", h.Review.UpdateReview, protect, middleware.RestrictTo(model.RoleUser, model.RoleAdmin))
	reviews.DELETE("/:id", h.Review.DeleteReview, protect, middleware.RestrictTo(model.RoleUser, model.RoleAdmin))

	// Bookings
	booking := api.Group("/booking")
	booking.GET("/checkout-session/:tourId", h.Booking.CheckoutSession, protect)
	booking.GET("/checkout-success", h.Booking.CheckoutSuccess, protect)
	booking.GET("/my-tours", h.Booking.MyTours, protect)

	booking.GET("", h.Booking.ListBookings, protect, staff)
	booking.POST("", h.Booking.CreateBooking, protect, staff)
	booking.GET("/:id", h.Booking.GetBooking, protect, staff)
	booking.PATCH("/:id", h.Booking.UpdateBooking, protect, staff)
	booking.DELETE("/:id", h.Booking.DeleteBooking, protect, staff)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator used by the API.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ErrorHandler renders every error as {status, error, code}. In production
// the detail of unexpected failures is not sent to the client.
func ErrorHandler(production bool, log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := translate(err, c)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err),
			)
			if !production && httpErr.Code == "INTERNAL_ERROR" {
				httpErr.Message = err.Error()
			}
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(httpErr.StatusCode)
		} else {
			werr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}

func translate(err error, c echo.Context) *errors.HTTPError {
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return errors.NewHTTPError(http.StatusNotFound,
				fmt.Sprintf("Can't find %s on this server!", c.Request().URL.Path), "NOT_FOUND")
		}
		return errors.NewHTTPError(he.Code, fmt.Sprint(he.Message), statusCode(he.Code))
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return errors.NewHTTPError(http.StatusBadRequest,
			"Invalid input data. "+strings.Join(fields, ". "), "VALIDATION_ERROR")
	}

	return errors.MapErrorToHTTP(err)
}

// statusCode turns "Bad Request" into "BAD_REQUEST".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
