package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "natours/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"natours/internal/auth"
	"natours/internal/cache"
	"natours/internal/config"
	"natours/internal/db"
	"natours/internal/handler"
	"natours/internal/logger"
	"natours/internal/metrics"
	"natours/internal/middleware"
	"natours/internal/notification"
	"natours/internal/payment"
	"natours/internal/repository"
	"natours/internal/router"
	"natours/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Natours API
// @version 1.0
// @description Tour booking API with JWT authentication, password reset and role based access.
// @host localhost:3000
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	log, err := logger.Init(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.DropAll(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, running without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cancelPing()

	m := metrics.New(nil)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tourRepo := repository.NewTourRepository(gormDB)
	reviewRepo := repository.NewReviewRepository(gormDB)
	bookingRepo := repository.NewBookingRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	notifier := notification.WithMetrics(newNotifier(cfg, log), m)
	gateway := newGateway(cfg, log)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, notifier, cfg.PasswordResetTTL, log, m)
	userService := service.NewUserService(userRepo)
	tourService := service.NewTourService(tourRepo, cacheClient, m)
	aggregator := service.NewRatingAggregator(reviewRepo, tourRepo, cacheClient)
	reviewService := service.NewReviewService(reviewRepo, tourRepo, aggregator, log)
	bookingService := service.NewBookingService(bookingRepo, tourRepo, gateway)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, log, m, middleware.NewAuthenticator(jwtService, userRepo), router.Handlers{
		Auth:    handler.NewAuthHandler(authService, handler.NewCookieIssuer(cfg), cfg.PublicBaseURL),
		User:    handler.NewUserHandler(userService),
		Tour:    handler.NewTourHandler(tourService),
		Review:  handler.NewReviewHandler(reviewService),
		Booking: handler.NewBookingHandler(bookingService, cfg.PublicBaseURL),
		Health:  handler.NewHealthHandler(handler.DBPinger(gormDB), cacheClient),
	})

	log.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("server listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped cleanly")
	return nil
}

func newNotifier(cfg *config.Config, log *zap.Logger) notification.Notifier {
	if cfg.SMTPHost == "" {
		log.Info("SMTP_HOST not set, emails are written to the log")
		return notification.NewLogNotifier(log)
	}
	return notification.NewSMTPNotifier(cfg.EmailFrom, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
}

func newGateway(cfg *config.Config, log *zap.Logger) payment.CheckoutGateway {
	if cfg.StripeSecretKey == "" {
		log.Info("STRIPE_SECRET_KEY not set, checkout is disabled")
		return payment.DisabledGateway{}
	}
	return payment.NewStripeGateway(cfg.StripeSecretKey)
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
