package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"natours/internal/auth"
	"natours/internal/errors"
	"natours/internal/metrics"
	"natours/internal/model"
	"natours/internal/notification"
	"natours/internal/repository"
)

// Auth event labels.
const (
	EventSignup         = "signup"
	EventLogin          = "login"
	EventResetRequest   = "reset_request"
	EventResetRedeem    = "reset_redeem"
	EventPasswordUpdate = "password_update"
)

// SignupInput carries the fields a new account is created from.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// AuthResult is a freshly issued session for a user.
type AuthResult struct {
	Token string
	User  *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput, profileURL string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// RequestReset stores a pending reset for email and mails the link built
	// by resetURL from the plaintext token.
	RequestReset(ctx context.Context, email string, resetURL func(token string) string) error
	RedeemReset(ctx context.Context, token, password, confirm string) (*AuthResult, error)
	UpdatePassword(ctx context.Context, user *model.User, current, password, confirm string) (*AuthResult, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *auth.JWTService
	notifier notification.Notifier
	resetTTL time.Duration
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.JWTService,
	notifier notification.Notifier,
	resetTTL time.Duration,
	log *zap.Logger,
	m *metrics.Metrics,
) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		resetTTL: resetTTL,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, in SignupInput, profileURL string) (res *AuthResult, err error) {
	defer func() { s.metrics.AuthEvent(EventSignup, err) }()

	if err := model.ValidatePassword(in.Password, in.PasswordConfirm); err != nil {
		return nil, err
	}
	user := &model.User{
		Name:   strings.TrimSpace(in.Name),
		Email:  model.NormalizeEmail(in.Email),
		Role:   model.RoleUser,
		Active: true,
	}
	if err := user.SetPassword(in.Password, s.now()); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.notifier.SendWelcome(ctx, user, profileURL); err != nil {
		s.log.Warn("welcome email not delivered", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (res *AuthResult, err error) {
	defer func() { s.metrics.AuthEvent(EventLogin, err) }()

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.ErrMissingCredentials
	}
	user, err := s.users.FindByEmail(ctx, email, true)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !model.CorrectPassword(password, user.Password) {
		return nil, errors.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) RequestReset(ctx context.Context, email string, resetURL func(token string) string) (err error) {
	defer func() { s.metrics.AuthEvent(EventResetRequest, err) }()

	user, err := s.users.FindByEmail(ctx, email, false)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return errors.ErrNotFound
	}

	plain, hash, err := auth.GenerateResetToken()
	if err != nil {
		return err
	}
	user.SetPasswordReset(hash, s.now().Add(s.resetTTL))
	if err := s.users.Save(ctx, user, false); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user, resetURL(plain)); err != nil {
		s.log.Error("password reset email not delivered", zap.String("user_id", user.ID.String()), zap.Error(err))
		user.ClearPasswordReset()
		if clearErr := s.users.Save(ctx, user, false); clearErr != nil {
			s.log.Error("clear pending reset", zap.String("user_id", user.ID.String()), zap.Error(clearErr))
		}
		return errors.ErrDeliveryFailed
	}
	return nil
}

func (s *authService) RedeemReset(ctx context.Context, token, password, confirm string) (res *AuthResult, err error) {
	defer func() { s.metrics.AuthEvent(EventResetRedeem, err) }()

	now := s.now()
	user, err := s.users.FindByResetToken(ctx, auth.HashResetToken(token), now)
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	if user == nil || !user.ResetPending(now) {
		return nil, errors.ErrTokenInvalidOrExpired
	}
	if err := model.ValidatePassword(password, confirm); err != nil {
		return nil, err
	}

	if err := user.SetPassword(password, now); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.ClearPasswordReset()
	if err := s.users.Save(ctx, user, true); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) UpdatePassword(ctx context.Context, user *model.User, current, password, confirm string) (res *AuthResult, err error) {
	defer func() { s.metrics.AuthEvent(EventPasswordUpdate, err) }()

	// The session copy of the user never carries the hash.
	stored, err := s.users.FindByEmail(ctx, user.Email, true)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if stored == nil {
		return nil, errors.ErrUserNoLongerExists
	}
	if !model.CorrectPassword(current, stored.Password) {
		return nil, errors.ErrWrongPassword
	}
	if err := model.ValidatePassword(password, confirm); err != nil {
		return nil, err
	}

	if err := stored.SetPassword(password, s.now()); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Save(ctx, stored, true); err != nil {
		return nil, err
	}
	return s.issue(stored)
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.PasswordVersion)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	user.Password = ""
	return &AuthResult{Token: token, User: user}, nil
}
