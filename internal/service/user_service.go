package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"natours/internal/errors"
	"natours/internal/model"
	"natours/internal/repository"
)

// UserUpdate holds the profile fields a request may change. Nil fields are
// left as they are.
type UserUpdate struct {
	Name  *string
	Email *string
	Photo *string
	Role  *string
}

func (u UserUpdate) apply(user *model.User, allowRole bool) {
	if u.Name != nil {
		user.Name = strings.TrimSpace(*u.Name)
	}
	if u.Email != nil {
		user.Email = model.NormalizeEmail(*u.Email)
	}
	if u.Photo != nil {
		user.Photo = *u.Photo
	}
	if allowRole && u.Role != nil {
		user.Role = *u.Role
	}
}

// UserService exposes user profile and administration operations.
type UserService interface {
	// UpdateMe changes the caller's own profile. The role is never changed here.
	UpdateMe(ctx context.Context, user *model.User, upd UserUpdate) (*model.User, error)
	DeleteMe(ctx context.Context, id uuid.UUID) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService over the credential store.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) UpdateMe(ctx context.Context, user *model.User, upd UserUpdate) (*model.User, error) {
	updated := *user
	updated.Password = ""
	upd.apply(&updated, false)
	if err := s.repo.Save(ctx, &updated, true); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *userService) DeleteMe(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.ErrUserNotFound
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.apply(user, true)
	if err := s.repo.Save(ctx, user, true); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
