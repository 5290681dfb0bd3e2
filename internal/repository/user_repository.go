package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"natours/internal/errors"
	"natours/internal/model"
)

// UserRepository is the credential store. Lookups return (nil, nil) when no
// active user matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string, includePassword bool) (*model.User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error)
	// Save persists every column of user. The password column is left alone
	// when the record was loaded without it. validate=false skips field
	// constraints for administrative updates such as clearing reset fields.
	Save(ctx context.Context, user *model.User, validate bool) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func activeUsers(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Create(user).Error
	if errIsDuplicate(err) {
		return errors.ErrUserAlreadyExists
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Scopes(activeUsers).Omit("password").
		Where("id = ?", id).First(&user).Error
	return found(&user, err)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string, includePassword bool) (*model.User, error) {
	q := r.db.WithContext(ctx).Scopes(activeUsers)
	if !includePassword {
		q = q.Omit("password")
	}
	var user model.User
	err := q.Where("email = ?", model.NormalizeEmail(email)).First(&user).Error
	return found(&user, err)
}

func (r *userRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Scopes(activeUsers).
		Where("password_reset_token = ? AND password_reset_expires > ?", tokenHash, now).
		First(&user).Error
	return found(&user, err)
}

func (r *userRepository) Save(ctx context.Context, user *model.User, validate bool) error {
	if validate {
		if err := user.Validate(); err != nil {
			return err
		}
	}
	q := r.db.WithContext(ctx)
	if user.Password == "" {
		q = q.Omit("password")
	}
	err := q.Save(user).Error
	if errIsDuplicate(err) {
		return errors.ErrUserAlreadyExists
	}
	return err
}

func (r *userRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).UpdateColumn("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Scopes(activeUsers).Omit("password").Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
