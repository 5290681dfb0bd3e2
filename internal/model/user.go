package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"natours/internal/errors"
)

const (
	bcryptCost = 12

	// MinPasswordLength is the shortest password accepted on signup, reset and change.
	MinPasswordLength = 6
)

// Roles a user can hold.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// User is the credential record behind every session.
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name     string    `json:"name" gorm:"size:255" validate:"max=255"`
	Email    string    `json:"email" gorm:"uniqueIndex;size:255;not null" validate:"required,email"`
	Photo    string    `json:"photo" gorm:"size:255;not null;default:'default.jpg'"`
	Role     string    `json:"role" gorm:"size:20;not null;default:'user'" validate:"required,oneof=user guide lead-guide admin"`
	Password string    `json:"-" gorm:"size:255;not null"` // bcrypt hash, never serialized

	PasswordChangedAt    *time.Time `json:"-"`
	// PasswordVersion grows by one on every password change. Session tokens
	// carry the version they were issued under.
	PasswordVersion      int64      `json:"-" gorm:"not null;default:0"`
	PasswordResetToken   *string    `json:"-" gorm:"size:64;uniqueIndex"`
	PasswordResetExpires *time.Time `json:"-"`

	Active    bool      `json:"-" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeSave normalizes the email so lookups are case insensitive.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	if u.Photo == "" {
		u.Photo = "default.jpg"
	}
	return nil
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the user fields that are constrained on full saves.
func (u *User) Validate() error {
	return validateStruct(u)
}

// ValidatePassword checks a new password and its confirmation.
func ValidatePassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return errors.ErrPasswordTooShort
	}
	if password != confirm {
		return errors.ErrPasswordMismatch
	}
	return nil
}

// SetPassword hashes plain into the record. For users that already exist it
// records the change time and bumps PasswordVersion, which invalidates every
// session token issued before.
func (u *User) SetPassword(plain string, now time.Time) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	if u.ID != uuid.Nil {
		u.PasswordChangedAt = &now
		u.PasswordVersion++
	}
	return nil
}

// CorrectPassword compares a candidate against a stored bcrypt hash.
func CorrectPassword(candidate, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// ChangedPasswordAfter reports whether the password was replaced after a token
// stamped with passwordVersion was issued.
func (u *User) ChangedPasswordAfter(passwordVersion int64) bool {
	return u.PasswordVersion != passwordVersion
}

// SetPasswordReset records a pending reset. Hash and expiry always travel together.
func (u *User) SetPasswordReset(hash string, expires time.Time) {
	u.PasswordResetToken = &hash
	u.PasswordResetExpires = &expires
}

// ClearPasswordReset drops any pending reset.
func (u *User) ClearPasswordReset() {
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
}

// ResetPending reports whether an unexpired reset is outstanding at now.
func (u *User) ResetPending(now time.Time) bool {
	return u.PasswordResetToken != nil && u.PasswordResetExpires != nil && now.Before(*u.PasswordResetExpires)
}

// HasRole reports whether the user holds one of roles.
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
