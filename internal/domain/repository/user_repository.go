package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
	// ErrConflict is returned by guarded writes whose precondition no longer holds.
	ErrConflict  = errors.New("conflict")
)

// UserRepository defines the credential store operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByEmailOrPhone returns the first user matching either field.
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*entity.User, error)
	// Update rewrites the whole profile row. Credential flows use the
	// column-scoped writes below so concurrent requests cannot undo each other.
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error

	// TouchLastLogin records a successful login and nothing else.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	// MarkVerified verifies an unverified user whose open OTP is code and
	// clears the OTP. ErrConflict when the user is verified or the code changed.
	MarkVerified(ctx context.Context, id, code string) error
	// SetOTP replaces the OTP of an unverified user. ErrConflict once verified.
	SetOTP(ctx context.Context, id string, otp entity.OTP) error
	// SetResetToken stores a reset challenge unless one is still open at now.
	// ErrConflict when an open token exists.
	SetResetToken(ctx context.Context, id, token string, expires, now time.Time) error
	// SetPassword swaps the hash only while the stored hash is still
	// currentHash. ErrConflict when it changed in between.
	SetPassword(ctx context.Context, id, currentHash, newHash string) error
	// ResetPassword atomically matches email, token and an expiry after now,
	// stores the new hash and clears the reset challenge. ErrNotFound when
	// nothing matches, so only one of two concurrent callers can win.
	ResetPassword(ctx context.Context, email, token, passwordHash string, now time.Time) (*entity.User, error)
}
