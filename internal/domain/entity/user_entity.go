package entity

import (
	"time"
)

// User is the aggregate root for the credential lifecycle.
// Password holds the bcrypt hash and must never leave the service layer.
type User struct {
	ID                   string
	Name                 string
	Email                string
	Phone                string
	Password             string
	Role                 Role
	IsVerified           bool
	OTP                  *OTP
	PasswordResetToken   string
	PasswordResetExpires *time.Time
	LastLogin            *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// OTP is an open email verification challenge.
type OTP struct {
	Code      string
	ExpiresAt time.Time
}

// HasOpenReset reports whether a reset token is on file and still valid at now.
func (u *User) HasOpenReset(now time.Time) bool {
	return u.PasswordResetToken != "" && u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now)
}

// ClearReset drops the reset challenge.
func (u *User) ClearReset() {
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
