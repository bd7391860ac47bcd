package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or expired")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrUnauthorized       = errors.New("unauthorized")
)

// User is an identity record. PasswordHash is nil for accounts created
// through an OAuth provider; such accounts cannot log in with a password.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash *string

	// ResetToken and ResetTokenExpiresAt are either both set or both nil.
	ResetToken          *string
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
