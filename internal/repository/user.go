package repository

import (
	"context"

	"github.com/kundan1729/promptly-server/internal/domain"
)

type UserRepository interface {
	// Create inserts a password-based account. Returns domain.ErrEmailInUse
	// if the (normalized) email is already taken.
	Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error)

	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByResetToken matches only tokens whose expiry is still in the
	// future; an expired-but-uncleared token never matches.
	FindByResetToken(ctx context.Context, token string) (*domain.User, error)

	// Save persists in-place mutations (password hash, reset-token fields).
	Save(ctx context.Context, user *domain.User) error

	// FindOrCreateFederated reconciles an OAuth profile into a local
	// account. Created accounts have no password hash.
	FindOrCreateFederated(ctx context.Context, name, email string) (*domain.User, error)

	// ClearExpiredResetTokens removes reset tokens whose expiry has
	// passed. Returns the number of rows touched.
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}
