package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kundan1729/promptly-server/internal/domain"
	"github.com/kundan1729/promptly-server/internal/email"
	"github.com/kundan1729/promptly-server/internal/repository"
	"github.com/kundan1729/promptly-server/internal/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	// bcryptCost is a fixed work factor, not tunable per call.
	bcryptCost    = 10
	resetTokenTTL = 1 * time.Hour
)

type AuthUsecase struct {
	users       repository.UserRepository
	email       email.Sender
	tokens      *token.Issuer
	frontendURL string
}

func NewAuthUsecase(users repository.UserRepository, emailSender email.Sender, tokens *token.Issuer, frontendURL string) *AuthUsecase {
	return &AuthUsecase{
		users:       users,
		email:       emailSender,
		tokens:      tokens,
		frontendURL: frontendURL,
	}
}

// NormalizeEmail lowercases and trims an email address. Every lookup and
// insert goes through this so uniqueness is case-insensitive.
func NormalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Register creates a password-based account and returns it with a fresh
// bearer token. A taken email yields domain.ErrEmailInUse.
func (u *AuthUsecase) Register(ctx context.Context, name, emailAddr, password string) (*domain.User, string, error) {
	emailAddr = NormalizeEmail(emailAddr)
	name = strings.TrimSpace(name)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, name, emailAddr, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrEmailInUse) {
			return nil, "", domain.ErrEmailInUse
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	signed, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, signed, nil
}

// Login verifies credentials and returns the user with a fresh bearer
// token. Unknown email, wrong password, and passwordless (OAuth-only)
// accounts all fail with the same domain.ErrInvalidCredentials.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*domain.User, string, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, "", domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	signed, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, signed, nil
}

// Forgot generates a single-use reset token (1h expiry), stores it on the
// user record, and emails the reset link. A second request before the
// first token expires overwrites it; the earlier token stops validating.
func (u *AuthUsecase) Forgot(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	raw := make([]byte, 32)
	if _, err = io.ReadFull(rand.Reader, raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	resetToken := hex.EncodeToString(raw)
	expiresAt := time.Now().Add(resetTokenTTL)

	user.ResetToken = &resetToken
	user.ResetTokenExpiresAt = &expiresAt
	if err = u.users.Save(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := u.frontendURL + "/reset/" + resetToken
	body := fmt.Sprintf(
		`<p>Click <a href="%s">here</a> to reset your password. This link expires in 1 hour.</p>`,
		resetURL,
	)
	if err = u.email.Send(ctx, user.Email, "Password Reset", body); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// Reset consumes a reset token and replaces the password. Wrong and
// expired tokens fail with the same domain.ErrResetTokenInvalid; a failed
// attempt leaves the stored token untouched.
func (u *AuthUsecase) Reset(ctx context.Context, rawToken, newPassword string) error {
	user, err := u.users.FindByResetToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("find user by reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// Token is cleared unconditionally: one successful reset per token.
	hashStr := string(hash)
	user.PasswordHash = &hashStr
	user.ResetToken = nil
	user.ResetTokenExpiresAt = nil
	if err = u.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// SessionUser loads a session-authenticated user and issues a bearer
// token for it, letting OAuth-established sessions obtain the same API
// credential as password logins.
func (u *AuthUsecase) SessionUser(ctx context.Context, userID string) (*domain.User, string, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrUnauthorized
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	signed, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	user.PasswordHash = nil
	return user, signed, nil
}

// Authenticate resolves a bearer token to its user for protected routes.
// The returned user never carries the password hash.
func (u *AuthUsecase) Authenticate(ctx context.Context, rawToken string) (*domain.User, error) {
	userID, err := u.tokens.Verify(rawToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	user.PasswordHash = nil
	return user, nil
}

// FederatedLogin reconciles an OAuth profile assertion into a local
// account and returns it with a bearer token, so clients authenticated
// via a provider use the same API credential as password logins.
func (u *AuthUsecase) FederatedLogin(ctx context.Context, name, emailAddr string) (*domain.User, string, error) {
	emailAddr = NormalizeEmail(emailAddr)
	if emailAddr == "" {
		return nil, "", domain.ErrInvalidCredentials
	}

	user, err := u.users.FindOrCreateFederated(ctx, strings.TrimSpace(name), emailAddr)
	if err != nil {
		return nil, "", fmt.Errorf("reconcile federated user: %w", err)
	}

	signed, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, signed, nil
}
