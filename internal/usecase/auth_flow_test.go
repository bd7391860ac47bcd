package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/kundan1729/promptly-server/internal/domain"
	"github.com/kundan1729/promptly-server/internal/token"
	"github.com/kundan1729/promptly-server/internal/usecase"
)

// memUserRepo is an in-memory UserRepository mirroring the SQL store's
// behavior, including expiry filtering on reset-token lookups.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User // by id
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, name, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return nil, domain.ErrEmailInUse
		}
	}

	r.nextID++
	u := &domain.User{
		ID: fmt.Sprintf("user-%d", r.nextID), Name: name, Email: email,
		PasswordHash: &passwordHash,
		CreatedAt:    time.Now(), UpdatedAt: time.Now(),
	}
	r.users[u.ID] = u
	return copyUser(u), nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByResetToken(_ context.Context, tok string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == tok &&
			u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(time.Now()) {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Save(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *memUserRepo) FindOrCreateFederated(_ context.Context, name, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	r.nextID++
	u := &domain.User{
		ID: fmt.Sprintf("user-%d", r.nextID), Name: name, Email: email,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	r.users[u.ID] = u
	return copyUser(u), nil
}

func (r *memUserRepo) ClearExpiredResetTokens(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, u := range r.users {
		if u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.Before(time.Now()) {
			u.ResetToken = nil
			u.ResetTokenExpiresAt = nil
			n++
		}
	}
	return n, nil
}

// expireToken backdates a stored reset token.
func (r *memUserRepo) expireToken(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.ResetTokenExpiresAt != nil {
			past := time.Now().Add(-time.Minute)
			u.ResetTokenExpiresAt = &past
		}
	}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

// capturingSender keeps the last reset link it mailed out.
type capturingSender struct {
	lastBody string
}

var resetLinkRe = regexp.MustCompile(`/reset/([0-9a-f]{64})`)

func (s *capturingSender) Send(_ context.Context, _, _, body string) error {
	s.lastBody = body
	return nil
}

func (s *capturingSender) lastToken(t *testing.T) string {
	t.Helper()
	m := resetLinkRe.FindStringSubmatch(s.lastBody)
	if m == nil {
		t.Fatalf("no reset link in email body %q", s.lastBody)
	}
	return m[1]
}

func TestPasswordLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	sender := &capturingSender{}
	issuer := token.NewIssuer([]byte(testJWTSecret))
	uc := usecase.NewAuthUsecase(repo, sender, issuer, testFrontendURL)

	// Register, then sanity-check the credential.
	if _, _, err := uc.Register(ctx, "A", "a@x.com", "first-password"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := uc.Login(ctx, "a@x.com", "first-password"); err != nil {
		t.Fatalf("login after register: %v", err)
	}
	if _, _, err := uc.Login(ctx, "a@x.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", err)
	}

	// Request a reset and use the emailed token.
	if err := uc.Forgot(ctx, "a@x.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	resetToken := sender.lastToken(t)

	if err := uc.Reset(ctx, resetToken, "second-password"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// The new credential works, the old one does not.
	if _, _, err := uc.Login(ctx, "a@x.com", "second-password"); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
	if _, _, err := uc.Login(ctx, "a@x.com", "first-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password: want ErrInvalidCredentials, got %v", err)
	}

	// The token is single-use.
	if err := uc.Reset(ctx, resetToken, "third-password"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("reused token: want ErrResetTokenInvalid, got %v", err)
	}
	if _, _, err := uc.Login(ctx, "a@x.com", "second-password"); err != nil {
		t.Fatalf("password must survive the rejected reuse: %v", err)
	}
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	sender := &capturingSender{}
	issuer := token.NewIssuer([]byte(testJWTSecret))
	uc := usecase.NewAuthUsecase(repo, sender, issuer, testFrontendURL)

	if _, _, err := uc.Register(ctx, "A", "a@x.com", "first-password"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := uc.Forgot(ctx, "a@x.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	resetToken := sender.lastToken(t)

	repo.expireToken("a@x.com")

	if err := uc.Reset(ctx, resetToken, "second-password"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expired token: want ErrResetTokenInvalid, got %v", err)
	}
	if _, _, err := uc.Login(ctx, "a@x.com", "first-password"); err != nil {
		t.Fatalf("password must be unchanged after an expired reset attempt: %v", err)
	}
}

func TestForgot_NewRequestReplacesToken(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	sender := &capturingSender{}
	issuer := token.NewIssuer([]byte(testJWTSecret))
	uc := usecase.NewAuthUsecase(repo, sender, issuer, testFrontendURL)

	if _, _, err := uc.Register(ctx, "A", "a@x.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := uc.Forgot(ctx, "a@x.com"); err != nil {
		t.Fatalf("first forgot: %v", err)
	}
	first := sender.lastToken(t)

	if err := uc.Forgot(ctx, "a@x.com"); err != nil {
		t.Fatalf("second forgot: %v", err)
	}
	second := sender.lastToken(t)

	if first == second {
		t.Fatal("a new request must mint a new token")
	}
	if err := uc.Reset(ctx, first, "newpw"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("superseded token: want ErrResetTokenInvalid, got %v", err)
	}
	if err := uc.Reset(ctx, second, "newpw"); err != nil {
		t.Fatalf("current token must work: %v", err)
	}
}

func TestFederatedLogin_IsIdempotentPerEmail(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	issuer := token.NewIssuer([]byte(testJWTSecret))
	uc := usecase.NewAuthUsecase(repo, &fakeEmailSender{}, issuer, testFrontendURL)

	u1, _, err := uc.FederatedLogin(ctx, "A", "a@x.com")
	if err != nil {
		t.Fatalf("first federated login: %v", err)
	}
	u2, _, err := uc.FederatedLogin(ctx, "A", "a@x.com")
	if err != nil {
		t.Fatalf("second federated login: %v", err)
	}
	if u1.ID != u2.ID {
		t.Errorf("same email produced two users: %q %q", u1.ID, u2.ID)
	}
}
