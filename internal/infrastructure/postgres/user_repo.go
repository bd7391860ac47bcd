package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kundan1729/promptly-server/internal/domain"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, reset_token, reset_token_expires_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		name, email, passwordHash,
	)

	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrEmailInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByResetToken filters on expiry in SQL so an expired-but-uncleared
// token can never match.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE reset_token = $1 AND reset_token_expires_at > now()`,
		token,
	)
	return scanUser(row)
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET name = $2, password_hash = $3, reset_token = $4,
		     reset_token_expires_at = $5, updated_at = now()
		 WHERE id = $1`,
		user.ID, user.Name, user.PasswordHash, user.ResetToken, user.ResetTokenExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindOrCreateFederated(ctx context.Context, name, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET updated_at = now()
		 RETURNING `+userColumns,
		name, email,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("find or create federated user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET reset_token = NULL, reset_token_expires_at = NULL
		 WHERE reset_token_expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("clear expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.ResetToken, &u.ResetTokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
