package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kundan1729/promptly-server/internal/domain"
)

type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func (r *HistoryRepository) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO history (user_id, prompt, feedback, patternized, pattern)
		 VALUES (NULLIF($1, ''), $2, $3, $4, $5)
		 RETURNING id, created_at`,
		entry.UserID, entry.Prompt, entry.Feedback, entry.Patternized, entry.Pattern,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create history entry: %w", err)
	}
	return nil
}

type CollectionRepository struct {
	pool *pgxpool.Pool
}

func NewCollectionRepository(pool *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{pool: pool}
}

func (r *CollectionRepository) Create(ctx context.Context, entry *domain.CollectionEntry) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO collections (user_id, prompt, patternized, pattern)
		 VALUES (NULLIF($1, ''), $2, $3, $4)
		 RETURNING id, created_at`,
		entry.UserID, entry.Prompt, entry.Patternized, entry.Pattern,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create collection entry: %w", err)
	}
	return nil
}

func (r *CollectionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.CollectionEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, COALESCE(user_id, ''), prompt, patternized, COALESCE(pattern, ''), created_at
		 FROM collections
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	defer rows.Close()

	var entries []*domain.CollectionEntry
	for rows.Next() {
		var e domain.CollectionEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Prompt, &e.Patternized, &e.Pattern, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan collection entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection: %w", err)
	}
	return entries, nil
}
