package repository

import (
	"context"

	"github.com/kundan1729/promptly-server/internal/domain"
)

type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) error
}

type CollectionRepository interface {
	Create(ctx context.Context, entry *domain.CollectionEntry) error

	// ListByUser returns entries newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.CollectionEntry, error)
}
