package usecase

import (
	"context"
	"fmt"

	"github.com/kundan1729/promptly-server/internal/domain"
	"github.com/kundan1729/promptly-server/internal/repository"
)

type PlaygroundUsecase struct {
	history     repository.HistoryRepository
	collections repository.CollectionRepository
}

func NewPlaygroundUsecase(history repository.HistoryRepository, collections repository.CollectionRepository) *PlaygroundUsecase {
	return &PlaygroundUsecase{history: history, collections: collections}
}

func (u *PlaygroundUsecase) SaveHistory(ctx context.Context, entry *domain.HistoryEntry) error {
	if err := u.history.Create(ctx, entry); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (u *PlaygroundUsecase) SaveCollection(ctx context.Context, entry *domain.CollectionEntry) error {
	if err := u.collections.Create(ctx, entry); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}

func (u *PlaygroundUsecase) ListCollection(ctx context.Context, userID string) ([]*domain.CollectionEntry, error) {
	entries, err := u.collections.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	return entries, nil
}
