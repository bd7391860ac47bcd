package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kundan1729/promptly-server/internal/domain"
)

type playgroundUsecaser interface {
	SaveHistory(ctx context.Context, entry *domain.HistoryEntry) error
	SaveCollection(ctx context.Context, entry *domain.CollectionEntry) error
	ListCollection(ctx context.Context, userID string) ([]*domain.CollectionEntry, error)
}

type PlaygroundHandler struct {
	playground playgroundUsecaser
	logger     *slog.Logger
}

func NewPlaygroundHandler(playground playgroundUsecaser, logger *slog.Logger) *PlaygroundHandler {
	return &PlaygroundHandler{
		playground: playground,
		logger:     logger.With("component", "playground_handler"),
	}
}

type saveHistoryRequest struct {
	UserID      string          `json:"userId"`
	Prompt      string          `json:"prompt" binding:"required"`
	Feedback    json.RawMessage `json:"feedback"`
	Patternized json.RawMessage `json:"patternized"`
	Pattern     string          `json:"pattern"`
}

type saveCollectionRequest struct {
	UserID      string `json:"userId"`
	Prompt      string `json:"prompt"      binding:"required"`
	Patternized string `json:"patternized" binding:"required"`
	Pattern     string `json:"pattern"`
}

type collectionEntryResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Prompt      string    `json:"prompt"`
	Patternized string    `json:"patternized"`
	Pattern     string    `json:"pattern"`
	CreatedAt   time.Time `json:"createdAt"`
}

// POST /api/history
func (h *PlaygroundHandler) SaveHistory(c *gin.Context) {
	var req saveHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := &domain.HistoryEntry{
		UserID:      h.effectiveUserID(c, req.UserID),
		Prompt:      req.Prompt,
		Feedback:    req.Feedback,
		Patternized: req.Patternized,
		Pattern:     req.Pattern,
	}
	if err := h.playground.SaveHistory(c.Request.Context(), entry); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "save history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save history."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// POST /api/collection
func (h *PlaygroundHandler) SaveCollection(c *gin.Context) {
	var req saveCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := &domain.CollectionEntry{
		UserID:      h.effectiveUserID(c, req.UserID),
		Prompt:      req.Prompt,
		Patternized: req.Patternized,
		Pattern:     req.Pattern,
	}
	if err := h.playground.SaveCollection(c.Request.Context(), entry); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "save collection", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save to collection."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// GET /api/collection/:userId
func (h *PlaygroundHandler) ListCollection(c *gin.Context) {
	entries, err := h.playground.ListCollection(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list collection", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch collection."})
		return
	}

	resp := make([]collectionEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, collectionEntryResponse{
			ID:          e.ID,
			UserID:      e.UserID,
			Prompt:      e.Prompt,
			Patternized: e.Patternized,
			Pattern:     e.Pattern,
			CreatedAt:   e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// effectiveUserID prefers the authenticated user over whatever the body
// claims; the body value is kept for anonymous front-end usage.
func (h *PlaygroundHandler) effectiveUserID(c *gin.Context, bodyUserID string) string {
	if v, ok := c.Get("user"); ok {
		if user, ok := v.(*domain.User); ok {
			return user.ID
		}
	}
	return bodyUserID
}
