package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kundan1729/promptly-server/internal/enhance"
)

const maxPromptLen = 5000

type enhancer interface {
	Enhance(ctx context.Context, prompt string, rules enhance.Rules) (string, error)
	Feedback(ctx context.Context, prompt, pattern string) (string, error)
	Patternize(ctx context.Context, prompt, pattern string) (string, error)
}

type EnhanceHandler struct {
	client enhancer
	logger *slog.Logger
}

func NewEnhanceHandler(client enhancer, logger *slog.Logger) *EnhanceHandler {
	return &EnhanceHandler{
		client: client,
		logger: logger.With("component", "enhance_handler"),
	}
}

type enhanceRequest struct {
	Prompt string         `json:"prompt"`
	Rules  *enhance.Rules `json:"rules"`
}

type promptRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	Pattern string `json:"pattern"`
}

// POST /api/enhance
func (h *EnhanceHandler) Enhance(c *gin.Context) {
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid prompt is required"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid prompt is required"})
		return
	}
	if len(req.Prompt) > maxPromptLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt too long (max 5000 characters)"})
		return
	}
	if req.Rules == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rules object is required"})
		return
	}

	enhanced, err := h.client.Enhance(c.Request.Context(), req.Prompt, *req.Rules)
	if err != nil {
		h.respondError(c, err, errEnhanceFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enhanced": enhanced})
}

// POST /api/groq/feedback
func (h *EnhanceHandler) Feedback(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.client.Feedback(c.Request.Context(), req.Prompt, req.Pattern)
	if err != nil {
		h.respondError(c, err, errFeedbackFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// POST /api/groq/patternize and POST /api/prompt/ai-action
func (h *EnhanceHandler) Patternize(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.client.Patternize(c.Request.Context(), req.Prompt, req.Pattern)
	if err != nil {
		h.respondError(c, err, errPatternizeFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *EnhanceHandler) respondError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, enhance.ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errGroqNotConfigured})
		return
	}
	h.logger.ErrorContext(c.Request.Context(), "groq call", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
