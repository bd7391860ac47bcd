package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kundan1729/promptly-server/internal/domain"
)

const errUnauthorized = "Unauthorized"

type authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.User, error)
}

// RequireAuth guards protected routes. It extracts the bearer token,
// resolves it to a user (password hash excluded), and sets "user" and
// "userID" in the gin context. Missing, malformed, expired, and
// orphaned tokens all produce the same 401.
func RequireAuth(auth authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		rawToken := strings.TrimPrefix(header, "Bearer ")

		user, err := auth.Authenticate(c.Request.Context(), rawToken)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
				return
			}
			logger.ErrorContext(c.Request.Context(), "authenticate request", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}
