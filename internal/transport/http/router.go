package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/kundan1729/promptly-server/internal/transport/http/handler"
	"github.com/kundan1729/promptly-server/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

// 100 requests per 15-minute window per client IP.
const (
	rateLimitRate     = 100.0 / (15 * 60)
	rateLimitCapacity = 100
)

func NewRouter(
	logger *slog.Logger,
	env string,
	frontendURL string,
	authHandler *handler.AuthHandler,
	oauthHandler *handler.OAuthHandler,
	enhanceHandler *handler.EnhanceHandler,
	playgroundHandler *handler.PlaygroundHandler,
	requireAuth gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(env, frontendURL))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	api := r.Group("/api", middleware.RateLimit(middleware.NewTokenBucket(rateLimitRate, rateLimitCapacity)))

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot", authHandler.Forgot)
	auth.POST("/reset/:token", authHandler.Reset)

	auth.GET("/google", oauthHandler.Redirect("google"))
	auth.GET("/google/callback", oauthHandler.Callback("google"))
	auth.GET("/github", oauthHandler.Redirect("github"))
	auth.GET("/github/callback", oauthHandler.Callback("github"))
	auth.GET("/user", oauthHandler.User)

	api.POST("/enhance", enhanceHandler.Enhance)
	api.POST("/groq/feedback", enhanceHandler.Feedback)
	api.POST("/groq/patternize", enhanceHandler.Patternize)
	api.POST("/prompt/ai-action", enhanceHandler.Patternize)

	// Persistence routes require a bearer token.
	protected := api.Group("", requireAuth)
	protected.POST("/history", playgroundHandler.SaveHistory)
	protected.POST("/collection", playgroundHandler.SaveCollection)
	protected.GET("/collection/:userId", playgroundHandler.ListCollection)

	return r
}
