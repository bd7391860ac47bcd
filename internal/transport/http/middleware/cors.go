package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the SPA origin with credentials, so the federated session
// cookie survives cross-origin requests. Local dev allows the usual Vite
// and CRA ports.
func CORS(env, frontendURL string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if env == "local" {
		cfg.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	} else {
		cfg.AllowOrigins = []string{frontendURL}
	}
	return cors.New(cfg)
}
