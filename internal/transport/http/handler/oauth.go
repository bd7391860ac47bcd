package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/kundan1729/promptly-server/internal/domain"
	"github.com/kundan1729/promptly-server/internal/oauth"
)

const (
	stateCookie      = "oauthstate"
	sessionUserIDKey = "user_id"
)

type federator interface {
	FederatedLogin(ctx context.Context, name, email string) (*domain.User, string, error)
	SessionUser(ctx context.Context, userID string) (*domain.User, string, error)
}

// OAuthHandler runs the authorization-code flow against the configured
// providers and establishes the federated session on success.
type OAuthHandler struct {
	providers  map[string]*oauth.Provider
	session    *scs.SessionManager
	auth       federator
	successURL string
	failureURL string
	logger     *slog.Logger
}

func NewOAuthHandler(providers []*oauth.Provider, session *scs.SessionManager, auth federator, successURL, failureURL string, logger *slog.Logger) *OAuthHandler {
	byName := make(map[string]*oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	return &OAuthHandler{
		providers:  byName,
		session:    session,
		auth:       auth,
		successURL: successURL,
		failureURL: failureURL,
		logger:     logger.With("component", "oauth_handler"),
	}
}

// Redirect returns the GET /api/auth/{provider} handler: it binds a state
// cookie to the user agent and sends it to the provider's consent page.
func (h *OAuthHandler) Redirect(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := h.providers[provider]
		if !ok || !p.Configured() {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
			return
		}

		state := oauth.NewState()
		c.SetCookie(stateCookie, state, 600, "/", "", false, true)
		c.Redirect(http.StatusFound, p.AuthCodeURL(state))
	}
}

// Callback returns the GET /api/auth/{provider}/callback handler. Any
// failure — state mismatch, rejected code exchange, unusable profile —
// redirects to the failure target without establishing a session.
func (h *OAuthHandler) Callback(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		p, ok := h.providers[provider]
		if !ok || !p.Configured() {
			c.Redirect(http.StatusFound, h.failureURL)
			return
		}

		state, err := c.Cookie(stateCookie)
		if err != nil || state == "" || c.Query("state") != state {
			h.logger.WarnContext(ctx, "oauth state mismatch", "provider", provider)
			c.SetCookie(stateCookie, "", -1, "/", "", false, true)
			c.Redirect(http.StatusFound, h.failureURL)
			return
		}
		c.SetCookie(stateCookie, "", -1, "/", "", false, true)

		code := c.Query("code")
		if code == "" {
			c.Redirect(http.StatusFound, h.failureURL)
			return
		}

		tok, err := p.Exchange(ctx, code)
		if err != nil {
			h.logger.WarnContext(ctx, "oauth code exchange failed", "provider", provider, "error", err)
			c.Redirect(http.StatusFound, h.failureURL)
			return
		}

		profile, err := p.FetchProfile(ctx, tok)
		if err != nil {
			h.logger.WarnContext(ctx, "oauth profile fetch failed", "provider", provider, "error", err)
			c.Redirect(http.StatusFound, h.failureURL)
			return
		}

		user, _, err := h.auth.FederatedLogin(ctx, profile.Name, profile.Email)
		if err != nil {
			h.logger.ErrorContext(ctx, "federated login failed", "provider", provider, "error", err)
			c.Redirect(http.StatusFound, h.failureURL)
			return
		}

		h.session.Put(ctx, sessionUserIDKey, user.ID)
		c.Redirect(http.StatusFound, h.successURL)
	}
}

// User handles GET /api/auth/user: it reports the session-authenticated
// profile together with a bearer token, so OAuth logins end up with the
// same API credential as password logins.
func (h *OAuthHandler) User(c *gin.Context) {
	ctx := c.Request.Context()

	userID := h.session.GetString(ctx, sessionUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errNotAuthenticated})
		return
	}

	user, signed, err := h.auth.SessionUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errNotAuthenticated})
			return
		}
		h.logger.ErrorContext(ctx, "session user lookup", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":  user.Name,
		"email": user.Email,
		"token": signed,
	})
}
