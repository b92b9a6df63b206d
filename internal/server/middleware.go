package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/medverse/portal/internal/guard"
	"github.com/medverse/portal/internal/session"
)

// visitorCookie identifies a browser across visits. It scopes the session
// stores the way the browser's own storage is scoped: one bucket per visitor.
const visitorCookie = "medverse_visitor"

const visitorCookieMaxAge = int((365 * 24 * time.Hour) / time.Second)

// visitorMiddleware ensures every request carries a stable visitor scope,
// minting one on first contact.
func (s *Server) visitorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, err := c.Cookie(visitorCookie)
		if err != nil || scope == "" {
			scope = ulid.Make().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(visitorCookie, scope, visitorCookieMaxAge, "/", "", false, true)
		}
		guard.SetScope(c, scope)
		c.Next()
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// storeTokenSource feeds the backend client from the session store's token
// priority chain (durable, then ephemeral, then legacy key).
type storeTokenSource struct {
	store *session.Store
}

func (s storeTokenSource) Token(ctx context.Context, scope string) (string, bool) {
	sess := s.store.Read(ctx, scope)
	return sess.Token, sess.Token != ""
}

// storeEvictor handles backend 401s: wipe both stores and raise the one-shot
// expired flag so the login page can explain what happened.
type storeEvictor struct {
	store *session.Store
	log   zerolog.Logger
}

func (s storeEvictor) Evict(ctx context.Context, scope string) {
	s.store.Clear(ctx, scope)
	if err := s.store.MarkExpired(ctx, scope); err != nil {
		s.log.Warn().Err(err).Msg("Failed to set session-expired flag")
	}
}
