// Package guard holds the route-level gates deciding render-vs-redirect.
// Guards never fail with an error: an unauthenticated or unauthorized
// navigation is answered with a redirect, and the attempted path rides along
// in the redirect query parameter so login can return the visitor.
package guard

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/medverse/portal/internal/routes"
	"github.com/medverse/portal/internal/session"
)

const (
	ctxScope   = "visitor_scope"
	ctxSession = "visitor_session"
	ctxSeen    = "visitor_seen"

	// RedirectParam carries the attempted path across guard redirects.
	RedirectParam = "redirect"
)

// SetScope records the visitor scope for downstream middleware and handlers.
func SetScope(c *gin.Context, scope string) {
	c.Set(ctxScope, scope)
}

// Scope returns the visitor scope set by the cookie middleware.
func Scope(c *gin.Context) string {
	return c.GetString(ctxScope)
}

// CurrentSession returns the session loaded for this request.
func CurrentSession(c *gin.Context) *session.Session {
	value, exists := c.Get(ctxSession)
	if !exists {
		return &session.Session{}
	}
	sess, ok := value.(*session.Session)
	if !ok {
		return &session.Session{}
	}
	return sess
}

// LoadSession resolves the visitor's session once per request so every guard
// afterwards works from already-loaded state, never a round-trip of its own.
func LoadSession(provider *session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := Scope(c)
		c.Set(ctxSession, provider.Load(c.Request.Context(), scope))
		c.Set(ctxSeen, provider.Store().Seen(c.Request.Context(), scope))
		c.Next()
	}
}

// Redirect sends the visitor to path, preserving where they were headed.
func Redirect(c *gin.Context, path string) {
	target := path + "?" + RedirectParam + "=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

// InitialGate sends brand-new visitors to the auth selection page. Logged-in
// visitors pass; visitors who have already been through the gate pass too,
// deferring to whatever nested guards protect the route.
func InitialGate(table *routes.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).LoggedIn() {
			c.Next()
			return
		}
		if c.GetBool(ctxSeen) {
			c.Next()
			return
		}
		Redirect(c, table.AuthSelect)
	}
}

// RequireAuth is the minimal gate: a token must be present, no role logic.
func RequireAuth(table *routes.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).LoggedIn() {
			c.Next()
			return
		}
		Redirect(c, table.Login)
	}
}

// RequireRoles admits only sessions whose effective role is in allowed.
// No resolvable role sends the visitor to login; a resolvable role outside
// the set sends them to fallback ("" means the generic dashboard). An empty
// allowed set admits any resolvable role.
func RequireRoles(table *routes.Table, allowed []string, fallback string) gin.HandlerFunc {
	if fallback == "" {
		fallback = table.Dashboard
	}
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		role, ok := session.EffectiveRole(sess.User, sess.ActiveRole)
		if !ok {
			Redirect(c, table.Login)
			return
		}
		if len(allowed) > 0 && !slices.Contains(allowed, role) {
			Redirect(c, fallback)
			return
		}
		c.Next()
	}
}
