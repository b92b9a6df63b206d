// Package dispatch routes a logged-in visitor to the landing page for their
// role. It renders nothing itself: it is purely a redirect.
package dispatch

import (
	"github.com/gin-gonic/gin"

	"github.com/medverse/portal/internal/guard"
	"github.com/medverse/portal/internal/routes"
	"github.com/medverse/portal/internal/session"
)

// Handler resolves the session's effective role and redirects to that role's
// dashboard. A visitor with a session but no resolvable role lands on the
// patient dashboard; a visitor with no session at all goes to login. The
// origin travels in the redirect parameter either way.
func Handler(table *routes.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := guard.CurrentSession(c)

		role, ok := session.EffectiveRole(sess.User, sess.ActiveRole)
		if !ok {
			if sess.LoggedIn() {
				// Logged in but role-less: default landing page.
				guard.Redirect(c, table.DashboardFor(""))
				return
			}
			guard.Redirect(c, table.Login)
			return
		}

		guard.Redirect(c, table.DashboardFor(role))
	}
}
