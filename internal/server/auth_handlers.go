package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medverse/portal/internal/backend"
	"github.com/medverse/portal/internal/guard"
	"github.com/medverse/portal/internal/session"
)

// unreachableMessage is the actionable text shown when the backend is down.
// Forms display it verbatim; it must never collapse into a generic error.
const unreachableMessage = "Unable to contact backend — is the server running?"

// LoginFormRequest is the portal login form payload
type LoginFormRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// SignupFormRequest is the portal signup form payload
type SignupFormRequest struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role"`
	RememberMe bool   `json:"rememberMe"`
}

// SessionResponse describes the visitor's session to the front end
type SessionResponse struct {
	LoggedIn   bool     `json:"loggedIn"`
	User       any      `json:"user,omitempty"`
	ActiveRole string   `json:"activeRole,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	Expired    bool     `json:"expired,omitempty"`
	Redirect   string   `json:"redirect,omitempty"`
}

// relayBackendError maps client failures onto portal responses. Transport
// failures get the actionable backend-down message; a rejected session has
// already been cleared, so the answer is the forced return to login.
func (s *Server) relayBackendError(c *gin.Context, err error) {
	var statusErr *backend.StatusError
	switch {
	case errors.Is(err, backend.ErrUnreachable):
		c.JSON(http.StatusBadGateway, gin.H{"error": unreachableMessage})
	case errors.Is(err, backend.ErrUnauthorized):
		guard.Redirect(c, s.table.Login)
	case errors.As(err, &statusErr):
		message := statusErr.Message
		if message == "" {
			message = "Backend request failed"
		}
		c.JSON(statusErr.StatusCode, gin.H{"error": message})
	default:
		s.logger.Error().Err(err).Msg("Backend call failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// login exchanges credentials with the backend and establishes the visitor's
// session. No credential ever persists here beyond the issued token.
func (s *Server) login(c *gin.Context) {
	var req LoginFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scope := guard.Scope(c)
	token, user, err := s.client.Login(c.Request.Context(), scope, req.Email, req.Password)
	if err != nil {
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		s.relayBackendError(c, err)
		return
	}

	sess, err := s.provider.Login(c.Request.Context(), scope, user, token, req.RememberMe)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to establish session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to establish session"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		LoggedIn:   true,
		User:       sess.User,
		ActiveRole: sess.ActiveRole,
		Roles:      sess.User.EffectiveRoles(),
		Redirect:   s.postLoginRedirect(c, sess),
	})
}

// postLoginRedirect honors an attempted path preserved by a guard, falling
// back to the effective role's dashboard.
func (s *Server) postLoginRedirect(c *gin.Context, sess *session.Session) string {
	if redirect := c.Query(guard.RedirectParam); redirect != "" {
		return redirect
	}
	role, _ := session.EffectiveRole(sess.User, sess.ActiveRole)
	return s.table.DashboardFor(role)
}

// signup registers the account with the backend and logs the visitor in with
// the returned credentials.
func (s *Server) signup(c *gin.Context) {
	var req SignupFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scope := guard.Scope(c)
	token, user, err := s.client.Signup(c.Request.Context(), scope, backend.SignupRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		s.relayBackendError(c, err)
		return
	}

	sess, err := s.provider.Login(c.Request.Context(), scope, user, token, req.RememberMe)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to establish session after signup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to establish session"})
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		LoggedIn:   true,
		User:       sess.User,
		ActiveRole: sess.ActiveRole,
		Roles:      sess.User.EffectiveRoles(),
		Redirect:   s.postLoginRedirect(c, sess),
	})
}

// logout clears the session and navigates to login. This is the one place
// that issues a navigation of its own; guards own every other redirect.
func (s *Server) logout(c *gin.Context) {
	loginPath := s.provider.Logout(c.Request.Context(), guard.Scope(c))
	c.Redirect(http.StatusFound, loginPath)
}

// SwitchRoleRequest names the role to activate
type SwitchRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// switchRole activates another of the visitor's roles. A role the visitor
// does not hold changes nothing and navigates nowhere.
func (s *Server) switchRole(c *gin.Context) {
	var req SwitchRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Var(req.Role, "alphanum,lowercase"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	path, switched, err := s.provider.SwitchRole(c.Request.Context(), guard.Scope(c), req.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to switch role")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to switch role"})
		return
	}
	if !switched {
		c.JSON(http.StatusOK, gin.H{"switched": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"switched": true, "redirect": path})
}

// currentSession reports the loaded session, consuming the one-shot expired
// flag so the front end can explain a forced logout exactly once.
func (s *Server) currentSession(c *gin.Context) {
	sess := guard.CurrentSession(c)
	expired := s.store.ConsumeExpired(c.Request.Context(), guard.Scope(c))

	resp := SessionResponse{
		LoggedIn: sess.LoggedIn(),
		Expired:  expired,
	}
	if sess.User != nil {
		resp.User = sess.User
		resp.Roles = sess.User.EffectiveRoles()
	}
	resp.ActiveRole = sess.ActiveRole

	c.JSON(http.StatusOK, resp)
}

// loginPage backs the login route. It exists so guard redirects have a real
// destination; the interesting bit is the one-shot expired flag.
func (s *Server) loginPage(c *gin.Context) {
	expired := s.store.ConsumeExpired(c.Request.Context(), guard.Scope(c))
	c.JSON(http.StatusOK, gin.H{
		"page":     "login",
		"expired":  expired,
		"redirect": c.Query(guard.RedirectParam),
	})
}

// authSelectPage backs the first-visit auth selection route and records that
// the visitor has now seen it.
func (s *Server) authSelectPage(c *gin.Context) {
	scope := guard.Scope(c)
	if err := s.store.MarkSeen(c.Request.Context(), scope); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to mark auth gate as seen")
	}
	c.JSON(http.StatusOK, gin.H{
		"page":     "auth",
		"redirect": c.Query(guard.RedirectParam),
	})
}
