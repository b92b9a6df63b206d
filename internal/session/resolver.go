package session

import (
	"github.com/medverse/portal/internal/models"
)

// EffectiveRole resolves the role a session acts under. Precedence:
//
//  1. support override: the fixed administrative account is always admin,
//     whatever role the backend stored for it
//  2. the session's active role
//  3. the user's primary role
//
// ok is false when nothing resolves (no user and no stored role). Guards and
// the dashboard dispatcher both resolve through this function so the override
// cannot be applied in one place and missed in another.
func EffectiveRole(user *models.User, activeRole string) (string, bool) {
	if user != nil && user.Email == models.SupportEmail {
		return models.RoleAdmin, true
	}
	if activeRole != "" {
		return activeRole, true
	}
	if user != nil && user.Role != "" {
		return user.Role, true
	}
	return "", false
}
