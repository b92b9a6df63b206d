package session

import (
	"testing"

	"github.com/medverse/portal/internal/models"
)

func TestEffectiveRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *models.User
		activeRole string
		wantRole   string
		wantOK     bool
	}{
		{
			name:       "active role wins",
			user:       &models.User{Email: "a@b.com", Role: models.RolePatient},
			activeRole: models.RoleDoctor,
			wantRole:   models.RoleDoctor,
			wantOK:     true,
		},
		{
			name:     "falls back to user role",
			user:     &models.User{Email: "a@b.com", Role: models.RoleStaff},
			wantRole: models.RoleStaff,
			wantOK:   true,
		},
		{
			name:       "support account is always admin",
			user:       &models.User{Email: models.SupportEmail, Role: models.RolePatient},
			activeRole: models.RolePatient,
			wantRole:   models.RoleAdmin,
			wantOK:     true,
		},
		{
			name:       "active role without user",
			activeRole: models.RolePatient,
			wantRole:   models.RolePatient,
			wantOK:     true,
		},
		{
			name:   "nothing resolves",
			wantOK: false,
		},
		{
			name:   "user with empty role",
			user:   &models.User{Email: "a@b.com"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := EffectiveRole(tt.user, tt.activeRole)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if role != tt.wantRole {
				t.Errorf("expected role %q, got %q", tt.wantRole, role)
			}
		})
	}
}
