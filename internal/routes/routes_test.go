package routes

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDashboardFor(t *testing.T) {
	table := Default()

	tests := []struct {
		role string
		want string
	}{
		{role: "admin", want: "/dashboard/admin"},
		{role: "doctor", want: "/dashboard/doctor"},
		{role: "staff", want: "/dashboard/staff"},
		{role: "patient", want: "/dashboard/patient"},
		{role: "auditor", want: "/dashboard/patient"}, // unknown roles land on patient
		{role: "", want: "/dashboard/patient"},
	}

	for _, tt := range tests {
		if got := table.DashboardFor(tt.role); got != tt.want {
			t.Errorf("DashboardFor(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestLoadFile_FillsFromDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	content := `login: /signin
dashboards:
  admin: /console
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write routes file: %v", err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if table.Login != "/signin" {
		t.Errorf("expected overridden login '/signin', got %q", table.Login)
	}
	if table.AuthSelect != "/auth" {
		t.Errorf("expected default auth_select '/auth', got %q", table.AuthSelect)
	}
	if got := table.DashboardFor("admin"); got != "/console" {
		t.Errorf("expected overridden admin dashboard '/console', got %q", got)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte("login: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write routes file: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
