package userconfig

import (
	"testing"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	// A missing config file loads as empty, not an error.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Email != "" {
		t.Errorf("expected empty config, got email %q", cfg.Email)
	}

	cfg.PortalURL = "http://portal.internal:8080"
	cfg.Email = "asha@example.com"
	cfg.Roles = []string{"doctor", "patient"}
	cfg.ActiveRole = "doctor"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.PortalURL != cfg.PortalURL || loaded.Email != cfg.Email || loaded.ActiveRole != cfg.ActiveRole {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestResolvedPortalURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name   string
		env    string
		stored string
		want   string
	}{
		{name: "default", want: DefaultPortalURL},
		{name: "stored wins over default", stored: "http://stored:8080", want: "http://stored:8080"},
		{name: "env wins over stored", env: "http://env:8080", stored: "http://stored:8080", want: "http://env:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MEDVERSE_URL", tt.env)
			cfg := &UserConfig{PortalURL: tt.stored}
			if got := cfg.ResolvedPortalURL(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClearIdentity(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &UserConfig{
		PortalURL:  "http://portal.internal:8080",
		Email:      "asha@example.com",
		Roles:      []string{"doctor"},
		ActiveRole: "doctor",
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := ClearIdentity(); err != nil {
		t.Fatalf("ClearIdentity failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Email != "" || loaded.ActiveRole != "" || len(loaded.Roles) != 0 {
		t.Errorf("expected identity cleared, got %+v", loaded)
	}
	// The portal URL is configuration, not identity, and survives.
	if loaded.PortalURL != "http://portal.internal:8080" {
		t.Errorf("expected portal URL kept, got %q", loaded.PortalURL)
	}
}
