// Package routes holds the single role-to-path lookup table shared by the
// session provider, the route guards, and the dashboard dispatcher. Keeping
// one table keeps the three consumers from drifting apart.
package routes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/medverse/portal/internal/models"
)

// Table maps portal exit points. All fields are plain paths on the gateway.
type Table struct {
	Login      string            `yaml:"login"`
	AuthSelect string            `yaml:"auth_select"` // first-visit auth selection page
	Dashboard  string            `yaml:"dashboard"`   // generic fallback dashboard
	Dashboards map[string]string `yaml:"dashboards"`  // role -> dashboard path
}

// Default returns the built-in table matching the portal's route layout.
func Default() *Table {
	return &Table{
		Login:      "/login",
		AuthSelect: "/auth",
		Dashboard:  "/dashboard",
		Dashboards: map[string]string{
			models.RoleAdmin:   "/dashboard/admin",
			models.RoleDoctor:  "/dashboard/doctor",
			models.RoleStaff:   "/dashboard/staff",
			models.RolePatient: "/dashboard/patient",
		},
	}
}

// LoadFile reads a table from a YAML file, filling unset fields from Default.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file: %w", err)
	}

	table := Default()
	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("failed to parse routes file: %w", err)
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func (t *Table) validate() error {
	if t.Login == "" || t.AuthSelect == "" || t.Dashboard == "" {
		return fmt.Errorf("routes table must define login, auth_select and dashboard paths")
	}
	return nil
}

// DashboardFor returns the dashboard path for a role. Unknown or empty roles
// land on the patient dashboard, the portal's default landing page.
func (t *Table) DashboardFor(role string) string {
	if path, ok := t.Dashboards[role]; ok {
		return path
	}
	return t.Dashboards[models.RolePatient]
}
