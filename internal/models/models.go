package models

import (
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Known portal roles. The backend may introduce new ones; unknown roles fall
// back to the patient dashboard when dispatching.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
)

// SupportEmail is the fixed administrative account. It is treated as admin
// regardless of the role the backend stored for it, everywhere role is read.
const SupportEmail = "support@medverse.com"

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User is the canonical portal user as returned by the backend. The backend
// emits two login response shapes; both normalize into this struct.
// Doctor accounts carry the extra profile fields.
type User struct {
	ID           string   `json:"id"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Roles        []string `json:"roles,omitempty"` // ordered, for multi-role accounts
	IsRegistered bool     `json:"isRegistered,omitempty"`

	// Doctor profile fields
	Specialization    string  `json:"specialization,omitempty"`
	Bio               string  `json:"bio,omitempty"`
	ConsultationFee   float64 `json:"consultationFee,omitempty"`
	Qualifications    string  `json:"qualifications,omitempty"`
	ProfilePictureURL string  `json:"profilePictureUrl,omitempty"`
}

// EffectiveRoles returns the ordered role list for the user: Roles if present,
// else [Role], else [patient].
func (u *User) EffectiveRoles() []string {
	if u == nil {
		return nil
	}
	if len(u.Roles) > 0 {
		return u.Roles
	}
	if u.Role != "" {
		return []string{u.Role}
	}
	return []string{RolePatient}
}

// HasRole reports whether role is in the user's role list.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.EffectiveRoles(), role)
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	switch {
	case u == nil:
		return ""
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// SessionEntry is one key/value pair of a visitor's durable session mirror.
// Token and user values are sealed at rest; plain values (activeRole, flags)
// are stored as-is.
type SessionEntry struct {
	BaseModel
	Scope     string    `json:"scope" gorm:"not null;uniqueIndex:idx_scope_key,priority:1"`
	Key       string    `json:"key" gorm:"not null;uniqueIndex:idx_scope_key,priority:2"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	Sealed    bool      `json:"sealed" gorm:"not null;default:false"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&SessionEntry{})
}
