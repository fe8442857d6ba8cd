package domain

import (
	"strings"
	"time"
)

// Role is the fixed set of roles a user can hold.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleDoctor       Role = "DOCTOR"
	RoleReceptionist Role = "RECEPTIONIST"
	RolePatient      Role = "PATIENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient:
		return true
	}
	return false
}

// AuthProvider tags how a user's identity is established. INTERNAL means a
// locally stored password; any other value names an external provider.
type AuthProvider string

const AuthProviderInternal AuthProvider = "INTERNAL"

// IsInternal reports whether the account authenticates with a local password.
func (p AuthProvider) IsInternal() bool {
	return p == AuthProviderInternal
}

// User models an account that can sign in to the clinic backend.
type User struct {
	ID           int64        `json:"id"`
	FullName     string       `json:"fullName"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone,omitempty"`
	PasswordHash string       `json:"-"`
	Role         Role         `json:"role"`
	AuthProvider AuthProvider `json:"authProvider"`
	Active       bool         `json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Principal builds the request-scoped identity for u.
func (u *User) Principal() Principal {
	return Principal{
		UserID:   u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		Active:   u.Active,
	}
}

// NormalizeEmail lower-cases and trims an email so it can be used as the
// identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
