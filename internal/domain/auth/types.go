package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of transport/adapter concerns.

import (
	"slices"
	"time"
)

// Role represents an application authorization role.
// Keep string form for easy persistence and wire transfer.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// User is the authenticated principal as reported by the backend.
// A nil *User denotes an unauthenticated session.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Roles []Role `json:"roles"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// Clone returns a deep copy so shared session state cannot be mutated
// through a returned pointer.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Roles = slices.Clone(u.Roles)
	return &out
}

// Identity represents the principal returned by an external IdP during SSO.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject   string // stable identifier from the provider (sub)
	Email     string
	Name      string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from the ID token
	IDToken   string    // raw token, forwarded to the backend session exchange
}
