package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxOrgNameLen = 255

// Organization is a tenant that owns scans and members.
type Organization struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is a user's membership in an organization.
type Member struct {
	UserID   int64     `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name,omitempty"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// CreateOrganizationRequest represents parameters to create an Organization.
type CreateOrganizationRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Validate validates CreateOrganizationRequest.
func (r *CreateOrganizationRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxOrgNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if r.Slug != "" && !validSlug(r.Slug) {
		return errors.New("slug may only contain lowercase letters, digits, and hyphens")
	}
	return nil
}

// UpdateOrganizationRequest represents parameters to update an Organization.
type UpdateOrganizationRequest struct {
	Name *string `json:"name,omitempty"`
	Plan *string `json:"plan,omitempty"`
}

// HasUpdates reports whether any field is set in UpdateOrganizationRequest.
func (r *UpdateOrganizationRequest) HasUpdates() bool {
	return r.Name != nil || r.Plan != nil
}

// Validate validates UpdateOrganizationRequest, ensuring at least one field is set.
func (r *UpdateOrganizationRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(n) > maxOrgNameLen {
			return errors.New("name cannot exceed 255 characters")
		}
	}
	return nil
}

// InviteMemberRequest represents parameters to invite a member.
type InviteMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Validate validates InviteMemberRequest.
func (r *InviteMemberRequest) Validate() error {
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return errors.New("email is required")
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return errors.New("email is not valid")
	}
	return nil
}

func validSlug(s string) bool {
	if s == "" || strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}
