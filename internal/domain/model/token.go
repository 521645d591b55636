package model

import (
	"errors"
	"strings"
	"time"
)

const maxTokenTTLHours = 24 * 365

// APIToken is a long-lived credential for non-browser API access. The secret
// value is only returned once, at creation time.
type APIToken struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Prefix    string     `json:"prefix"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// CreateTokenRequest represents parameters to create an APIToken.
type CreateTokenRequest struct {
	Name     string `json:"name"`
	TTLHours int    `json:"ttl_hours,omitempty"`
}

// Validate validates CreateTokenRequest.
func (r *CreateTokenRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if r.TTLHours < 0 {
		return errors.New("ttl_hours must be >= 0")
	}
	if r.TTLHours > maxTokenTTLHours {
		return errors.New("ttl_hours cannot exceed one year")
	}
	return nil
}

// CreatedToken pairs the one-time secret with its metadata.
type CreatedToken struct {
	Token    string   `json:"token"`
	APIToken APIToken `json:"api_token"`
}

// TokenInfo is the locally parsed view of an API token's claims. The parse is
// unverified; it exists for display purposes, not for trust decisions.
type TokenInfo struct {
	Subject   string
	Issuer    string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	Expired   bool
}
