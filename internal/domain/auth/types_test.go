package auth

import (
	"testing"
	"time"
)

func TestUser_HasRole(t *testing.T) {
	u := &User{ID: 1, Email: "a@example.com", Roles: []Role{RoleUser, RoleViewer}}
	if !u.HasRole(RoleViewer) {
		t.Fatalf("expected viewer role")
	}
	if u.HasRole(RoleAdmin) {
		t.Fatalf("did not expect admin role")
	}
	var nilUser *User
	if nilUser.HasRole(RoleUser) {
		t.Fatalf("nil user must not carry roles")
	}
}

func TestUser_IsAdmin(t *testing.T) {
	if !(&User{Roles: []Role{RoleAdmin}}).IsAdmin() {
		t.Fatalf("expected admin")
	}
	if (&User{Roles: []Role{RoleUser}}).IsAdmin() {
		t.Fatalf("did not expect admin")
	}
}

func TestUser_Clone(t *testing.T) {
	var nilUser *User
	if nilUser.Clone() != nil {
		t.Fatalf("clone of nil must be nil")
	}

	orig := &User{ID: 7, Email: "a@example.com", Roles: []Role{RoleUser}}
	cp := orig.Clone()
	cp.Roles[0] = RoleAdmin
	cp.Email = "b@example.com"
	if orig.Roles[0] != RoleUser || orig.Email != "a@example.com" {
		t.Fatalf("clone mutated original: %+v", orig)
	}
}

func TestIdentity_SimpleFields(t *testing.T) {
	id := Identity{Subject: "sub-1", Email: "e", ExpiresAt: time.Now().Add(time.Hour)}
	if id.Subject != "sub-1" || id.Email != "e" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}
