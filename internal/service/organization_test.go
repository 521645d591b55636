package service

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/testutil"
)

func newOrgService(t *testing.T, handler http.Handler) *OrganizationService {
	t.Helper()
	client, _ := newTestBackend(t, handler)
	return NewOrganizationService(OrganizationServiceOptions{Client: client, Logger: discardLogger()})
}

func TestOrganizationService_ListUnwrapsEnvelope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/organizations", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"organizations": []model.Organization{
				{ID: "org-1", Slug: "acme", Name: "Acme Corp"},
				{ID: "org-2", Slug: "globex", Name: "Globex"},
			},
		})
	})

	svc := newOrgService(t, handler)
	orgs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, "acme", orgs[0].Slug)
}

func TestOrganizationService_CreateValidatesFirst(t *testing.T) {
	svc := newOrgService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid payloads must not reach the backend")
	}))

	_, err := svc.Create(context.Background(), model.CreateOrganizationRequest{Name: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Create(context.Background(), model.CreateOrganizationRequest{Name: "Acme", Slug: "Not A Slug"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestOrganizationService_CreateDecodesResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Acme Corp","slug":"acme"}`, string(body))
		writeJSON(t, w, http.StatusCreated, model.Organization{ID: "org-1", Slug: "acme", Name: "Acme Corp"})
	})

	svc := newOrgService(t, handler)
	org, err := svc.Create(context.Background(), model.CreateOrganizationRequest{Name: "Acme Corp", Slug: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "org-1", org.ID)
}

func TestOrganizationService_CreateSurfacesConflict(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, map[string]string{"error": "slug already taken"})
	})

	svc := newOrgService(t, handler)
	_, err := svc.Create(context.Background(), model.CreateOrganizationRequest{Name: "Acme", Slug: "acme"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "slug already taken")
}

func TestOrganizationService_UpdateUsesPatch(t *testing.T) {
	var gotMethod string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.Equal(t, "/api/v1/organizations/org-1", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Acme Inc"}`, string(body))
		writeJSON(t, w, http.StatusOK, model.Organization{ID: "org-1", Slug: "acme", Name: "Acme Inc"})
	})

	svc := newOrgService(t, handler)
	org, err := svc.Update(context.Background(), "org-1", model.UpdateOrganizationRequest{Name: testutil.StringPtr("Acme Inc")})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "Acme Inc", org.Name)
}

func TestOrganizationService_UpdateRejectsEmptyPatch(t *testing.T) {
	svc := newOrgService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("empty patches must not reach the backend")
	}))

	_, err := svc.Update(context.Background(), "org-1", model.UpdateOrganizationRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestOrganizationService_DeleteHitsIDPath(t *testing.T) {
	var gotMethod, gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	svc := newOrgService(t, handler)
	require.NoError(t, svc.Delete(context.Background(), "org-1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/v1/organizations/org-1", gotPath)
}

func TestOrganizationService_MembersUnwrapsEnvelope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/organizations/org-1/members", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"members": []model.Member{
				{UserID: 1, Email: "owner@acme.io", Role: "owner"},
				{UserID: 2, Email: "dev@acme.io", Role: "member"},
			},
		})
	})

	svc := newOrgService(t, handler)
	members, err := svc.Members(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "owner", members[0].Role)
}

func TestOrganizationService_InvitePostsToMembers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/organizations/org-1/members", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"email":"new@acme.io","role":"member"}`, string(body))
		writeJSON(t, w, http.StatusCreated, model.Member{UserID: 9, Email: "new@acme.io", Role: "member"})
	})

	svc := newOrgService(t, handler)
	member, err := svc.Invite(context.Background(), "org-1", model.InviteMemberRequest{Email: "new@acme.io", Role: "member"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), member.UserID)
}

func TestOrganizationService_InviteValidatesEmail(t *testing.T) {
	svc := newOrgService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid invites must not reach the backend")
	}))

	_, err := svc.Invite(context.Background(), "org-1", model.InviteMemberRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestOrganizationService_RemoveMemberBuildsPath(t *testing.T) {
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	svc := newOrgService(t, handler)
	require.NoError(t, svc.RemoveMember(context.Background(), "org-1", 42))
	assert.Equal(t, "/api/v1/organizations/org-1/members/42", gotPath)

	err := svc.RemoveMember(context.Background(), "org-1", 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestOrganizationService_BlankIDRejectedEverywhere(t *testing.T) {
	svc := newOrgService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("blank ids must not reach the backend")
	}))

	_, err := svc.Get(context.Background(), "")
	assert.True(t, apperrors.IsValidation(err))
	_, err = svc.Members(context.Background(), " ")
	assert.True(t, apperrors.IsValidation(err))
	assert.True(t, apperrors.IsValidation(svc.Delete(context.Background(), "")))
}
