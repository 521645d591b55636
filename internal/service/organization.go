package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/api"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
)

const organizationsPath = "/api/v1/organizations"

// OrganizationServiceOptions groups dependencies for OrganizationService.
type OrganizationServiceOptions struct {
	Client backend
	Logger *slog.Logger
}

// OrganizationService manages tenants and their memberships.
type OrganizationService struct {
	client backend
	logger *slog.Logger
}

// NewOrganizationService constructs a new OrganizationService.
func NewOrganizationService(opts OrganizationServiceOptions) *OrganizationService {
	if opts.Client == nil {
		panic("organization service: Client is required")
	}
	return &OrganizationService{
		client: opts.Client,
		logger: resolveServiceLogger(opts.Logger),
	}
}

// List returns the organizations visible to the current session.
func (s *OrganizationService) List(ctx context.Context) ([]model.Organization, error) {
	res := s.client.Get(ctx, organizationsPath, nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var payload struct {
		Organizations []model.Organization `json:"organizations"`
	}
	if err := res.Decode(&payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode organizations")
	}
	return payload.Organizations, nil
}

// Get fetches one organization by id or slug.
func (s *OrganizationService) Get(ctx context.Context, id string) (*model.Organization, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "organization id is required")
	}

	res := s.client.Get(ctx, organizationsPath+"/"+url.PathEscape(id), nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var org model.Organization
	if err := res.Decode(&org); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode organization")
	}
	return &org, nil
}

// Create registers a new organization.
func (s *OrganizationService) Create(ctx context.Context, req model.CreateOrganizationRequest) (*model.Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	res := s.client.Post(ctx, organizationsPath, req)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var org model.Organization
	if err := res.Decode(&org); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode created organization")
	}
	s.logger.InfoContext(ctx, "organization created", "org_id", org.ID, "slug", org.Slug)
	return &org, nil
}

// Update applies a partial update to an organization.
func (s *OrganizationService) Update(ctx context.Context, id string, req model.UpdateOrganizationRequest) (*model.Organization, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "organization id is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	res := s.client.Do(ctx, api.Request{
		Method: http.MethodPatch,
		Path:   organizationsPath + "/" + url.PathEscape(id),
		Body:   req,
	})
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var org model.Organization
	if err := res.Decode(&org); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode updated organization")
	}
	return &org, nil
}

// Delete removes an organization.
func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ValidationField("id", "organization id is required")
	}

	res := s.client.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   organizationsPath + "/" + url.PathEscape(id),
	})
	if !res.OK {
		return apperrors.FromStatus(res.Status, res.Error)
	}
	s.logger.InfoContext(ctx, "organization deleted", "org_id", id)
	return nil
}

// Members lists the members of an organization.
func (s *OrganizationService) Members(ctx context.Context, id string) ([]model.Member, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "organization id is required")
	}

	res := s.client.Get(ctx, organizationsPath+"/"+url.PathEscape(id)+"/members", nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var payload struct {
		Members []model.Member `json:"members"`
	}
	if err := res.Decode(&payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode members")
	}
	return payload.Members, nil
}

// Invite adds a user to the organization by email.
func (s *OrganizationService) Invite(ctx context.Context, id string, req model.InviteMemberRequest) (*model.Member, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "organization id is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	res := s.client.Post(ctx, organizationsPath+"/"+url.PathEscape(id)+"/members", req)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var member model.Member
	if err := res.Decode(&member); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode invited member")
	}
	s.logger.InfoContext(ctx, "member invited", "org_id", id, "email", req.Email)
	return &member, nil
}

// RemoveMember drops a user from the organization.
func (s *OrganizationService) RemoveMember(ctx context.Context, id string, userID int64) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ValidationField("id", "organization id is required")
	}
	if userID <= 0 {
		return apperrors.ValidationField("user_id", "user id must be positive")
	}

	res := s.client.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   organizationsPath + "/" + url.PathEscape(id) + "/members/" + strconv.FormatInt(userID, 10),
	})
	if !res.OK {
		return apperrors.FromStatus(res.Status, res.Error)
	}
	s.logger.InfoContext(ctx, "member removed", "org_id", id, "user_id", userID)
	return nil
}
