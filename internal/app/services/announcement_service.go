package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// AnnouncementService manages the notice board
type AnnouncementService struct {
	announcementRepo AnnouncementStore
	authz            *auth.AuthorizationService
	clock            Clock
	logger           zerolog.Logger
}

// NewAnnouncementService creates a new AnnouncementService
func NewAnnouncementService(announcementRepo AnnouncementStore, authz *auth.AuthorizationService, logger zerolog.Logger) *AnnouncementService {
	return &AnnouncementService{
		announcementRepo: announcementRepo,
		authz:            authz,
		logger:           logger,
	}
}

// Feed returns the announcements addressed to the actor that are currently
// published, most urgent first.
func (s *AnnouncementService) Feed(ctx context.Context, actor auth.Actor, req dto.PageRequest) (*dto.PaginatedResponse, error) {
	if err := s.authz.Require(actor, auth.ResourceAnnouncements, auth.ActionRead); err != nil {
		return nil, err
	}
	scope, err := auth.ScopeFor(actor, auth.ResourceAnnouncements)
	if err != nil {
		return nil, err
	}
	if scope.Unrestricted() {
		// Administrators read the feed like everyone else: published and
		// not expired.
		now := s.clock.now()
		return s.list(ctx, scope, squirrel.And{
			squirrel.LtOrEq{"an.publish_at": now},
			squirrel.Or{squirrel.Eq{"an.expires_at": nil}, squirrel.Gt{"an.expires_at": now}},
		}, req)
	}
	return s.list(ctx, scope, nil, req)
}

// Managed returns every announcement the actor may edit, including
// scheduled and expired ones.
func (s *AnnouncementService) Managed(ctx context.Context, actor auth.Actor, req dto.PageRequest) (*dto.PaginatedResponse, error) {
	if err := s.authz.Require(actor, auth.ResourceAnnouncements, auth.ActionUpdate); err != nil {
		return nil, err
	}
	var where squirrel.And
	if !actor.IsAdmin() {
		where = squirrel.And{squirrel.Eq{"an.created_by": actor.UserID}}
	}
	return s.list(ctx, auth.Unscoped(auth.ResourceAnnouncements), where, req)
}

func (s *AnnouncementService) list(ctx context.Context, scope auth.Scope, where squirrel.And, req dto.PageRequest) (*dto.PaginatedResponse, error) {
	page, size := helpers.NormalizePage(req)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	items, total, err := s.announcementRepo.List(ctx, scope, where, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	resp := helpers.Paginate(items, total, page, size)
	return &resp, nil
}

// Get returns one announcement the actor is addressed by or manages.
func (s *AnnouncementService) Get(ctx context.Context, actor auth.Actor, id int64) (*models.Announcement, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceAnnouncements)
	if err != nil {
		return nil, err
	}
	a, err := s.announcementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.CreatedBy != actor.UserID && !scope.AllowsAnnouncement(a, s.clock.now()) {
		return nil, apperrors.ErrAnnouncementNotFound
	}
	return a, nil
}

// Create publishes an announcement. Department staff may address only their
// own department; leaving the departments empty targets it.
func (s *AnnouncementService) Create(ctx context.Context, actor auth.Actor, req *dto.AnnouncementRequest) (*models.Announcement, error) {
	if err := s.authz.Require(actor, auth.ResourceAnnouncements, auth.ActionCreate); err != nil {
		return nil, err
	}
	a := &models.Announcement{CreatedBy: actor.UserID}
	if err := s.apply(actor, a, req); err != nil {
		return nil, err
	}
	if err := s.announcementRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("announcementId", a.ID).Int64("by", actor.UserID).Msg("Announcement created")
	return a, nil
}

// Update replaces an announcement's content and audience.
func (s *AnnouncementService) Update(ctx context.Context, actor auth.Actor, id int64, req *dto.AnnouncementRequest) (*models.Announcement, error) {
	a, err := s.owned(ctx, actor, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := s.apply(actor, a, req); err != nil {
		return nil, err
	}
	if err := s.announcementRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	if _, err := s.owned(ctx, actor, id, auth.ActionDelete); err != nil {
		return err
	}
	return s.announcementRepo.Delete(ctx, id)
}

func (s *AnnouncementService) owned(ctx context.Context, actor auth.Actor, id int64, action auth.Action) (*models.Announcement, error) {
	if err := s.authz.Require(actor, auth.ResourceAnnouncements, action); err != nil {
		return nil, err
	}
	a, err := s.announcementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && a.CreatedBy != actor.UserID {
		return nil, apperrors.NewForbiddenError("only the author can change this announcement")
	}
	return a, nil
}

func (s *AnnouncementService) apply(actor auth.Actor, a *models.Announcement, req *dto.AnnouncementRequest) error {
	a.Title = strings.TrimSpace(req.Title)
	a.Body = req.Body
	a.Priority = models.AnnouncementPriority(req.Priority)
	if a.Priority == "" {
		a.Priority = models.PriorityNormal
	}
	a.TargetRoles = req.TargetRoles
	a.TargetDepartments = req.TargetDepartments
	a.TargetBatches = req.TargetBatches

	if actor.Role.DepartmentScoped() {
		if actor.DepartmentID == nil {
			return apperrors.NewForbiddenError("department staff must belong to a department")
		}
		for _, d := range a.TargetDepartments {
			if d != *actor.DepartmentID {
				return apperrors.NewValidationError("targetDepartments", "you can only address your own department")
			}
		}
		a.TargetDepartments = []int64{*actor.DepartmentID}
	}

	if req.PublishAt != nil {
		a.PublishAt = *req.PublishAt
	} else if a.PublishAt.IsZero() {
		a.PublishAt = s.clock.now()
	}
	a.ExpiresAt = req.ExpiresAt
	if a.ExpiresAt != nil && !a.ExpiresAt.After(a.PublishAt) {
		return apperrors.NewValidationError("expiresAt", "expiry must be after the publish time")
	}
	return nil
}
