package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	pkgauth "github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// UserService administers staff accounts
type UserService struct {
	tx             Transactor
	userRepo       UserStore
	tokenRepo      TokenStore
	departmentRepo DepartmentStore
	authz          *auth.AuthorizationService
	logger         zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	tx Transactor,
	userRepo UserStore,
	tokenRepo TokenStore,
	departmentRepo DepartmentStore,
	authz *auth.AuthorizationService,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		tx:             tx,
		userRepo:       userRepo,
		tokenRepo:      tokenRepo,
		departmentRepo: departmentRepo,
		authz:          authz,
		logger:         logger,
	}
}

// List returns a page of users visible to the actor.
func (s *UserService) List(ctx context.Context, actor auth.Actor, filter dto.UserFilterRequest) (*dto.PaginatedResponse, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceUsers)
	if err != nil {
		return nil, err
	}

	page, size := helpers.NormalizePage(filter.PageRequest)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	users, total, err := s.userRepo.List(ctx, scope, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	resp := helpers.Paginate(users, total, page, size)
	return &resp, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, actor auth.Actor, id int64) (*models.User, error) {
	if err := s.authz.Require(actor, auth.ResourceUsers, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// CreateStaff creates an administrator, department officer or coordinator.
// Department staff must name their department.
func (s *UserService) CreateStaff(ctx context.Context, actor auth.Actor, req *dto.CreateStaffRequest) (*models.User, error) {
	if err := s.authz.Require(actor, auth.ResourceUsers, auth.ActionCreate); err != nil {
		return nil, err
	}

	role := models.RoleType(req.Role)
	if !role.IsStaff() {
		return nil, apperrors.NewValidationError("role", "role must be a staff role")
	}
	if role.DepartmentScoped() && req.DepartmentID == nil {
		return nil, apperrors.NewValidationError("departmentId", "department staff must belong to a department")
	}
	if req.DepartmentID != nil {
		exists, err := s.departmentRepo.Exists(ctx, *req.DepartmentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check department: %w", err)
		}
		if !exists {
			return nil, apperrors.NewValidationError("departmentId", "department does not exist")
		}
	}
	if err := pkgauth.ValidatePasswordPolicy(req.Password); err != nil {
		return nil, apperrors.NewValidationError("password", err.Error())
	}

	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Password:     hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        helpers.TrimmedPtr(req.Phone),
		RoleType:     role,
		Status:       models.UserStatusActive,
		DepartmentID: req.DepartmentID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userId", user.ID).Str("role", string(role)).Int64("by", actor.UserID).Msg("Staff account created")
	return user, nil
}

// UpdateStatus activates, deactivates or suspends an account. Leaving the
// active state revokes the user's refresh tokens.
func (s *UserService) UpdateStatus(ctx context.Context, actor auth.Actor, id int64, status models.UserStatus) (*models.User, error) {
	if err := s.authz.Require(actor, auth.ResourceUsers, auth.ActionUpdate); err != nil {
		return nil, err
	}
	if id == actor.UserID && status != models.UserStatusActive {
		return nil, apperrors.NewBadRequestError("you cannot deactivate your own account")
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		if status != models.UserStatusActive {
			return s.tokenRepo.RevokeAllUserTokens(ctx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// Delete removes an account that no record references.
func (s *UserService) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	if err := s.authz.Require(actor, auth.ResourceUsers, auth.ActionDelete); err != nil {
		return err
	}
	if id == actor.UserID {
		return apperrors.NewBadRequestError("you cannot delete your own account")
	}
	return s.userRepo.Delete(ctx, id)
}
