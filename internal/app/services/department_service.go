package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
)

// DepartmentService manages academic departments
type DepartmentService struct {
	departmentRepo DepartmentStore
	authz          *auth.AuthorizationService
	logger         zerolog.Logger
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(departmentRepo DepartmentStore, authz *auth.AuthorizationService, logger zerolog.Logger) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		authz:          authz,
		logger:         logger,
	}
}

// List returns every department ordered by code.
func (s *DepartmentService) List(ctx context.Context, actor auth.Actor) ([]*models.Department, error) {
	if err := s.authz.Require(actor, auth.ResourceDepartments, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.departmentRepo.GetAll(ctx)
}

// Get returns one department.
func (s *DepartmentService) Get(ctx context.Context, actor auth.Actor, id int64) (*models.Department, error) {
	if err := s.authz.Require(actor, auth.ResourceDepartments, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.departmentRepo.GetByID(ctx, id)
}

// Create adds a department.
func (s *DepartmentService) Create(ctx context.Context, actor auth.Actor, req *dto.DepartmentRequest) (*models.Department, error) {
	if err := s.authz.Require(actor, auth.ResourceDepartments, auth.ActionCreate); err != nil {
		return nil, err
	}
	dept := &models.Department{
		Code: strings.ToUpper(strings.TrimSpace(req.Code)),
		Name: strings.TrimSpace(req.Name),
	}
	if err := s.departmentRepo.Create(ctx, dept); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("departmentId", dept.ID).Str("code", dept.Code).Msg("Department created")
	return dept, nil
}

// Update renames a department or changes its code.
func (s *DepartmentService) Update(ctx context.Context, actor auth.Actor, id int64, req *dto.DepartmentRequest) (*models.Department, error) {
	if err := s.authz.Require(actor, auth.ResourceDepartments, auth.ActionUpdate); err != nil {
		return nil, err
	}
	dept := &models.Department{
		ID:   id,
		Code: strings.ToUpper(strings.TrimSpace(req.Code)),
		Name: strings.TrimSpace(req.Name),
	}
	if err := s.departmentRepo.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Delete removes a department nothing refers to.
func (s *DepartmentService) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	if err := s.authz.Require(actor, auth.ResourceDepartments, auth.ActionDelete); err != nil {
		return err
	}
	return s.departmentRepo.Delete(ctx, id)
}
