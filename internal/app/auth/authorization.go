package auth

import (
	"fmt"

	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

// AuthorizationService combines the policy table with the row-level rules
// services apply after loading a record.
type AuthorizationService struct {
	policy *PolicyTable
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(policy *PolicyTable) *AuthorizationService {
	return &AuthorizationService{policy: policy}
}

// Policy returns the underlying policy table.
func (s *AuthorizationService) Policy() *PolicyTable {
	return s.policy
}

// Require fails with a forbidden error unless the actor's role holds action
// on resource.
func (s *AuthorizationService) Require(actor Actor, resource Resource, action Action) error {
	if !s.policy.HasPermission(actor.Role, resource, action) {
		return apperrors.NewForbiddenError(fmt.Sprintf("role %s may not %s %s", actor.Role, action, resource))
	}
	return nil
}

// Scope checks the read permission and returns the actor's visibility scope.
func (s *AuthorizationService) Scope(actor Actor, resource Resource) (Scope, error) {
	if err := s.Require(actor, resource, ActionRead); err != nil {
		return Scope{}, err
	}
	return ScopeFor(actor, resource)
}

// RequireDepartment lets admins through and restricts department staff to
// records of their own department.
func (s *AuthorizationService) RequireDepartment(actor Actor, departmentID *int64) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.Role.DepartmentScoped() && actor.InDepartment(departmentID):
		return nil
	default:
		return apperrors.NewForbiddenError("record belongs to another department")
	}
}

// RequireStudentOwner restricts a student to their own profile and records.
func (s *AuthorizationService) RequireStudentOwner(actor Actor, studentID int64) error {
	if !actor.IsStudent() || actor.StudentID == 0 || actor.StudentID != studentID {
		return apperrors.NewForbiddenError("record belongs to another student")
	}
	return nil
}

// RequireCreatorOrDepartment implements the "update own" rule: coordinators
// may change only what they created, department officers anything in their
// department, admins everything.
func (s *AuthorizationService) RequireCreatorOrDepartment(actor Actor, createdBy int64, departmentID *int64) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleDeptOfficer:
		return s.RequireDepartment(actor, departmentID)
	case models.RoleCoordinator:
		if createdBy == actor.UserID {
			return nil
		}
		return apperrors.NewForbiddenError("coordinators may only change records they created")
	default:
		return apperrors.ErrPermissionDenied
	}
}
