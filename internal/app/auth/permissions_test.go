package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/placement/internal/app/models"
)

func TestHasPermission_Table(t *testing.T) {
	policy := NewDefaultPolicy()

	tests := []struct {
		role     models.RoleType
		resource Resource
		action   Action
		want     bool
	}{
		{models.RoleAdmin, ResourceJobs, ActionApprove, true},
		{models.RoleAdmin, ResourceApplications, ActionUpdate, true},
		{models.RoleAdmin, ResourceApplications, ActionDelete, false},
		{models.RoleAdmin, ResourceApplications, ActionWithdraw, false},
		{models.RoleDeptOfficer, ResourceCompanies, ActionApprove, true},
		{models.RoleDeptOfficer, ResourceInterviews, ActionDelete, true},
		{models.RoleDeptOfficer, ResourceStudents, ActionUpdate, false},
		{models.RoleCoordinator, ResourceCompanies, ActionApprove, false},
		{models.RoleCoordinator, ResourceApplications, ActionRead, true},
		{models.RoleCoordinator, ResourceApplications, ActionUpdate, false},
		{models.RoleCoordinator, ResourceInterviews, ActionCreate, true},
		{models.RoleStudent, ResourceCompanies, ActionRead, false},
		{models.RoleStudent, ResourceJobs, ActionRead, true},
		{models.RoleStudent, ResourceJobs, ActionCreate, false},
		{models.RoleStudent, ResourceApplications, ActionWithdraw, true},
		{models.RoleStudent, ResourceInterviews, ActionUpdate, false},
		{models.RoleStudent, ResourceUsers, ActionRead, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, policy.HasPermission(tt.role, tt.resource, tt.action),
			"%s %s %s", tt.role, tt.action, tt.resource)
	}
}

func TestHasPermission_UnknownDenied(t *testing.T) {
	policy := NewDefaultPolicy()
	assert.False(t, policy.HasPermission("guest", ResourceJobs, ActionRead))
	assert.False(t, policy.HasPermission(models.RoleAdmin, "payroll", ActionRead))
	assert.False(t, policy.HasPermission(models.RoleAdmin, ResourceJobs, "launch"))

	var nilPolicy *PolicyTable
	assert.False(t, nilPolicy.HasPermission(models.RoleAdmin, ResourceJobs, ActionRead))
}

func TestNewPolicyTable_CopiesGrants(t *testing.T) {
	grants := Grants{models.RoleStudent: {ResourceJobs: {ActionRead}}}
	policy := NewPolicyTable(grants)

	grants[models.RoleStudent][ResourceJobs] = append(grants[models.RoleStudent][ResourceJobs], ActionCreate)
	assert.False(t, policy.HasPermission(models.RoleStudent, ResourceJobs, ActionCreate))
	assert.ElementsMatch(t, []Action{ActionRead}, policy.Actions(models.RoleStudent, ResourceJobs))
}

func TestAuthorizationService_Rules(t *testing.T) {
	svc := NewAuthorizationService(NewDefaultPolicy())
	dept := int64(3)
	other := int64(4)

	coordinator := Actor{UserID: 10, Role: models.RoleCoordinator, DepartmentID: &dept}
	officer := Actor{UserID: 11, Role: models.RoleDeptOfficer, DepartmentID: &dept}
	admin := Actor{UserID: 1, Role: models.RoleAdmin}
	student := Actor{UserID: 20, Role: models.RoleStudent, StudentID: 5}

	assert.NoError(t, svc.Require(coordinator, ResourceJobs, ActionCreate))
	assert.Error(t, svc.Require(coordinator, ResourceJobs, ActionApprove))

	assert.NoError(t, svc.RequireDepartment(officer, &dept))
	assert.Error(t, svc.RequireDepartment(officer, &other))
	assert.Error(t, svc.RequireDepartment(officer, nil))
	assert.NoError(t, svc.RequireDepartment(admin, nil))
	assert.Error(t, svc.RequireDepartment(student, &dept))

	assert.NoError(t, svc.RequireStudentOwner(student, 5))
	assert.Error(t, svc.RequireStudentOwner(student, 6))
	assert.Error(t, svc.RequireStudentOwner(coordinator, 5))

	assert.NoError(t, svc.RequireCreatorOrDepartment(coordinator, 10, &other))
	assert.Error(t, svc.RequireCreatorOrDepartment(coordinator, 99, &dept))
	assert.NoError(t, svc.RequireCreatorOrDepartment(officer, 99, &dept))
	assert.Error(t, svc.RequireCreatorOrDepartment(student, 20, nil))
}
