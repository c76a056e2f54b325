package auth

import (
	"github.com/yigit/placement/internal/app/models"
)

// Resource is a class of records guarded by the policy table
type Resource string

const (
	ResourceCompanies     Resource = "companies"
	ResourceJobs          Resource = "jobs"
	ResourceApplications  Resource = "applications"
	ResourceInterviews    Resource = "interviews"
	ResourceStudents      Resource = "students"
	ResourceDepartments   Resource = "departments"
	ResourceAnnouncements Resource = "announcements"
	ResourceNotifications Resource = "notifications"
	ResourceUsers         Resource = "users"
)

// Action is an operation on a resource
type Action string

const (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionApprove  Action = "approve"
	ActionWithdraw Action = "withdraw"
	ActionExport   Action = "export"
)

// Grants lists the allowed actions per role and resource.
type Grants map[models.RoleType]map[Resource][]Action

// PolicyTable answers role/resource/action questions. It is built once at
// startup and never mutated afterwards.
type PolicyTable struct {
	grants map[models.RoleType]map[Resource]map[Action]struct{}
}

// NewPolicyTable copies grants into an immutable lookup table.
func NewPolicyTable(grants Grants) *PolicyTable {
	table := make(map[models.RoleType]map[Resource]map[Action]struct{}, len(grants))
	for role, resources := range grants {
		byResource := make(map[Resource]map[Action]struct{}, len(resources))
		for resource, actions := range resources {
			set := make(map[Action]struct{}, len(actions))
			for _, action := range actions {
				set[action] = struct{}{}
			}
			byResource[resource] = set
		}
		table[role] = byResource
	}
	return &PolicyTable{grants: table}
}

// HasPermission reports whether role may perform action on resource. Unknown
// roles, resources and actions are denied.
func (p *PolicyTable) HasPermission(role models.RoleType, resource Resource, action Action) bool {
	if p == nil {
		return false
	}
	actions, ok := p.grants[role][resource]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}

// Actions returns the actions role holds on resource, in no particular order.
func (p *PolicyTable) Actions(role models.RoleType, resource Resource) []Action {
	var out []Action
	for action := range p.grants[role][resource] {
		out = append(out, action)
	}
	return out
}

var (
	full        = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport}
	fullApprove = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionApprove, ActionExport}
	readOnly    = []Action{ActionRead}
	ownInbox    = []Action{ActionRead, ActionUpdate}
)

// DefaultGrants is the placement cell's role table. Department and ownership
// qualifiers are applied by scopes, not here.
func DefaultGrants() Grants {
	return Grants{
		models.RoleAdmin: {
			ResourceCompanies:     fullApprove,
			ResourceJobs:          fullApprove,
			ResourceApplications:  {ActionRead, ActionUpdate, ActionExport},
			ResourceInterviews:    full,
			ResourceStudents:      {ActionRead, ActionUpdate, ActionApprove, ActionExport},
			ResourceDepartments:   full,
			ResourceAnnouncements: full,
			ResourceNotifications: ownInbox,
			ResourceUsers:         full,
		},
		models.RoleDeptOfficer: {
			ResourceCompanies:     {ActionCreate, ActionRead, ActionUpdate, ActionApprove},
			ResourceJobs:          {ActionCreate, ActionRead, ActionUpdate, ActionApprove, ActionExport},
			ResourceApplications:  {ActionRead, ActionUpdate, ActionExport},
			ResourceInterviews:    full,
			ResourceStudents:      {ActionRead, ActionApprove, ActionExport},
			ResourceDepartments:   readOnly,
			ResourceAnnouncements: {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
			ResourceNotifications: ownInbox,
		},
		models.RoleCoordinator: {
			ResourceCompanies:     {ActionCreate, ActionRead, ActionUpdate},
			ResourceJobs:          {ActionCreate, ActionRead, ActionUpdate},
			ResourceApplications:  {ActionRead, ActionExport},
			ResourceInterviews:    {ActionCreate, ActionRead, ActionUpdate},
			ResourceStudents:      {ActionRead, ActionExport},
			ResourceDepartments:   readOnly,
			ResourceAnnouncements: {ActionCreate, ActionRead, ActionUpdate},
			ResourceNotifications: ownInbox,
		},
		models.RoleStudent: {
			ResourceJobs:          readOnly,
			ResourceApplications:  {ActionCreate, ActionRead, ActionWithdraw},
			ResourceInterviews:    readOnly,
			ResourceStudents:      {ActionRead, ActionUpdate},
			ResourceDepartments:   readOnly,
			ResourceAnnouncements: readOnly,
			ResourceNotifications: ownInbox,
		},
	}
}

// NewDefaultPolicy builds the policy table from DefaultGrants.
func NewDefaultPolicy() *PolicyTable {
	return NewPolicyTable(DefaultGrants())
}
