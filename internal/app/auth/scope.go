package auth

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

// Table aliases the repositories use. Scope predicates refer to these.
const (
	AliasApplications  = "a"
	AliasStudents      = "sp"
	AliasJobs          = "j"
	AliasCompanies     = "c"
	AliasUsers         = "u"
	AliasAnnouncements = "an"
	AliasNotifications = "n"
)

// Actor is the authenticated user a request acts for.
type Actor struct {
	UserID       int64
	Email        string
	Role         models.RoleType
	DepartmentID *int64
	// StudentID and BatchYear are set only for students with a profile.
	StudentID int64
	BatchYear int
}

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// IsStudent reports whether the actor is a student.
func (a Actor) IsStudent() bool { return a.Role == models.RoleStudent }

// InDepartment reports whether departmentID is the actor's own department.
func (a Actor) InDepartment(departmentID *int64) bool {
	return a.DepartmentID != nil && departmentID != nil && *a.DepartmentID == *departmentID
}

type actorKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeDepartment
	scopeOwner
)

// Scope restricts queries on one resource to the rows the actor may observe.
// It is computed once per request and applied to both the page query and its
// count query.
type Scope struct {
	resource Resource
	kind     scopeKind
	actor    Actor
	now      time.Time
}

// ScopeFor computes the visibility scope of actor on resource.
func ScopeFor(actor Actor, resource Resource) (Scope, error) {
	s := Scope{resource: resource, actor: actor}

	switch {
	case resource == ResourceNotifications:
		s.kind = scopeOwner
	case actor.Role == models.RoleAdmin:
		s.kind = scopeAll
	case actor.Role.DepartmentScoped():
		if actor.DepartmentID == nil {
			return Scope{}, apperrors.NewForbiddenError("department staff must belong to a department")
		}
		s.kind = scopeDepartment
	case actor.Role == models.RoleStudent:
		if actor.StudentID == 0 && resource != ResourceDepartments && resource != ResourceAnnouncements {
			return Scope{}, apperrors.NewForbiddenError("student profile required")
		}
		s.kind = scopeOwner
	default:
		return Scope{}, apperrors.ErrPermissionDenied
	}

	if resource == ResourceDepartments {
		s.kind = scopeAll
	}
	return s, nil
}

// At fixes the instant time-dependent rules are evaluated at. Students only
// see job postings whose deadline has not passed at that instant.
func (s Scope) At(now time.Time) Scope {
	s.now = now
	return s
}

func (s Scope) instant() time.Time {
	if s.now.IsZero() {
		return time.Now()
	}
	return s.now
}

// Unrestricted reports whether the scope lets every row through.
func (s Scope) Unrestricted() bool {
	return s.kind == scopeAll
}

// Actor returns the actor the scope was computed for.
func (s Scope) Actor() Actor {
	return s.actor
}

// FiltersEligibility reports whether rows must additionally pass the
// eligibility evaluator before being shown. Only student job listings do.
func (s Scope) FiltersEligibility() bool {
	return s.kind == scopeOwner && s.resource == ResourceJobs
}

// Predicate returns the WHERE condition implementing the scope.
func (s Scope) Predicate() squirrel.Sqlizer {
	switch s.kind {
	case scopeDepartment:
		return s.departmentPredicate(*s.actor.DepartmentID)
	case scopeOwner:
		return s.ownerPredicate()
	default:
		return squirrel.And{}
	}
}

// Apply adds the scope predicate to b when the scope is restricted.
func (s Scope) Apply(b squirrel.SelectBuilder) squirrel.SelectBuilder {
	if s.Unrestricted() {
		return b
	}
	return b.Where(s.Predicate())
}

func (s Scope) departmentPredicate(dept int64) squirrel.Sqlizer {
	switch s.resource {
	case ResourceApplications, ResourceInterviews, ResourceStudents:
		return squirrel.Eq{AliasStudents + ".department_id": dept}
	case ResourceJobs:
		return squirrel.Or{
			squirrel.Eq{AliasJobs + ".department_id": dept},
			squirrel.Expr("? = ANY("+AliasJobs+".eligible_departments)", dept),
		}
	case ResourceCompanies:
		return squirrel.Or{
			squirrel.Eq{AliasCompanies + ".department_id": dept},
			squirrel.Eq{AliasCompanies + ".department_id": nil},
		}
	case ResourceUsers:
		return squirrel.Eq{AliasUsers + ".department_id": dept}
	case ResourceAnnouncements:
		return audiencePredicate(s.actor)
	default:
		return squirrel.Expr("1 = 0")
	}
}

func (s Scope) ownerPredicate() squirrel.Sqlizer {
	switch s.resource {
	case ResourceNotifications:
		return squirrel.Eq{AliasNotifications + ".user_id": s.actor.UserID}
	case ResourceApplications, ResourceInterviews:
		return squirrel.Eq{AliasApplications + ".student_id": s.actor.StudentID}
	case ResourceStudents:
		return squirrel.Eq{AliasStudents + ".id": s.actor.StudentID}
	case ResourceJobs:
		// Same rule as JobPosting.AcceptsApplications.
		return squirrel.And{
			squirrel.Eq{AliasJobs + ".status": models.JobActive},
			squirrel.Or{
				squirrel.Eq{AliasJobs + ".application_deadline": nil},
				squirrel.GtOrEq{AliasJobs + ".application_deadline": s.instant()},
			},
		}
	case ResourceCompanies:
		return squirrel.Eq{AliasCompanies + ".status": []models.CompanyStatus{models.CompanyApproved, models.CompanyActive}}
	case ResourceAnnouncements:
		return audiencePredicate(s.actor)
	default:
		return squirrel.Expr("1 = 0")
	}
}

// audiencePredicate selects published, unexpired announcements addressed to
// the actor. Empty target sets address everyone.
func audiencePredicate(actor Actor) squirrel.Sqlizer {
	an := AliasAnnouncements
	pred := squirrel.And{
		squirrel.Expr(an + ".publish_at <= now()"),
		squirrel.Expr("(" + an + ".expires_at IS NULL OR " + an + ".expires_at > now())"),
		squirrel.Expr("(cardinality("+an+".target_roles) = 0 OR ? = ANY("+an+".target_roles))", string(actor.Role)),
	}
	if actor.DepartmentID != nil {
		pred = append(pred, squirrel.Expr("(cardinality("+an+".target_departments) = 0 OR ? = ANY("+an+".target_departments))", *actor.DepartmentID))
	} else {
		pred = append(pred, squirrel.Expr("cardinality("+an+".target_departments) = 0"))
	}
	if actor.IsStudent() {
		pred = append(pred, squirrel.Expr("(cardinality("+an+".target_batches) = 0 OR ? = ANY("+an+".target_batches))", actor.BatchYear))
	}
	return pred
}

// AllowsStudentRecord reports whether a row owned by the given student, who
// belongs to studentDepartmentID, is inside the scope. It mirrors Predicate
// for applications, interviews and student profiles.
func (s Scope) AllowsStudentRecord(studentID, studentDepartmentID int64) bool {
	switch s.kind {
	case scopeAll:
		return true
	case scopeDepartment:
		return *s.actor.DepartmentID == studentDepartmentID
	default:
		return s.actor.StudentID != 0 && s.actor.StudentID == studentID
	}
}

// AllowsJob mirrors Predicate for a single job posting. Students must also
// pass the eligibility evaluator, which the caller checks.
func (s Scope) AllowsJob(job *models.JobPosting) bool {
	switch s.kind {
	case scopeAll:
		return true
	case scopeDepartment:
		dept := *s.actor.DepartmentID
		if job.DepartmentID != nil && *job.DepartmentID == dept {
			return true
		}
		for _, d := range job.EligibleDepartments {
			if d == dept {
				return true
			}
		}
		return false
	default:
		return job.AcceptsApplications(s.instant())
	}
}

// AllowsCompany mirrors Predicate for a single company.
func (s Scope) AllowsCompany(company *models.Company) bool {
	switch s.kind {
	case scopeAll:
		return true
	case scopeDepartment:
		return company.DepartmentID == nil || *company.DepartmentID == *s.actor.DepartmentID
	default:
		return company.Status.CanPost()
	}
}

// Unscoped returns a scope that lets every row of resource through. Callers
// using it restrict rows with their own conditions.
func Unscoped(resource Resource) Scope {
	return Scope{resource: resource, kind: scopeAll}
}

// AllowsAnnouncement mirrors the audience predicate for a single
// announcement at time now.
func (s Scope) AllowsAnnouncement(a *models.Announcement, now time.Time) bool {
	if s.kind == scopeAll {
		return true
	}
	if a.PublishAt.After(now) || (a.ExpiresAt != nil && !a.ExpiresAt.After(now)) {
		return false
	}
	actor := s.actor
	if len(a.TargetRoles) > 0 && !containsValue(a.TargetRoles, string(actor.Role)) {
		return false
	}
	if len(a.TargetDepartments) > 0 && (actor.DepartmentID == nil || !containsValue(a.TargetDepartments, *actor.DepartmentID)) {
		return false
	}
	if actor.IsStudent() && len(a.TargetBatches) > 0 && !containsValue(a.TargetBatches, actor.BatchYear) {
		return false
	}
	return true
}

func containsValue[T comparable](set []T, v T) bool {
	for _, item := range set {
		if item == v {
			return true
		}
	}
	return false
}
