package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
)

// DashboardRepository runs the aggregate counts shown on the dashboard
type DashboardRepository struct {
	base
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(pool db.Querier) *DashboardRepository {
	return &DashboardRepository{base: newBase(pool)}
}

// CountJobs counts postings inside scope with the given status
func (r *DashboardRepository) CountJobs(ctx context.Context, scope auth.Scope, status models.JobStatus) (int64, error) {
	q := r.sb.Select("COUNT(*)").From("job_postings j").Where(squirrel.Eq{"j.status": status})
	return r.count(ctx, scope.Apply(q), "jobs")
}

// CountCompanies counts companies inside scope with the given status
func (r *DashboardRepository) CountCompanies(ctx context.Context, scope auth.Scope, status models.CompanyStatus) (int64, error) {
	q := r.sb.Select("COUNT(*)").From("companies c").Where(squirrel.Eq{"c.status": status})
	return r.count(ctx, scope.Apply(q), "companies")
}

// CountStudents counts profiles inside scope, optionally by placement status
func (r *DashboardRepository) CountStudents(ctx context.Context, scope auth.Scope, status *models.PlacementStatus) (int64, error) {
	q := r.sb.Select("COUNT(*)").From("student_profiles sp")
	if status != nil {
		q = q.Where(squirrel.Eq{"sp.placement_status": *status})
	}
	return r.count(ctx, scope.Apply(q), "students")
}
