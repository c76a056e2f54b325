package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/dberrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

// ActiveApplicationConstraint is the partial unique index allowing one
// non-withdrawn application per student and job.
const ActiveApplicationConstraint = "applications_active_student_job_key"

var applicationColumns = []string{
	"a.id", "a.student_id", "a.job_id", "a.status", "a.cover_letter", "a.resume_url",
	"a.reviewed_by", "a.reviewed_at", "a.remarks", "a.applied_at", "a.updated_at",
	"sp.user_id", "u.first_name || ' ' || u.last_name", "u.email", "sp.roll_number",
	"sp.department_id", "sp.cgpa", "j.title", "c.id", "c.name",
}

// ApplicationRepository handles applications
type ApplicationRepository struct {
	base
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(pool db.Querier) *ApplicationRepository {
	return &ApplicationRepository{base: newBase(pool)}
}

// selectApplications joins the owning student and the job; the scope
// predicates of applications refer to the a and sp aliases.
func (r *ApplicationRepository) selectApplications(columns ...string) squirrel.SelectBuilder {
	return r.sb.Select(columns...).
		From("applications a").
		Join("student_profiles sp ON sp.id = a.student_id").
		Join("users u ON u.id = sp.user_id").
		Join("job_postings j ON j.id = a.job_id").
		Join("companies c ON c.id = j.company_id")
}

func scanApplication(row pgx.Row) (*models.ApplicationDetails, error) {
	var a models.ApplicationDetails
	err := row.Scan(
		&a.ID, &a.StudentID, &a.JobID, &a.Status, &a.CoverLetter, &a.ResumeURL,
		&a.ReviewedBy, &a.ReviewedAt, &a.Remarks, &a.AppliedAt, &a.UpdatedAt,
		&a.StudentUserID, &a.StudentName, &a.StudentEmail, &a.RollNumber,
		&a.StudentDepartmentID, &a.CGPA, &a.JobTitle, &a.CompanyID, &a.CompanyName,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an application. A second active application for the same
// student and job fails with ErrDuplicateApplication.
func (r *ApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	sql, args, err := r.sb.Insert("applications").
		Columns("student_id", "job_id", "status", "cover_letter", "resume_url").
		Values(a.StudentID, a.JobID, a.Status, a.CoverLetter, a.ResumeURL).
		Suffix("RETURNING id, applied_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&a.ID, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, ActiveApplicationConstraint) {
			return apperrors.ErrDuplicateApplication
		}
		logger.Error().Err(err).Int64("studentID", a.StudentID).Int64("jobID", a.JobID).Msg("Error creating application")
		return translate(err, nil, nil)
	}
	return nil
}

func (r *ApplicationRepository) getOne(ctx context.Context, id int64, suffix string) (*models.ApplicationDetails, error) {
	q := r.selectApplications(applicationColumns...).Where(squirrel.Eq{"a.id": id})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	a, err := scanApplication(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, apperrors.ErrApplicationNotFound, nil)
	}
	return a, nil
}

// GetByID retrieves an application with its student and job
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.ApplicationDetails, error) {
	return r.getOne(ctx, id, "")
}

// GetForUpdate loads an application and locks its row for the surrounding
// transaction.
func (r *ApplicationRepository) GetForUpdate(ctx context.Context, id int64) (*models.ApplicationDetails, error) {
	if !db.InTransaction(ctx) {
		return nil, errors.New("GetForUpdate requires a transaction")
	}
	return r.getOne(ctx, id, "FOR UPDATE OF a")
}

// ExistsActive reports whether the student already holds a non-withdrawn
// application for the job.
func (r *ApplicationRepository) ExistsActive(ctx context.Context, studentID, jobID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE student_id = $1 AND job_id = $2 AND status <> $3
		)`, studentID, jobID, models.ApplicationWithdrawn).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking existing application: %w", err)
	}
	return exists, nil
}

// UpdateStatus stores a new status. reviewedBy and remarks are recorded for
// staff changes and left untouched when nil.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus, reviewedBy *int64, remarks *string, at time.Time) error {
	q := r.sb.Update("applications").
		Set("status", status).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id})
	if reviewedBy != nil {
		q = q.Set("reviewed_by", *reviewedBy).Set("reviewed_at", at)
	}
	if remarks != nil {
		q = q.Set("remarks", *remarks)
	}

	n, err := r.exec(ctx, q, "update application status")
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, ActiveApplicationConstraint) {
			return apperrors.ErrDuplicateApplication
		}
		return translate(err, nil, nil)
	}
	if n == 0 {
		return apperrors.ErrApplicationNotFound
	}
	return nil
}

// List returns applications inside scope and the total matching count. A
// limit of 0 returns every matching row.
func (r *ApplicationRepository) List(ctx context.Context, scope auth.Scope, filter dto.ApplicationFilterRequest, offset uint64, limit int) ([]*models.ApplicationDetails, int64, error) {
	where := squirrel.And{}
	if filter.JobID != nil {
		where = append(where, squirrel.Eq{"a.job_id": *filter.JobID})
	}
	if filter.CompanyID != nil {
		where = append(where, squirrel.Eq{"j.company_id": *filter.CompanyID})
	}
	if filter.StudentID != nil {
		where = append(where, squirrel.Eq{"a.student_id": *filter.StudentID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"a.status": filter.Status})
	}

	total, err := r.count(ctx, scope.Apply(r.selectApplications("COUNT(*)").Where(conditions(where))), "applications")
	if err != nil {
		return nil, 0, err
	}

	query := scope.Apply(r.selectApplications(applicationColumns...).Where(conditions(where))).OrderBy("a.applied_at DESC", "a.id DESC")
	sql, args, err := paginate(query, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing applications")
		return nil, 0, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.ApplicationDetails, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, total, rows.Err()
}

// CountByStatus counts the applications inside scope per status
func (r *ApplicationRepository) CountByStatus(ctx context.Context, scope auth.Scope) (map[string]int64, error) {
	sql, args, err := scope.Apply(r.selectApplications("a.status", "COUNT(*)")).GroupBy("a.status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build application counts query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64, len(models.ApplicationStatuses))
	for _, s := range models.ApplicationStatuses {
		counts[string(s)] = 0
	}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
