package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/helpers"
	"github.com/yigit/placement/internal/pkg/logger"
)

var jobColumns = []string{
	"j.id", "j.company_id", "c.name", "j.title", "j.description", "j.job_type", "j.location",
	"j.ctc", "j.stipend", "j.required_cgpa", "j.allowed_backlogs",
	"j.eligible_departments", "j.eligible_batches", "j.eligible_degrees",
	"j.application_deadline", "j.status", "j.department_id", "j.created_by",
	"j.approved_by", "j.approved_at", "j.created_at", "j.updated_at",
}

// JobRepository handles job postings
type JobRepository struct {
	base
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(pool db.Querier) *JobRepository {
	return &JobRepository{base: newBase(pool)}
}

func (r *JobRepository) selectJobs(columns ...string) squirrel.SelectBuilder {
	return r.sb.Select(columns...).
		From("job_postings j").
		Join("companies c ON c.id = j.company_id")
}

func scanJob(row pgx.Row) (*models.JobPosting, error) {
	var j models.JobPosting
	err := row.Scan(
		&j.ID, &j.CompanyID, &j.CompanyName, &j.Title, &j.Description, &j.JobType, &j.Location,
		&j.CTC, &j.Stipend, &j.RequiredCGPA, &j.AllowedBacklogs,
		&j.EligibleDepartments, &j.EligibleBatches, &j.EligibleDegrees,
		&j.ApplicationDeadline, &j.Status, &j.DepartmentID, &j.CreatedBy,
		&j.ApprovedBy, &j.ApprovedAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Create inserts a job posting
func (r *JobRepository) Create(ctx context.Context, j *models.JobPosting) error {
	sql, args, err := r.sb.Insert("job_postings").
		Columns("company_id", "title", "description", "job_type", "location", "ctc", "stipend",
			"required_cgpa", "allowed_backlogs", "eligible_departments", "eligible_batches",
			"eligible_degrees", "application_deadline", "status", "department_id", "created_by").
		Values(j.CompanyID, j.Title, j.Description, j.JobType, j.Location, j.CTC, j.Stipend,
			j.RequiredCGPA, j.AllowedBacklogs, int64s(j.EligibleDepartments), ints(j.EligibleBatches),
			strs(j.EligibleDegrees), j.ApplicationDeadline, j.Status, j.DepartmentID, j.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create job query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("companyID", j.CompanyID).Msg("Error creating job posting")
		return translate(err, nil, nil)
	}
	return nil
}

// GetByID retrieves a job posting with its company name
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.JobPosting, error) {
	sql, args, err := r.selectJobs(jobColumns...).Where(squirrel.Eq{"j.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get job query: %w", err)
	}

	j, err := scanJob(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, apperrors.ErrJobNotFound, nil)
	}
	return j, nil
}

// List returns job postings inside scope and the total matching count. A
// limit of 0 returns every matching row.
func (r *JobRepository) List(ctx context.Context, scope auth.Scope, filter dto.JobFilterRequest, offset uint64, limit int) ([]*models.JobPosting, int64, error) {
	where := squirrel.And{}
	if filter.CompanyID != nil {
		where = append(where, squirrel.Eq{"j.company_id": *filter.CompanyID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"j.status": filter.Status})
	}
	if filter.JobType != "" {
		where = append(where, squirrel.Eq{"j.job_type": filter.JobType})
	}
	if filter.Search != "" {
		pattern := helpers.LikePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"j.title": pattern},
			squirrel.ILike{"c.name": pattern},
			squirrel.ILike{"j.location": pattern},
		})
	}

	total, err := r.count(ctx, scope.Apply(r.selectJobs("COUNT(*)").Where(conditions(where))), "jobs")
	if err != nil {
		return nil, 0, err
	}

	query := scope.Apply(r.selectJobs(jobColumns...).Where(conditions(where))).
		OrderBy("j.application_deadline NULLS LAST", "j.id DESC")
	sql, args, err := paginate(query, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list jobs query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing jobs")
		return nil, 0, fmt.Errorf("error listing jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*models.JobPosting, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}

// Update stores the editable fields and status of a posting
func (r *JobRepository) Update(ctx context.Context, j *models.JobPosting) error {
	n, err := r.exec(ctx, r.sb.Update("job_postings").
		Set("title", j.Title).
		Set("description", j.Description).
		Set("job_type", j.JobType).
		Set("location", j.Location).
		Set("ctc", j.CTC).
		Set("stipend", j.Stipend).
		Set("required_cgpa", j.RequiredCGPA).
		Set("allowed_backlogs", j.AllowedBacklogs).
		Set("eligible_departments", int64s(j.EligibleDepartments)).
		Set("eligible_batches", ints(j.EligibleBatches)).
		Set("eligible_degrees", strs(j.EligibleDegrees)).
		Set("application_deadline", j.ApplicationDeadline).
		Set("status", j.Status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": j.ID}), "update job")
	if err != nil {
		return translate(err, nil, nil)
	}
	if n == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// UpdateStatus changes the status of a posting. approvedBy is recorded when
// the posting is approved.
func (r *JobRepository) UpdateStatus(ctx context.Context, id int64, status models.JobStatus, approvedBy *int64, at time.Time) error {
	q := r.sb.Update("job_postings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})
	if approvedBy != nil {
		q = q.Set("approved_by", *approvedBy).Set("approved_at", at)
	}

	n, err := r.exec(ctx, q, "update job status")
	if err != nil {
		return translate(err, nil, nil)
	}
	if n == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// CloseExpired closes active postings whose deadline has passed
func (r *JobRepository) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, r.sb.Update("job_postings").
		Set("status", models.JobClosed).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"status": models.JobActive}).
		Where(squirrel.Lt{"application_deadline": now}), "close expired jobs")
}
