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
	"github.com/yigit/placement/internal/pkg/logger"
)

var interviewColumns = []string{
	"i.id", "i.application_id", "i.round", "i.interview_type", "i.mode", "i.scheduled_date",
	"i.scheduled_time", "i.duration_minutes", "i.location", "i.meeting_link", "i.status",
	"i.result", "i.feedback", "i.created_by", "i.created_at", "i.updated_at",
}

// InterviewRepository handles interview rounds
type InterviewRepository struct {
	base
}

// NewInterviewRepository creates a new InterviewRepository
func NewInterviewRepository(pool db.Querier) *InterviewRepository {
	return &InterviewRepository{base: newBase(pool)}
}

func (r *InterviewRepository) selectInterviews(columns ...string) squirrel.SelectBuilder {
	return r.sb.Select(columns...).
		From("interviews i").
		Join("applications a ON a.id = i.application_id").
		Join("student_profiles sp ON sp.id = a.student_id")
}

func scanInterview(row pgx.Row) (*models.Interview, error) {
	var i models.Interview
	err := row.Scan(
		&i.ID, &i.ApplicationID, &i.Round, &i.InterviewType, &i.Mode, &i.ScheduledDate,
		&i.ScheduledTime, &i.DurationMins, &i.Location, &i.MeetingLink, &i.Status,
		&i.Result, &i.Feedback, &i.CreatedBy, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts an interview
func (r *InterviewRepository) Create(ctx context.Context, i *models.Interview) error {
	sql, args, err := r.sb.Insert("interviews").
		Columns("application_id", "round", "interview_type", "mode", "scheduled_date", "scheduled_time",
			"duration_minutes", "location", "meeting_link", "status", "result", "created_by").
		Values(i.ApplicationID, i.Round, i.InterviewType, i.Mode, i.ScheduledDate, i.ScheduledTime,
			i.DurationMins, i.Location, i.MeetingLink, i.Status, i.Result, i.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create interview query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("applicationID", i.ApplicationID).Msg("Error creating interview")
		return translate(err, nil, apperrors.NewConflictError("this round is already scheduled for the application"))
	}
	return nil
}

func (r *InterviewRepository) getOne(ctx context.Context, id int64, suffix string) (*models.Interview, error) {
	q := r.selectInterviews(interviewColumns...).Where(squirrel.Eq{"i.id": id})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get interview query: %w", err)
	}

	i, err := scanInterview(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, apperrors.ErrInterviewNotFound, nil)
	}
	return i, nil
}

// GetByID retrieves an interview
func (r *InterviewRepository) GetByID(ctx context.Context, id int64) (*models.Interview, error) {
	return r.getOne(ctx, id, "")
}

// GetForUpdate loads an interview and locks its row for the surrounding
// transaction.
func (r *InterviewRepository) GetForUpdate(ctx context.Context, id int64) (*models.Interview, error) {
	if !db.InTransaction(ctx) {
		return nil, errors.New("GetForUpdate requires a transaction")
	}
	return r.getOne(ctx, id, "FOR UPDATE OF i")
}

// NextRound returns the round number following the last one of an
// application
func (r *InterviewRepository) NextRound(ctx context.Context, applicationID int64) (int, error) {
	var round int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(MAX(round), 0) + 1 FROM interviews WHERE application_id = $1`, applicationID).Scan(&round)
	if err != nil {
		return 0, fmt.Errorf("error computing next round: %w", err)
	}
	return round, nil
}

// CancelOpen cancels the scheduled and rescheduled rounds of an
// application
func (r *InterviewRepository) CancelOpen(ctx context.Context, applicationID int64) (int64, error) {
	return r.exec(ctx, r.sb.Update("interviews").
		Set("status", models.InterviewCancelled).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{
			"application_id": applicationID,
			"status":         []models.InterviewStatus{models.InterviewScheduled, models.InterviewRescheduled},
		}), "cancel open interviews")
}

// Update stores every mutable field of an interview
func (r *InterviewRepository) Update(ctx context.Context, i *models.Interview) error {
	sql, args, err := r.sb.Update("interviews").
		Set("interview_type", i.InterviewType).
		Set("mode", i.Mode).
		Set("scheduled_date", i.ScheduledDate).
		Set("scheduled_time", i.ScheduledTime).
		Set("duration_minutes", i.DurationMins).
		Set("location", i.Location).
		Set("meeting_link", i.MeetingLink).
		Set("status", i.Status).
		Set("result", i.Result).
		Set("feedback", i.Feedback).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": i.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update interview query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&i.UpdatedAt)
	return translate(err, apperrors.ErrInterviewNotFound, nil)
}

// List returns interviews inside scope and the total matching count
func (r *InterviewRepository) List(ctx context.Context, scope auth.Scope, filter dto.InterviewFilterRequest, offset uint64, limit int) ([]*models.Interview, int64, error) {
	where := squirrel.And{}
	if filter.ApplicationID != nil {
		where = append(where, squirrel.Eq{"i.application_id": *filter.ApplicationID})
	}
	if filter.JobID != nil {
		where = append(where, squirrel.Eq{"a.job_id": *filter.JobID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"i.status": filter.Status})
	}
	if filter.From != nil {
		where = append(where, squirrel.GtOrEq{"i.scheduled_date": *filter.From})
	}
	if filter.To != nil {
		where = append(where, squirrel.LtOrEq{"i.scheduled_date": *filter.To})
	}

	total, err := r.count(ctx, scope.Apply(r.selectInterviews("COUNT(*)").Where(conditions(where))), "interviews")
	if err != nil {
		return nil, 0, err
	}

	query := scope.Apply(r.selectInterviews(interviewColumns...).Where(conditions(where))).
		OrderBy("i.scheduled_date", "i.scheduled_time", "i.id")
	sql, args, err := paginate(query, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list interviews query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing interviews")
		return nil, 0, fmt.Errorf("error listing interviews: %w", err)
	}
	defer rows.Close()

	interviews := make([]*models.Interview, 0)
	for rows.Next() {
		i, err := scanInterview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning interview row: %w", err)
		}
		interviews = append(interviews, i)
	}
	return interviews, total, rows.Err()
}

// CountUpcoming counts open interviews inside scope on or after from
func (r *InterviewRepository) CountUpcoming(ctx context.Context, scope auth.Scope, from time.Time) (int64, error) {
	q := r.selectInterviews("COUNT(*)").
		Where(squirrel.Eq{"i.status": []models.InterviewStatus{models.InterviewScheduled, models.InterviewRescheduled}}).
		Where(squirrel.GtOrEq{"i.scheduled_date": from})
	return r.count(ctx, scope.Apply(q), "upcoming interviews")
}
