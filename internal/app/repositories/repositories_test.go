package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

type recordedQuery struct {
	sql  string
	args []any
}

// recordingQuerier captures statements and answers them with canned values.
type recordingQuerier struct {
	queries  []recordedQuery
	count    int64
	affected int64
	rowErr   error
}

func (q *recordingQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.queries = append(q.queries, recordedQuery{sql, args})
	if q.rowErr != nil {
		return pgconn.CommandTag{}, q.rowErr
	}
	return pgconn.NewCommandTag("UPDATE " + itoa(q.affected)), nil
}

func (q *recordingQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, recordedQuery{sql, args})
	return &emptyRows{}, nil
}

func (q *recordingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.queries = append(q.queries, recordedQuery{sql, args})
	return countRow{n: q.count, err: q.rowErr}
}

type countRow struct {
	n   int64
	err error
}

func (r countRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int64); ok {
		*p = r.n
	}
	return nil
}

type emptyRows struct{}

func (emptyRows) Close()                                       {}
func (emptyRows) Err() error                                   { return nil }
func (emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (emptyRows) Next() bool                                   { return false }
func (emptyRows) Scan(dest ...any) error                       { return nil }
func (emptyRows) Values() ([]any, error)                       { return nil, nil }
func (emptyRows) RawValues() [][]byte                          { return nil }
func (emptyRows) Conn() *pgx.Conn                              { return nil }

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

func coordinatorScope(t *testing.T, resource auth.Resource) auth.Scope {
	t.Helper()
	dept := int64(3)
	scope, err := auth.ScopeFor(auth.Actor{UserID: 9, Role: models.RoleCoordinator, DepartmentID: &dept}, resource)
	require.NoError(t, err)
	return scope
}

func TestApplicationList_ScopeOnListAndCount(t *testing.T) {
	q := &recordingQuerier{count: 4}
	repo := NewApplicationRepository(q)

	status := string(models.ApplicationShortlisted)
	_, total, err := repo.List(context.Background(), coordinatorScope(t, auth.ResourceApplications),
		dto.ApplicationFilterRequest{Status: status}, 20, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	require.Len(t, q.queries, 2)
	for _, rq := range q.queries {
		assert.Contains(t, rq.sql, "sp.department_id = $")
		assert.Contains(t, rq.args, int64(3))
		assert.Contains(t, rq.args, status)
	}
	assert.Contains(t, q.queries[0].sql, "SELECT COUNT(*) FROM applications a")
	assert.Contains(t, q.queries[1].sql, "LIMIT 10 OFFSET 20")
}

func TestStudentList_AdminHasNoScopePredicate(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewStudentRepository(q)

	scope, err := auth.ScopeFor(auth.Actor{UserID: 1, Role: models.RoleAdmin}, auth.ResourceStudents)
	require.NoError(t, err)

	_, _, err = repo.List(context.Background(), scope, dto.StudentFilterRequest{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, q.queries, 2)
	assert.NotContains(t, q.queries[0].sql, "WHERE")
	assert.NotContains(t, q.queries[1].sql, "LIMIT")
}

func TestJobList_StudentSeesActiveOnly(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewJobRepository(q)

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	scope, err := auth.ScopeFor(auth.Actor{UserID: 5, Role: models.RoleStudent, StudentID: 7}, auth.ResourceJobs)
	require.NoError(t, err)
	scope = scope.At(now)

	_, _, err = repo.List(context.Background(), scope, dto.JobFilterRequest{}, 0, 0)
	require.NoError(t, err)
	for _, rq := range q.queries {
		assert.Contains(t, rq.sql, "(j.status = $1 AND (j.application_deadline IS NULL OR j.application_deadline >= $2))")
		assert.Equal(t, []any{models.JobActive, now}, rq.args)
	}
}

func TestNotificationMarkRead_OnlyUnreadRows(t *testing.T) {
	q := &recordingQuerier{affected: 0}
	repo := NewNotificationRepository(q)

	changed, err := repo.MarkRead(context.Background(), 12, 5, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
	require.Len(t, q.queries, 1)
	assert.Contains(t, q.queries[0].sql, "is_read = $")
	assert.Contains(t, q.queries[0].args, false)
}

func TestGetByID_NoRowsIsNotFound(t *testing.T) {
	q := &recordingQuerier{rowErr: pgx.ErrNoRows}

	_, err := NewJobRepository(q).GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestCreateApplication_DuplicateIsConflict(t *testing.T) {
	q := &recordingQuerier{rowErr: &pgconn.PgError{Code: "23505", ConstraintName: ActiveApplicationConstraint}}

	err := NewApplicationRepository(q).Create(context.Background(), &models.Application{StudentID: 1, JobID: 2})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateApplication)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestTranslate_ForeignKey(t *testing.T) {
	err := translate(&pgconn.PgError{Code: "23503", ConstraintName: "job_postings_company_id_fkey"}, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = translate(&pgconn.PgError{Code: "23503", ConstraintName: "applications_student_id_fkey"}, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	plain := errors.New("boom")
	assert.Equal(t, plain, translate(plain, nil, nil))
}
