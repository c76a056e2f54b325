package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/dberrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository          *UserRepository
	TokenRepository         *TokenRepository
	PasswordResetRepository *PasswordResetTokenRepository
	DepartmentRepository    *DepartmentRepository
	StudentRepository       *StudentRepository
	CompanyRepository       *CompanyRepository
	JobRepository           *JobRepository
	ApplicationRepository   *ApplicationRepository
	InterviewRepository     *InterviewRepository
	AnnouncementRepository  *AnnouncementRepository
	NotificationRepository  *NotificationRepository
	DashboardRepository     *DashboardRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool db.Querier) *Repositories {
	return &Repositories{
		UserRepository:          NewUserRepository(pool),
		TokenRepository:         NewTokenRepository(pool),
		PasswordResetRepository: NewPasswordResetTokenRepository(pool),
		DepartmentRepository:    NewDepartmentRepository(pool),
		StudentRepository:       NewStudentRepository(pool),
		CompanyRepository:       NewCompanyRepository(pool),
		JobRepository:           NewJobRepository(pool),
		ApplicationRepository:   NewApplicationRepository(pool),
		InterviewRepository:     NewInterviewRepository(pool),
		AnnouncementRepository:  NewAnnouncementRepository(pool),
		NotificationRepository:  NewNotificationRepository(pool),
		DashboardRepository:     NewDashboardRepository(pool),
	}
}

// base carries the pool and statement builder every repository shares.
// Queries run on the transaction carried by ctx when there is one.
type base struct {
	pool db.Querier
	sb   squirrel.StatementBuilderType
}

func newBase(pool db.Querier) base {
	return base{
		pool: pool,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (b base) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, b.pool)
}

// count runs SELECT COUNT(*) with the FROM, JOIN and WHERE parts of q.
func (b base) count(ctx context.Context, q squirrel.SelectBuilder, what string) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error building count SQL")
		return 0, fmt.Errorf("failed to build %s count query: %w", what, err)
	}

	var total int64
	if err := b.conn(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error executing count query")
		return 0, fmt.Errorf("error counting %s: %w", what, err)
	}
	return total, nil
}

// exec runs a built statement and returns the affected row count.
func (b base) exec(ctx context.Context, q squirrel.Sqlizer, what string) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error building SQL")
		return 0, fmt.Errorf("failed to build %s query: %w", what, err)
	}

	tag, err := b.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func paginate(q squirrel.SelectBuilder, offset uint64, limit int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(offset)
	}
	return q
}

// translate maps store errors to the error kinds of the service layer.
func translate(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows) && notFound != nil:
		return notFound
	case dberrors.IsUniqueViolation(err) && duplicate != nil:
		return duplicate
	case dberrors.IsForeignKeyViolation(err):
		return referenceError(err)
	case dberrors.IsCheckViolation(err):
		return checkError(err)
	default:
		return err
	}
}

func int64s(v []int64) []int64 {
	if v == nil {
		return []int64{}
	}
	return v
}

func ints(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func strs(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// conditions returns nil for an empty And so that Where adds no clause.
func conditions(where squirrel.And) squirrel.Sqlizer {
	if len(where) == 0 {
		return nil
	}
	return where
}
