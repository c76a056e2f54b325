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
	"github.com/yigit/placement/internal/pkg/helpers"
	"github.com/yigit/placement/internal/pkg/logger"
)

var userColumns = []string{
	"u.id", "u.email", "u.password_hash", "u.first_name", "u.last_name", "u.phone",
	"u.role", "u.status", "u.department_id", "u.last_login_at", "u.created_at", "u.updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	base
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool db.Querier) *UserRepository {
	return &UserRepository{base: newBase(pool)}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Phone,
		&u.RoleType, &u.Status, &u.DepartmentID, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and fills in its ID and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "password_hash", "first_name", "last_name", "phone", "role", "status", "department_id").
		Values(user.Email, user.Password, user.FirstName, user.LastName, user.Phone, user.RoleType, user.Status, user.DepartmentID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		err = translate(err, nil, apperrors.ErrEmailAlreadyExists)
		if !errors.Is(err, apperrors.ErrConflict) {
			logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
		}
		return err
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users u").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound, nil)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("lower(u.email) = lower(?)", email))
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// List returns a page of users inside scope and the total matching count
func (r *UserRepository) List(ctx context.Context, scope auth.Scope, filter dto.UserFilterRequest, offset uint64, limit int) ([]*models.User, int64, error) {
	where := squirrel.And{}
	if filter.Role != "" {
		where = append(where, squirrel.Eq{"u.role": filter.Role})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"u.status": filter.Status})
	}
	if filter.DepartmentID != nil {
		where = append(where, squirrel.Eq{"u.department_id": *filter.DepartmentID})
	}
	if filter.Search != "" {
		pattern := helpers.LikePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"u.email": pattern},
			squirrel.ILike{"u.first_name": pattern},
			squirrel.ILike{"u.last_name": pattern},
		})
	}

	countQuery := scope.Apply(r.sb.Select("COUNT(*)").From("users u").Where(conditions(where)))
	total, err := r.count(ctx, countQuery, "users")
	if err != nil {
		return nil, 0, err
	}

	query := scope.Apply(r.sb.Select(userColumns...).From("users u").Where(conditions(where))).OrderBy("u.id")
	sql, args, err := paginate(query, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// UpdateProfile changes the contact fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	n, err := r.exec(ctx, r.sb.Update("users").
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("phone", user.Phone).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": user.ID}), "update user profile")
	if err != nil {
		return translate(err, nil, nil)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateStatus activates, deactivates or suspends an account
func (r *UserRepository) UpdateStatus(ctx context.Context, userID int64, status models.UserStatus) error {
	n, err := r.exec(ctx, r.sb.Update("users").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": userID}), "update user status")
	if err != nil {
		return translate(err, nil, nil)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	n, err := r.exec(ctx, r.sb.Update("users").
		Set("password_hash", hash).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": userID}), "update password")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.exec(ctx, r.sb.Update("users").
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": userID}), "update last login")
	if err != nil {
		return fmt.Errorf("failed to update last login time: %w", err)
	}
	return nil
}

// Delete removes a user. Users still referenced by other records cannot be
// deleted.
func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	n, err := r.exec(ctx, r.sb.Delete("users").Where(squirrel.Eq{"id": userID}), "delete user")
	if err != nil {
		return translate(err, nil, nil)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
