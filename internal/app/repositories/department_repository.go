package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/dberrors"
)

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	base
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(pool db.Querier) *DepartmentRepository {
	return &DepartmentRepository{base: newBase(pool)}
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	sql, args, err := r.sb.Insert("departments").
		Columns("code", "name").
		Values(department.Code, department.Name).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create department query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&department.ID, &department.CreatedAt, &department.UpdatedAt)
	return translate(err, nil, apperrors.ErrDepartmentAlreadyExists)
}

// Update renames a department
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	sql, args, err := r.sb.Update("departments").
		Set("code", department.Code).
		Set("name", department.Name).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": department.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update department query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&department.CreatedAt, &department.UpdatedAt)
	return translate(err, apperrors.ErrDepartmentNotFound, apperrors.ErrDepartmentAlreadyExists)
}

// Delete removes a department that nothing references
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, r.sb.Delete("departments").Where(squirrel.Eq{"id": id}), "delete department")
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentHasRelations
		}
		return fmt.Errorf("error deleting department: %w", err)
	}
	if n == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	var d models.Department
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, code, name, created_at, updated_at
		FROM departments
		WHERE id = $1`, id).Scan(&d.ID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, translate(err, apperrors.ErrDepartmentNotFound, nil)
	}
	return &d, nil
}

// GetAll retrieves all departments ordered by code
func (r *DepartmentRepository) GetAll(ctx context.Context) ([]*models.Department, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, code, name, created_at, updated_at
		FROM departments
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	departments := make([]*models.Department, 0)
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, &d)
	}
	return departments, rows.Err()
}

// Exists reports whether a department with id exists
func (r *DepartmentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM departments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking department existence: %w", err)
	}
	return exists, nil
}
