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

var companyColumns = []string{
	"c.id", "c.name", "c.industry", "c.website", "c.description", "c.logo_url", "c.status",
	"c.department_id", "c.created_by", "c.approved_by", "c.approved_at", "c.created_at", "c.updated_at",
}

// CompanyRepository handles companies and their contacts
type CompanyRepository struct {
	base
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(pool db.Querier) *CompanyRepository {
	return &CompanyRepository{base: newBase(pool)}
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.Industry, &c.Website, &c.Description, &c.LogoURL, &c.Status,
		&c.DepartmentID, &c.CreatedBy, &c.ApprovedBy, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a company and its contacts
func (r *CompanyRepository) Create(ctx context.Context, c *models.Company) error {
	sql, args, err := r.sb.Insert("companies").
		Columns("name", "industry", "website", "description", "status", "department_id", "created_by").
		Values(c.Name, c.Industry, c.Website, c.Description, c.Status, c.DepartmentID, c.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create company query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return translate(err, nil, apperrors.ErrCompanyAlreadyExists)
	}

	for i := range c.Contacts {
		c.Contacts[i].CompanyID = c.ID
		if err := r.AddContact(ctx, &c.Contacts[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a company without its contacts
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	sql, args, err := r.sb.Select(companyColumns...).From("companies c").Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get company query: %w", err)
	}

	c, err := scanCompany(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, apperrors.ErrCompanyNotFound, nil)
	}
	return c, nil
}

// List returns a page of companies inside scope and the total matching count
func (r *CompanyRepository) List(ctx context.Context, scope auth.Scope, filter dto.CompanyFilterRequest, offset uint64, limit int) ([]*models.Company, int64, error) {
	where := squirrel.And{}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"c.status": filter.Status})
	}
	if filter.Search != "" {
		pattern := helpers.LikePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"c.name": pattern},
			squirrel.ILike{"c.industry": pattern},
		})
	}

	total, err := r.count(ctx, scope.Apply(r.sb.Select("COUNT(*)").From("companies c").Where(conditions(where))), "companies")
	if err != nil {
		return nil, 0, err
	}

	query := scope.Apply(r.sb.Select(companyColumns...).From("companies c").Where(conditions(where))).OrderBy("c.name")
	sql, args, err := paginate(query, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list companies query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing companies")
		return nil, 0, fmt.Errorf("error listing companies: %w", err)
	}
	defer rows.Close()

	companies := make([]*models.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning company row: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

// Update stores the descriptive fields of a company
func (r *CompanyRepository) Update(ctx context.Context, c *models.Company) error {
	n, err := r.exec(ctx, r.sb.Update("companies").
		Set("name", c.Name).
		Set("industry", c.Industry).
		Set("website", c.Website).
		Set("description", c.Description).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID}), "update company")
	if err != nil {
		return translate(err, nil, apperrors.ErrCompanyAlreadyExists)
	}
	if n == 0 {
		return apperrors.ErrCompanyNotFound
	}
	return nil
}

// UpdateStatus moves a company through its approval workflow. approvedBy is
// recorded when the company becomes approved.
func (r *CompanyRepository) UpdateStatus(ctx context.Context, id int64, status models.CompanyStatus, approvedBy *int64, at time.Time) error {
	q := r.sb.Update("companies").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})
	if approvedBy != nil {
		q = q.Set("approved_by", *approvedBy).Set("approved_at", at)
	}

	n, err := r.exec(ctx, q, "update company status")
	if err != nil {
		return translate(err, nil, nil)
	}
	if n == 0 {
		return apperrors.ErrCompanyNotFound
	}
	return nil
}

// UpdateLogo stores the URL of the uploaded logo
func (r *CompanyRepository) UpdateLogo(ctx context.Context, id int64, url string) error {
	n, err := r.exec(ctx, r.sb.Update("companies").
		Set("logo_url", url).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}), "update company logo")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrCompanyNotFound
	}
	return nil
}

// AddContact adds a contact person. A new primary contact demotes the
// previous one.
func (r *CompanyRepository) AddContact(ctx context.Context, contact *models.CompanyContact) error {
	if contact.IsPrimary {
		if _, err := r.exec(ctx, r.sb.Update("company_contacts").
			Set("is_primary", false).
			Where(squirrel.Eq{"company_id": contact.CompanyID, "is_primary": true}), "demote primary contact"); err != nil {
			return err
		}
	}

	sql, args, err := r.sb.Insert("company_contacts").
		Columns("company_id", "name", "email", "phone", "designation", "is_primary").
		Values(contact.CompanyID, contact.Name, contact.Email, contact.Phone, contact.Designation, contact.IsPrimary).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add contact query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&contact.ID)
	return translate(err, nil, apperrors.NewConflictError("contact with this email already exists for the company"))
}

// ListContacts returns the contacts of a company, primary first
func (r *CompanyRepository) ListContacts(ctx context.Context, companyID int64) ([]models.CompanyContact, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, company_id, name, email, phone, designation, is_primary
		FROM company_contacts
		WHERE company_id = $1
		ORDER BY is_primary DESC, id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing contacts: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CompanyContact, error) {
		var c models.CompanyContact
		err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Designation, &c.IsPrimary)
		return c, err
	})
}

// DeleteContact removes a contact of a company
func (r *CompanyRepository) DeleteContact(ctx context.Context, companyID, contactID int64) error {
	n, err := r.exec(ctx, r.sb.Delete("company_contacts").
		Where(squirrel.Eq{"id": contactID, "company_id": companyID}), "delete contact")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrContactNotFound
	}
	return nil
}
