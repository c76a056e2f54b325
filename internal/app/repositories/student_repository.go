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
	"github.com/yigit/placement/internal/pkg/helpers"
	"github.com/yigit/placement/internal/pkg/logger"
)

var studentColumns = []string{
	"sp.id", "sp.user_id", "sp.roll_number", "sp.department_id", "sp.degree", "sp.batch_year",
	"sp.cgpa", "sp.tenth_percentage", "sp.twelfth_percentage", "sp.active_backlogs",
	"sp.placement_status", "sp.resume_url", "sp.is_verified", "sp.verified_by", "sp.verified_at",
	"sp.created_at", "sp.updated_at", "d.name",
	"u.email", "u.first_name", "u.last_name", "u.phone", "u.status",
}

// StudentRepository handles student profiles and their child records
type StudentRepository struct {
	base
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(pool db.Querier) *StudentRepository {
	return &StudentRepository{base: newBase(pool)}
}

func (r *StudentRepository) selectProfiles(columns ...string) squirrel.SelectBuilder {
	return r.sb.Select(columns...).
		From("student_profiles sp").
		Join("users u ON u.id = sp.user_id").
		Join("departments d ON d.id = sp.department_id")
}

func scanStudent(row pgx.Row) (*models.StudentProfile, error) {
	var sp models.StudentProfile
	u := &models.User{RoleType: models.RoleStudent}
	err := row.Scan(
		&sp.ID, &sp.UserID, &sp.RollNumber, &sp.DepartmentID, &sp.Degree, &sp.BatchYear,
		&sp.CGPA, &sp.TenthPercentage, &sp.TwelfthPercentage, &sp.ActiveBacklogs,
		&sp.PlacementStatus, &sp.ResumeURL, &sp.IsVerified, &sp.VerifiedBy, &sp.VerifiedAt,
		&sp.CreatedAt, &sp.UpdatedAt, &sp.DepartmentName,
		&u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.Status,
	)
	if err != nil {
		return nil, err
	}
	u.ID = sp.UserID
	u.DepartmentID = &sp.DepartmentID
	sp.User = u
	return &sp, nil
}

// Create inserts a student profile
func (r *StudentRepository) Create(ctx context.Context, sp *models.StudentProfile) error {
	sql, args, err := r.sb.Insert("student_profiles").
		Columns("user_id", "roll_number", "department_id", "degree", "batch_year", "cgpa",
			"tenth_percentage", "twelfth_percentage", "active_backlogs", "placement_status").
		Values(sp.UserID, sp.RollNumber, sp.DepartmentID, sp.Degree, sp.BatchYear, sp.CGPA,
			sp.TenthPercentage, sp.TwelfthPercentage, sp.ActiveBacklogs, sp.PlacementStatus).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&sp.ID, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "student_profiles_roll_number_key") {
			return apperrors.ErrRollNumberAlreadyExists
		}
		logger.Error().Err(err).Int64("userID", sp.UserID).Msg("Error creating student profile")
		return translate(err, nil, apperrors.NewConflictError("user already has a student profile"))
	}
	return nil
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer, suffix string) (*models.StudentProfile, error) {
	q := r.selectProfiles(studentColumns...).Where(where)
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	sp, err := scanStudent(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, apperrors.ErrStudentNotFound, nil)
	}
	return sp, nil
}

// GetByID retrieves a student profile by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	return r.getOne(ctx, squirrel.Eq{"sp.id": id}, "")
}

// GetByUserID retrieves the profile of a student user
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.StudentProfile, error) {
	return r.getOne(ctx, squirrel.Eq{"sp.user_id": userID}, "")
}

// GetForUpdate loads a profile and locks its row until the surrounding
// transaction ends. Concurrent applies by the same student serialize here.
func (r *StudentRepository) GetForUpdate(ctx context.Context, id int64) (*models.StudentProfile, error) {
	if !db.InTransaction(ctx) {
		return nil, errors.New("GetForUpdate requires a transaction")
	}
	return r.getOne(ctx, squirrel.Eq{"sp.id": id}, "FOR UPDATE OF sp")
}

// List returns a page of profiles inside scope and the total matching count.
// A limit of 0 returns every matching row.
func (r *StudentRepository) List(ctx context.Context, scope auth.Scope, filter dto.StudentFilterRequest, offset uint64, limit int) ([]*models.StudentProfile, int64, error) {
	where := squirrel.And{}
	if filter.DepartmentID != nil {
		where = append(where, squirrel.Eq{"sp.department_id": *filter.DepartmentID})
	}
	if filter.BatchYear != nil {
		where = append(where, squirrel.Eq{"sp.batch_year": *filter.BatchYear})
	}
	if filter.PlacementStatus != "" {
		where = append(where, squirrel.Eq{"sp.placement_status": filter.PlacementStatus})
	}
	if filter.MinCGPA != nil {
		where = append(where, squirrel.GtOrEq{"sp.cgpa": *filter.MinCGPA})
	}
	if filter.Verified != nil {
		where = append(where, squirrel.Eq{"sp.is_verified": *filter.Verified})
	}
	if filter.Search != "" {
		pattern := helpers.LikePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"sp.roll_number": pattern},
			squirrel.ILike{"u.first_name": pattern},
			squirrel.ILike{"u.last_name": pattern},
			squirrel.ILike{"u.email": pattern},
		})
	}

	total, err := r.count(ctx, scope.Apply(r.selectProfiles("COUNT(*)").Where(conditions(where))), "students")
	if err != nil {
		return nil, 0, err
	}

	query := scope.Apply(r.selectProfiles(studentColumns...).Where(conditions(where))).OrderBy("sp.roll_number")
	sql, args, err := paginate(query, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing students")
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.StudentProfile, 0)
	for rows.Next() {
		sp, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, sp)
	}
	return students, total, rows.Err()
}

// UpdateAcademic stores the editable academic fields of a profile
func (r *StudentRepository) UpdateAcademic(ctx context.Context, sp *models.StudentProfile) error {
	n, err := r.exec(ctx, r.sb.Update("student_profiles").
		Set("degree", sp.Degree).
		Set("batch_year", sp.BatchYear).
		Set("cgpa", sp.CGPA).
		Set("tenth_percentage", sp.TenthPercentage).
		Set("twelfth_percentage", sp.TwelfthPercentage).
		Set("active_backlogs", sp.ActiveBacklogs).
		Set("placement_status", sp.PlacementStatus).
		Set("is_verified", sp.IsVerified).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": sp.ID}), "update student")
	if err != nil {
		return translate(err, nil, nil)
	}
	if n == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// SetVerified marks a profile as verified by a staff member
func (r *StudentRepository) SetVerified(ctx context.Context, id, verifiedBy int64, at time.Time) error {
	n, err := r.exec(ctx, r.sb.Update("student_profiles").
		Set("is_verified", true).
		Set("verified_by", verifiedBy).
		Set("verified_at", at).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}), "verify student")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// UpdateResume stores the URL of the uploaded resume
func (r *StudentRepository) UpdateResume(ctx context.Context, id int64, url string) error {
	n, err := r.exec(ctx, r.sb.Update("student_profiles").
		Set("resume_url", url).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}), "update resume")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// UpdatePlacementStatus moves a student in or out of the placement pool
func (r *StudentRepository) UpdatePlacementStatus(ctx context.Context, id int64, status models.PlacementStatus) error {
	_, err := r.exec(ctx, r.sb.Update("student_profiles").
		Set("placement_status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}), "update placement status")
	return err
}

// LoadChildren fills the skills, projects, certifications and internships
// of sp.
func (r *StudentRepository) LoadChildren(ctx context.Context, sp *models.StudentProfile) error {
	q := r.conn(ctx)

	rows, err := q.Query(ctx, `SELECT id, student_id, name, proficiency FROM student_skills WHERE student_id = $1 ORDER BY id`, sp.ID)
	if err != nil {
		return fmt.Errorf("error loading skills: %w", err)
	}
	sp.Skills, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StudentSkill, error) {
		var s models.StudentSkill
		err := row.Scan(&s.ID, &s.StudentID, &s.Name, &s.Proficiency)
		return s, err
	})
	if err != nil {
		return fmt.Errorf("error scanning skills: %w", err)
	}

	rows, err = q.Query(ctx, `SELECT id, student_id, title, description, url FROM student_projects WHERE student_id = $1 ORDER BY id`, sp.ID)
	if err != nil {
		return fmt.Errorf("error loading projects: %w", err)
	}
	sp.Projects, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StudentProject, error) {
		var p models.StudentProject
		err := row.Scan(&p.ID, &p.StudentID, &p.Title, &p.Description, &p.URL)
		return p, err
	})
	if err != nil {
		return fmt.Errorf("error scanning projects: %w", err)
	}

	rows, err = q.Query(ctx, `SELECT id, student_id, name, issuer, issued_on, url FROM student_certifications WHERE student_id = $1 ORDER BY id`, sp.ID)
	if err != nil {
		return fmt.Errorf("error loading certifications: %w", err)
	}
	sp.Certifications, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StudentCertification, error) {
		var c models.StudentCertification
		err := row.Scan(&c.ID, &c.StudentID, &c.Name, &c.Issuer, &c.IssuedOn, &c.URL)
		return c, err
	})
	if err != nil {
		return fmt.Errorf("error scanning certifications: %w", err)
	}

	rows, err = q.Query(ctx, `SELECT id, student_id, company, role, start_date, end_date, description FROM student_internships WHERE student_id = $1 ORDER BY start_date DESC`, sp.ID)
	if err != nil {
		return fmt.Errorf("error loading internships: %w", err)
	}
	sp.Internships, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StudentInternship, error) {
		var i models.StudentInternship
		err := row.Scan(&i.ID, &i.StudentID, &i.Company, &i.Role, &i.StartDate, &i.EndDate, &i.Description)
		return i, err
	})
	if err != nil {
		return fmt.Errorf("error scanning internships: %w", err)
	}
	return nil
}

func (r *StudentRepository) insertChild(ctx context.Context, q squirrel.InsertBuilder, id *int64, what string) error {
	sql, args, err := q.Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add %s query: %w", what, err)
	}
	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(id); err != nil {
		return translate(err, nil, apperrors.NewConflictError(what+" already exists on this profile"))
	}
	return nil
}

// AddSkill adds a skill to a profile
func (r *StudentRepository) AddSkill(ctx context.Context, s *models.StudentSkill) error {
	return r.insertChild(ctx, r.sb.Insert("student_skills").
		Columns("student_id", "name", "proficiency").
		Values(s.StudentID, s.Name, s.Proficiency), &s.ID, "skill")
}

// AddProject adds a project to a profile
func (r *StudentRepository) AddProject(ctx context.Context, p *models.StudentProject) error {
	return r.insertChild(ctx, r.sb.Insert("student_projects").
		Columns("student_id", "title", "description", "url").
		Values(p.StudentID, p.Title, p.Description, p.URL), &p.ID, "project")
}

// AddCertification adds a certification to a profile
func (r *StudentRepository) AddCertification(ctx context.Context, c *models.StudentCertification) error {
	return r.insertChild(ctx, r.sb.Insert("student_certifications").
		Columns("student_id", "name", "issuer", "issued_on", "url").
		Values(c.StudentID, c.Name, c.Issuer, c.IssuedOn, c.URL), &c.ID, "certification")
}

// AddInternship adds an internship to a profile
func (r *StudentRepository) AddInternship(ctx context.Context, i *models.StudentInternship) error {
	return r.insertChild(ctx, r.sb.Insert("student_internships").
		Columns("student_id", "company", "role", "start_date", "end_date", "description").
		Values(i.StudentID, i.Company, i.Role, i.StartDate, i.EndDate, i.Description), &i.ID, "internship")
}

// Child tables of a student profile
const (
	ChildSkills         = "student_skills"
	ChildProjects       = "student_projects"
	ChildCertifications = "student_certifications"
	ChildInternships    = "student_internships"
)

// DeleteChild removes one child record owned by studentID
func (r *StudentRepository) DeleteChild(ctx context.Context, table string, studentID, id int64) error {
	switch table {
	case ChildSkills, ChildProjects, ChildCertifications, ChildInternships:
	default:
		return fmt.Errorf("unknown student child table %q", table)
	}

	n, err := r.exec(ctx, r.sb.Delete(table).Where(squirrel.Eq{"id": id, "student_id": studentID}), "delete "+table)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewResourceNotFoundError("profile entry not found")
	}
	return nil
}
