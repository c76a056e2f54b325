package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/domain"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/csvexport"
	"github.com/yigit/placement/internal/pkg/filestorage"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// StudentService manages student profiles
type StudentService struct {
	tx          Transactor
	studentRepo StudentStore
	userRepo    UserStore
	storage     filestorage.FileStorage
	authz       *auth.AuthorizationService
	notifier    Dispatcher
	clock       Clock
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	tx Transactor,
	studentRepo StudentStore,
	userRepo UserStore,
	storage filestorage.FileStorage,
	authz *auth.AuthorizationService,
	notifier Dispatcher,
	logger zerolog.Logger,
) *StudentService {
	return &StudentService{
		tx:          tx,
		studentRepo: studentRepo,
		userRepo:    userRepo,
		storage:     storage,
		authz:       authz,
		notifier:    notifier,
		logger:      logger,
	}
}

// List returns a page of student profiles inside the actor's scope.
func (s *StudentService) List(ctx context.Context, actor auth.Actor, filter dto.StudentFilterRequest) (*dto.PaginatedResponse, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceStudents)
	if err != nil {
		return nil, err
	}

	page, size := helpers.NormalizePage(filter.PageRequest)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	students, total, err := s.studentRepo.List(ctx, scope, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	resp := helpers.Paginate(students, total, page, size)
	return &resp, nil
}

// Get returns a profile with its skills, projects, certifications and
// internships.
func (s *StudentService) Get(ctx context.Context, actor auth.Actor, id int64) (*models.StudentProfile, error) {
	sp, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.studentRepo.LoadChildren(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// Me returns the acting student's own profile.
func (s *StudentService) Me(ctx context.Context, actor auth.Actor) (*models.StudentProfile, error) {
	if actor.StudentID == 0 {
		return nil, apperrors.ErrStudentNotFound
	}
	return s.Get(ctx, actor, actor.StudentID)
}

func (s *StudentService) visible(ctx context.Context, actor auth.Actor, id int64) (*models.StudentProfile, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceStudents)
	if err != nil {
		return nil, err
	}
	sp, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.AllowsStudentRecord(sp.ID, sp.DepartmentID) {
		return nil, apperrors.NewForbiddenError("student profile is outside your scope")
	}
	return sp, nil
}

// Update changes a profile. Students edit their own; administrators any.
// Changing academic data clears the verification.
func (s *StudentService) Update(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateStudentProfileRequest) (*models.StudentProfile, error) {
	if err := s.authz.Require(actor, auth.ResourceStudents, auth.ActionUpdate); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if err := s.authz.RequireStudentOwner(actor, id); err != nil {
			return nil, err
		}
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		sp, err := s.studentRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if req.FirstName != nil || req.LastName != nil || req.Phone != nil {
			user := *sp.User
			user.ID = sp.UserID
			if req.FirstName != nil {
				user.FirstName = strings.TrimSpace(*req.FirstName)
			}
			if req.LastName != nil {
				user.LastName = strings.TrimSpace(*req.LastName)
			}
			if req.Phone != nil {
				user.Phone = helpers.TrimmedPtr(req.Phone)
			}
			if err := s.userRepo.UpdateProfile(ctx, &user); err != nil {
				return err
			}
		}

		academic := false
		if req.Degree != nil {
			sp.Degree = strings.TrimSpace(*req.Degree)
			academic = true
		}
		if req.BatchYear != nil {
			sp.BatchYear = *req.BatchYear
			academic = true
		}
		if req.CGPA != nil {
			sp.CGPA = *req.CGPA
			academic = true
		}
		if req.ActiveBacklogs != nil {
			sp.ActiveBacklogs = *req.ActiveBacklogs
			academic = true
		}
		if req.TenthPercentage != nil {
			sp.TenthPercentage = req.TenthPercentage
			academic = true
		}
		if req.TwelfthPercentage != nil {
			sp.TwelfthPercentage = req.TwelfthPercentage
			academic = true
		}
		if req.PlacementStatus != nil {
			status := models.PlacementStatus(*req.PlacementStatus)
			if sp.PlacementStatus == models.PlacementPlaced && status != models.PlacementPlaced && !actor.IsAdmin() {
				return apperrors.NewValidationError("placementStatus", "placed students cannot change their placement status")
			}
			sp.PlacementStatus = status
		}
		if academic && !actor.IsAdmin() {
			sp.IsVerified = false
		}
		return s.studentRepo.UpdateAcademic(ctx, sp)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Verify marks a profile's academic data as checked by staff.
func (s *StudentService) Verify(ctx context.Context, actor auth.Actor, id int64) (*models.StudentProfile, error) {
	if err := s.authz.Require(actor, auth.ResourceStudents, auth.ActionApprove); err != nil {
		return nil, err
	}
	sp, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireDepartment(actor, &sp.DepartmentID); err != nil {
		return nil, err
	}

	now := s.clock.now()
	if err := s.studentRepo.SetVerified(ctx, id, actor.UserID, now); err != nil {
		return nil, err
	}
	sp.IsVerified = true
	sp.VerifiedBy = &actor.UserID
	sp.VerifiedAt = &now

	s.notifier.Dispatch(ctx, NotificationEvent{
		UserID:  sp.UserID,
		Kind:    models.NotifyProfileVerified,
		Title:   "Profile verified",
		Message: "Your placement profile has been verified by the placement cell.",
	})
	return sp, nil
}

// AddSkill adds a skill to the acting student's profile.
func (s *StudentService) AddSkill(ctx context.Context, actor auth.Actor, req *dto.SkillRequest) (*models.StudentSkill, error) {
	if err := s.requireOwnProfile(actor); err != nil {
		return nil, err
	}
	skill := &models.StudentSkill{
		StudentID:   actor.StudentID,
		Name:        strings.TrimSpace(req.Name),
		Proficiency: req.Proficiency,
	}
	if skill.Proficiency == "" {
		skill.Proficiency = "intermediate"
	}
	if err := s.studentRepo.AddSkill(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// AddProject adds a project to the acting student's profile.
func (s *StudentService) AddProject(ctx context.Context, actor auth.Actor, req *dto.ProjectRequest) (*models.StudentProject, error) {
	if err := s.requireOwnProfile(actor); err != nil {
		return nil, err
	}
	project := &models.StudentProject{
		StudentID:   actor.StudentID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		URL:         helpers.TrimmedPtr(req.URL),
	}
	if err := s.studentRepo.AddProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// AddCertification adds a certification to the acting student's profile.
func (s *StudentService) AddCertification(ctx context.Context, actor auth.Actor, req *dto.CertificationRequest) (*models.StudentCertification, error) {
	if err := s.requireOwnProfile(actor); err != nil {
		return nil, err
	}
	cert := &models.StudentCertification{
		StudentID: actor.StudentID,
		Name:      strings.TrimSpace(req.Name),
		Issuer:    strings.TrimSpace(req.Issuer),
		IssuedOn:  req.IssuedOn,
		URL:       helpers.TrimmedPtr(req.URL),
	}
	if err := s.studentRepo.AddCertification(ctx, cert); err != nil {
		return nil, err
	}
	return cert, nil
}

// AddInternship adds a past internship to the acting student's profile.
func (s *StudentService) AddInternship(ctx context.Context, actor auth.Actor, req *dto.InternshipRequest) (*models.StudentInternship, error) {
	if err := s.requireOwnProfile(actor); err != nil {
		return nil, err
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, apperrors.NewValidationError("endDate", "end date must not be before start date")
	}
	internship := &models.StudentInternship{
		StudentID:   actor.StudentID,
		Company:     strings.TrimSpace(req.Company),
		Role:        strings.TrimSpace(req.Role),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
	}
	if err := s.studentRepo.AddInternship(ctx, internship); err != nil {
		return nil, err
	}
	return internship, nil
}

// RemoveChild deletes a skill, project, certification or internship of the
// acting student. kind is one of the repositories.Child* table names.
func (s *StudentService) RemoveChild(ctx context.Context, actor auth.Actor, kind string, id int64) error {
	if err := s.requireOwnProfile(actor); err != nil {
		return err
	}
	switch kind {
	case repositories.ChildSkills, repositories.ChildProjects,
		repositories.ChildCertifications, repositories.ChildInternships:
	default:
		return apperrors.NewBadRequestError("unknown profile section " + kind)
	}
	return s.studentRepo.DeleteChild(ctx, kind, actor.StudentID, id)
}

// UploadResume stores a PDF resume for the acting student and replaces the
// previous one.
func (s *StudentService) UploadResume(ctx context.Context, actor auth.Actor, fileHeader *multipart.FileHeader) (string, error) {
	if err := s.requireOwnProfile(actor); err != nil {
		return "", err
	}
	if fileHeader == nil || !domain.UploadResume.AcceptsUpload(fileHeader.Filename, fileHeader.Size) {
		return "", apperrors.NewValidationError("file", fmt.Sprintf("resume must be a PDF of at most %d MB", domain.UploadResume.MaxBytes()>>20))
	}

	sp, err := s.studentRepo.GetByID(ctx, actor.StudentID)
	if err != nil {
		return "", err
	}

	url, err := filestorage.SaveMultipart(ctx, s.storage, fileHeader, string(domain.UploadResume))
	if err != nil {
		return "", fmt.Errorf("failed to store resume: %w", err)
	}
	if err := s.studentRepo.UpdateResume(ctx, sp.ID, url); err != nil {
		if delErr := s.storage.Delete(ctx, url); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", url).Msg("Failed to remove orphaned resume")
		}
		return "", err
	}

	if sp.ResumeURL != nil && *sp.ResumeURL != "" {
		if err := s.storage.Delete(ctx, *sp.ResumeURL); err != nil {
			s.logger.Warn().Err(err).Str("url", *sp.ResumeURL).Msg("Failed to remove previous resume")
		}
	}
	return url, nil
}

// Export writes every student in the actor's scope matching filter as CSV.
func (s *StudentService) Export(ctx context.Context, actor auth.Actor, filter dto.StudentFilterRequest, w io.Writer) error {
	if err := s.authz.Require(actor, auth.ResourceStudents, auth.ActionExport); err != nil {
		return err
	}
	scope, err := s.authz.Scope(actor, auth.ResourceStudents)
	if err != nil {
		return err
	}
	students, _, err := s.studentRepo.List(ctx, scope, filter, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to list students for export: %w", err)
	}
	return csvexport.WriteStudents(w, students)
}

func (s *StudentService) requireOwnProfile(actor auth.Actor) error {
	if err := s.authz.Require(actor, auth.ResourceStudents, auth.ActionUpdate); err != nil {
		return err
	}
	if actor.StudentID == 0 {
		return apperrors.NewForbiddenError("only students can edit their profile sections")
	}
	return nil
}
