package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/domain"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/csvexport"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// ApplicationService runs the application pipeline
type ApplicationService struct {
	tx              Transactor
	applicationRepo ApplicationStore
	studentRepo     StudentStore
	jobRepo         JobStore
	interviewRepo   InterviewStore
	authz           *auth.AuthorizationService
	notifier        Dispatcher
	clock           Clock
	logger          zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	tx Transactor,
	applicationRepo ApplicationStore,
	studentRepo StudentStore,
	jobRepo JobStore,
	interviewRepo InterviewStore,
	authz *auth.AuthorizationService,
	notifier Dispatcher,
	logger zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		tx:              tx,
		applicationRepo: applicationRepo,
		studentRepo:     studentRepo,
		jobRepo:         jobRepo,
		interviewRepo:   interviewRepo,
		authz:           authz,
		notifier:        notifier,
		logger:          logger,
	}
}

// Apply submits an application for the acting student. The student's
// profile row is locked for the transaction, so concurrent applies by the
// same student serialize; the partial unique index on active applications
// backs the duplicate check.
func (s *ApplicationService) Apply(ctx context.Context, actor auth.Actor, req *dto.ApplyRequest) (*models.ApplicationDetails, error) {
	if err := s.authz.Require(actor, auth.ResourceApplications, auth.ActionCreate); err != nil {
		return nil, err
	}
	if actor.StudentID == 0 {
		return nil, apperrors.NewForbiddenError("only students with a profile can apply")
	}

	var applicationID int64
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		student, err := s.studentRepo.GetForUpdate(ctx, actor.StudentID)
		if err != nil {
			return err
		}
		if student.PlacementStatus == models.PlacementOptedOut {
			return apperrors.NewValidationError("placementStatus", "students who opted out of placement cannot apply")
		}

		job, err := s.jobRepo.GetByID(ctx, req.JobID)
		if err != nil {
			return err
		}
		if !job.AcceptsApplications(s.clock.now()) {
			return apperrors.ErrJobNotOpen
		}
		failed := domain.EligibilityFailures(domain.StudentEligibilityOf(student), domain.JobCriteriaOf(job))
		if len(failed) > 0 {
			return apperrors.NewIneligibleError(domain.CriteriaStrings(failed))
		}

		exists, err := s.applicationRepo.ExistsActive(ctx, student.ID, job.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrDuplicateApplication
		}

		app := &models.Application{
			StudentID:   student.ID,
			JobID:       job.ID,
			Status:      models.ApplicationSubmitted,
			CoverLetter: helpers.TrimmedPtr(req.CoverLetter),
			ResumeURL:   student.ResumeURL,
		}
		if err := s.applicationRepo.Create(ctx, app); err != nil {
			return err
		}
		applicationID = app.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("applicationId", applicationID).Int64("studentId", actor.StudentID).Int64("jobId", req.JobID).Msg("Application submitted")
	return s.applicationRepo.GetByID(ctx, applicationID)
}

// List returns a page of applications inside the actor's scope.
func (s *ApplicationService) List(ctx context.Context, actor auth.Actor, filter dto.ApplicationFilterRequest) (*dto.PaginatedResponse, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceApplications)
	if err != nil {
		return nil, err
	}

	page, size := helpers.NormalizePage(filter.PageRequest)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	apps, total, err := s.applicationRepo.List(ctx, scope, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	resp := helpers.Paginate(apps, total, page, size)
	return &resp, nil
}

// Get returns one application inside the actor's scope.
func (s *ApplicationService) Get(ctx context.Context, actor auth.Actor, id int64) (*models.ApplicationDetails, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceApplications)
	if err != nil {
		return nil, err
	}
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.AllowsStudentRecord(app.StudentID, app.StudentDepartmentID) {
		return nil, apperrors.NewForbiddenError("application is outside your scope")
	}
	return app, nil
}

// UpdateStatus moves an application along the pipeline on behalf of staff.
// Accepting an offer marks the student placed.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateApplicationStatusRequest) (*models.ApplicationDetails, error) {
	if err := s.authz.Require(actor, auth.ResourceApplications, auth.ActionUpdate); err != nil {
		return nil, err
	}
	scope, err := s.authz.Scope(actor, auth.ResourceApplications)
	if err != nil {
		return nil, err
	}
	to := models.ApplicationStatus(req.Status)
	remarks := helpers.TrimmedPtr(req.Remarks)

	var updated *models.ApplicationDetails
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		app, err := s.applicationRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !scope.AllowsStudentRecord(app.StudentID, app.StudentDepartmentID) {
			return apperrors.NewForbiddenError("application is outside your scope")
		}
		if !domain.CanStaffSetApplication(app.Status, to) {
			return apperrors.NewIllegalTransitionError(string(app.Status), string(to))
		}

		now := s.clock.now()
		if err := s.applicationRepo.UpdateStatus(ctx, id, to, &actor.UserID, remarks, now); err != nil {
			return err
		}
		if to == models.ApplicationOfferAccepted {
			if err := s.studentRepo.UpdatePlacementStatus(ctx, app.StudentID, models.PlacementPlaced); err != nil {
				return err
			}
		}
		if to == models.ApplicationRejected {
			if _, err := s.interviewRepo.CancelOpen(ctx, id); err != nil {
				return err
			}
		}

		app.Status = to
		app.ReviewedBy = &actor.UserID
		app.ReviewedAt = &now
		if remarks != nil {
			app.Remarks = remarks
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, applicationStatusEvent(updated))
	return updated, nil
}

// Withdraw lets the owning student pull an application that has not been
// decided yet. Open interview rounds are cancelled with it.
func (s *ApplicationService) Withdraw(ctx context.Context, actor auth.Actor, id int64) (*models.ApplicationDetails, error) {
	if err := s.authz.Require(actor, auth.ResourceApplications, auth.ActionWithdraw); err != nil {
		return nil, err
	}

	var updated *models.ApplicationDetails
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		app, err := s.applicationRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.authz.RequireStudentOwner(actor, app.StudentID); err != nil {
			return err
		}
		if !domain.CanWithdraw(app.Status) {
			return apperrors.NewIllegalTransitionError(string(app.Status), string(models.ApplicationWithdrawn))
		}

		if err := s.applicationRepo.UpdateStatus(ctx, id, models.ApplicationWithdrawn, nil, nil, s.clock.now()); err != nil {
			return err
		}
		if _, err := s.interviewRepo.CancelOpen(ctx, id); err != nil {
			return err
		}
		app.Status = models.ApplicationWithdrawn
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("applicationId", id).Int64("studentId", actor.StudentID).Msg("Application withdrawn")
	return updated, nil
}

// Export writes the applications in the actor's scope matching filter as CSV.
func (s *ApplicationService) Export(ctx context.Context, actor auth.Actor, filter dto.ApplicationFilterRequest, w io.Writer) error {
	if err := s.authz.Require(actor, auth.ResourceApplications, auth.ActionExport); err != nil {
		return err
	}
	scope, err := s.authz.Scope(actor, auth.ResourceApplications)
	if err != nil {
		return err
	}
	apps, _, err := s.applicationRepo.List(ctx, scope, filter, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to list applications for export: %w", err)
	}
	return csvexport.WriteApplications(w, apps)
}

func applicationStatusEvent(app *models.ApplicationDetails) NotificationEvent {
	status := strings.ReplaceAll(string(app.Status), "_", " ")
	return NotificationEvent{
		UserID:  app.StudentUserID,
		Kind:    models.NotifyApplicationStatus,
		Title:   "Application " + status,
		Message: fmt.Sprintf("Your application for %s at %s is now %s.", app.JobTitle, app.CompanyName, status),
		Payload: map[string]interface{}{"applicationId": app.ID, "status": app.Status},
	}
}
