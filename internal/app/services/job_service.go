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

// JobService manages job postings and what students see of them
type JobService struct {
	jobRepo         JobStore
	companyRepo     CompanyStore
	studentRepo     StudentStore
	applicationRepo ApplicationStore
	authz           *auth.AuthorizationService
	notifier        Dispatcher
	clock           Clock
	logger          zerolog.Logger
}

// NewJobService creates a new JobService
func NewJobService(
	jobRepo JobStore,
	companyRepo CompanyStore,
	studentRepo StudentStore,
	applicationRepo ApplicationStore,
	authz *auth.AuthorizationService,
	notifier Dispatcher,
	logger zerolog.Logger,
) *JobService {
	return &JobService{
		jobRepo:         jobRepo,
		companyRepo:     companyRepo,
		studentRepo:     studentRepo,
		applicationRepo: applicationRepo,
		authz:           authz,
		notifier:        notifier,
		logger:          logger,
	}
}

// List returns a page of postings. Students see only active postings they
// are eligible for; staff see the postings of their scope.
func (s *JobService) List(ctx context.Context, actor auth.Actor, filter dto.JobFilterRequest) (*dto.PaginatedResponse, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceJobs)
	if err != nil {
		return nil, err
	}
	scope = scope.At(s.clock.now())

	page, size := helpers.NormalizePage(filter.PageRequest)

	if !scope.FiltersEligibility() {
		offset, limit := helpers.CalculateOffsetLimit(page, size)
		jobs, total, err := s.jobRepo.List(ctx, scope, filter, offset, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list jobs: %w", err)
		}
		resp := helpers.Paginate(jobs, total, page, size)
		return &resp, nil
	}

	student, err := s.studentRepo.GetByID(ctx, actor.StudentID)
	if err != nil {
		return nil, err
	}
	profile := domain.StudentEligibilityOf(student)

	// Eligibility is evaluated in Go, so the page is cut after filtering.
	jobs, _, err := s.jobRepo.List(ctx, scope, filter, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	eligible := make([]*models.JobPosting, 0, len(jobs))
	for _, job := range jobs {
		if domain.IsEligible(profile, domain.JobCriteriaOf(job)) {
			eligible = append(eligible, job)
		}
	}

	start, end := helpers.CalculateSliceIndices(page, size, len(eligible))
	resp := helpers.Paginate(eligible[start:end], int64(len(eligible)), page, size)
	return &resp, nil
}

// Get returns one posting. Students may read only active postings they are
// eligible for.
func (s *JobService) Get(ctx context.Context, actor auth.Actor, id int64) (*dto.JobResponse, error) {
	job, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStudent() {
		return &dto.JobResponse{Job: job}, nil
	}

	student, err := s.studentRepo.GetByID(ctx, actor.StudentID)
	if err != nil {
		return nil, err
	}
	failed := domain.EligibilityFailures(domain.StudentEligibilityOf(student), domain.JobCriteriaOf(job))
	if len(failed) > 0 {
		return nil, apperrors.NewIneligibleError(domain.CriteriaStrings(failed))
	}
	eligible := true
	return &dto.JobResponse{Job: job, Eligible: &eligible}, nil
}

func (s *JobService) visible(ctx context.Context, actor auth.Actor, id int64) (*models.JobPosting, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceJobs)
	if err != nil {
		return nil, err
	}
	scope = scope.At(s.clock.now())
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.AllowsJob(job) {
		return nil, apperrors.NewForbiddenError("job posting is outside your scope")
	}
	return job, nil
}

// Create adds a posting for an approved company, as a draft or directly
// submitted for approval.
func (s *JobService) Create(ctx context.Context, actor auth.Actor, req *dto.CreateJobRequest) (*models.JobPosting, error) {
	if err := s.authz.Require(actor, auth.ResourceJobs, auth.ActionCreate); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, req.CompanyID)
	if err != nil {
		if notFound(err) {
			return nil, apperrors.NewValidationError("companyId", "company does not exist")
		}
		return nil, err
	}
	if !company.Status.CanPost() {
		return nil, apperrors.NewValidationError("companyId", "company must be approved before posting jobs")
	}
	if req.ApplicationDeadline != nil && !req.ApplicationDeadline.After(s.clock.now()) {
		return nil, apperrors.NewValidationError("applicationDeadline", "deadline must be in the future")
	}

	job := &models.JobPosting{
		CompanyID:           company.ID,
		CompanyName:         company.Name,
		Title:               strings.TrimSpace(req.Title),
		Description:         req.Description,
		JobType:             models.JobType(req.JobType),
		Location:            strings.TrimSpace(req.Location),
		CTC:                 req.CTC,
		Stipend:             req.Stipend,
		RequiredCGPA:        req.RequiredCGPA,
		AllowedBacklogs:     req.AllowedBacklogs,
		EligibleDepartments: req.EligibleDepartments,
		EligibleBatches:     req.EligibleBatches,
		EligibleDegrees:     trimAll(req.EligibleDegrees),
		ApplicationDeadline: req.ApplicationDeadline,
		Status:              models.JobDraft,
		DepartmentID:        actor.DepartmentID,
		CreatedBy:           actor.UserID,
	}
	if req.SubmitForApproval {
		job.Status = models.JobPending
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("jobId", job.ID).Int64("companyId", job.CompanyID).Str("status", string(job.Status)).Msg("Job posting created")
	return job, nil
}

// Update changes a draft, pending or active posting.
func (s *JobService) Update(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateJobRequest) (*models.JobPosting, error) {
	job, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !domain.IsEditableJob(job.Status) {
		return nil, apperrors.NewValidationError("status", "closed or cancelled postings cannot be edited")
	}
	if err := checkClears(req); err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.JobType != nil {
		job.JobType = models.JobType(*req.JobType)
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.CTC != nil {
		job.CTC = req.CTC
	}
	if req.Stipend != nil {
		job.Stipend = req.Stipend
	}
	if req.RequiredCGPA != nil {
		job.RequiredCGPA = req.RequiredCGPA
	}
	if req.AllowedBacklogs != nil {
		job.AllowedBacklogs = req.AllowedBacklogs
	}
	if req.EligibleDepartments != nil {
		job.EligibleDepartments = *req.EligibleDepartments
	}
	if req.EligibleBatches != nil {
		job.EligibleBatches = *req.EligibleBatches
	}
	if req.EligibleDegrees != nil {
		job.EligibleDegrees = trimAll(*req.EligibleDegrees)
	}
	if req.ApplicationDeadline != nil {
		if !req.ApplicationDeadline.After(s.clock.now()) {
			return nil, apperrors.NewValidationError("applicationDeadline", "deadline must be in the future")
		}
		job.ApplicationDeadline = req.ApplicationDeadline
	}
	if req.ClearRequiredCGPA {
		job.RequiredCGPA = nil
	}
	if req.ClearAllowedBacklogs {
		job.AllowedBacklogs = nil
	}
	if req.ClearApplicationDeadline {
		job.ApplicationDeadline = nil
	}
	if req.SubmitForApproval && job.Status == models.JobDraft {
		job.Status = models.JobPending
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// checkClears rejects requests that both set and lift the same constraint.
func checkClears(req *dto.UpdateJobRequest) error {
	switch {
	case req.ClearRequiredCGPA && req.RequiredCGPA != nil:
		return apperrors.NewValidationError("requiredCgpa", "cannot set and clear requiredCgpa together")
	case req.ClearAllowedBacklogs && req.AllowedBacklogs != nil:
		return apperrors.NewValidationError("allowedBacklogs", "cannot set and clear allowedBacklogs together")
	case req.ClearApplicationDeadline && req.ApplicationDeadline != nil:
		return apperrors.NewValidationError("applicationDeadline", "cannot set and clear applicationDeadline together")
	}
	return nil
}

func (s *JobService) editable(ctx context.Context, actor auth.Actor, id int64) (*models.JobPosting, error) {
	if err := s.authz.Require(actor, auth.ResourceJobs, auth.ActionUpdate); err != nil {
		return nil, err
	}
	job, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireCreatorOrDepartment(actor, job.CreatedBy, job.DepartmentID); err != nil {
		return nil, err
	}
	return job, nil
}

// Approve publishes a pending posting.
func (s *JobService) Approve(ctx context.Context, actor auth.Actor, id int64) (*models.JobPosting, error) {
	if err := s.authz.Require(actor, auth.ResourceJobs, auth.ActionApprove); err != nil {
		return nil, err
	}
	job, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireDepartment(actor, job.DepartmentID); err != nil {
		return nil, err
	}
	if !domain.CanTransitionJob(job.Status, models.JobActive) {
		return nil, apperrors.NewIllegalTransitionError(string(job.Status), string(models.JobActive))
	}
	company, err := s.companyRepo.GetByID(ctx, job.CompanyID)
	if err != nil {
		return nil, err
	}
	if !company.Status.CanPost() {
		return nil, apperrors.NewValidationError("companyId", "company is not approved")
	}

	now := s.clock.now()
	if err := s.jobRepo.UpdateStatus(ctx, id, models.JobActive, &actor.UserID, now); err != nil {
		return nil, err
	}
	job.Status = models.JobActive
	job.ApprovedBy = &actor.UserID
	job.ApprovedAt = &now

	s.logger.Info().Int64("jobId", id).Int64("by", actor.UserID).Msg("Job posting approved")
	if job.CreatedBy != actor.UserID {
		s.notifier.Dispatch(ctx, NotificationEvent{
			UserID:  job.CreatedBy,
			Kind:    models.NotifyJobApproved,
			Title:   "Job posting approved",
			Message: fmt.Sprintf("%s at %s is now open for applications.", job.Title, job.CompanyName),
			Payload: map[string]interface{}{"jobId": id},
		})
	}
	return job, nil
}

// Close stops an active posting from accepting applications.
func (s *JobService) Close(ctx context.Context, actor auth.Actor, id int64) (*models.JobPosting, error) {
	return s.setStatus(ctx, actor, id, models.JobClosed)
}

// Cancel withdraws a posting that has not been closed.
func (s *JobService) Cancel(ctx context.Context, actor auth.Actor, id int64) (*models.JobPosting, error) {
	return s.setStatus(ctx, actor, id, models.JobCancelled)
}

func (s *JobService) setStatus(ctx context.Context, actor auth.Actor, id int64, status models.JobStatus) (*models.JobPosting, error) {
	job, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionJob(job.Status, status) {
		return nil, apperrors.NewIllegalTransitionError(string(job.Status), string(status))
	}
	if err := s.jobRepo.UpdateStatus(ctx, id, status, nil, s.clock.now()); err != nil {
		return nil, err
	}
	job.Status = status
	return job, nil
}

// CloseExpired closes active postings whose deadline has passed.
func (s *JobService) CloseExpired(ctx context.Context) (int64, error) {
	n, err := s.jobRepo.CloseExpired(ctx, s.clock.now())
	if err != nil {
		return 0, fmt.Errorf("failed to close expired jobs: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("Closed expired job postings")
	}
	return n, nil
}

// EligibleStudents lists the students in the actor's scope who meet the
// posting's criteria and are still in the placement pool.
func (s *JobService) EligibleStudents(ctx context.Context, actor auth.Actor, id int64, req dto.PageRequest) (*dto.PaginatedResponse, error) {
	if actor.IsStudent() {
		return nil, apperrors.NewForbiddenError("students cannot list candidates")
	}
	job, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	scope, err := s.authz.Scope(actor, auth.ResourceStudents)
	if err != nil {
		return nil, err
	}

	students, _, err := s.studentRepo.List(ctx, scope, dto.StudentFilterRequest{
		PlacementStatus: string(models.PlacementActive),
		MinCGPA:         job.RequiredCGPA,
	}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	criteria := domain.JobCriteriaOf(job)
	eligible := make([]*models.StudentProfile, 0, len(students))
	for _, sp := range students {
		if domain.IsEligible(domain.StudentEligibilityOf(sp), criteria) {
			eligible = append(eligible, sp)
		}
	}

	page, size := helpers.NormalizePage(req)
	start, end := helpers.CalculateSliceIndices(page, size, len(eligible))
	resp := helpers.Paginate(eligible[start:end], int64(len(eligible)), page, size)
	return &resp, nil
}

// ExportApplicants writes the posting's applications as CSV.
func (s *JobService) ExportApplicants(ctx context.Context, actor auth.Actor, id int64, w io.Writer) error {
	if err := s.authz.Require(actor, auth.ResourceApplications, auth.ActionExport); err != nil {
		return err
	}
	if _, err := s.visible(ctx, actor, id); err != nil {
		return err
	}
	scope, err := s.authz.Scope(actor, auth.ResourceApplications)
	if err != nil {
		return err
	}
	apps, _, err := s.applicationRepo.List(ctx, scope, dto.ApplicationFilterRequest{JobID: &id}, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to list applicants: %w", err)
	}
	return csvexport.WriteApplications(w, apps)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
