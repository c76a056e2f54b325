package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/domain"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// DashboardService aggregates role-scoped counters
type DashboardService struct {
	dashboardRepo   DashboardStore
	applicationRepo ApplicationStore
	interviewRepo   InterviewStore
	jobRepo         JobStore
	studentRepo     StudentStore
	authz           *auth.AuthorizationService
	clock           Clock
	logger          zerolog.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	dashboardRepo DashboardStore,
	applicationRepo ApplicationStore,
	interviewRepo InterviewStore,
	jobRepo JobStore,
	studentRepo StudentStore,
	authz *auth.AuthorizationService,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		dashboardRepo:   dashboardRepo,
		applicationRepo: applicationRepo,
		interviewRepo:   interviewRepo,
		jobRepo:         jobRepo,
		studentRepo:     studentRepo,
		authz:           authz,
		logger:          logger,
	}
}

// Get returns the counters of the actor's dashboard. Every count goes
// through the same scope as the corresponding list.
func (s *DashboardService) Get(ctx context.Context, actor auth.Actor) (*dto.DashboardResponse, error) {
	resp := &dto.DashboardResponse{}

	appScope, err := s.authz.Scope(actor, auth.ResourceApplications)
	if err != nil {
		return nil, err
	}
	if resp.ApplicationsByStatus, err = s.applicationRepo.CountByStatus(ctx, appScope); err != nil {
		return nil, err
	}

	interviewScope, err := s.authz.Scope(actor, auth.ResourceInterviews)
	if err != nil {
		return nil, err
	}
	if resp.UpcomingInterviews, err = s.interviewRepo.CountUpcoming(ctx, interviewScope, helpers.DateOnly(s.clock.now())); err != nil {
		return nil, err
	}

	jobScope, err := s.authz.Scope(actor, auth.ResourceJobs)
	if err != nil {
		return nil, err
	}
	if resp.ActiveJobs, err = s.activeJobs(ctx, actor, jobScope); err != nil {
		return nil, err
	}

	if actor.IsStudent() {
		return resp, nil
	}

	if s.authz.Policy().HasPermission(actor.Role, auth.ResourceCompanies, auth.ActionApprove) {
		companyScope, err := s.authz.Scope(actor, auth.ResourceCompanies)
		if err != nil {
			return nil, err
		}
		if resp.PendingCompanies, err = s.dashboardRepo.CountCompanies(ctx, companyScope, models.CompanyPending); err != nil {
			return nil, err
		}
	}

	studentScope, err := s.authz.Scope(actor, auth.ResourceStudents)
	if err != nil {
		return nil, err
	}
	if resp.TotalStudents, err = s.dashboardRepo.CountStudents(ctx, studentScope, nil); err != nil {
		return nil, err
	}
	placed := models.PlacementPlaced
	if resp.PlacedStudents, err = s.dashboardRepo.CountStudents(ctx, studentScope, &placed); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *DashboardService) activeJobs(ctx context.Context, actor auth.Actor, scope auth.Scope) (int64, error) {
	if !scope.FiltersEligibility() {
		return s.dashboardRepo.CountJobs(ctx, scope, models.JobActive)
	}

	student, err := s.studentRepo.GetByID(ctx, actor.StudentID)
	if err != nil {
		return 0, err
	}
	jobs, _, err := s.jobRepo.List(ctx, scope, dto.JobFilterRequest{}, 0, 0)
	if err != nil {
		return 0, err
	}
	profile := domain.StudentEligibilityOf(student)
	var n int64
	for _, job := range jobs {
		if domain.IsEligible(profile, domain.JobCriteriaOf(job)) {
			n++
		}
	}
	return n, nil
}
