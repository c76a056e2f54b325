package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/domain"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/helpers"
)

const defaultInterviewMinutes = 60

// InterviewService schedules interview rounds and records their results
type InterviewService struct {
	tx              Transactor
	interviewRepo   InterviewStore
	applicationRepo ApplicationStore
	authz           *auth.AuthorizationService
	notifier        Dispatcher
	clock           Clock
	logger          zerolog.Logger
}

// NewInterviewService creates a new InterviewService
func NewInterviewService(
	tx Transactor,
	interviewRepo InterviewStore,
	applicationRepo ApplicationStore,
	authz *auth.AuthorizationService,
	notifier Dispatcher,
	logger zerolog.Logger,
) *InterviewService {
	return &InterviewService{
		tx:              tx,
		interviewRepo:   interviewRepo,
		applicationRepo: applicationRepo,
		authz:           authz,
		notifier:        notifier,
		logger:          logger,
	}
}

// Schedule creates an interview round and moves the application to
// interview_scheduled in the same transaction.
func (s *InterviewService) Schedule(ctx context.Context, actor auth.Actor, req *dto.ScheduleInterviewRequest) (*models.Interview, error) {
	if err := s.authz.Require(actor, auth.ResourceInterviews, auth.ActionCreate); err != nil {
		return nil, err
	}
	scope, err := s.authz.Scope(actor, auth.ResourceInterviews)
	if err != nil {
		return nil, err
	}

	interview := &models.Interview{
		ApplicationID: req.ApplicationID,
		Round:         req.Round,
		InterviewType: models.InterviewType(req.InterviewType),
		Mode:          models.InterviewMode(req.Mode),
		ScheduledDate: helpers.DateOnly(req.ScheduledDate),
		ScheduledTime: req.ScheduledTime,
		DurationMins:  req.DurationMins,
		Location:      helpers.TrimmedPtr(req.Location),
		MeetingLink:   helpers.TrimmedPtr(req.MeetingLink),
		Status:        models.InterviewScheduled,
		Result:        models.ResultPending,
		CreatedBy:     actor.UserID,
	}
	if interview.DurationMins == 0 {
		interview.DurationMins = defaultInterviewMinutes
	}
	if err := validateVenue(interview); err != nil {
		return nil, err
	}

	var app *models.ApplicationDetails
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.applicationRepo.GetForUpdate(ctx, req.ApplicationID)
		if err != nil {
			if notFound(err) {
				return apperrors.NewValidationError("applicationId", "application does not exist")
			}
			return err
		}
		if !scope.AllowsStudentRecord(app.StudentID, app.StudentDepartmentID) {
			return apperrors.NewForbiddenError("application is outside your scope")
		}
		if !domain.CanScheduleInterview(app.Status) {
			return apperrors.NewIllegalTransitionError(string(app.Status), string(models.ApplicationInterviewScheduled))
		}

		if interview.Round == 0 {
			if interview.Round, err = s.interviewRepo.NextRound(ctx, app.ID); err != nil {
				return err
			}
		}
		if err := s.interviewRepo.Create(ctx, interview); err != nil {
			return err
		}

		if app.Status != models.ApplicationInterviewScheduled {
			now := s.clock.now()
			if err := s.applicationRepo.UpdateStatus(ctx, app.ID, models.ApplicationInterviewScheduled, &actor.UserID, nil, now); err != nil {
				return err
			}
			app.Status = models.ApplicationInterviewScheduled
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("interviewId", interview.ID).Int64("applicationId", app.ID).Int("round", interview.Round).Msg("Interview scheduled")
	s.notifier.Dispatch(ctx, NotificationEvent{
		UserID: app.StudentUserID,
		Kind:   models.NotifyInterviewScheduled,
		Title:  fmt.Sprintf("Interview round %d scheduled", interview.Round),
		Message: fmt.Sprintf("%s at %s: %s interview on %s at %s.", app.JobTitle, app.CompanyName,
			interview.InterviewType, interview.ScheduledDate.Format("2006-01-02"), interview.ScheduledTime),
		Payload: map[string]interface{}{"interviewId": interview.ID, "applicationId": app.ID},
	})
	return interview, nil
}

// Update changes an open interview. Moving its date or time marks it
// rescheduled.
func (s *InterviewService) Update(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateInterviewRequest) (*models.Interview, error) {
	if err := s.authz.Require(actor, auth.ResourceInterviews, auth.ActionUpdate); err != nil {
		return nil, err
	}
	scope, err := s.authz.Scope(actor, auth.ResourceInterviews)
	if err != nil {
		return nil, err
	}

	var (
		interview *models.Interview
		app       *models.ApplicationDetails
		moved     bool
	)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if interview, err = s.interviewRepo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if app, err = s.inScope(ctx, scope, interview); err != nil {
			return err
		}
		if !domain.IsOpenInterview(interview.Status) {
			return apperrors.NewValidationError("status", "completed or cancelled interviews cannot be changed")
		}

		newDate, newTime := interview.ScheduledDate, interview.ScheduledTime
		if req.ScheduledDate != nil {
			newDate = helpers.DateOnly(*req.ScheduledDate)
		}
		if req.ScheduledTime != nil {
			newTime = *req.ScheduledTime
		}
		moved = domain.InterviewScheduleChanged(interview.ScheduledDate, interview.ScheduledTime, newDate, newTime)
		interview.ScheduledDate, interview.ScheduledTime = newDate, newTime

		if req.InterviewType != nil {
			interview.InterviewType = models.InterviewType(*req.InterviewType)
		}
		if req.Mode != nil {
			interview.Mode = models.InterviewMode(*req.Mode)
		}
		if req.DurationMins != nil {
			interview.DurationMins = *req.DurationMins
		}
		if req.Location != nil {
			interview.Location = helpers.TrimmedPtr(req.Location)
		}
		if req.MeetingLink != nil {
			interview.MeetingLink = helpers.TrimmedPtr(req.MeetingLink)
		}
		if err := validateVenue(interview); err != nil {
			return err
		}
		if moved {
			interview.Status = models.InterviewRescheduled
		}
		return s.interviewRepo.Update(ctx, interview)
	})
	if err != nil {
		return nil, err
	}

	if moved {
		s.notifier.Dispatch(ctx, NotificationEvent{
			UserID: app.StudentUserID,
			Kind:   models.NotifyInterviewUpdated,
			Title:  fmt.Sprintf("Interview round %d rescheduled", interview.Round),
			Message: fmt.Sprintf("%s at %s: now on %s at %s.", app.JobTitle, app.CompanyName,
				interview.ScheduledDate.Format("2006-01-02"), interview.ScheduledTime),
			Payload: map[string]interface{}{"interviewId": interview.ID, "applicationId": app.ID},
		})
	}
	return interview, nil
}

// RecordResult completes an interview with a result and applies the status
// the result implies to its application. Both changes commit together and
// both updated records are returned.
func (s *InterviewService) RecordResult(ctx context.Context, actor auth.Actor, id int64, req *dto.InterviewResultRequest) (*models.Interview, *models.ApplicationDetails, error) {
	if err := s.authz.Require(actor, auth.ResourceInterviews, auth.ActionUpdate); err != nil {
		return nil, nil, err
	}
	scope, err := s.authz.Scope(actor, auth.ResourceInterviews)
	if err != nil {
		return nil, nil, err
	}
	result := models.InterviewResult(req.Result)
	if !domain.ValidInterviewResult(result) || result == models.ResultPending {
		return nil, nil, apperrors.NewValidationError("result", "unknown interview result")
	}

	var (
		interview *models.Interview
		app       *models.ApplicationDetails
		changed   bool
	)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if interview, err = s.interviewRepo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if app, err = s.applicationRepo.GetForUpdate(ctx, interview.ApplicationID); err != nil {
			return err
		}
		if !scope.AllowsStudentRecord(app.StudentID, app.StudentDepartmentID) {
			return apperrors.NewForbiddenError("interview is outside your scope")
		}
		if !domain.CanRecordResult(interview.Status, interview.Result) {
			return apperrors.NewIllegalTransitionError(string(interview.Status), string(models.InterviewCompleted))
		}

		now := s.clock.now()
		if to, ok := domain.ApplicationStatusForResult(result); ok && app.Status != to {
			if !domain.CanStaffSetApplication(app.Status, to) {
				return apperrors.NewIllegalTransitionError(string(app.Status), string(to))
			}
			if err := s.applicationRepo.UpdateStatus(ctx, app.ID, to, &actor.UserID, nil, now); err != nil {
				return err
			}
			app.Status = to
			app.ReviewedBy = &actor.UserID
			app.ReviewedAt = &now
			changed = true
		}

		interview.Status = models.InterviewCompleted
		interview.Result = result
		if req.Feedback != nil {
			interview.Feedback = helpers.TrimmedPtr(req.Feedback)
		}
		return s.interviewRepo.Update(ctx, interview)
	})
	if err != nil {
		return nil, nil, err
	}

	events := []NotificationEvent{{
		UserID:  app.StudentUserID,
		Kind:    models.NotifyInterviewResult,
		Title:   fmt.Sprintf("Interview round %d result", interview.Round),
		Message: fmt.Sprintf("%s at %s: %s.", app.JobTitle, app.CompanyName, strings.ReplaceAll(string(result), "_", " ")),
		Payload: map[string]interface{}{"interviewId": interview.ID, "result": result},
	}}
	if changed {
		events = append(events, applicationStatusEvent(app))
	}
	s.notifier.Dispatch(ctx, events...)
	return interview, app, nil
}

// Confirm settles a rescheduled interview at its new slot, returning it to
// scheduled. Moving it again marks it rescheduled once more.
func (s *InterviewService) Confirm(ctx context.Context, actor auth.Actor, id int64) (*models.Interview, error) {
	if err := s.authz.Require(actor, auth.ResourceInterviews, auth.ActionUpdate); err != nil {
		return nil, err
	}
	scope, err := s.authz.Scope(actor, auth.ResourceInterviews)
	if err != nil {
		return nil, err
	}

	var (
		interview *models.Interview
		app       *models.ApplicationDetails
	)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if interview, err = s.interviewRepo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if app, err = s.inScope(ctx, scope, interview); err != nil {
			return err
		}
		if interview.Status != models.InterviewRescheduled ||
			!domain.CanTransitionInterview(interview.Status, models.InterviewScheduled) {
			return apperrors.NewIllegalTransitionError(string(interview.Status), string(models.InterviewScheduled))
		}
		interview.Status = models.InterviewScheduled
		return s.interviewRepo.Update(ctx, interview)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, NotificationEvent{
		UserID: app.StudentUserID,
		Kind:   models.NotifyInterviewUpdated,
		Title:  fmt.Sprintf("Interview round %d confirmed", interview.Round),
		Message: fmt.Sprintf("%s at %s: confirmed for %s at %s.", app.JobTitle, app.CompanyName,
			interview.ScheduledDate.Format("2006-01-02"), interview.ScheduledTime),
		Payload: map[string]interface{}{"interviewId": interview.ID, "applicationId": app.ID},
	})
	return interview, nil
}

// Cancel cancels an open interview.
func (s *InterviewService) Cancel(ctx context.Context, actor auth.Actor, id int64) (*models.Interview, error) {
	if err := s.authz.Require(actor, auth.ResourceInterviews, auth.ActionUpdate); err != nil {
		return nil, err
	}
	scope, err := s.authz.Scope(actor, auth.ResourceInterviews)
	if err != nil {
		return nil, err
	}

	var interview *models.Interview
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if interview, err = s.interviewRepo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if _, err := s.inScope(ctx, scope, interview); err != nil {
			return err
		}
		if !domain.CanTransitionInterview(interview.Status, models.InterviewCancelled) {
			return apperrors.NewIllegalTransitionError(string(interview.Status), string(models.InterviewCancelled))
		}
		interview.Status = models.InterviewCancelled
		return s.interviewRepo.Update(ctx, interview)
	})
	if err != nil {
		return nil, err
	}
	return interview, nil
}

// List returns a page of interviews inside the actor's scope.
func (s *InterviewService) List(ctx context.Context, actor auth.Actor, filter dto.InterviewFilterRequest) (*dto.PaginatedResponse, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceInterviews)
	if err != nil {
		return nil, err
	}

	page, size := helpers.NormalizePage(filter.PageRequest)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	interviews, total, err := s.interviewRepo.List(ctx, scope, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	resp := helpers.Paginate(interviews, total, page, size)
	return &resp, nil
}

// Get returns one interview inside the actor's scope.
func (s *InterviewService) Get(ctx context.Context, actor auth.Actor, id int64) (*models.Interview, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceInterviews)
	if err != nil {
		return nil, err
	}
	interview, err := s.interviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.inScope(ctx, scope, interview); err != nil {
		return nil, err
	}
	return interview, nil
}

func (s *InterviewService) inScope(ctx context.Context, scope auth.Scope, interview *models.Interview) (*models.ApplicationDetails, error) {
	app, err := s.applicationRepo.GetByID(ctx, interview.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !scope.AllowsStudentRecord(app.StudentID, app.StudentDepartmentID) {
		return nil, apperrors.NewForbiddenError("interview is outside your scope")
	}
	return app, nil
}

func validateVenue(i *models.Interview) error {
	switch {
	case i.Mode == models.InterviewOnline && i.MeetingLink == nil:
		return apperrors.NewValidationError("meetingLink", "online interviews need a meeting link")
	case i.Mode == models.InterviewOffline && i.Location == nil:
		return apperrors.NewValidationError("location", "offline interviews need a location")
	}
	return nil
}
