package domain

import (
	"time"

	"github.com/yigit/placement/internal/app/models"
)

var applicationTransitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.ApplicationSubmitted: {
		models.ApplicationUnderReview,
		models.ApplicationShortlisted,
		models.ApplicationRejected,
		models.ApplicationWithdrawn,
	},
	models.ApplicationUnderReview: {
		models.ApplicationShortlisted,
		models.ApplicationInterviewScheduled,
		models.ApplicationRejected,
		models.ApplicationWithdrawn,
	},
	models.ApplicationShortlisted: {
		models.ApplicationInterviewScheduled,
		models.ApplicationSelected,
		models.ApplicationRejected,
		models.ApplicationWithdrawn,
	},
	models.ApplicationInterviewScheduled: {
		models.ApplicationSelected,
		models.ApplicationRejected,
		models.ApplicationWithdrawn,
	},
	models.ApplicationSelected: {
		models.ApplicationOfferAccepted,
		models.ApplicationRejected,
	},
	models.ApplicationOfferAccepted: {},
	models.ApplicationRejected:      {},
	models.ApplicationWithdrawn:     {},
}

// ValidApplicationStatus reports whether s is a known application status.
func ValidApplicationStatus(s models.ApplicationStatus) bool {
	_, ok := applicationTransitions[s]
	return ok
}

// IsTerminalApplication reports whether no transition leaves s.
func IsTerminalApplication(s models.ApplicationStatus) bool {
	next, ok := applicationTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionApplication reports whether an application may move from one
// status to another.
func CanTransitionApplication(from, to models.ApplicationStatus) bool {
	for _, next := range applicationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanWithdraw reports whether the owning student may withdraw an application
// in status s. Selected, accepted and rejected applications stay put.
func CanWithdraw(s models.ApplicationStatus) bool {
	return CanTransitionApplication(s, models.ApplicationWithdrawn)
}

// CanStaffSetApplication reports whether staff may move an application from
// one status to another. Withdrawal belongs to the student.
func CanStaffSetApplication(from, to models.ApplicationStatus) bool {
	return to != models.ApplicationWithdrawn && CanTransitionApplication(from, to)
}

// CanScheduleInterview reports whether an interview may be scheduled for an
// application in status s. Later rounds are scheduled while the application
// already sits in interview_scheduled.
func CanScheduleInterview(s models.ApplicationStatus) bool {
	return s == models.ApplicationInterviewScheduled ||
		CanTransitionApplication(s, models.ApplicationInterviewScheduled)
}

// ApplicationStatusForResult maps an interview result to the application
// status it implies. ok is false for results that leave the application alone.
func ApplicationStatusForResult(r models.InterviewResult) (status models.ApplicationStatus, ok bool) {
	switch r {
	case models.ResultPassed, models.ResultSelected:
		return models.ApplicationSelected, true
	case models.ResultFailed, models.ResultRejected:
		return models.ApplicationRejected, true
	default:
		return "", false
	}
}

// ValidInterviewResult reports whether r is a known result.
func ValidInterviewResult(r models.InterviewResult) bool {
	switch r {
	case models.ResultPending, models.ResultPassed, models.ResultFailed,
		models.ResultSelected, models.ResultRejected, models.ResultOnHold:
		return true
	}
	return false
}

var interviewTransitions = map[models.InterviewStatus][]models.InterviewStatus{
	models.InterviewScheduled: {
		models.InterviewRescheduled,
		models.InterviewCompleted,
		models.InterviewCancelled,
	},
	models.InterviewRescheduled: {
		models.InterviewScheduled,
		models.InterviewRescheduled,
		models.InterviewCompleted,
		models.InterviewCancelled,
	},
	models.InterviewCompleted: {},
	models.InterviewCancelled: {},
}

// CanTransitionInterview reports whether an interview may move between statuses.
func CanTransitionInterview(from, to models.InterviewStatus) bool {
	for _, next := range interviewTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsOpenInterview reports whether the interview can still be changed.
func IsOpenInterview(s models.InterviewStatus) bool {
	return s == models.InterviewScheduled || s == models.InterviewRescheduled
}

// CanRecordResult reports whether a result may be written on an interview.
// A completed interview accepts a final result only while its current result
// is still pending or on hold.
func CanRecordResult(status models.InterviewStatus, current models.InterviewResult) bool {
	if IsOpenInterview(status) {
		return true
	}
	return status == models.InterviewCompleted &&
		(current == models.ResultPending || current == models.ResultOnHold)
}

// InterviewScheduleChanged reports whether an update moves the interview in
// time. Such updates force the interview into rescheduled.
func InterviewScheduleChanged(oldDate time.Time, oldTime string, newDate time.Time, newTime string) bool {
	oy, om, od := oldDate.Date()
	ny, nm, nd := newDate.Date()
	return oy != ny || om != nm || od != nd || oldTime != newTime
}

var companyTransitions = map[models.CompanyStatus][]models.CompanyStatus{
	models.CompanyPending:  {models.CompanyApproved, models.CompanyRejected},
	models.CompanyApproved: {models.CompanyActive, models.CompanyInactive, models.CompanyRejected},
	models.CompanyActive:   {models.CompanyInactive},
	models.CompanyInactive: {models.CompanyActive},
	models.CompanyRejected: {models.CompanyApproved},
}

// CanTransitionCompany reports whether a company may move between approval
// states.
func CanTransitionCompany(from, to models.CompanyStatus) bool {
	for _, next := range companyTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

var jobTransitions = map[models.JobStatus][]models.JobStatus{
	models.JobDraft:     {models.JobPending, models.JobCancelled},
	models.JobPending:   {models.JobDraft, models.JobActive, models.JobCancelled},
	models.JobActive:    {models.JobClosed, models.JobCancelled},
	models.JobClosed:    {},
	models.JobCancelled: {},
}

// CanTransitionJob reports whether a posting may move between lifecycle
// states. Closed and cancelled postings are final.
func CanTransitionJob(from, to models.JobStatus) bool {
	for _, next := range jobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsEditableJob reports whether a posting's content may still change.
func IsEditableJob(s models.JobStatus) bool {
	return s == models.JobDraft || s == models.JobPending || s == models.JobActive
}
