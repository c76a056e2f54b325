package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/placement/internal/app/models"
)

func TestCanWithdraw(t *testing.T) {
	allowed := []models.ApplicationStatus{
		models.ApplicationSubmitted,
		models.ApplicationUnderReview,
		models.ApplicationShortlisted,
		models.ApplicationInterviewScheduled,
	}
	for _, s := range allowed {
		assert.True(t, CanWithdraw(s), s)
	}

	denied := []models.ApplicationStatus{
		models.ApplicationSelected,
		models.ApplicationOfferAccepted,
		models.ApplicationRejected,
		models.ApplicationWithdrawn,
	}
	for _, s := range denied {
		assert.False(t, CanWithdraw(s), s)
	}
}

func TestTerminalStatesAreAbsorbing(t *testing.T) {
	for _, from := range []models.ApplicationStatus{
		models.ApplicationOfferAccepted,
		models.ApplicationRejected,
		models.ApplicationWithdrawn,
	} {
		assert.True(t, IsTerminalApplication(from))
		for _, to := range models.ApplicationStatuses {
			assert.False(t, CanTransitionApplication(from, to), "%s -> %s", from, to)
		}
	}
}

func TestRejectedReachableFromEveryNonTerminal(t *testing.T) {
	for _, from := range models.ApplicationStatuses {
		if IsTerminalApplication(from) {
			continue
		}
		assert.True(t, CanTransitionApplication(from, models.ApplicationRejected), from)
	}
}

func TestCanStaffSetApplication(t *testing.T) {
	assert.True(t, CanStaffSetApplication(models.ApplicationSubmitted, models.ApplicationUnderReview))
	assert.True(t, CanStaffSetApplication(models.ApplicationSelected, models.ApplicationOfferAccepted))
	assert.False(t, CanStaffSetApplication(models.ApplicationSubmitted, models.ApplicationWithdrawn))
	assert.False(t, CanStaffSetApplication(models.ApplicationShortlisted, models.ApplicationSubmitted))
	assert.False(t, CanStaffSetApplication(models.ApplicationSubmitted, "hired"))
}

func TestCanScheduleInterview(t *testing.T) {
	assert.True(t, CanScheduleInterview(models.ApplicationShortlisted))
	assert.True(t, CanScheduleInterview(models.ApplicationInterviewScheduled))
	assert.False(t, CanScheduleInterview(models.ApplicationWithdrawn))
	assert.False(t, CanScheduleInterview(models.ApplicationSelected))
}

func TestApplicationStatusForResult(t *testing.T) {
	tests := []struct {
		result models.InterviewResult
		want   models.ApplicationStatus
		ok     bool
	}{
		{models.ResultPassed, models.ApplicationSelected, true},
		{models.ResultSelected, models.ApplicationSelected, true},
		{models.ResultFailed, models.ApplicationRejected, true},
		{models.ResultRejected, models.ApplicationRejected, true},
		{models.ResultPending, "", false},
		{models.ResultOnHold, "", false},
	}
	for _, tt := range tests {
		got, ok := ApplicationStatusForResult(tt.result)
		assert.Equal(t, tt.want, got, tt.result)
		assert.Equal(t, tt.ok, ok, tt.result)
	}
}

func TestInterviewTransitions(t *testing.T) {
	assert.True(t, CanTransitionInterview(models.InterviewScheduled, models.InterviewCompleted))
	assert.True(t, CanTransitionInterview(models.InterviewScheduled, models.InterviewRescheduled))
	assert.True(t, CanTransitionInterview(models.InterviewRescheduled, models.InterviewScheduled))
	assert.True(t, CanTransitionInterview(models.InterviewRescheduled, models.InterviewCancelled))
	assert.False(t, CanTransitionInterview(models.InterviewCancelled, models.InterviewScheduled))
	assert.False(t, CanTransitionInterview(models.InterviewCompleted, models.InterviewRescheduled))
}

func TestCanRecordResult(t *testing.T) {
	assert.True(t, CanRecordResult(models.InterviewScheduled, models.ResultPending))
	assert.True(t, CanRecordResult(models.InterviewCompleted, models.ResultOnHold))
	assert.False(t, CanRecordResult(models.InterviewCompleted, models.ResultSelected))
	assert.False(t, CanRecordResult(models.InterviewCancelled, models.ResultPending))
}

func TestInterviewScheduleChanged(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.False(t, InterviewScheduleChanged(day, "10:00", day.Add(5*time.Hour), "10:00"))
	assert.True(t, InterviewScheduleChanged(day, "10:00", day, "11:00"))
	assert.True(t, InterviewScheduleChanged(day, "10:00", day.AddDate(0, 0, 1), "10:00"))
}

func TestUploadKindAccepts(t *testing.T) {
	assert.True(t, UploadResume.AcceptsUpload("cv.PDF", 1024))
	assert.False(t, UploadResume.AcceptsUpload("cv.docx", 1024))
	assert.False(t, UploadResume.AcceptsUpload("cv.pdf", UploadResume.MaxBytes()+1))
	assert.True(t, UploadCompanyLogo.AcceptsUpload("logo.png", 2048))
	assert.False(t, UploadKind("other").AcceptsUpload("x.pdf", 1))
}

func TestCompanyTransitions(t *testing.T) {
	assert.True(t, CanTransitionCompany(models.CompanyPending, models.CompanyApproved))
	assert.True(t, CanTransitionCompany(models.CompanyInactive, models.CompanyActive))
	assert.False(t, CanTransitionCompany(models.CompanyPending, models.CompanyActive))
	assert.False(t, CanTransitionCompany(models.CompanyActive, models.CompanyPending))
}

func TestJobTransitions(t *testing.T) {
	assert.True(t, CanTransitionJob(models.JobPending, models.JobActive))
	assert.True(t, CanTransitionJob(models.JobActive, models.JobClosed))
	assert.False(t, CanTransitionJob(models.JobDraft, models.JobActive))
	assert.False(t, CanTransitionJob(models.JobClosed, models.JobActive))
	assert.False(t, IsEditableJob(models.JobCancelled))
}
