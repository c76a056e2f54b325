package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

func strp(s string) *string { return &s }

func TestRecordResult_SelectedMovesApplicationInSameCommit(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationInterviewScheduled)
	f.addInterview(60, 50, models.InterviewScheduled)

	commits := f.db.commits
	interview, app, err := f.interviews.RecordResult(context.Background(), coordinator, 60, &dto.InterviewResultRequest{Result: "selected", Feedback: strp("strong")})
	require.NoError(t, err)

	assert.Equal(t, commits+1, f.db.commits)
	assert.Equal(t, models.InterviewCompleted, interview.Status)
	assert.Equal(t, models.ResultSelected, interview.Result)
	assert.Equal(t, models.ApplicationSelected, app.Status)

	// A read right after the call sees the committed state.
	assert.Equal(t, models.ApplicationSelected, f.db.application(50).Status)
	assert.Equal(t, models.ResultSelected, f.db.interview(60).Result)
	assert.ElementsMatch(t, []models.NotificationKind{models.NotifyInterviewResult, models.NotifyApplicationStatus}, f.notifier.kinds())
}

func TestRecordResult_RollsBackBothOnFailure(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationInterviewScheduled)
	f.addInterview(60, 50, models.InterviewScheduled)
	f.db.failInterviewUpdate = errors.New("connection reset")

	_, _, err := f.interviews.RecordResult(context.Background(), coordinator, 60, &dto.InterviewResultRequest{Result: "selected"})
	require.Error(t, err)

	assert.Equal(t, models.ApplicationInterviewScheduled, f.db.application(50).Status)
	assert.Equal(t, models.InterviewScheduled, f.db.interview(60).Status)
	assert.Empty(t, f.notifier.kinds())
}

func TestRecordResult_OnHoldLeavesApplication(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationInterviewScheduled)
	f.addInterview(60, 50, models.InterviewScheduled)

	_, app, err := f.interviews.RecordResult(context.Background(), coordinator, 60, &dto.InterviewResultRequest{Result: "on_hold"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationInterviewScheduled, app.Status)

	// An on-hold result can still be finalised.
	_, app, err = f.interviews.RecordResult(context.Background(), coordinator, 60, &dto.InterviewResultRequest{Result: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, app.Status)

	_, _, err = f.interviews.RecordResult(context.Background(), coordinator, 60, &dto.InterviewResultRequest{Result: "selected"})
	assert.True(t, errors.Is(err, apperrors.ErrIllegalTransition))
}

func TestSchedule_MovesApplicationToInterviewScheduled(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationShortlisted)

	interview, err := f.interviews.Schedule(context.Background(), coordinator, &dto.ScheduleInterviewRequest{
		ApplicationID: 50,
		InterviewType: "technical",
		Mode:          "online",
		ScheduledDate: time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC),
		ScheduledTime: "14:30",
		MeetingLink:   strp("https://meet.example.com/abc"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, interview.Round)
	assert.Equal(t, defaultInterviewMinutes, interview.DurationMins)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), interview.ScheduledDate)
	assert.Equal(t, models.ApplicationInterviewScheduled, f.db.application(50).Status)
	assert.Equal(t, []models.NotificationKind{models.NotifyInterviewScheduled}, f.notifier.kinds())
}

func TestSchedule_WithdrawnApplicationIsRejected(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationWithdrawn)

	_, err := f.interviews.Schedule(context.Background(), coordinator, &dto.ScheduleInterviewRequest{
		ApplicationID: 50,
		InterviewType: "hr",
		Mode:          "offline",
		ScheduledDate: testNow,
		ScheduledTime: "09:00",
		Location:      strp("Room 4"),
	})
	assert.True(t, errors.Is(err, apperrors.ErrIllegalTransition))
	assert.Empty(t, f.db.interviews)
}

func TestUpdate_MovingTimeMarksRescheduled(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationInterviewScheduled)
	f.addInterview(60, 50, models.InterviewScheduled)
	f.db.interviews[60].MeetingLink = strp("https://meet.example.com/abc")

	interview, err := f.interviews.Update(context.Background(), coordinator, 60, &dto.UpdateInterviewRequest{DurationMins: intp(45)})
	require.NoError(t, err)
	assert.Equal(t, models.InterviewScheduled, interview.Status)
	assert.Empty(t, f.notifier.kinds())

	interview, err = f.interviews.Update(context.Background(), coordinator, 60, &dto.UpdateInterviewRequest{ScheduledTime: strp("16:00")})
	require.NoError(t, err)
	assert.Equal(t, models.InterviewRescheduled, interview.Status)
	assert.Equal(t, []models.NotificationKind{models.NotifyInterviewUpdated}, f.notifier.kinds())
}

func TestConfirm_RescheduleCycle(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationInterviewScheduled)
	f.addInterview(60, 50, models.InterviewScheduled)
	f.db.interviews[60].MeetingLink = strp("https://meet.example.com/abc")

	_, err := f.interviews.Confirm(context.Background(), coordinator, 60)
	assert.True(t, errors.Is(err, apperrors.ErrIllegalTransition))

	interview, err := f.interviews.Update(context.Background(), coordinator, 60, &dto.UpdateInterviewRequest{ScheduledTime: strp("16:00")})
	require.NoError(t, err)
	assert.Equal(t, models.InterviewRescheduled, interview.Status)

	interview, err = f.interviews.Confirm(context.Background(), coordinator, 60)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewScheduled, interview.Status)
	assert.Equal(t, "16:00", interview.ScheduledTime)
	assert.Equal(t, models.InterviewScheduled, f.db.interviews[60].Status)

	interview, err = f.interviews.Update(context.Background(), coordinator, 60, &dto.UpdateInterviewRequest{ScheduledTime: strp("11:30")})
	require.NoError(t, err)
	assert.Equal(t, models.InterviewRescheduled, interview.Status)
	assert.Equal(t, []models.NotificationKind{
		models.NotifyInterviewUpdated, models.NotifyInterviewUpdated, models.NotifyInterviewUpdated,
	}, f.notifier.kinds())
}

func TestConfirm_ClosedInterview(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationInterviewScheduled)
	f.addInterview(60, 50, models.InterviewCancelled)

	_, err := f.interviews.Confirm(context.Background(), coordinator, 60)
	assert.True(t, errors.Is(err, apperrors.ErrIllegalTransition))
	assert.Empty(t, f.notifier.kinds())
}

func TestCancel_CompletedInterview(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationSelected)
	f.addInterview(60, 50, models.InterviewCompleted)

	_, err := f.interviews.Cancel(context.Background(), coordinator, 60)
	assert.True(t, errors.Is(err, apperrors.ErrIllegalTransition))
}

func intp(v int) *int { return &v }
