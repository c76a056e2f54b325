package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

func TestApply_ConcurrentSameJobCreatesOneApplication(t *testing.T) {
	f := newFixture()
	student := f.addStudent(7, 20, 3, 8.1)
	f.addJob(10, models.JobActive, nil)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.applications.Apply(context.Background(), student, &dto.ApplyRequest{JobID: 10})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperrors.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 1, f.db.countApplications(7, 10))
}

func TestApply_IneligibleStudentIsRejected(t *testing.T) {
	f := newFixture()
	student := f.addStudent(7, 20, 3, 6.9)
	f.addJob(10, models.JobActive, float64p(7.0))

	_, err := f.applications.Apply(context.Background(), student, &dto.ApplyRequest{JobID: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrIneligible))

	var custom *apperrors.CustomError
	require.True(t, errors.As(err, &custom))
	assert.Equal(t, []string{"cgpa"}, custom.Details["failedCriteria"])
	assert.Equal(t, 0, f.db.countApplications(7, 10))
}

func TestApply_JobNotOpen(t *testing.T) {
	f := newFixture()
	student := f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobClosed, nil)

	_, err := f.applications.Apply(context.Background(), student, &dto.ApplyRequest{JobID: 10})
	assert.True(t, errors.Is(err, apperrors.ErrJobNotOpen))
}

func TestApply_AfterWithdrawalIsAllowed(t *testing.T) {
	f := newFixture()
	student := f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationWithdrawn)

	app, err := f.applications.Apply(context.Background(), student, &dto.ApplyRequest{JobID: 10})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationSubmitted, app.Status)
}

func TestApply_StaffCannotApply(t *testing.T) {
	f := newFixture()
	_, err := f.applications.Apply(context.Background(), coordinator, &dto.ApplyRequest{JobID: 10})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestWithdraw(t *testing.T) {
	tests := []struct {
		name    string
		status  models.ApplicationStatus
		wantErr error
	}{
		{"submitted", models.ApplicationSubmitted, nil},
		{"interview scheduled", models.ApplicationInterviewScheduled, nil},
		{"selected", models.ApplicationSelected, apperrors.ErrIllegalTransition},
		{"offer accepted", models.ApplicationOfferAccepted, apperrors.ErrIllegalTransition},
		{"rejected", models.ApplicationRejected, apperrors.ErrIllegalTransition},
		{"already withdrawn", models.ApplicationWithdrawn, apperrors.ErrIllegalTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			student := f.addStudent(7, 20, 3, 8.0)
			f.addJob(10, models.JobActive, nil)
			f.addApplication(50, 7, 10, tt.status)

			app, err := f.applications.Withdraw(context.Background(), student, 50)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Equal(t, tt.status, f.db.application(50).Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.ApplicationWithdrawn, app.Status)
			assert.Equal(t, models.ApplicationWithdrawn, f.db.application(50).Status)
		})
	}
}

func TestWithdraw_CancelsOpenInterviews(t *testing.T) {
	f := newFixture()
	student := f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationInterviewScheduled)
	f.addInterview(60, 50, models.InterviewScheduled)

	_, err := f.applications.Withdraw(context.Background(), student, 50)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewCancelled, f.db.interview(60).Status)
}

func TestWithdraw_OnlyOwningStudent(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	other := f.addStudent(8, 21, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationSubmitted)

	_, err := f.applications.Withdraw(context.Background(), other, 50)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = f.applications.Withdraw(context.Background(), admin, 50)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	assert.Equal(t, models.ApplicationSubmitted, f.db.application(50).Status)
}

func TestUpdateStatus_StaffRules(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationSelected)

	_, err := f.applications.UpdateStatus(context.Background(), coordinator, 50, &dto.UpdateApplicationStatusRequest{Status: "offer_accepted"})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied), "coordinators only read applications")

	officer := coordinator
	officer.Role = models.RoleDeptOfficer
	app, err := f.applications.UpdateStatus(context.Background(), officer, 50, &dto.UpdateApplicationStatusRequest{Status: "offer_accepted"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationOfferAccepted, app.Status)
	assert.Equal(t, models.PlacementPlaced, f.db.students[7].PlacementStatus)
	assert.Equal(t, []models.NotificationKind{models.NotifyApplicationStatus}, f.notifier.kinds())

	_, err = f.applications.UpdateStatus(context.Background(), officer, 50, &dto.UpdateApplicationStatusRequest{Status: "under_review"})
	assert.True(t, errors.Is(err, apperrors.ErrIllegalTransition))
}

func TestUpdateStatus_OtherDepartmentIsForbidden(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 4, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationSubmitted)

	officer := coordinator
	officer.Role = models.RoleDeptOfficer
	_, err := f.applications.UpdateStatus(context.Background(), officer, 50, &dto.UpdateApplicationStatusRequest{Status: "shortlisted"})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	assert.Equal(t, models.ApplicationSubmitted, f.db.application(50).Status)
}

func TestGet_CoordinatorScope(t *testing.T) {
	f := newFixture()
	f.addStudent(7, 20, 3, 8.0)
	f.addStudent(8, 21, 4, 8.0)
	f.addJob(10, models.JobActive, nil)
	f.addApplication(50, 7, 10, models.ApplicationSubmitted)
	f.addApplication(51, 8, 10, models.ApplicationSubmitted)

	_, err := f.applications.Get(context.Background(), coordinator, 50)
	assert.NoError(t, err)
	_, err = f.applications.Get(context.Background(), coordinator, 51)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}
