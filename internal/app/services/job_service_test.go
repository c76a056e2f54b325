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

func jobIDs(t *testing.T, resp *dto.PaginatedResponse) []int64 {
	t.Helper()
	jobs, ok := resp.Items.([]*models.JobPosting)
	require.True(t, ok, "items are %T", resp.Items)
	ids := make([]int64, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	return ids
}

func TestJobList_StudentSeesOnlyEligibleActivePostings(t *testing.T) {
	f := newFixture()
	student := f.addStudent(7, 20, 3, 7.5)
	f.addJob(11, models.JobActive, nil)
	f.addJob(12, models.JobActive, float64p(8.0))
	f.addJob(13, models.JobActive, float64p(7.5))
	f.addJob(14, models.JobDraft, nil)
	f.addJob(15, models.JobActive, float64p(6.0))
	f.db.jobs[15].EligibleBatches = []int{2026}
	f.addJob(16, models.JobActive, float64p(7.0))

	page1, err := f.jobs.List(context.Background(), student, dto.JobFilterRequest{PageRequest: dto.PageRequest{Page: 1, Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 13}, jobIDs(t, page1))
	assert.Equal(t, int64(3), page1.Pagination.TotalItems)
	assert.Equal(t, 2, page1.Pagination.TotalPages)

	page2, err := f.jobs.List(context.Background(), student, dto.JobFilterRequest{PageRequest: dto.PageRequest{Page: 2, Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, []int64{16}, jobIDs(t, page2))

	page3, err := f.jobs.List(context.Background(), student, dto.JobFilterRequest{PageRequest: dto.PageRequest{Page: 3, Size: 2}})
	require.NoError(t, err)
	assert.Empty(t, jobIDs(t, page3))
}

func TestJobList_StaffSeeUnfilteredScope(t *testing.T) {
	f := newFixture()
	f.addJob(11, models.JobActive, float64p(9.5))
	f.addJob(12, models.JobDraft, nil)
	f.addJob(13, models.JobActive, nil)
	f.db.jobs[13].DepartmentID = int64p(4)

	resp, err := f.jobs.List(context.Background(), coordinator, dto.JobFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, jobIDs(t, resp))

	resp, err = f.jobs.List(context.Background(), admin, dto.JobFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12, 13}, jobIDs(t, resp))
}

func TestJobGet_StudentEligibility(t *testing.T) {
	f := newFixture()
	student := f.addStudent(7, 20, 3, 7.5)
	f.addJob(11, models.JobActive, float64p(7.0))
	f.addJob(12, models.JobActive, float64p(8.0))
	f.addJob(13, models.JobDraft, nil)

	resp, err := f.jobs.Get(context.Background(), student, 11)
	require.NoError(t, err)
	require.NotNil(t, resp.Eligible)
	assert.True(t, *resp.Eligible)

	_, err = f.jobs.Get(context.Background(), student, 12)
	require.True(t, errors.Is(err, apperrors.ErrIneligible))
	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"cgpa"}, ce.Details["failedCriteria"])

	_, err = f.jobs.Get(context.Background(), student, 13)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestJobList_PastDeadlineHiddenLikeApply(t *testing.T) {
	f := newFixture()
	student := f.addStudent(7, 20, 3, 7.5)
	f.addJob(10, models.JobActive, nil)
	passed := testNow.Add(-time.Minute)
	f.db.jobs[10].ApplicationDeadline = &passed
	f.addJob(11, models.JobActive, nil)
	open := testNow.Add(time.Hour)
	f.db.jobs[11].ApplicationDeadline = &open

	resp, err := f.jobs.List(context.Background(), student, dto.JobFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, jobIDs(t, resp))
	assert.Equal(t, int64(1), resp.Pagination.TotalItems)

	_, err = f.jobs.Get(context.Background(), student, 10)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = f.applications.Apply(context.Background(), student, &dto.ApplyRequest{JobID: 10})
	assert.True(t, errors.Is(err, apperrors.ErrJobNotOpen))

	_, err = f.applications.Apply(context.Background(), student, &dto.ApplyRequest{JobID: 11})
	assert.NoError(t, err)

	resp, err = f.jobs.List(context.Background(), admin, dto.JobFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, jobIDs(t, resp))
}

func TestJobUpdate_ClearsConstraints(t *testing.T) {
	f := newFixture()
	student := f.addStudent(7, 20, 3, 6.5)
	f.addJob(10, models.JobActive, float64p(7.0))
	backlogs := 0
	f.db.jobs[10].AllowedBacklogs = &backlogs
	deadline := testNow.Add(48 * time.Hour)
	f.db.jobs[10].ApplicationDeadline = &deadline

	_, err := f.jobs.Get(context.Background(), student, 10)
	require.True(t, errors.Is(err, apperrors.ErrIneligible))

	job, err := f.jobs.Update(context.Background(), admin, 10, &dto.UpdateJobRequest{Title: strp("Platform Engineer")})
	require.NoError(t, err)
	require.NotNil(t, job.RequiredCGPA)
	require.NotNil(t, job.AllowedBacklogs)

	job, err = f.jobs.Update(context.Background(), admin, 10, &dto.UpdateJobRequest{
		ClearRequiredCGPA:        true,
		ClearAllowedBacklogs:     true,
		ClearApplicationDeadline: true,
	})
	require.NoError(t, err)
	assert.Nil(t, job.RequiredCGPA)
	assert.Nil(t, job.AllowedBacklogs)
	assert.Nil(t, job.ApplicationDeadline)
	assert.Equal(t, "Platform Engineer", f.db.jobs[10].Title)
	assert.Nil(t, f.db.jobs[10].RequiredCGPA)

	resp, err := f.jobs.Get(context.Background(), student, 10)
	require.NoError(t, err)
	assert.True(t, *resp.Eligible)
}

func TestJobUpdate_SetAndClearTogether(t *testing.T) {
	f := newFixture()
	f.addJob(10, models.JobActive, float64p(7.0))

	_, err := f.jobs.Update(context.Background(), admin, 10, &dto.UpdateJobRequest{
		RequiredCGPA:      float64p(8.0),
		ClearRequiredCGPA: true,
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, 7.0, *f.db.jobs[10].RequiredCGPA)
}
