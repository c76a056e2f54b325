package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/models"
)

func TestWriteApplications(t *testing.T) {
	applied := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)
	remarks := "strong, \"clear\" answers"
	apps := []*models.ApplicationDetails{{
		Application: models.Application{
			ID:        11,
			Status:    models.ApplicationShortlisted,
			AppliedAt: applied,
			Remarks:   &remarks,
		},
		StudentName:  "Asha Rao",
		StudentEmail: "asha@example.edu",
		RollNumber:   "CS21001",
		CGPA:         7.2,
		JobTitle:     "Backend Engineer",
		CompanyName:  "Acme",
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteApplications(&buf, apps))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, applicationHeader, rows[0])
	assert.Equal(t, []string{
		"11", "CS21001", "Asha Rao", "asha@example.edu", "7.20",
		"Acme", "Backend Engineer", "shortlisted", "2025-01-02T09:30:00Z", "", remarks,
	}, rows[1])
}

func TestWriteStudents_WithoutUser(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStudents(&buf, []*models.StudentProfile{{
		ID: 4, RollNumber: "EE22010", DepartmentName: "EE", Degree: "BTech",
		BatchYear: 2026, CGPA: 8, PlacementStatus: models.PlacementActive,
	}}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[1][2])
	assert.Equal(t, "8.00", rows[1][7])
	assert.Equal(t, "false", rows[1][10])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "students-20250102.csv", FileName("students", time.Date(2025, 1, 2, 23, 0, 0, 0, time.UTC)))
}
