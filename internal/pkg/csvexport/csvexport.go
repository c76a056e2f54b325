// Package csvexport renders staff exports of applications and students.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/yigit/placement/internal/app/models"
)

// ContentType is sent with every export
const ContentType = "text/csv; charset=utf-8"

var applicationHeader = []string{
	"application_id", "roll_number", "student_name", "student_email", "cgpa",
	"company", "job_title", "status", "applied_at", "reviewed_at", "remarks",
}

var studentHeader = []string{
	"student_id", "roll_number", "name", "email", "department", "degree", "batch_year",
	"cgpa", "active_backlogs", "placement_status", "verified", "resume_url",
}

// WriteApplications writes one row per application
func WriteApplications(w io.Writer, apps []*models.ApplicationDetails) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(applicationHeader); err != nil {
		return fmt.Errorf("write application header: %w", err)
	}

	for _, a := range apps {
		record := []string{
			strconv.FormatInt(a.ID, 10),
			a.RollNumber,
			a.StudentName,
			a.StudentEmail,
			formatCGPA(a.CGPA),
			a.CompanyName,
			a.JobTitle,
			string(a.Status),
			a.AppliedAt.UTC().Format(time.RFC3339),
			formatTime(a.ReviewedAt),
			deref(a.Remarks),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write application %d: %w", a.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteStudents writes one row per student profile
func WriteStudents(w io.Writer, students []*models.StudentProfile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(studentHeader); err != nil {
		return fmt.Errorf("write student header: %w", err)
	}

	for _, s := range students {
		var name, email string
		if s.User != nil {
			name = s.User.FullName()
			email = s.User.Email
		}
		record := []string{
			strconv.FormatInt(s.ID, 10),
			s.RollNumber,
			name,
			email,
			s.DepartmentName,
			s.Degree,
			strconv.Itoa(s.BatchYear),
			formatCGPA(s.CGPA),
			strconv.Itoa(s.ActiveBacklogs),
			string(s.PlacementStatus),
			strconv.FormatBool(s.IsVerified),
			deref(s.ResumeURL),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write student %d: %w", s.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FileName builds an attachment name such as applications-20250102.csv
func FileName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", prefix, now.UTC().Format("20060102"))
}

func formatCGPA(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
