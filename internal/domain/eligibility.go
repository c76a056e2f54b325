// Package domain holds the placement rules that do not depend on storage or
// transport: job eligibility and the application and interview state machines.
package domain

import (
	"math"
	"strings"

	"github.com/yigit/placement/internal/app/models"
)

// Criterion names one eligibility check a job posting can impose.
type Criterion string

const (
	CriterionCGPA       Criterion = "cgpa"
	CriterionBacklogs   Criterion = "backlogs"
	CriterionDepartment Criterion = "department"
	CriterionBatch      Criterion = "batch"
	CriterionDegree     Criterion = "degree"
)

// StudentEligibility is the part of a student profile the evaluator reads.
type StudentEligibility struct {
	CGPA           float64
	ActiveBacklogs int
	DepartmentID   int64
	BatchYear      int
	Degree         string
}

// JobCriteria is the part of a job posting the evaluator reads. Nil numeric
// limits and empty sets mean the criterion is not imposed.
type JobCriteria struct {
	RequiredCGPA        *float64
	AllowedBacklogs     *int
	EligibleDepartments []int64
	EligibleBatches     []int
	EligibleDegrees     []string
}

// StudentEligibilityOf extracts the evaluator input from a profile.
func StudentEligibilityOf(p *models.StudentProfile) StudentEligibility {
	return StudentEligibility{
		CGPA:           p.CGPA,
		ActiveBacklogs: p.ActiveBacklogs,
		DepartmentID:   p.DepartmentID,
		BatchYear:      p.BatchYear,
		Degree:         p.Degree,
	}
}

// JobCriteriaOf extracts the evaluator input from a posting.
func JobCriteriaOf(j *models.JobPosting) JobCriteria {
	return JobCriteria{
		RequiredCGPA:        j.RequiredCGPA,
		AllowedBacklogs:     j.AllowedBacklogs,
		EligibleDepartments: j.EligibleDepartments,
		EligibleBatches:     j.EligibleBatches,
		EligibleDegrees:     j.EligibleDegrees,
	}
}

// IsEligible reports whether every criterion imposed by job is met by student.
// Job listings shown to students and the apply use case both call this.
func IsEligible(student StudentEligibility, job JobCriteria) bool {
	return len(EligibilityFailures(student, job)) == 0
}

// EligibilityFailures returns the criteria student fails, in a fixed order.
func EligibilityFailures(student StudentEligibility, job JobCriteria) []Criterion {
	var failed []Criterion

	// CGPA is stored as numeric(4,2); compare in hundredths.
	if job.RequiredCGPA != nil && hundredths(student.CGPA) < hundredths(*job.RequiredCGPA) {
		failed = append(failed, CriterionCGPA)
	}
	if job.AllowedBacklogs != nil && student.ActiveBacklogs > *job.AllowedBacklogs {
		failed = append(failed, CriterionBacklogs)
	}
	if len(job.EligibleDepartments) > 0 && !contains(job.EligibleDepartments, student.DepartmentID) {
		failed = append(failed, CriterionDepartment)
	}
	if len(job.EligibleBatches) > 0 && !contains(job.EligibleBatches, student.BatchYear) {
		failed = append(failed, CriterionBatch)
	}
	if len(job.EligibleDegrees) > 0 && !containsDegree(job.EligibleDegrees, student.Degree) {
		failed = append(failed, CriterionDegree)
	}

	return failed
}

// CriteriaStrings converts failures for error details.
func CriteriaStrings(criteria []Criterion) []string {
	out := make([]string, len(criteria))
	for i, c := range criteria {
		out[i] = string(c)
	}
	return out
}

func hundredths(v float64) int64 {
	return int64(math.Round(v * 100))
}

func contains[T comparable](set []T, v T) bool {
	for _, item := range set {
		if item == v {
			return true
		}
	}
	return false
}

func containsDegree(set []string, degree string) bool {
	degree = strings.TrimSpace(degree)
	for _, item := range set {
		if strings.EqualFold(strings.TrimSpace(item), degree) {
			return true
		}
	}
	return false
}
