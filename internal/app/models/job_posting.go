package models

import "time"

// JobPosting is an opening offered by a company
type JobPosting struct {
	ID                  int64      `json:"id" db:"id"`
	CompanyID           int64      `json:"companyId" db:"company_id"`
	CompanyName         string     `json:"companyName,omitempty"`
	Title               string     `json:"title" db:"title"`
	Description         string     `json:"description" db:"description"`
	JobType             JobType    `json:"jobType" db:"job_type"`
	Location            string     `json:"location" db:"location"`
	CTC                 *float64   `json:"ctc,omitempty" db:"ctc"`
	Stipend             *float64   `json:"stipend,omitempty" db:"stipend"`
	RequiredCGPA        *float64   `json:"requiredCgpa,omitempty" db:"required_cgpa"`
	AllowedBacklogs     *int       `json:"allowedBacklogs,omitempty" db:"allowed_backlogs"`
	EligibleDepartments []int64    `json:"eligibleDepartments" db:"eligible_departments"`
	EligibleBatches     []int      `json:"eligibleBatches" db:"eligible_batches"`
	EligibleDegrees     []string   `json:"eligibleDegrees" db:"eligible_degrees"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty" db:"application_deadline"`
	Status              JobStatus  `json:"status" db:"status"`
	DepartmentID        *int64     `json:"departmentId,omitempty" db:"department_id"`
	CreatedBy           int64      `json:"createdBy" db:"created_by"`
	ApprovedBy          *int64     `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt          *time.Time `json:"approvedAt,omitempty" db:"approved_at"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" db:"updated_at"`
}

// AcceptsApplications reports whether the posting is open at time now.
func (j *JobPosting) AcceptsApplications(now time.Time) bool {
	if j.Status != JobActive {
		return false
	}
	return j.ApplicationDeadline == nil || !now.After(*j.ApplicationDeadline)
}
