package dto

import "time"

// JobFilterRequest filters the job list
type JobFilterRequest struct {
	PageRequest
	CompanyID *int64 `form:"companyId" binding:"omitempty,gt=0"`
	Status    string `form:"status" binding:"omitempty,oneof=draft pending active closed cancelled"`
	JobType   string `form:"jobType" binding:"omitempty,oneof=full_time internship internship_ppo"`
	Search    string `form:"search" binding:"omitempty,max=100"`
}

// CreateJobRequest creates a job posting. SubmitForApproval moves it straight
// to pending instead of draft.
type CreateJobRequest struct {
	CompanyID           int64      `json:"companyId" binding:"required,gt=0"`
	Title               string     `json:"title" binding:"required,max=200"`
	Description         string     `json:"description" binding:"required"`
	JobType             string     `json:"jobType" binding:"required,oneof=full_time internship internship_ppo"`
	Location            string     `json:"location" binding:"max=200"`
	CTC                 *float64   `json:"ctc,omitempty" binding:"omitempty,min=0"`
	Stipend             *float64   `json:"stipend,omitempty" binding:"omitempty,min=0"`
	RequiredCGPA        *float64   `json:"requiredCgpa,omitempty" binding:"omitempty,min=0,max=10"`
	AllowedBacklogs     *int       `json:"allowedBacklogs,omitempty" binding:"omitempty,min=0"`
	EligibleDepartments []int64    `json:"eligibleDepartments,omitempty" binding:"omitempty,dive,gt=0"`
	EligibleBatches     []int      `json:"eligibleBatches,omitempty" binding:"omitempty,dive,min=1990,max=2100"`
	EligibleDegrees     []string   `json:"eligibleDegrees,omitempty" binding:"omitempty,dive,min=1,max=32"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
	SubmitForApproval   bool       `json:"submitForApproval"`
}

// UpdateJobRequest changes a draft, pending or active posting. Nil fields are
// left unchanged; empty slices clear a set criterion.
type UpdateJobRequest struct {
	Title               *string    `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description         *string    `json:"description,omitempty"`
	JobType             *string    `json:"jobType,omitempty" binding:"omitempty,oneof=full_time internship internship_ppo"`
	Location            *string    `json:"location,omitempty" binding:"omitempty,max=200"`
	CTC                 *float64   `json:"ctc,omitempty" binding:"omitempty,min=0"`
	Stipend             *float64   `json:"stipend,omitempty" binding:"omitempty,min=0"`
	RequiredCGPA        *float64   `json:"requiredCgpa,omitempty" binding:"omitempty,min=0,max=10"`
	AllowedBacklogs     *int       `json:"allowedBacklogs,omitempty" binding:"omitempty,min=0"`
	EligibleDepartments *[]int64   `json:"eligibleDepartments,omitempty"`
	EligibleBatches     *[]int     `json:"eligibleBatches,omitempty"`
	EligibleDegrees     *[]string  `json:"eligibleDegrees,omitempty"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
	SubmitForApproval   bool       `json:"submitForApproval"`

	// These lift a constraint; the matching field must then be omitted.
	ClearRequiredCGPA        bool `json:"clearRequiredCgpa"`
	ClearAllowedBacklogs     bool `json:"clearAllowedBacklogs"`
	ClearApplicationDeadline bool `json:"clearApplicationDeadline"`
}

// JobResponse is a posting plus, for students, whether they may apply
type JobResponse struct {
	Job      interface{} `json:"job"`
	Eligible *bool       `json:"eligible,omitempty"`
	Failed   []string    `json:"failedCriteria,omitempty"`
}
