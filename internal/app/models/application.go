package models

import "time"

// Application links a student to a job posting
type Application struct {
	ID          int64             `json:"id" db:"id"`
	StudentID   int64             `json:"studentId" db:"student_id"`
	JobID       int64             `json:"jobId" db:"job_id"`
	Status      ApplicationStatus `json:"status" db:"status"`
	CoverLetter *string           `json:"coverLetter,omitempty" db:"cover_letter"`
	ResumeURL   *string           `json:"resumeUrl,omitempty" db:"resume_url"`
	ReviewedBy  *int64            `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt  *time.Time        `json:"reviewedAt,omitempty" db:"reviewed_at"`
	Remarks     *string           `json:"remarks,omitempty" db:"remarks"`
	AppliedAt   time.Time         `json:"appliedAt" db:"applied_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}

// ApplicationDetails is an application joined with its student and job
type ApplicationDetails struct {
	Application
	StudentUserID       int64   `json:"studentUserId"`
	StudentName         string  `json:"studentName"`
	StudentEmail        string  `json:"studentEmail"`
	RollNumber          string  `json:"rollNumber"`
	StudentDepartmentID int64   `json:"studentDepartmentId"`
	CGPA                float64 `json:"cgpa"`
	JobTitle            string  `json:"jobTitle"`
	CompanyID           int64   `json:"companyId"`
	CompanyName         string  `json:"companyName"`
}
