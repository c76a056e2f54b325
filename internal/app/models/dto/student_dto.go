package dto

import "time"

// StudentFilterRequest filters the student directory
type StudentFilterRequest struct {
	PageRequest
	DepartmentID    *int64   `form:"departmentId" binding:"omitempty,gt=0"`
	BatchYear       *int     `form:"batchYear" binding:"omitempty,min=1990,max=2100"`
	PlacementStatus string   `form:"placementStatus" binding:"omitempty,oneof=active placed opted_out"`
	MinCGPA         *float64 `form:"minCgpa" binding:"omitempty,min=0,max=10"`
	Verified        *bool    `form:"verified"`
	Search          string   `form:"search" binding:"omitempty,max=100"`
}

// UpdateStudentProfileRequest is the set of profile fields a student may edit.
// Nil fields are left unchanged.
type UpdateStudentProfileRequest struct {
	FirstName         *string  `json:"firstName,omitempty" binding:"omitempty,min=1,max=100"`
	LastName          *string  `json:"lastName,omitempty" binding:"omitempty,min=1,max=100"`
	Phone             *string  `json:"phone,omitempty" binding:"omitempty,max=20"`
	Degree            *string  `json:"degree,omitempty" binding:"omitempty,min=1,max=32"`
	BatchYear         *int     `json:"batchYear,omitempty" binding:"omitempty,min=1990,max=2100"`
	CGPA              *float64 `json:"cgpa,omitempty" binding:"omitempty,min=0,max=10"`
	TenthPercentage   *float64 `json:"tenthPercentage,omitempty" binding:"omitempty,min=0,max=100"`
	TwelfthPercentage *float64 `json:"twelfthPercentage,omitempty" binding:"omitempty,min=0,max=100"`
	ActiveBacklogs    *int     `json:"activeBacklogs,omitempty" binding:"omitempty,min=0"`
	PlacementStatus   *string  `json:"placementStatus,omitempty" binding:"omitempty,oneof=active opted_out"`
}

// SkillRequest adds a skill to the acting student's profile
type SkillRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Proficiency string `json:"proficiency" binding:"omitempty,oneof=beginner intermediate advanced expert"`
}

// ProjectRequest adds a project to the acting student's profile
type ProjectRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	URL         *string `json:"url,omitempty" binding:"omitempty,url"`
}

// CertificationRequest adds a certification to the acting student's profile
type CertificationRequest struct {
	Name     string     `json:"name" binding:"required,max=200"`
	Issuer   string     `json:"issuer" binding:"required,max=200"`
	IssuedOn *time.Time `json:"issuedOn,omitempty"`
	URL      *string    `json:"url,omitempty" binding:"omitempty,url"`
}

// InternshipRequest adds a past internship to the acting student's profile
type InternshipRequest struct {
	Company     string     `json:"company" binding:"required,max=200"`
	Role        string     `json:"role" binding:"required,max=200"`
	StartDate   time.Time  `json:"startDate" binding:"required"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Description string     `json:"description" binding:"max=2000"`
}

// UploadResponse returns the URL of a stored file
type UploadResponse struct {
	URL string `json:"url"`
}
