package dto

// ApplyRequest submits an application for the acting student
type ApplyRequest struct {
	JobID       int64   `json:"jobId" binding:"required,gt=0"`
	CoverLetter *string `json:"coverLetter,omitempty" binding:"omitempty,max=5000"`
}

// ApplicationFilterRequest filters the application list
type ApplicationFilterRequest struct {
	PageRequest
	JobID     *int64 `form:"jobId" binding:"omitempty,gt=0"`
	CompanyID *int64 `form:"companyId" binding:"omitempty,gt=0"`
	StudentID *int64 `form:"studentId" binding:"omitempty,gt=0"`
	Status    string `form:"status" binding:"omitempty,oneof=submitted under_review shortlisted interview_scheduled selected offer_accepted rejected withdrawn"`
}

// UpdateApplicationStatusRequest is a staff status change
type UpdateApplicationStatusRequest struct {
	Status  string  `json:"status" binding:"required,oneof=under_review shortlisted interview_scheduled selected offer_accepted rejected"`
	Remarks *string `json:"remarks,omitempty" binding:"omitempty,max=2000"`
}
