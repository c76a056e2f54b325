package models

import "time"

// Company is a recruiter registered with the placement cell
type Company struct {
	ID           int64            `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Industry     string           `json:"industry" db:"industry"`
	Website      *string          `json:"website,omitempty" db:"website"`
	Description  string           `json:"description" db:"description"`
	LogoURL      *string          `json:"logoUrl,omitempty" db:"logo_url"`
	Status       CompanyStatus    `json:"status" db:"status"`
	DepartmentID *int64           `json:"departmentId,omitempty" db:"department_id"`
	CreatedBy    int64            `json:"createdBy" db:"created_by"`
	ApprovedBy   *int64           `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt   *time.Time       `json:"approvedAt,omitempty" db:"approved_at"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time        `json:"updatedAt" db:"updated_at"`
	Contacts     []CompanyContact `json:"contacts,omitempty"`
}

// CompanyContact is a person at a company the placement cell talks to
type CompanyContact struct {
	ID          int64   `json:"id" db:"id"`
	CompanyID   int64   `json:"companyId" db:"company_id"`
	Name        string  `json:"name" db:"name"`
	Email       string  `json:"email" db:"email"`
	Phone       *string `json:"phone,omitempty" db:"phone"`
	Designation string  `json:"designation" db:"designation"`
	IsPrimary   bool    `json:"isPrimary" db:"is_primary"`
}
