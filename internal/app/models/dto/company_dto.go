package dto

// CompanyFilterRequest filters the company list
type CompanyFilterRequest struct {
	PageRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved active rejected inactive"`
	Search string `form:"search" binding:"omitempty,max=100"`
}

// CreateCompanyRequest registers a recruiter
type CreateCompanyRequest struct {
	Name        string                  `json:"name" binding:"required,max=200"`
	Industry    string                  `json:"industry" binding:"max=100"`
	Website     *string                 `json:"website,omitempty" binding:"omitempty,url"`
	Description string                  `json:"description" binding:"max=4000"`
	Contacts    []CompanyContactRequest `json:"contacts,omitempty" binding:"omitempty,dive"`
}

// UpdateCompanyRequest changes company details. Nil fields are left unchanged.
type UpdateCompanyRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=1,max=200"`
	Industry    *string `json:"industry,omitempty" binding:"omitempty,max=100"`
	Website     *string `json:"website,omitempty" binding:"omitempty,url"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=4000"`
}

// CompanyStatusRequest moves a company through its approval workflow
type CompanyStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved active rejected inactive"`
}

// CompanyContactRequest adds a contact person
type CompanyContactRequest struct {
	Name        string  `json:"name" binding:"required,max=150"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Designation string  `json:"designation" binding:"max=100"`
	IsPrimary   bool    `json:"isPrimary"`
}
