package dto

// UserFilterRequest represents user filtering parameters
type UserFilterRequest struct {
	PageRequest
	Role         string `form:"role" binding:"omitempty,oneof=admin dept_officer coordinator student"`
	Status       string `form:"status" binding:"omitempty,oneof=active inactive suspended"`
	DepartmentID *int64 `form:"departmentId" binding:"omitempty,gt=0"`
	Search       string `form:"search" binding:"omitempty,max=100"`
}

// CreateStaffRequest creates an admin, department officer or coordinator
type CreateStaffRequest struct {
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=8"`
	FirstName    string  `json:"firstName" binding:"required,max=100"`
	LastName     string  `json:"lastName" binding:"required,max=100"`
	Phone        *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Role         string  `json:"role" binding:"required,oneof=admin dept_officer coordinator"`
	DepartmentID *int64  `json:"departmentId,omitempty" binding:"omitempty,gt=0"`
}

// UpdateUserStatusRequest activates, deactivates or suspends an account
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}
