package dto

// DepartmentRequest creates or updates a department
type DepartmentRequest struct {
	Code string `json:"code" binding:"required,deptcode" example:"CSE"`
	Name string `json:"name" binding:"required,max=150" example:"Computer Science and Engineering"`
}
