package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RegisterStudentRequest creates a student account together with its profile
type RegisterStudentRequest struct {
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
	FirstName      string  `json:"firstName" binding:"required,max=100"`
	LastName       string  `json:"lastName" binding:"required,max=100"`
	Phone          *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	DepartmentID   int64   `json:"departmentId" binding:"required,gt=0"`
	RollNumber     string  `json:"rollNumber" binding:"required,rollnumber"`
	Degree         string  `json:"degree" binding:"required,max=32" example:"BTech"`
	BatchYear      int     `json:"batchYear" binding:"required,min=1990,max=2100" example:"2025"`
	CGPA           float64 `json:"cgpa" binding:"min=0,max=10" example:"7.2"`
	ActiveBacklogs int     `json:"activeBacklogs" binding:"min=0"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	DepartmentID *int64 `json:"departmentId,omitempty"`
	StudentID    *int64 `json:"studentId,omitempty"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// ForgotPasswordRequest asks for a password reset mail
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest redeems a mailed reset token
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}
