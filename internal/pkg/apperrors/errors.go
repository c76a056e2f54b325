package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrTokenNotFound        = errors.New("token not found")
	ErrTokenRevoked         = errors.New("token revoked")
	ErrAccountDisabled      = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Rule errors
	ErrIneligible        = errors.New("not eligible for this resource")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Entity errors wrap the generic kinds so that errors.Is matches both the
// specific sentinel and its HTTP category.
var (
	ErrUserNotFound            = kind(ErrResourceNotFound, "user not found")
	ErrStudentNotFound         = kind(ErrResourceNotFound, "student not found")
	ErrDepartmentNotFound      = kind(ErrResourceNotFound, "department not found")
	ErrCompanyNotFound         = kind(ErrResourceNotFound, "company not found")
	ErrContactNotFound         = kind(ErrResourceNotFound, "company contact not found")
	ErrJobNotFound             = kind(ErrResourceNotFound, "job posting not found")
	ErrApplicationNotFound     = kind(ErrResourceNotFound, "application not found")
	ErrInterviewNotFound       = kind(ErrResourceNotFound, "interview not found")
	ErrAnnouncementNotFound    = kind(ErrResourceNotFound, "announcement not found")
	ErrNotificationNotFound    = kind(ErrResourceNotFound, "notification not found")
	ErrEmailAlreadyExists      = kind(ErrConflict, "email already exists")
	ErrRollNumberAlreadyExists = kind(ErrConflict, "roll number already exists")
	ErrDepartmentAlreadyExists = kind(ErrConflict, "department with this name or code already exists")
	ErrDepartmentHasRelations  = kind(ErrConflict, "department has associated data and cannot be deleted")
	ErrCompanyAlreadyExists    = kind(ErrConflict, "company with this name already exists")
	ErrDuplicateApplication    = kind(ErrConflict, "an active application for this job already exists")
	ErrJobNotOpen              = kind(ErrValidationFailed, "job posting is not accepting applications")
	ErrProfileIncomplete       = kind(ErrValidationFailed, "student profile is missing data required for eligibility")
)

func kind(base error, message string) error {
	return &CustomError{Err: base, Message: message}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError wraps ErrValidationFailed with the offending field.
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// NewIllegalTransitionError reports a rejected status change.
func NewIllegalTransitionError(from, to string) error {
	return &CustomError{
		Err:     ErrIllegalTransition,
		Message: "cannot move from " + from + " to " + to,
		Details: map[string]interface{}{"from": from, "to": to},
	}
}

// NewIneligibleError lists the criteria the student failed.
func NewIneligibleError(failed []string) error {
	return &CustomError{
		Err:     ErrIneligible,
		Message: "student does not meet the eligibility criteria of this job",
		Details: map[string]interface{}{"failedCriteria": failed},
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
