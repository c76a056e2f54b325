package repositories

import (
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/dberrors"
)

func referenceError(err error) error {
	name := dberrors.ConstraintName(err)
	switch name {
	case "student_profiles_department_id_fkey", "users_department_id_fkey", "job_postings_department_id_fkey", "companies_department_id_fkey":
		return apperrors.NewValidationError("departmentId", "department does not exist")
	case "job_postings_company_id_fkey":
		return apperrors.NewValidationError("companyId", "company does not exist")
	case "applications_job_id_fkey":
		return apperrors.NewValidationError("jobId", "job posting does not exist")
	case "interviews_application_id_fkey":
		return apperrors.NewValidationError("applicationId", "application does not exist")
	default:
		// Deleting a row that is still referenced
		return apperrors.NewConflictError("record is referenced by other records (" + name + ")")
	}
}

func checkError(err error) error {
	return apperrors.NewValidationError(dberrors.ConstraintName(err), "value violates constraint "+dberrors.ConstraintName(err))
}
