// Package services holds the use cases of the placement portal. Services
// authorize the acting user, apply the placement rules and persist through
// the store interfaces below, which the repositories package implements.
package services

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
)

// Transactor runs fn in one database transaction
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, scope auth.Scope, filter dto.UserFilterRequest, offset uint64, limit int) ([]*models.User, int64, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, userID int64, status models.UserStatus) error
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	Delete(ctx context.Context, userID int64) error
}

// TokenStore persists refresh tokens
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeToken(ctx context.Context, token string) (bool, error)
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// PasswordResetStore persists password reset token digests
type PasswordResetStore interface {
	Create(ctx context.Context, t *models.PasswordResetToken) error
	GetForUpdate(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id int64, at time.Time) error
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DepartmentStore persists departments
type DepartmentStore interface {
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	GetAll(ctx context.Context) ([]*models.Department, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// StudentStore persists student profiles and their child records
type StudentStore interface {
	Create(ctx context.Context, sp *models.StudentProfile) error
	GetByID(ctx context.Context, id int64) (*models.StudentProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*models.StudentProfile, error)
	GetForUpdate(ctx context.Context, id int64) (*models.StudentProfile, error)
	List(ctx context.Context, scope auth.Scope, filter dto.StudentFilterRequest, offset uint64, limit int) ([]*models.StudentProfile, int64, error)
	UpdateAcademic(ctx context.Context, sp *models.StudentProfile) error
	SetVerified(ctx context.Context, id, verifiedBy int64, at time.Time) error
	UpdateResume(ctx context.Context, id int64, url string) error
	UpdatePlacementStatus(ctx context.Context, id int64, status models.PlacementStatus) error
	LoadChildren(ctx context.Context, sp *models.StudentProfile) error
	AddSkill(ctx context.Context, s *models.StudentSkill) error
	AddProject(ctx context.Context, p *models.StudentProject) error
	AddCertification(ctx context.Context, c *models.StudentCertification) error
	AddInternship(ctx context.Context, i *models.StudentInternship) error
	DeleteChild(ctx context.Context, table string, studentID, id int64) error
}

// CompanyStore persists companies and contacts
type CompanyStore interface {
	Create(ctx context.Context, c *models.Company) error
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	List(ctx context.Context, scope auth.Scope, filter dto.CompanyFilterRequest, offset uint64, limit int) ([]*models.Company, int64, error)
	Update(ctx context.Context, c *models.Company) error
	UpdateStatus(ctx context.Context, id int64, status models.CompanyStatus, approvedBy *int64, at time.Time) error
	UpdateLogo(ctx context.Context, id int64, url string) error
	AddContact(ctx context.Context, contact *models.CompanyContact) error
	ListContacts(ctx context.Context, companyID int64) ([]models.CompanyContact, error)
	DeleteContact(ctx context.Context, companyID, contactID int64) error
}

// JobStore persists job postings
type JobStore interface {
	Create(ctx context.Context, j *models.JobPosting) error
	GetByID(ctx context.Context, id int64) (*models.JobPosting, error)
	List(ctx context.Context, scope auth.Scope, filter dto.JobFilterRequest, offset uint64, limit int) ([]*models.JobPosting, int64, error)
	Update(ctx context.Context, j *models.JobPosting) error
	UpdateStatus(ctx context.Context, id int64, status models.JobStatus, approvedBy *int64, at time.Time) error
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
}

// ApplicationStore persists applications
type ApplicationStore interface {
	Create(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.ApplicationDetails, error)
	GetForUpdate(ctx context.Context, id int64) (*models.ApplicationDetails, error)
	ExistsActive(ctx context.Context, studentID, jobID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus, reviewedBy *int64, remarks *string, at time.Time) error
	List(ctx context.Context, scope auth.Scope, filter dto.ApplicationFilterRequest, offset uint64, limit int) ([]*models.ApplicationDetails, int64, error)
	CountByStatus(ctx context.Context, scope auth.Scope) (map[string]int64, error)
}

// InterviewStore persists interviews
type InterviewStore interface {
	Create(ctx context.Context, i *models.Interview) error
	GetByID(ctx context.Context, id int64) (*models.Interview, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Interview, error)
	NextRound(ctx context.Context, applicationID int64) (int, error)
	CancelOpen(ctx context.Context, applicationID int64) (int64, error)
	Update(ctx context.Context, i *models.Interview) error
	List(ctx context.Context, scope auth.Scope, filter dto.InterviewFilterRequest, offset uint64, limit int) ([]*models.Interview, int64, error)
	CountUpcoming(ctx context.Context, scope auth.Scope, from time.Time) (int64, error)
}

// AnnouncementStore persists announcements
type AnnouncementStore interface {
	Create(ctx context.Context, a *models.Announcement) error
	Update(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Announcement, error)
	List(ctx context.Context, scope auth.Scope, where squirrel.And, offset uint64, limit int) ([]*models.Announcement, int64, error)
}

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, scope auth.Scope, unreadOnly bool, offset uint64, limit int) ([]*models.Notification, int64, error)
	GetForUser(ctx context.Context, id, userID int64) (*models.Notification, error)
	MarkRead(ctx context.Context, id, userID int64, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

// DashboardStore runs aggregate counts
type DashboardStore interface {
	CountJobs(ctx context.Context, scope auth.Scope, status models.JobStatus) (int64, error)
	CountCompanies(ctx context.Context, scope auth.Scope, status models.CompanyStatus) (int64, error)
	CountStudents(ctx context.Context, scope auth.Scope, status *models.PlacementStatus) (int64, error)
}

// Clock returns the current time; tests replace it
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
