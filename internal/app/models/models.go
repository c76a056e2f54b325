package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin       RoleType = "admin"
	RoleDeptOfficer RoleType = "dept_officer"
	RoleCoordinator RoleType = "coordinator"
	RoleStudent     RoleType = "student"
)

// Valid reports whether r is a known role.
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleDeptOfficer, RoleCoordinator, RoleStudent:
		return true
	}
	return false
}

// IsStaff reports whether r is one of the placement-cell staff roles.
func (r RoleType) IsStaff() bool {
	return r == RoleAdmin || r == RoleDeptOfficer || r == RoleCoordinator
}

// DepartmentScoped reports whether r only sees rows of its own department.
func (r RoleType) DepartmentScoped() bool {
	return r == RoleDeptOfficer || r == RoleCoordinator
}

// UserStatus is the account state of a user
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// PlacementStatus tracks whether a student is still in the placement pool
type PlacementStatus string

const (
	PlacementActive   PlacementStatus = "active"
	PlacementPlaced   PlacementStatus = "placed"
	PlacementOptedOut PlacementStatus = "opted_out"
)

// CompanyStatus is the approval workflow state of a recruiter
type CompanyStatus string

const (
	CompanyPending  CompanyStatus = "pending"
	CompanyApproved CompanyStatus = "approved"
	CompanyActive   CompanyStatus = "active"
	CompanyRejected CompanyStatus = "rejected"
	CompanyInactive CompanyStatus = "inactive"
)

// CanPost reports whether a company in this state may own open job postings.
func (s CompanyStatus) CanPost() bool {
	return s == CompanyApproved || s == CompanyActive
}

// JobStatus is the lifecycle state of a job posting
type JobStatus string

const (
	JobDraft     JobStatus = "draft"
	JobPending   JobStatus = "pending"
	JobActive    JobStatus = "active"
	JobClosed    JobStatus = "closed"
	JobCancelled JobStatus = "cancelled"
)

// JobType classifies a job posting
type JobType string

const (
	JobTypeFullTime      JobType = "full_time"
	JobTypeInternship    JobType = "internship"
	JobTypeInternshipPPO JobType = "internship_ppo"
)

// ApplicationStatus is the state of a student's application
type ApplicationStatus string

const (
	ApplicationSubmitted          ApplicationStatus = "submitted"
	ApplicationUnderReview        ApplicationStatus = "under_review"
	ApplicationShortlisted        ApplicationStatus = "shortlisted"
	ApplicationInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationSelected           ApplicationStatus = "selected"
	ApplicationOfferAccepted      ApplicationStatus = "offer_accepted"
	ApplicationRejected           ApplicationStatus = "rejected"
	ApplicationWithdrawn          ApplicationStatus = "withdrawn"
)

// ApplicationStatuses lists every application status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationSubmitted,
	ApplicationUnderReview,
	ApplicationShortlisted,
	ApplicationInterviewScheduled,
	ApplicationSelected,
	ApplicationOfferAccepted,
	ApplicationRejected,
	ApplicationWithdrawn,
}

// InterviewStatus is the scheduling state of an interview
type InterviewStatus string

const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewRescheduled InterviewStatus = "rescheduled"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
)

// InterviewResult is the outcome recorded for an interview
type InterviewResult string

const (
	ResultPending  InterviewResult = "pending"
	ResultPassed   InterviewResult = "passed"
	ResultFailed   InterviewResult = "failed"
	ResultSelected InterviewResult = "selected"
	ResultRejected InterviewResult = "rejected"
	ResultOnHold   InterviewResult = "on_hold"
)

// InterviewType is the kind of interview round
type InterviewType string

const (
	InterviewTechnical       InterviewType = "technical"
	InterviewHR              InterviewType = "hr"
	InterviewGroupDiscussion InterviewType = "group_discussion"
	InterviewAptitude        InterviewType = "aptitude"
	InterviewOther           InterviewType = "other"
)

// InterviewMode tells whether the candidate attends online or on site
type InterviewMode string

const (
	InterviewOnline  InterviewMode = "online"
	InterviewOffline InterviewMode = "offline"
)

// AnnouncementPriority orders announcements on the notice board
type AnnouncementPriority string

const (
	PriorityLow    AnnouncementPriority = "low"
	PriorityNormal AnnouncementPriority = "normal"
	PriorityHigh   AnnouncementPriority = "high"
	PriorityUrgent AnnouncementPriority = "urgent"
)

// NotificationKind identifies the template used for a notification
type NotificationKind string

const (
	NotifyApplicationStatus  NotificationKind = "application_status"
	NotifyInterviewScheduled NotificationKind = "interview_scheduled"
	NotifyInterviewUpdated   NotificationKind = "interview_rescheduled"
	NotifyInterviewResult    NotificationKind = "interview_result"
	NotifyJobApproved        NotificationKind = "job_approved"
	NotifyCompanyStatus      NotificationKind = "company_status"
	NotifyProfileVerified    NotificationKind = "profile_verified"
)
