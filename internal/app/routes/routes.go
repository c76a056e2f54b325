package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/controllers"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/middleware"
)

// Controllers groups the handlers the route table binds.
type Controllers struct {
	Auth          *controllers.AuthController
	PasswordReset *controllers.PasswordResetController
	User          *controllers.UserController
	Department    *controllers.DepartmentController
	Student       *controllers.StudentController
	Company       *controllers.CompanyController
	Job           *controllers.JobController
	Application   *controllers.ApplicationController
	Interview     *controllers.InterviewController
	Announcement  *controllers.AnnouncementController
	Notification  *controllers.NotificationController
	Dashboard     *controllers.DashboardController
	HealthChecker func(c *gin.Context) error
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/health", func(c *gin.Context) {
		if h.HealthChecker != nil {
			if err := h.HealthChecker(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
					dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unreachable")))
				return
			}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", h.Auth.Register)
		authRoutes.POST("/login", h.Auth.Login)
		authRoutes.POST("/refresh", h.Auth.RefreshToken)
		authRoutes.POST("/logout", h.Auth.Logout)
		if h.PasswordReset != nil {
			authRoutes.POST("/password/forgot", h.PasswordReset.ForgotPassword)
			authRoutes.POST("/password/reset", h.PasswordReset.ResetPassword)
		}
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	can := authMiddleware.RequirePermission

	authenticated.GET("/auth/me", h.Auth.Me)
	authenticated.PUT("/auth/password", h.Auth.ChangePassword)
	authenticated.GET("/dashboard", h.Dashboard.Get)

	users := authenticated.Group("/users")
	{
		users.GET("", can(auth.ResourceUsers, auth.ActionRead), h.User.List)
		users.POST("", can(auth.ResourceUsers, auth.ActionCreate), h.User.CreateStaff)
		users.GET("/:id", can(auth.ResourceUsers, auth.ActionRead), h.User.Get)
		users.PATCH("/:id/status", can(auth.ResourceUsers, auth.ActionUpdate), h.User.UpdateStatus)
		users.DELETE("/:id", can(auth.ResourceUsers, auth.ActionDelete), h.User.Delete)
	}

	departments := authenticated.Group("/departments")
	{
		departments.GET("", can(auth.ResourceDepartments, auth.ActionRead), h.Department.List)
		departments.GET("/:id", can(auth.ResourceDepartments, auth.ActionRead), h.Department.Get)
		departments.POST("", can(auth.ResourceDepartments, auth.ActionCreate), h.Department.Create)
		departments.PUT("/:id", can(auth.ResourceDepartments, auth.ActionUpdate), h.Department.Update)
		departments.DELETE("/:id", can(auth.ResourceDepartments, auth.ActionDelete), h.Department.Delete)
	}

	students := authenticated.Group("/students")
	{
		students.GET("", can(auth.ResourceStudents, auth.ActionRead), h.Student.List)
		students.GET("/export", can(auth.ResourceStudents, auth.ActionExport), h.Student.Export)

		// Own-profile routes; the service checks the caller is a student.
		students.GET("/me", h.Student.Me)
		students.POST("/me/skills", h.Student.AddSkill)
		students.POST("/me/projects", h.Student.AddProject)
		students.POST("/me/certifications", h.Student.AddCertification)
		students.POST("/me/internships", h.Student.AddInternship)
		students.DELETE("/me/:section/:itemId", h.Student.RemoveItem)
		students.POST("/me/resume", h.Student.UploadResume)

		students.GET("/:id", can(auth.ResourceStudents, auth.ActionRead), h.Student.Get)
		students.PATCH("/:id", can(auth.ResourceStudents, auth.ActionUpdate), h.Student.Update)
		students.POST("/:id/verify", can(auth.ResourceStudents, auth.ActionApprove), h.Student.Verify)
	}

	companies := authenticated.Group("/companies")
	{
		companies.GET("", can(auth.ResourceCompanies, auth.ActionRead), h.Company.List)
		companies.POST("", can(auth.ResourceCompanies, auth.ActionCreate), h.Company.Create)
		companies.GET("/:id", can(auth.ResourceCompanies, auth.ActionRead), h.Company.Get)
		companies.PATCH("/:id", can(auth.ResourceCompanies, auth.ActionUpdate), h.Company.Update)
		companies.PATCH("/:id/status", can(auth.ResourceCompanies, auth.ActionApprove), h.Company.SetStatus)
		companies.POST("/:id/contacts", can(auth.ResourceCompanies, auth.ActionUpdate), h.Company.AddContact)
		companies.DELETE("/:id/contacts/:contactId", can(auth.ResourceCompanies, auth.ActionUpdate), h.Company.RemoveContact)
		companies.POST("/:id/logo", can(auth.ResourceCompanies, auth.ActionUpdate), h.Company.UploadLogo)
	}

	jobs := authenticated.Group("/jobs")
	{
		jobs.GET("", can(auth.ResourceJobs, auth.ActionRead), h.Job.List)
		jobs.POST("", can(auth.ResourceJobs, auth.ActionCreate), h.Job.Create)
		jobs.GET("/:id", can(auth.ResourceJobs, auth.ActionRead), h.Job.Get)
		jobs.PATCH("/:id", can(auth.ResourceJobs, auth.ActionUpdate), h.Job.Update)
		jobs.POST("/:id/approve", can(auth.ResourceJobs, auth.ActionApprove), h.Job.Approve)
		jobs.POST("/:id/close", can(auth.ResourceJobs, auth.ActionUpdate), h.Job.Close)
		jobs.POST("/:id/cancel", can(auth.ResourceJobs, auth.ActionUpdate), h.Job.Cancel)
		jobs.GET("/:id/eligible-students", can(auth.ResourceStudents, auth.ActionRead), h.Job.EligibleStudents)
		jobs.GET("/:id/applicants/export", can(auth.ResourceApplications, auth.ActionExport), h.Job.ExportApplicants)
	}

	applications := authenticated.Group("/applications")
	{
		applications.GET("", can(auth.ResourceApplications, auth.ActionRead), h.Application.List)
		applications.POST("", can(auth.ResourceApplications, auth.ActionCreate), h.Application.Apply)
		applications.GET("/export", can(auth.ResourceApplications, auth.ActionExport), h.Application.Export)
		applications.GET("/:id", can(auth.ResourceApplications, auth.ActionRead), h.Application.Get)
		applications.PATCH("/:id/status", can(auth.ResourceApplications, auth.ActionUpdate), h.Application.UpdateStatus)
		applications.POST("/:id/withdraw", can(auth.ResourceApplications, auth.ActionWithdraw), h.Application.Withdraw)
	}

	interviews := authenticated.Group("/interviews")
	{
		interviews.GET("", can(auth.ResourceInterviews, auth.ActionRead), h.Interview.List)
		interviews.POST("", can(auth.ResourceInterviews, auth.ActionCreate), h.Interview.Schedule)
		interviews.GET("/:id", can(auth.ResourceInterviews, auth.ActionRead), h.Interview.Get)
		interviews.PATCH("/:id", can(auth.ResourceInterviews, auth.ActionUpdate), h.Interview.Update)
		interviews.POST("/:id/result", can(auth.ResourceInterviews, auth.ActionUpdate), h.Interview.RecordResult)
		interviews.POST("/:id/confirm", can(auth.ResourceInterviews, auth.ActionUpdate), h.Interview.Confirm)
		interviews.POST("/:id/cancel", can(auth.ResourceInterviews, auth.ActionUpdate), h.Interview.Cancel)
	}

	announcements := authenticated.Group("/announcements")
	{
		announcements.GET("", can(auth.ResourceAnnouncements, auth.ActionRead), h.Announcement.Feed)
		announcements.GET("/managed", can(auth.ResourceAnnouncements, auth.ActionCreate), h.Announcement.Managed)
		announcements.POST("", can(auth.ResourceAnnouncements, auth.ActionCreate), h.Announcement.Create)
		announcements.GET("/:id", can(auth.ResourceAnnouncements, auth.ActionRead), h.Announcement.Get)
		announcements.PUT("/:id", can(auth.ResourceAnnouncements, auth.ActionUpdate), h.Announcement.Update)
		announcements.DELETE("/:id", can(auth.ResourceAnnouncements, auth.ActionDelete), h.Announcement.Delete)
	}

	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", can(auth.ResourceNotifications, auth.ActionRead), h.Notification.List)
		notifications.GET("/stream", can(auth.ResourceNotifications, auth.ActionRead), h.Notification.Stream)
		notifications.GET("/unread-count", can(auth.ResourceNotifications, auth.ActionRead), h.Notification.UnreadCount)
		notifications.POST("/read-all", can(auth.ResourceNotifications, auth.ActionUpdate), h.Notification.MarkAllRead)
		notifications.POST("/:id/read", can(auth.ResourceNotifications, auth.ActionUpdate), h.Notification.MarkRead)
	}
}
