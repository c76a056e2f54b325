package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// profileSections maps the URL segment to the child table it edits.
var profileSections = map[string]string{
	"skills":         repositories.ChildSkills,
	"projects":       repositories.ChildProjects,
	"certifications": repositories.ChildCertifications,
	"internships":    repositories.ChildInternships,
}

// StudentController handles student profiles
type StudentController struct {
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// List returns a page of student profiles in the caller's scope
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param departmentId query int false "Department"
// @Param batchYear query int false "Batch year"
// @Param placementStatus query string false "active, placed or opted_out"
// @Param minCgpa query number false "Minimum CGPA"
// @Param verified query bool false "Verification state"
// @Param search query string false "Name or roll number"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /students [get]
func (c *StudentController) List(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var filter dto.StudentFilterRequest
	if !bindQuery(ctx, &filter) {
		return
	}
	page, err := c.studentService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// Export downloads the filtered student list as CSV
// @Summary Export students
// @Tags students
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /students/export [get]
func (c *StudentController) Export(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var filter dto.StudentFilterRequest
	if !bindQuery(ctx, &filter) {
		return
	}
	sendCSV(ctx, "students", func(w io.Writer) error {
		return c.studentService.Export(ctx.Request.Context(), actor, filter, w)
	})
}

// Me returns the caller's own profile
// @Summary My student profile
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile}
// @Failure 403 {object} dto.ErrorResponse "Not a student"
// @Router /students/me [get]
func (c *StudentController) Me(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	profile, err := c.studentService.Me(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile, "")
}

// Get returns one profile with its skills, projects, certifications and
// internships
// @Summary Get student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student profile ID"
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile}
// @Failure 403 {object} dto.ErrorResponse "Outside your scope"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) Get(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	profile, err := c.studentService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile, "")
}

// Update edits a profile
// @Summary Update student profile
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student profile ID"
// @Param request body dto.UpdateStudentProfileRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile}
// @Failure 403 {object} dto.ErrorResponse "Not your profile"
// @Router /students/{id} [patch]
func (c *StudentController) Update(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateStudentProfileRequest
	if !bindJSON(ctx, &req) {
		return
	}
	profile, err := c.studentService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile, "Profile updated")
}

// Verify marks a profile verified
// @Summary Verify student profile
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student profile ID"
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /students/{id}/verify [post]
func (c *StudentController) Verify(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	profile, err := c.studentService.Verify(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile, "Profile verified")
}

// AddSkill adds a skill to the caller's profile
// @Summary Add skill
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SkillRequest true "Skill"
// @Success 201 {object} dto.APIResponse{data=models.StudentSkill}
// @Router /students/me/skills [post]
func (c *StudentController) AddSkill(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req dto.SkillRequest
	if !bindJSON(ctx, &req) {
		return
	}
	skill, err := c.studentService.AddSkill(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, skill, "")
}

// AddProject adds a project to the caller's profile
// @Summary Add project
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProjectRequest true "Project"
// @Success 201 {object} dto.APIResponse{data=models.StudentProject}
// @Router /students/me/projects [post]
func (c *StudentController) AddProject(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req dto.ProjectRequest
	if !bindJSON(ctx, &req) {
		return
	}
	project, err := c.studentService.AddProject(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, project, "")
}

// AddCertification adds a certification to the caller's profile
// @Summary Add certification
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CertificationRequest true "Certification"
// @Success 201 {object} dto.APIResponse{data=models.StudentCertification}
// @Router /students/me/certifications [post]
func (c *StudentController) AddCertification(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req dto.CertificationRequest
	if !bindJSON(ctx, &req) {
		return
	}
	cert, err := c.studentService.AddCertification(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, cert, "")
}

// AddInternship adds an internship to the caller's profile
// @Summary Add internship
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InternshipRequest true "Internship"
// @Success 201 {object} dto.APIResponse{data=models.StudentInternship}
// @Router /students/me/internships [post]
func (c *StudentController) AddInternship(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req dto.InternshipRequest
	if !bindJSON(ctx, &req) {
		return
	}
	internship, err := c.studentService.AddInternship(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, internship, "")
}

// RemoveItem deletes a skill, project, certification or internship
// @Summary Remove profile item
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param section path string true "skills, projects, certifications or internships"
// @Param itemId path int true "Item ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Item not found"
// @Router /students/me/{section}/{itemId} [delete]
func (c *StudentController) RemoveItem(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	table, known := profileSections[ctx.Param("section")]
	if !known {
		badRequest(ctx, "Unknown profile section", "section must be skills, projects, certifications or internships")
		return
	}
	id, ok := parseID(ctx, "itemId")
	if !ok {
		return
	}
	if err := c.studentService.RemoveChild(ctx.Request.Context(), actor, table, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Removed")
}

// UploadResume stores the caller's resume
// @Summary Upload resume
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "PDF resume"
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Not a PDF or too large"
// @Router /students/me/resume [post]
func (c *StudentController) UploadResume(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		badRequest(ctx, "File is required", err.Error())
		return
	}
	url, err := c.studentService.UploadResume(ctx.Request.Context(), actor, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.UploadResponse{URL: url}, "Resume uploaded")
}
