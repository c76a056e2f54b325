package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// JobController handles job postings
type JobController struct {
	jobService *services.JobService
}

// NewJobController creates a new JobController
func NewJobController(jobService *services.JobService) *JobController {
	return &JobController{jobService: jobService}
}

// List returns a page of postings. Students get only active postings they are
// eligible for.
// @Summary List job postings
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param companyId query int false "Company"
// @Param status query string false "Status filter"
// @Param jobType query string false "full_time, internship or internship_ppo"
// @Param search query string false "Title search"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /jobs [get]
func (c *JobController) List(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var filter dto.JobFilterRequest
	if !bindQuery(ctx, &filter) {
		return
	}
	page, err := c.jobService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// Get returns one posting
// @Summary Get job posting
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=dto.JobResponse}
// @Failure 400 {object} dto.ErrorResponse "Student not eligible"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (c *JobController) Get(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	job, err := c.jobService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, job, "")
}

// Create adds a posting as a draft or submitted for approval
// @Summary Create job posting
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateJobRequest true "Posting"
// @Success 201 {object} dto.APIResponse{data=models.JobPosting}
// @Failure 400 {object} dto.ErrorResponse "Invalid posting or company not approved"
// @Router /jobs [post]
func (c *JobController) Create(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req dto.CreateJobRequest
	if !bindJSON(ctx, &req) {
		return
	}
	job, err := c.jobService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, job, "Job posting created")
}

// Update edits a draft or pending posting
// @Summary Update job posting
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.UpdateJobRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.JobPosting}
// @Router /jobs/{id} [patch]
func (c *JobController) Update(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateJobRequest
	if !bindJSON(ctx, &req) {
		return
	}
	job, err := c.jobService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, job, "Job posting updated")
}

func (c *JobController) transition(ctx *gin.Context, apply func(actor auth.Actor, id int64) (*models.JobPosting, error), message string) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	job, err := apply(actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, job, message)
}

// Approve publishes a pending posting
// @Summary Approve job posting
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.JobPosting}
// @Failure 400 {object} dto.ErrorResponse "Illegal transition"
// @Router /jobs/{id}/approve [post]
func (c *JobController) Approve(ctx *gin.Context) {
	c.transition(ctx, func(actor auth.Actor, id int64) (*models.JobPosting, error) {
		return c.jobService.Approve(ctx.Request.Context(), actor, id)
	}, "Job posting approved")
}

// Close stops an active posting from taking applications
// @Summary Close job posting
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.JobPosting}
// @Router /jobs/{id}/close [post]
func (c *JobController) Close(ctx *gin.Context) {
	c.transition(ctx, func(actor auth.Actor, id int64) (*models.JobPosting, error) {
		return c.jobService.Close(ctx.Request.Context(), actor, id)
	}, "Job posting closed")
}

// Cancel withdraws a posting
// @Summary Cancel job posting
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.JobPosting}
// @Router /jobs/{id}/cancel [post]
func (c *JobController) Cancel(ctx *gin.Context) {
	c.transition(ctx, func(actor auth.Actor, id int64) (*models.JobPosting, error) {
		return c.jobService.Cancel(ctx.Request.Context(), actor, id)
	}, "Job posting cancelled")
}

// EligibleStudents lists the students who meet the posting's criteria
// @Summary Eligible students
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /jobs/{id}/eligible-students [get]
func (c *JobController) EligibleStudents(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.PageRequest
	if !bindQuery(ctx, &req) {
		return
	}
	page, err := c.jobService.EligibleStudents(ctx.Request.Context(), actor, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// ExportApplicants downloads the posting's applications as CSV
// @Summary Export applicants
// @Tags jobs
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {file} file
// @Router /jobs/{id}/applicants/export [get]
func (c *JobController) ExportApplicants(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	sendCSV(ctx, fmt.Sprintf("job-%d-applicants", id), func(w io.Writer) error {
		return c.jobService.ExportApplicants(ctx.Request.Context(), actor, id, w)
	})
}
