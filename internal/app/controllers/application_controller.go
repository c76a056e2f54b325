package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// ApplicationController handles job applications
type ApplicationController struct {
	applicationService *services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService *services.ApplicationService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService}
}

// Apply submits an application for the caller
// @Summary Apply to a job
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApplyRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=models.ApplicationDetails}
// @Failure 400 {object} dto.ErrorResponse "Not eligible or job not open"
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Router /applications [post]
func (c *ApplicationController) Apply(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req dto.ApplyRequest
	if !bindJSON(ctx, &req) {
		return
	}
	app, err := c.applicationService.Apply(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, app, "Application submitted")
}

// List returns a page of applications in the caller's scope
// @Summary List applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param jobId query int false "Job"
// @Param companyId query int false "Company"
// @Param studentId query int false "Student"
// @Param status query string false "Status"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var filter dto.ApplicationFilterRequest
	if !bindQuery(ctx, &filter) {
		return
	}
	page, err := c.applicationService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// Export downloads the filtered applications as CSV
// @Summary Export applications
// @Tags applications
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /applications/export [get]
func (c *ApplicationController) Export(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var filter dto.ApplicationFilterRequest
	if !bindQuery(ctx, &filter) {
		return
	}
	sendCSV(ctx, "applications", func(w io.Writer) error {
		return c.applicationService.Export(ctx.Request.Context(), actor, filter, w)
	})
}

// Get returns one application
// @Summary Get application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.ApplicationDetails}
// @Failure 403 {object} dto.ErrorResponse "Outside your scope"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	app, err := c.applicationService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, app, "")
}

// UpdateStatus moves an application through the hiring pipeline
// @Summary Update application status
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.ApplicationDetails}
// @Failure 400 {object} dto.ErrorResponse "Illegal transition"
// @Router /applications/{id}/status [patch]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	app, err := c.applicationService.UpdateStatus(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, app, "Application status updated")
}

// Withdraw lets the owning student withdraw
// @Summary Withdraw application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.ApplicationDetails}
// @Failure 400 {object} dto.ErrorResponse "Illegal transition"
// @Failure 403 {object} dto.ErrorResponse "Not your application"
// @Router /applications/{id}/withdraw [post]
func (c *ApplicationController) Withdraw(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	app, err := c.applicationService.Withdraw(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, app, "Application withdrawn")
}
