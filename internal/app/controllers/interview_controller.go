package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// InterviewController handles interview rounds
type InterviewController struct {
	interviewService *services.InterviewService
}

// NewInterviewController creates a new InterviewController
func NewInterviewController(interviewService *services.InterviewService) *InterviewController {
	return &InterviewController{interviewService: interviewService}
}

// Schedule creates an interview round
// @Summary Schedule interview
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ScheduleInterviewRequest true "Interview"
// @Success 201 {object} dto.APIResponse{data=models.Interview}
// @Failure 400 {object} dto.ErrorResponse "Application cannot be interviewed"
// @Failure 409 {object} dto.ErrorResponse "Round already scheduled"
// @Router /interviews [post]
func (c *InterviewController) Schedule(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req dto.ScheduleInterviewRequest
	if !bindJSON(ctx, &req) {
		return
	}
	interview, err := c.interviewService.Schedule(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, interview, "Interview scheduled")
}

// List returns a page of interviews in the caller's scope
// @Summary List interviews
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param applicationId query int false "Application"
// @Param jobId query int false "Job"
// @Param status query string false "Status"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /interviews [get]
func (c *InterviewController) List(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var filter dto.InterviewFilterRequest
	if !bindQuery(ctx, &filter) {
		return
	}
	page, err := c.interviewService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// Get returns one interview
// @Summary Get interview
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Interview ID"
// @Success 200 {object} dto.APIResponse{data=models.Interview}
// @Failure 404 {object} dto.ErrorResponse "Interview not found"
// @Router /interviews/{id} [get]
func (c *InterviewController) Get(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	interview, err := c.interviewService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, interview, "")
}

// Update changes an open interview; moving it marks it rescheduled
// @Summary Update interview
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Interview ID"
// @Param request body dto.UpdateInterviewRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.Interview}
// @Router /interviews/{id} [patch]
func (c *InterviewController) Update(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateInterviewRequest
	if !bindJSON(ctx, &req) {
		return
	}
	interview, err := c.interviewService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, interview, "Interview updated")
}

// RecordResult completes an interview and updates its application
// @Summary Record interview result
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Interview ID"
// @Param request body dto.InterviewResultRequest true "Result"
// @Success 200 {object} dto.APIResponse{data=dto.InterviewResultResponse}
// @Failure 400 {object} dto.ErrorResponse "Illegal transition"
// @Router /interviews/{id}/result [post]
func (c *InterviewController) RecordResult(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.InterviewResultRequest
	if !bindJSON(ctx, &req) {
		return
	}
	interview, app, err := c.interviewService.RecordResult(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.InterviewResultResponse{Interview: interview, Application: app}, "Result recorded")
}

// Confirm returns a rescheduled interview to scheduled
// @Summary Confirm rescheduled interview
// @Description Settles a rescheduled interview at its current slot and notifies the candidate
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Interview ID"
// @Success 200 {object} dto.APIResponse{data=models.Interview}
// @Failure 400 {object} dto.ErrorResponse "Interview is not rescheduled"
// @Router /interviews/{id}/confirm [post]
func (c *InterviewController) Confirm(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	interview, err := c.interviewService.Confirm(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, interview, "Interview confirmed")
}

// Cancel cancels an open interview
// @Summary Cancel interview
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Interview ID"
// @Success 200 {object} dto.APIResponse{data=models.Interview}
// @Router /interviews/{id}/cancel [post]
func (c *InterviewController) Cancel(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	interview, err := c.interviewService.Cancel(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, interview, "Interview cancelled")
}
