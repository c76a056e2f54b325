package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// CompanyController handles recruiting companies
type CompanyController struct {
	companyService *services.CompanyService
}

// NewCompanyController creates a new CompanyController
func NewCompanyController(companyService *services.CompanyService) *CompanyController {
	return &CompanyController{companyService: companyService}
}

// List returns a page of companies visible to the caller
// @Summary List companies
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param status query string false "Status filter"
// @Param search query string false "Name search"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /companies [get]
func (c *CompanyController) List(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var filter dto.CompanyFilterRequest
	if !bindQuery(ctx, &filter) {
		return
	}
	page, err := c.companyService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// Get returns one company with its contacts
// @Summary Get company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Failure 403 {object} dto.ErrorResponse "Outside your scope"
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Router /companies/{id} [get]
func (c *CompanyController) Get(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	company, err := c.companyService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, company, "")
}

// Create registers a company pending approval
// @Summary Create company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCompanyRequest true "Company"
// @Success 201 {object} dto.APIResponse{data=models.Company}
// @Failure 409 {object} dto.ErrorResponse "Company already exists"
// @Router /companies [post]
func (c *CompanyController) Create(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var req dto.CreateCompanyRequest
	if !bindJSON(ctx, &req) {
		return
	}
	company, err := c.companyService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, company, "Company created")
}

// Update edits company details
// @Summary Update company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param request body dto.UpdateCompanyRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Router /companies/{id} [patch]
func (c *CompanyController) Update(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateCompanyRequest
	if !bindJSON(ctx, &req) {
		return
	}
	company, err := c.companyService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, company, "Company updated")
}

// SetStatus approves, activates, rejects or deactivates a company
// @Summary Change company status
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param request body dto.CompanyStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Failure 400 {object} dto.ErrorResponse "Illegal transition"
// @Router /companies/{id}/status [patch]
func (c *CompanyController) SetStatus(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CompanyStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	company, err := c.companyService.SetStatus(ctx.Request.Context(), actor, id, models.CompanyStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, company, "Company status updated")
}

// AddContact adds a contact person
// @Summary Add company contact
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param request body dto.CompanyContactRequest true "Contact"
// @Success 201 {object} dto.APIResponse{data=models.CompanyContact}
// @Router /companies/{id}/contacts [post]
func (c *CompanyController) AddContact(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CompanyContactRequest
	if !bindJSON(ctx, &req) {
		return
	}
	contact, err := c.companyService.AddContact(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, contact, "")
}

// RemoveContact deletes a contact person
// @Summary Remove company contact
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param contactId path int true "Contact ID"
// @Success 200 {object} dto.APIResponse
// @Router /companies/{id}/contacts/{contactId} [delete]
func (c *CompanyController) RemoveContact(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	contactID, ok := parseID(ctx, "contactId")
	if !ok {
		return
	}
	if err := c.companyService.RemoveContact(ctx.Request.Context(), actor, id, contactID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Contact removed")
}

// UploadLogo stores the company logo
// @Summary Upload company logo
// @Tags companies
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param file formData file true "PNG, JPEG or SVG logo"
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse}
// @Router /companies/{id}/logo [post]
func (c *CompanyController) UploadLogo(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		badRequest(ctx, "File is required", err.Error())
		return
	}
	url, err := c.companyService.UploadLogo(ctx.Request.Context(), actor, id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.UploadResponse{URL: url}, "Logo uploaded")
}
