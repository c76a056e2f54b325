package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/domain"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/filestorage"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// CompanyService manages recruiters and their approval workflow
type CompanyService struct {
	tx          Transactor
	companyRepo CompanyStore
	storage     filestorage.FileStorage
	authz       *auth.AuthorizationService
	notifier    Dispatcher
	clock       Clock
	logger      zerolog.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(
	tx Transactor,
	companyRepo CompanyStore,
	storage filestorage.FileStorage,
	authz *auth.AuthorizationService,
	notifier Dispatcher,
	logger zerolog.Logger,
) *CompanyService {
	return &CompanyService{
		tx:          tx,
		companyRepo: companyRepo,
		storage:     storage,
		authz:       authz,
		notifier:    notifier,
		logger:      logger,
	}
}

// List returns a page of companies visible to the actor.
func (s *CompanyService) List(ctx context.Context, actor auth.Actor, filter dto.CompanyFilterRequest) (*dto.PaginatedResponse, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceCompanies)
	if err != nil {
		return nil, err
	}

	page, size := helpers.NormalizePage(filter.PageRequest)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	companies, total, err := s.companyRepo.List(ctx, scope, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	resp := helpers.Paginate(companies, total, page, size)
	return &resp, nil
}

// Get returns a company with its contacts.
func (s *CompanyService) Get(ctx context.Context, actor auth.Actor, id int64) (*models.Company, error) {
	company, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	contacts, err := s.companyRepo.ListContacts(ctx, id)
	if err != nil {
		return nil, err
	}
	company.Contacts = contacts
	return company, nil
}

func (s *CompanyService) visible(ctx context.Context, actor auth.Actor, id int64) (*models.Company, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceCompanies)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.AllowsCompany(company) {
		return nil, apperrors.NewForbiddenError("company is outside your scope")
	}
	return company, nil
}

// Create registers a company. It starts pending and belongs to the creator's
// department.
func (s *CompanyService) Create(ctx context.Context, actor auth.Actor, req *dto.CreateCompanyRequest) (*models.Company, error) {
	if err := s.authz.Require(actor, auth.ResourceCompanies, auth.ActionCreate); err != nil {
		return nil, err
	}

	company := &models.Company{
		Name:         strings.TrimSpace(req.Name),
		Industry:     strings.TrimSpace(req.Industry),
		Website:      helpers.TrimmedPtr(req.Website),
		Description:  req.Description,
		Status:       models.CompanyPending,
		DepartmentID: actor.DepartmentID,
		CreatedBy:    actor.UserID,
	}
	for _, c := range req.Contacts {
		company.Contacts = append(company.Contacts, contactFromRequest(c))
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.companyRepo.Create(ctx, company)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("companyId", company.ID).Int64("by", actor.UserID).Msg("Company registered")
	return company, nil
}

// Update changes company details.
func (s *CompanyService) Update(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateCompanyRequest) (*models.Company, error) {
	company, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.Industry != nil {
		company.Industry = strings.TrimSpace(*req.Industry)
	}
	if req.Website != nil {
		company.Website = helpers.TrimmedPtr(req.Website)
	}
	if req.Description != nil {
		company.Description = *req.Description
	}
	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) editable(ctx context.Context, actor auth.Actor, id int64) (*models.Company, error) {
	if err := s.authz.Require(actor, auth.ResourceCompanies, auth.ActionUpdate); err != nil {
		return nil, err
	}
	company, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireCreatorOrDepartment(actor, company.CreatedBy, company.DepartmentID); err != nil {
		return nil, err
	}
	return company, nil
}

// SetStatus moves a company through its approval workflow. Department
// officers decide on companies of their department and unassigned ones.
func (s *CompanyService) SetStatus(ctx context.Context, actor auth.Actor, id int64, status models.CompanyStatus) (*models.Company, error) {
	if err := s.authz.Require(actor, auth.ResourceCompanies, auth.ActionApprove); err != nil {
		return nil, err
	}
	company, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if company.Status == status {
		return company, nil
	}
	if !domain.CanTransitionCompany(company.Status, status) {
		return nil, apperrors.NewIllegalTransitionError(string(company.Status), string(status))
	}

	now := s.clock.now()
	var approvedBy *int64
	if status == models.CompanyApproved {
		approvedBy = &actor.UserID
		company.ApprovedBy = approvedBy
		company.ApprovedAt = &now
	}
	if err := s.companyRepo.UpdateStatus(ctx, id, status, approvedBy, now); err != nil {
		return nil, err
	}
	company.Status = status

	s.logger.Info().Int64("companyId", id).Str("status", string(status)).Int64("by", actor.UserID).Msg("Company status changed")
	if company.CreatedBy != actor.UserID {
		s.notifier.Dispatch(ctx, NotificationEvent{
			UserID:  company.CreatedBy,
			Kind:    models.NotifyCompanyStatus,
			Title:   "Company " + string(status),
			Message: fmt.Sprintf("%s is now %s.", company.Name, status),
			Payload: map[string]interface{}{"companyId": id, "status": status},
		})
	}
	return company, nil
}

// AddContact adds a contact person. A new primary contact demotes the old one.
func (s *CompanyService) AddContact(ctx context.Context, actor auth.Actor, companyID int64, req *dto.CompanyContactRequest) (*models.CompanyContact, error) {
	if _, err := s.editable(ctx, actor, companyID); err != nil {
		return nil, err
	}
	contact := contactFromRequest(*req)
	contact.CompanyID = companyID

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.companyRepo.AddContact(ctx, &contact)
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// RemoveContact deletes a contact person.
func (s *CompanyService) RemoveContact(ctx context.Context, actor auth.Actor, companyID, contactID int64) error {
	if _, err := s.editable(ctx, actor, companyID); err != nil {
		return err
	}
	return s.companyRepo.DeleteContact(ctx, companyID, contactID)
}

// UploadLogo stores a logo image and replaces the previous one.
func (s *CompanyService) UploadLogo(ctx context.Context, actor auth.Actor, companyID int64, fileHeader *multipart.FileHeader) (string, error) {
	company, err := s.editable(ctx, actor, companyID)
	if err != nil {
		return "", err
	}
	if fileHeader == nil || !domain.UploadCompanyLogo.AcceptsUpload(fileHeader.Filename, fileHeader.Size) {
		return "", apperrors.NewValidationError("file", fmt.Sprintf("logo must be an image of at most %d MB", domain.UploadCompanyLogo.MaxBytes()>>20))
	}

	url, err := filestorage.SaveMultipart(ctx, s.storage, fileHeader, string(domain.UploadCompanyLogo))
	if err != nil {
		return "", fmt.Errorf("failed to store logo: %w", err)
	}
	if err := s.companyRepo.UpdateLogo(ctx, companyID, url); err != nil {
		if delErr := s.storage.Delete(ctx, url); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", url).Msg("Failed to remove orphaned logo")
		}
		return "", err
	}
	if company.LogoURL != nil && *company.LogoURL != "" {
		if err := s.storage.Delete(ctx, *company.LogoURL); err != nil {
			s.logger.Warn().Err(err).Str("url", *company.LogoURL).Msg("Failed to remove previous logo")
		}
	}
	return url, nil
}

func contactFromRequest(req dto.CompanyContactRequest) models.CompanyContact {
	return models.CompanyContact{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       helpers.TrimmedPtr(req.Phone),
		Designation: strings.TrimSpace(req.Designation),
		IsPrimary:   req.IsPrimary,
	}
}
