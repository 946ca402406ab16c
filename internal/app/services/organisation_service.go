package services

import (
	"context"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/repositories"
	"github.com/presentia/backend/internal/pkg/logger"
)

// OrganisationService handles organisation management. Creation and
// deletion are SYSTEM_ADMIN operations; route middleware enforces the
// role before requests reach this service.
type OrganisationService struct {
	organisationRepo *repositories.OrganisationRepository
	authorizer       *authz.Authorizer
}

// NewOrganisationService creates a new organisation service
func NewOrganisationService(organisationRepo *repositories.OrganisationRepository, authorizer *authz.Authorizer) *OrganisationService {
	return &OrganisationService{
		organisationRepo: organisationRepo,
		authorizer:       authorizer,
	}
}

// CreateOrganisation creates a new organisation
func (s *OrganisationService) CreateOrganisation(ctx context.Context, req *dto.CreateOrganisationRequest) (*models.Organisation, error) {
	organisation := &models.Organisation{
		Name:    req.Name,
		Address: req.Address,
		Website: req.Website,
		Contact: req.Contact,
	}

	if err := s.organisationRepo.Create(ctx, organisation); err != nil {
		return nil, err
	}

	logger.Info().Int64("organisationID", organisation.ID).Str("name", organisation.Name).Msg("Organisation created")
	return organisation, nil
}

// GetOrganisation retrieves an organisation within the actor's scope
func (s *OrganisationService) GetOrganisation(ctx context.Context, actor authz.Actor, id int64) (*models.Organisation, error) {
	organisation, err := s.organisationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.ResolveOrganisation(actor, organisation.ID); err != nil {
		return nil, err
	}
	return organisation, nil
}

// ListOrganisations retrieves all organisations
func (s *OrganisationService) ListOrganisations(ctx context.Context) ([]*models.Organisation, error) {
	return s.organisationRepo.GetAll(ctx)
}

// UpdateOrganisation updates an organisation within the actor's scope
func (s *OrganisationService) UpdateOrganisation(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateOrganisationRequest) (*models.Organisation, error) {
	organisation, err := s.GetOrganisation(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		organisation.Name = *req.Name
	}
	if req.Address != nil {
		organisation.Address = *req.Address
	}
	if req.Website != nil {
		organisation.Website = *req.Website
	}
	if req.Contact != nil {
		organisation.Contact = *req.Contact
	}

	if err := s.organisationRepo.Update(ctx, organisation); err != nil {
		return nil, err
	}
	return organisation, nil
}

// DeleteOrganisation removes an organisation and, through the database
// cascade, everything under it.
func (s *OrganisationService) DeleteOrganisation(ctx context.Context, id int64) error {
	if err := s.organisationRepo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info().Int64("organisationID", id).Msg("Organisation deleted")
	return nil
}
