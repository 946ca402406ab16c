package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/services"
	"github.com/presentia/backend/internal/middleware"
)

// OrganisationController handles organisation endpoints
type OrganisationController struct {
	organisationService *services.OrganisationService
}

// NewOrganisationController creates a new OrganisationController
func NewOrganisationController(organisationService *services.OrganisationService) *OrganisationController {
	return &OrganisationController{
		organisationService: organisationService,
	}
}

// CreateOrganisation creates an organisation
func (c *OrganisationController) CreateOrganisation(ctx *gin.Context) {
	var req dto.CreateOrganisationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid organisation data: "+err.Error()))
		return
	}

	organisation, err := c.organisationService.CreateOrganisation(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(organisation, "Organisation created successfully"))
}

// GetOrganisation retrieves an organisation
func (c *OrganisationController) GetOrganisation(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	organisation, err := c.organisationService.GetOrganisation(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(organisation, "Organisation retrieved successfully"))
}

// ListOrganisations lists all organisations
func (c *OrganisationController) ListOrganisations(ctx *gin.Context) {
	organisations, err := c.organisationService.ListOrganisations(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(organisations, "Organisations retrieved successfully"))
}

// UpdateOrganisation updates an organisation
func (c *OrganisationController) UpdateOrganisation(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrganisationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid organisation data: "+err.Error()))
		return
	}

	organisation, err := c.organisationService.UpdateOrganisation(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(organisation, "Organisation updated successfully"))
}

// DeleteOrganisation removes an organisation and everything under it
func (c *OrganisationController) DeleteOrganisation(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.organisationService.DeleteOrganisation(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Organisation deleted successfully"))
}
