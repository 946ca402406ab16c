package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/services"
	"github.com/presentia/backend/internal/middleware"
)

// DashboardController handles statistics endpoints
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetSystemStats returns platform-wide statistics
func (c *DashboardController) GetSystemStats(ctx *gin.Context) {
	stats, err := c.dashboardService.GetSystemStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, "System statistics retrieved successfully"))
}

// GetOrganisationStats returns statistics for one organisation
func (c *DashboardController) GetOrganisationStats(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	stats, err := c.dashboardService.GetOrganisationStats(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, "Organisation statistics retrieved successfully"))
}

// GetDepartmentStats returns statistics for one department
func (c *DashboardController) GetDepartmentStats(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	stats, err := c.dashboardService.GetDepartmentStats(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, "Department statistics retrieved successfully"))
}
