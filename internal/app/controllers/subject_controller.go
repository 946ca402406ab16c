package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/services"
	"github.com/presentia/backend/internal/middleware"
)

// SubjectController handles subject endpoints
type SubjectController struct {
	subjectService *services.SubjectService
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(subjectService *services.SubjectService) *SubjectController {
	return &SubjectController{
		subjectService: subjectService,
	}
}

// CreateSubject creates a subject with its faculty assignments
func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid subject data: "+err.Error()))
		return
	}

	subject, err := c.subjectService.CreateSubject(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(subject, "Subject created successfully"))
}

// GetSubject retrieves a subject
func (c *SubjectController) GetSubject(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	subject, err := c.subjectService.GetSubject(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subject, "Subject retrieved successfully"))
}

// ListSubjects lists the subjects of a department visible to the caller
func (c *SubjectController) ListSubjects(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	departmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	subjects, err := c.subjectService.ListSubjects(ctx.Request.Context(), actor, departmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subjects, "Subjects retrieved successfully"))
}

// ListAllSubjects lists every subject across the caller's visible scope
func (c *SubjectController) ListAllSubjects(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}

	subjects, err := c.subjectService.ListAllSubjects(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subjects, "Subjects retrieved successfully"))
}

// UpdateSubject updates a subject
func (c *SubjectController) UpdateSubject(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid subject data: "+err.Error()))
		return
	}

	subject, err := c.subjectService.UpdateSubject(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subject, "Subject updated successfully"))
}

// DeleteSubject soft-deletes a subject
func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.subjectService.DeleteSubject(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Subject deleted successfully"))
}

// DeleteAllSubjects soft-deletes every active subject of a department
func (c *SubjectController) DeleteAllSubjects(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	departmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	deleted, err := c.subjectService.DeleteAllSubjects(ctx.Request.Context(), actor, departmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"deletedCount": deleted}, "Subjects deleted successfully"))
}
