package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/services"
	"github.com/presentia/backend/internal/middleware"
)

// LectureController handles lecture capture and attendance endpoints
type LectureController struct {
	lectureService *services.LectureService
}

// NewLectureController creates a new LectureController
func NewLectureController(lectureService *services.LectureService) *LectureController {
	return &LectureController{
		lectureService: lectureService,
	}
}

// CreateLecture captures a lecture from classroom photos
func (c *LectureController) CreateLecture(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateLectureRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid lecture data: "+err.Error()))
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid multipart form: "+err.Error()))
		return
	}

	lecture, err := c.lectureService.CreateLecture(ctx.Request.Context(), actor, &req, form.File[imagesFormField])
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(lecture, "Lecture captured successfully"))
}

// RegenerateLecture reruns attendance capture with fresh photos
func (c *LectureController) RegenerateLecture(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid multipart form: "+err.Error()))
		return
	}

	lecture, err := c.lectureService.Regenerate(ctx.Request.Context(), actor, id, form.File[imagesFormField])
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lecture, "Lecture attendance regenerated successfully"))
}

// GetLecture retrieves a lecture with its attendance sheet
func (c *LectureController) GetLecture(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	lecture, err := c.lectureService.GetLecture(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lecture, "Lecture retrieved successfully"))
}

// ListLectures lists lectures of a department's subjects visible to the
// caller
func (c *LectureController) ListLectures(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	departmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var filter dto.LectureFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid filter: "+err.Error()))
		return
	}

	lectures, err := c.lectureService.ListLectures(ctx.Request.Context(), actor, departmentID, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lectures, "Lectures retrieved successfully"))
}

// UpdateLecture applies manual attendance corrections
func (c *LectureController) UpdateLecture(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateLectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid attendance data: "+err.Error()))
		return
	}

	lecture, err := c.lectureService.UpdateAttendance(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lecture, "Attendance updated successfully"))
}

// DeleteLecture removes a lecture
func (c *LectureController) DeleteLecture(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.lectureService.DeleteLecture(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Lecture deleted successfully"))
}

// DeleteAllLectures removes every lecture of a subject
func (c *LectureController) DeleteAllLectures(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	subjectID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	deleted, err := c.lectureService.DeleteAllLectures(ctx.Request.Context(), actor, subjectID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"deletedCount": deleted}, "Lectures deleted successfully"))
}
