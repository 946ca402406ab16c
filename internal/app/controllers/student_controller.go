package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/services"
	"github.com/presentia/backend/internal/middleware"
)

// imagesFormField is the multipart field carrying uploaded photos
const imagesFormField = "images"

// StudentController handles student endpoints
type StudentController struct {
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// CreateStudent enrolls a student from a multipart form with reference
// photos
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	departmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid student data: "+err.Error()))
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid multipart form: "+err.Error()))
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), actor, departmentID, &req, form.File[imagesFormField])
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(student, "Student enrolled successfully"))
}

// GetStudent retrieves a student
func (c *StudentController) GetStudent(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Student retrieved successfully"))
}

// ListStudents lists students of a department matching the filter
func (c *StudentController) ListStudents(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	departmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var filter dto.StudentFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid filter: "+err.Error()))
		return
	}

	students, err := c.studentService.ListStudents(ctx.Request.Context(), actor, departmentID, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(students, "Students retrieved successfully"))
}

// UpdateStudent updates a student's profile
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid student data: "+err.Error()))
		return
	}

	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Student updated successfully"))
}

// DeleteStudent removes a student
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.studentService.DeleteStudent(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Student deleted successfully"))
}

// DeleteAllStudents removes every student of a department
func (c *StudentController) DeleteAllStudents(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	departmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	deleted, err := c.studentService.DeleteAllStudents(ctx.Request.Context(), actor, departmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"deletedCount": deleted}, "Students deleted successfully"))
}

// PromoteStudents advances every active student of a department by one
// semester
func (c *StudentController) PromoteStudents(ctx *gin.Context) {
	actor, ok := mustActor(ctx)
	if !ok {
		return
	}
	departmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	result, err := c.studentService.PromoteStudents(ctx.Request.Context(), actor, departmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Students promoted successfully"))
}
