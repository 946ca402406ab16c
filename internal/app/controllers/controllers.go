package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/services"
	"github.com/presentia/backend/internal/middleware"
)

// Controllers holds all the controller instances
type Controllers struct {
	AuthController         *AuthController
	UserController         *UserController
	OrganisationController *OrganisationController
	DepartmentController   *DepartmentController
	SubjectController      *SubjectController
	StudentController      *StudentController
	LectureController      *LectureController
	DashboardController    *DashboardController
}

// NewControllers initializes all controllers
func NewControllers(svcs *services.Services) *Controllers {
	return &Controllers{
		AuthController:         NewAuthController(svcs.AuthService),
		UserController:         NewUserController(svcs.UserService),
		OrganisationController: NewOrganisationController(svcs.OrganisationService),
		DepartmentController:   NewDepartmentController(svcs.DepartmentService),
		SubjectController:      NewSubjectController(svcs.SubjectService),
		StudentController:      NewStudentController(svcs.StudentService),
		LectureController:      NewLectureController(svcs.LectureService),
		DashboardController:    NewDashboardController(svcs.DashboardService),
	}
}

// mustActor returns the authenticated actor or aborts with 401
func mustActor(ctx *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("Authentication required"))
	}
	return actor, ok
}

// pathID parses a path parameter as an int64 ID; a zero return means the
// response has already been written.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid "+name+" parameter"))
		return 0, false
	}
	return id, true
}
