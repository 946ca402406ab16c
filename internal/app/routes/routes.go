package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/presentia/backend/internal/app/controllers"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/middleware"
)

// SetupRouter configures all application routes. Role middleware guards
// each route group coarsely; per-resource scope checks happen in the
// services through the authorization gate.
func SetupRouter(
	router *gin.Engine,
	ctrls *controllers.Controllers,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrls.AuthController.Login)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	anyAdmin := authMiddleware.RoleRequired(models.RoleSystemAdmin, models.RoleOrgAdmin, models.RoleDeptAdmin)

	organisations := authenticated.Group("/organisations")
	{
		organisations.GET("/:id", ctrls.OrganisationController.GetOrganisation)
		organisations.PUT("/:id", authMiddleware.RoleRequired(models.RoleSystemAdmin, models.RoleOrgAdmin), ctrls.OrganisationController.UpdateOrganisation)

		systemOnly := organisations.Group("", authMiddleware.RoleRequired(models.RoleSystemAdmin))
		{
			systemOnly.POST("", ctrls.OrganisationController.CreateOrganisation)
			systemOnly.GET("", ctrls.OrganisationController.ListOrganisations)
			systemOnly.DELETE("/:id", ctrls.OrganisationController.DeleteOrganisation)
		}
	}

	departments := authenticated.Group("/departments")
	{
		departments.GET("", ctrls.DepartmentController.ListDepartments)
		departments.GET("/:id", ctrls.DepartmentController.GetDepartment)

		adminOnly := departments.Group("", authMiddleware.RoleRequired(models.RoleSystemAdmin, models.RoleOrgAdmin))
		{
			adminOnly.POST("", ctrls.DepartmentController.CreateDepartment)
			adminOnly.PUT("/:id", ctrls.DepartmentController.UpdateDepartment)
			adminOnly.DELETE("/:id", ctrls.DepartmentController.DeleteDepartment)
		}

		// Nested resources of a department.
		departments.GET("/:id/subjects", ctrls.SubjectController.ListSubjects)
		departments.DELETE("/:id/subjects", authMiddleware.RoleRequired(models.RoleOrgAdmin, models.RoleDeptAdmin), ctrls.SubjectController.DeleteAllSubjects)
		departments.GET("/:id/students", anyAdmin, ctrls.StudentController.ListStudents)
		departments.POST("/:id/students", authMiddleware.RoleRequired(models.RoleDeptAdmin), ctrls.StudentController.CreateStudent)
		departments.DELETE("/:id/students", authMiddleware.RoleRequired(models.RoleDeptAdmin), ctrls.StudentController.DeleteAllStudents)
		departments.POST("/:id/students/promote", authMiddleware.RoleRequired(models.RoleDeptAdmin), ctrls.StudentController.PromoteStudents)
		departments.GET("/:id/lectures", ctrls.LectureController.ListLectures)
	}

	users := authenticated.Group("/users", anyAdmin)
	{
		users.POST("", ctrls.UserController.CreateUser)
		users.GET("", ctrls.UserController.ListUsers)
		users.GET("/:id", ctrls.UserController.GetUser)
		users.PUT("/:id", ctrls.UserController.UpdateUser)
		users.DELETE("/:id", ctrls.UserController.DeleteUser)
	}

	subjects := authenticated.Group("/subjects")
	{
		subjects.GET("", ctrls.SubjectController.ListAllSubjects)
		subjects.GET("/:id", ctrls.SubjectController.GetSubject)

		deptAdminOnly := subjects.Group("", authMiddleware.RoleRequired(models.RoleOrgAdmin, models.RoleDeptAdmin))
		{
			deptAdminOnly.POST("", ctrls.SubjectController.CreateSubject)
			deptAdminOnly.PUT("/:id", ctrls.SubjectController.UpdateSubject)
			deptAdminOnly.DELETE("/:id", ctrls.SubjectController.DeleteSubject)
			deptAdminOnly.DELETE("/:id/lectures", ctrls.LectureController.DeleteAllLectures)
		}
	}

	students := authenticated.Group("/students", anyAdmin)
	{
		students.GET("/:id", ctrls.StudentController.GetStudent)
		students.PUT("/:id", ctrls.StudentController.UpdateStudent)
		students.DELETE("/:id", authMiddleware.RoleRequired(models.RoleDeptAdmin), ctrls.StudentController.DeleteStudent)
	}

	lectures := authenticated.Group("/lectures")
	{
		lectures.GET("/:id", ctrls.LectureController.GetLecture)

		captureRoles := authMiddleware.RoleRequired(models.RoleDeptAdmin, models.RoleFaculty)
		lectures.POST("", captureRoles, ctrls.LectureController.CreateLecture)
		lectures.POST("/:id/generate", captureRoles, ctrls.LectureController.RegenerateLecture)
		lectures.PUT("/:id", captureRoles, ctrls.LectureController.UpdateLecture)
		lectures.DELETE("/:id", captureRoles, ctrls.LectureController.DeleteLecture)
	}

	dashboard := authenticated.Group("/dashboard")
	{
		dashboard.GET("/system", authMiddleware.RoleRequired(models.RoleSystemAdmin), ctrls.DashboardController.GetSystemStats)
		dashboard.GET("/organisations/:id", authMiddleware.RoleRequired(models.RoleSystemAdmin, models.RoleOrgAdmin), ctrls.DashboardController.GetOrganisationStats)
		dashboard.GET("/departments/:id", ctrls.DashboardController.GetDepartmentStats)
	}
}
