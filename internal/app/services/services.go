package services

import (
	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/repositories"
	"github.com/presentia/backend/internal/pkg/auth"
	"github.com/presentia/backend/internal/pkg/blobstore"
	"github.com/presentia/backend/internal/pkg/recognition"
)

// Services holds all the service instances
type Services struct {
	AuthService         *AuthService
	UserService         *UserService
	OrganisationService *OrganisationService
	DepartmentService   *DepartmentService
	SubjectService      *SubjectService
	StudentService      *StudentService
	LectureService      *LectureService
	DashboardService    *DashboardService
}

// NewServices wires all services onto the shared repositories, stores and
// external clients.
func NewServices(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	store blobstore.Store,
	recognizer *recognition.Client,
) *Services {
	authorizer := authz.NewAuthorizer(
		repos.DepartmentRepository,
		repos.SubjectRepository,
		repos.UserRepository,
	)

	return &Services{
		AuthService:         NewAuthService(repos.UserRepository, jwtService),
		UserService:         NewUserService(repos.UserRepository, repos.OrganisationRepository, authorizer),
		OrganisationService: NewOrganisationService(repos.OrganisationRepository, authorizer),
		DepartmentService:   NewDepartmentService(repos.DepartmentRepository, repos.StudentRepository, store, authorizer),
		SubjectService:      NewSubjectService(repos.SubjectRepository, authorizer),
		StudentService:      NewStudentService(repos.StudentRepository, recognizer, store, authorizer),
		LectureService:      NewLectureService(repos.LectureRepository, repos.StudentRepository, recognizer, store, authorizer),
		DashboardService: NewDashboardService(
			repos.OrganisationRepository,
			repos.DepartmentRepository,
			repos.UserRepository,
			repos.SubjectRepository,
			repos.StudentRepository,
			repos.LectureRepository,
			authorizer,
		),
	}
}
