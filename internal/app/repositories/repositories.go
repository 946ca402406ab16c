package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	OrganisationRepository *OrganisationRepository
	DepartmentRepository   *DepartmentRepository
	UserRepository         *UserRepository
	SubjectRepository      *SubjectRepository
	StudentRepository      *StudentRepository
	LectureRepository      *LectureRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		OrganisationRepository: NewOrganisationRepository(db),
		DepartmentRepository:   NewDepartmentRepository(db),
		UserRepository:         NewUserRepository(db),
		SubjectRepository:      NewSubjectRepository(db),
		StudentRepository:      NewStudentRepository(db),
		LectureRepository:      NewLectureRepository(db),
	}
}
