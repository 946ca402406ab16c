package services

import (
	"context"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/repositories"
)

// trendWindow is how many recent lectures feed the attendance trend
const trendWindow = 10

// DashboardService aggregates statistics scoped to the caller's role
type DashboardService struct {
	organisationRepo *repositories.OrganisationRepository
	departmentRepo   *repositories.DepartmentRepository
	userRepo         *repositories.UserRepository
	subjectRepo      *repositories.SubjectRepository
	studentRepo      *repositories.StudentRepository
	lectureRepo      *repositories.LectureRepository
	authorizer       *authz.Authorizer
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	organisationRepo *repositories.OrganisationRepository,
	departmentRepo *repositories.DepartmentRepository,
	userRepo *repositories.UserRepository,
	subjectRepo *repositories.SubjectRepository,
	studentRepo *repositories.StudentRepository,
	lectureRepo *repositories.LectureRepository,
	authorizer *authz.Authorizer,
) *DashboardService {
	return &DashboardService{
		organisationRepo: organisationRepo,
		departmentRepo:   departmentRepo,
		userRepo:         userRepo,
		subjectRepo:      subjectRepo,
		studentRepo:      studentRepo,
		lectureRepo:      lectureRepo,
		authorizer:       authorizer,
	}
}

// GetSystemStats aggregates platform-wide figures
func (s *DashboardService) GetSystemStats(ctx context.Context) (*dto.SystemStats, error) {
	roleCounts, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	var totalUsers int64
	for _, count := range roleCounts {
		totalUsers += count
	}

	organisationCount, err := s.organisationRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	byDept, err := s.studentRepo.CountGroupedByDepartment(ctx, 0)
	if err != nil {
		return nil, err
	}

	totalStudents, err := s.studentRepo.CountAllActive(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.lectureRepo.ListRecent(ctx, nil, trendWindow)
	if err != nil {
		return nil, err
	}
	trend := attendanceTrend(recent)

	return &dto.SystemStats{
		UserRoleCounts:     roleCounts,
		TotalUsers:         totalUsers,
		OrganisationCount:  organisationCount,
		StudentCountByDept: toDeptCounts(byDept),
		TotalStudents:      totalStudents,
		AttendanceTrend:    trend,
		AverageAttendance:  average(trend),
	}, nil
}

// GetOrganisationStats aggregates figures for the actor's organisation
func (s *DashboardService) GetOrganisationStats(ctx context.Context, actor authz.Actor, organisationID int64) (*dto.OrganisationStats, error) {
	if err := s.authorizer.ResolveOrganisation(actor, organisationID); err != nil {
		return nil, err
	}
	if _, err := s.organisationRepo.GetByID(ctx, organisationID); err != nil {
		return nil, err
	}

	departments, err := s.departmentRepo.CountByOrganisationID(ctx, organisationID)
	if err != nil {
		return nil, err
	}

	faculty, err := s.userRepo.CountFacultyByOrganisationID(ctx, organisationID)
	if err != nil {
		return nil, err
	}

	students, err := s.studentRepo.CountByOrganisationID(ctx, organisationID)
	if err != nil {
		return nil, err
	}

	byDept, err := s.studentRepo.CountGroupedByDepartment(ctx, organisationID)
	if err != nil {
		return nil, err
	}

	return &dto.OrganisationStats{
		TotalDepartments:   departments,
		TotalFaculty:       faculty,
		TotalStudents:      students,
		StudentCountByDept: toDeptCounts(byDept),
	}, nil
}

// GetDepartmentStats aggregates figures for one department
func (s *DashboardService) GetDepartmentStats(ctx context.Context, actor authz.Actor, departmentID int64) (*dto.DepartmentStats, error) {
	department, err := s.authorizer.ResolveDepartment(ctx, actor, departmentID)
	if err != nil {
		return nil, err
	}

	subjects, err := s.subjectRepo.CountByDepartmentID(ctx, department.ID)
	if err != nil {
		return nil, err
	}

	students, err := s.studentRepo.CountByDepartmentID(ctx, department.ID)
	if err != nil {
		return nil, err
	}

	visible, err := s.authorizer.VisibleSubjects(ctx, actor, department.ID)
	if err != nil {
		return nil, err
	}
	subjectIDs := make([]int64, 0, len(visible))
	for _, subject := range visible {
		subjectIDs = append(subjectIDs, subject.ID)
	}

	lectureCount, err := s.lectureRepo.CountBySubjectIDs(ctx, subjectIDs)
	if err != nil {
		return nil, err
	}

	var trend []int
	if len(subjectIDs) > 0 {
		recent, err := s.lectureRepo.ListRecent(ctx, subjectIDs, trendWindow)
		if err != nil {
			return nil, err
		}
		trend = attendanceTrend(recent)
	}

	return &dto.DepartmentStats{
		TotalSubjects:     subjects,
		TotalStudents:     students,
		TotalLectures:     lectureCount,
		AverageAttendance: average(trend),
		AttendanceTrend:   trend,
	}, nil
}

// attendanceTrend computes the present percentage of each lecture
func attendanceTrend(lectures []*models.Lecture) []int {
	trend := make([]int, 0, len(lectures))
	for _, lecture := range lectures {
		if len(lecture.Attendance) == 0 {
			continue
		}
		present := 0
		for _, entry := range lecture.Attendance {
			if entry.Present {
				present++
			}
		}
		trend = append(trend, present*100/len(lecture.Attendance))
	}
	return trend
}

func toDeptCounts(counts []repositories.DepartmentCount) []dto.DepartmentStudentCount {
	out := make([]dto.DepartmentStudentCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, dto.DepartmentStudentCount{
			Department: c.DepartmentName,
			Count:      c.Count,
		})
	}
	return out
}

func average(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum / len(values)
}
