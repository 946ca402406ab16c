package services

import (
	"context"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/repositories"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/logger"
)

// SubjectService handles subject management and faculty assignment
type SubjectService struct {
	subjectRepo *repositories.SubjectRepository
	authorizer  *authz.Authorizer
}

// NewSubjectService creates a new subject service
func NewSubjectService(subjectRepo *repositories.SubjectRepository, authorizer *authz.Authorizer) *SubjectService {
	return &SubjectService{
		subjectRepo: subjectRepo,
		authorizer:  authorizer,
	}
}

// resolveTargetDepartment determines which department a create lands in.
// DEPT_ADMIN callers always use their own department; ORG_ADMIN callers
// must name one inside their organisation.
func (s *SubjectService) resolveTargetDepartment(ctx context.Context, actor authz.Actor, requested *int64) (*models.Department, error) {
	var departmentID int64
	switch {
	case actor.Role == models.RoleDeptAdmin:
		if actor.DepartmentID == nil {
			return nil, apperrors.ErrScopeViolation
		}
		departmentID = *actor.DepartmentID
	case requested != nil:
		departmentID = *requested
	default:
		return nil, apperrors.NewValidationError("departmentId is required")
	}

	return s.authorizer.ResolveDepartment(ctx, actor, departmentID)
}

// CreateSubject creates a subject and assigns its faculty members
func (s *SubjectService) CreateSubject(ctx context.Context, actor authz.Actor, req *dto.CreateSubjectRequest) (*models.Subject, error) {
	department, err := s.resolveTargetDepartment(ctx, actor, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	if req.Semester > department.TotalSemesters {
		return nil, apperrors.NewValidationError("semester exceeds the department's total semesters")
	}

	if err := s.authorizer.ValidateFaculties(ctx, department.ID, req.FacultyIDs); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		DepartmentID: department.ID,
		Name:         req.Name,
		Semester:     req.Semester,
		FacultyIDs:   req.FacultyIDs,
	}

	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		return nil, err
	}

	logger.Info().Int64("subjectID", subject.ID).Str("name", subject.Name).Msg("Subject created")
	return subject, nil
}

// GetSubject retrieves a subject within the actor's scope
func (s *SubjectService) GetSubject(ctx context.Context, actor authz.Actor, id int64) (*models.Subject, error) {
	subject, _, err := s.authorizer.ResolveSubject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return subject, nil
}

// ListSubjects retrieves the subjects visible to the actor: the whole
// department for admins, assigned subjects only for faculty.
func (s *SubjectService) ListSubjects(ctx context.Context, actor authz.Actor, departmentID int64) ([]*models.Subject, error) {
	if actor.Role == models.RoleFaculty {
		if actor.DepartmentID == nil || *actor.DepartmentID != departmentID {
			return nil, apperrors.ErrScopeViolation
		}
		return s.subjectRepo.GetByFacultyID(ctx, actor.UserID)
	}

	if _, err := s.authorizer.ResolveDepartment(ctx, actor, departmentID); err != nil {
		return nil, err
	}
	return s.subjectRepo.GetByDepartmentID(ctx, departmentID)
}

// ListAllSubjects retrieves every subject visible to the actor across
// departments, filtered by scope in a single query.
func (s *SubjectService) ListAllSubjects(ctx context.Context, actor authz.Actor) ([]*models.Subject, error) {
	scope, err := authz.ScopeFilter(actor)
	if err != nil {
		return nil, err
	}
	return s.subjectRepo.ListVisible(ctx, scope)
}

// UpdateSubject updates a subject and optionally reassigns its faculty
func (s *SubjectService) UpdateSubject(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateSubjectRequest) (*models.Subject, error) {
	subject, department, err := s.authorizer.ResolveSubject(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Semester != nil {
		if *req.Semester > department.TotalSemesters {
			return nil, apperrors.NewValidationError("semester exceeds the department's total semesters")
		}
		subject.Semester = *req.Semester
	}

	if req.FacultyIDs != nil {
		if err := s.authorizer.ValidateFaculties(ctx, department.ID, req.FacultyIDs); err != nil {
			return nil, err
		}
		subject.FacultyIDs = req.FacultyIDs
	}

	if err := s.subjectRepo.Update(ctx, subject, req.FacultyIDs); err != nil {
		return nil, err
	}
	return subject, nil
}

// DeleteSubject soft-deletes a subject. Past lectures remain queryable.
func (s *SubjectService) DeleteSubject(ctx context.Context, actor authz.Actor, id int64) error {
	subject, _, err := s.authorizer.ResolveSubject(ctx, actor, id)
	if err != nil {
		return err
	}

	return s.subjectRepo.Deactivate(ctx, subject.ID)
}

// DeleteAllSubjects soft-deletes every active subject of a department
func (s *SubjectService) DeleteAllSubjects(ctx context.Context, actor authz.Actor, departmentID int64) (int64, error) {
	department, err := s.authorizer.ResolveDepartment(ctx, actor, departmentID)
	if err != nil {
		return 0, err
	}

	affected, err := s.subjectRepo.DeactivateByDepartmentID(ctx, department.ID)
	if err != nil {
		return 0, err
	}

	logger.Info().Int64("departmentID", department.ID).Int64("subjects", affected).Msg("Subjects deactivated")
	return affected, nil
}
