package services

import (
	"context"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/repositories"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/blobstore"
	"github.com/presentia/backend/internal/pkg/logger"
)

// DepartmentService handles department management
type DepartmentService struct {
	departmentRepo *repositories.DepartmentRepository
	studentRepo    *repositories.StudentRepository
	store          blobstore.Store
	authorizer     *authz.Authorizer
}

// NewDepartmentService creates a new department service
func NewDepartmentService(departmentRepo *repositories.DepartmentRepository, studentRepo *repositories.StudentRepository, store blobstore.Store, authorizer *authz.Authorizer) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		studentRepo:    studentRepo,
		store:          store,
		authorizer:     authorizer,
	}
}

// CreateDepartment creates a department inside the actor's organisation
func (s *DepartmentService) CreateDepartment(ctx context.Context, actor authz.Actor, req *dto.CreateDepartmentRequest) (*models.Department, error) {
	if err := s.authorizer.ResolveOrganisation(actor, req.OrganisationID); err != nil {
		return nil, err
	}

	department := &models.Department{
		OrganisationID: req.OrganisationID,
		Name:           req.Name,
		TotalSemesters: req.TotalSemesters,
	}

	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return nil, err
	}

	logger.Info().Int64("departmentID", department.ID).Str("name", department.Name).Msg("Department created")
	return department, nil
}

// GetDepartment retrieves a department within the actor's scope
func (s *DepartmentService) GetDepartment(ctx context.Context, actor authz.Actor, id int64) (*models.Department, error) {
	return s.authorizer.ResolveDepartment(ctx, actor, id)
}

// ListDepartments retrieves the departments visible to the actor
func (s *DepartmentService) ListDepartments(ctx context.Context, actor authz.Actor) ([]*models.Department, error) {
	switch actor.Role {
	case models.RoleSystemAdmin:
		return s.departmentRepo.GetAll(ctx)
	case models.RoleOrgAdmin:
		if actor.OrganisationID == nil {
			return nil, apperrors.ErrScopeViolation
		}
		return s.departmentRepo.GetByOrganisationID(ctx, *actor.OrganisationID)
	case models.RoleDeptAdmin, models.RoleFaculty:
		if actor.DepartmentID == nil {
			return nil, apperrors.ErrScopeViolation
		}
		department, err := s.departmentRepo.GetByID(ctx, *actor.DepartmentID)
		if err != nil {
			return nil, err
		}
		return []*models.Department{department}, nil
	default:
		return nil, apperrors.ErrPermissionDenied
	}
}

// UpdateDepartment updates a department within the actor's scope
func (s *DepartmentService) UpdateDepartment(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateDepartmentRequest) (*models.Department, error) {
	department, err := s.authorizer.ResolveDepartment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.TotalSemesters != nil {
		department.TotalSemesters = *req.TotalSemesters
	}

	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// DeleteDepartment removes a department. Rows under it go with the
// database cascade; stored student images are cleaned up best-effort
// afterwards.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, actor authz.Actor, id int64) error {
	department, err := s.authorizer.ResolveDepartment(ctx, actor, id)
	if err != nil {
		return err
	}

	students, err := s.studentRepo.List(ctx, department.ID, repositories.StudentFilter{})
	if err != nil {
		return err
	}

	if err := s.departmentRepo.Delete(ctx, department.ID); err != nil {
		return err
	}

	for _, student := range students {
		for _, image := range student.Images {
			if err := s.store.Delete(ctx, image.Key); err != nil {
				logger.Warn().Err(err).Str("key", image.Key).Msg("Failed to delete student image during department cleanup")
			}
		}
	}

	logger.Info().Int64("departmentID", id).Msg("Department deleted")
	return nil
}
