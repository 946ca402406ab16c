package services

import (
	"context"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/repositories"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/auth"
	"github.com/presentia/backend/internal/pkg/logger"
)

// UserService handles admin and faculty account management
type UserService struct {
	userRepo         *repositories.UserRepository
	organisationRepo *repositories.OrganisationRepository
	authorizer       *authz.Authorizer
}

// NewUserService creates a new user service
func NewUserService(userRepo *repositories.UserRepository, organisationRepo *repositories.OrganisationRepository, authorizer *authz.Authorizer) *UserService {
	return &UserService{
		userRepo:         userRepo,
		organisationRepo: organisationRepo,
		authorizer:       authorizer,
	}
}

// CreateUser creates an account below the creator's level in the role
// hierarchy. The new account's scope comes from resolving the referenced
// organisation or department inside the creator's own scope, never from a
// client-supplied write target.
func (s *UserService) CreateUser(ctx context.Context, actor authz.Actor, req *dto.CreateUserRequest) (*models.User, error) {
	if !req.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role")
	}
	if !authz.CanCreateRole(actor.Role, req.Role) {
		return nil, apperrors.NewForbiddenError("role " + string(actor.Role) + " cannot create " + string(req.Role) + " accounts")
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: true,
	}

	switch req.Role {
	case models.RoleOrgAdmin:
		if req.OrganisationID == nil {
			return nil, apperrors.NewValidationError("organisationId is required for ORG_ADMIN accounts")
		}
		if _, err := s.organisationRepo.GetByID(ctx, *req.OrganisationID); err != nil {
			return nil, err
		}
		user.OrganisationID = req.OrganisationID

	case models.RoleDeptAdmin, models.RoleFaculty:
		if req.DepartmentID == nil {
			return nil, apperrors.NewValidationError("departmentId is required for " + string(req.Role) + " accounts")
		}
		department, err := s.authorizer.ResolveDepartment(ctx, actor, *req.DepartmentID)
		if err != nil {
			return nil, err
		}
		user.OrganisationID = &department.OrganisationID
		user.DepartmentID = &department.ID
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}
	user.Password = hashed

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User created")
	return user, nil
}

// GetUser retrieves a user visible to the actor
func (s *UserService) GetUser(ctx context.Context, actor authz.Actor, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserScope(ctx, actor, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves users within the actor's scope, optionally narrowed
// by role.
func (s *UserService) ListUsers(ctx context.Context, actor authz.Actor, role models.Role) ([]*models.User, error) {
	filter := repositories.UserFilter{Role: role}

	switch actor.Role {
	case models.RoleSystemAdmin:
	case models.RoleOrgAdmin:
		if actor.OrganisationID == nil {
			return nil, apperrors.ErrScopeViolation
		}
		filter.OrganisationID = *actor.OrganisationID
	case models.RoleDeptAdmin:
		if actor.DepartmentID == nil {
			return nil, apperrors.ErrScopeViolation
		}
		filter.DepartmentID = *actor.DepartmentID
	default:
		return nil, apperrors.ErrPermissionDenied
	}

	return s.userRepo.List(ctx, filter)
}

// UpdateUser updates an account within the actor's scope
func (s *UserService) UpdateUser(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account within the actor's scope
func (s *UserService) DeleteUser(ctx context.Context, actor authz.Actor, id int64) error {
	user, err := s.GetUser(ctx, actor, id)
	if err != nil {
		return err
	}

	if user.ID == actor.UserID {
		return apperrors.NewValidationError("cannot delete your own account")
	}

	return s.userRepo.Delete(ctx, user.ID)
}

// checkUserScope verifies the target account falls inside the actor's
// scope. Missing accounts surface before scope checks run, so only
// existing out-of-scope targets are reported as violations.
func (s *UserService) checkUserScope(_ context.Context, actor authz.Actor, target *models.User) error {
	if target.ID == actor.UserID {
		return nil
	}

	switch actor.Role {
	case models.RoleSystemAdmin:
		return nil
	case models.RoleOrgAdmin:
		if actor.OrganisationID == nil || target.OrganisationID == nil || *actor.OrganisationID != *target.OrganisationID {
			return apperrors.ErrScopeViolation
		}
		return nil
	case models.RoleDeptAdmin:
		if actor.DepartmentID == nil || target.DepartmentID == nil || *actor.DepartmentID != *target.DepartmentID {
			return apperrors.ErrScopeViolation
		}
		return nil
	default:
		return apperrors.ErrPermissionDenied
	}
}
