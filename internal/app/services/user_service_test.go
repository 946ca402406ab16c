package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/pkg/apperrors"
)

func TestCreateUser_HierarchyEnforcedBeforeAnyWrite(t *testing.T) {
	svc := NewUserService(nil, nil, newTestAuthorizer(nil, nil, nil))
	ctx := context.Background()

	testCases := []struct {
		name    string
		actor   authz.Actor
		req     *dto.CreateUserRequest
		wantErr error
	}{
		{
			name:    "unknown role rejected",
			actor:   authz.Actor{Role: models.RoleSystemAdmin},
			req:     &dto.CreateUserRequest{Role: "SUPERUSER"},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "org admin cannot create another org admin",
			actor:   authz.Actor{Role: models.RoleOrgAdmin, OrganisationID: ptr(int64(1))},
			req:     &dto.CreateUserRequest{Role: models.RoleOrgAdmin},
			wantErr: apperrors.ErrPermissionDenied,
		},
		{
			name:    "faculty cannot create anyone",
			actor:   authz.Actor{Role: models.RoleFaculty},
			req:     &dto.CreateUserRequest{Role: models.RoleFaculty},
			wantErr: apperrors.ErrPermissionDenied,
		},
		{
			name:    "org admin account needs an organisation",
			actor:   authz.Actor{Role: models.RoleSystemAdmin},
			req:     &dto.CreateUserRequest{Role: models.RoleOrgAdmin},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "dept admin account needs a department",
			actor:   authz.Actor{Role: models.RoleOrgAdmin, OrganisationID: ptr(int64(1))},
			req:     &dto.CreateUserRequest{Role: models.RoleDeptAdmin},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "system admin creating faculty still needs a department",
			actor:   authz.Actor{Role: models.RoleSystemAdmin},
			req:     &dto.CreateUserRequest{Role: models.RoleFaculty},
			wantErr: apperrors.ErrValidationFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tc.actor, tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCheckUserScope(t *testing.T) {
	svc := NewUserService(nil, nil, newTestAuthorizer(nil, nil, nil))

	orgAdmin := authz.Actor{UserID: 2, Role: models.RoleOrgAdmin, OrganisationID: ptr(int64(1))}
	deptAdmin := authz.Actor{UserID: 3, Role: models.RoleDeptAdmin, OrganisationID: ptr(int64(1)), DepartmentID: ptr(int64(10))}

	sameOrg := &models.User{ID: 5, OrganisationID: ptr(int64(1))}
	otherOrg := &models.User{ID: 6, OrganisationID: ptr(int64(2))}
	sameDept := &models.User{ID: 7, DepartmentID: ptr(int64(10))}
	otherDept := &models.User{ID: 8, DepartmentID: ptr(int64(20))}

	assert.NoError(t, svc.checkUserScope(context.Background(), orgAdmin, sameOrg))
	assert.ErrorIs(t, svc.checkUserScope(context.Background(), orgAdmin, otherOrg), apperrors.ErrScopeViolation)
	assert.NoError(t, svc.checkUserScope(context.Background(), deptAdmin, sameDept))
	assert.ErrorIs(t, svc.checkUserScope(context.Background(), deptAdmin, otherDept), apperrors.ErrScopeViolation)

	self := &models.User{ID: 2, OrganisationID: ptr(int64(99))}
	assert.NoError(t, svc.checkUserScope(context.Background(), orgAdmin, self), "own account is always visible")
}
