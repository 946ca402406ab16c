package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/pkg/apperrors"
)

type fakeDepartments struct {
	byID map[int64]*models.Department
}

func (f *fakeDepartments) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	department, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return department, nil
}

type fakeSubjects struct {
	byID      map[int64]*models.Subject
	assigned  map[int64]map[int64]bool
	byDept    map[int64][]*models.Subject
	byFaculty map[int64][]*models.Subject
}

func (f *fakeSubjects) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	subject, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrSubjectNotFound
	}
	return subject, nil
}

func (f *fakeSubjects) GetByDepartmentID(ctx context.Context, departmentID int64) ([]*models.Subject, error) {
	return f.byDept[departmentID], nil
}

func (f *fakeSubjects) GetByFacultyID(ctx context.Context, userID int64) ([]*models.Subject, error) {
	return f.byFaculty[userID], nil
}

func (f *fakeSubjects) IsFacultyAssigned(ctx context.Context, subjectID, userID int64) (bool, error) {
	return f.assigned[subjectID][userID], nil
}

type fakeUsers struct {
	byID map[int64]*models.User
}

func (f *fakeUsers) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	var users []*models.User
	for _, id := range ids {
		if user, ok := f.byID[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func ptr(v int64) *int64 { return &v }

func TestCanCreateRole(t *testing.T) {
	testCases := []struct {
		name    string
		actor   models.Role
		target  models.Role
		allowed bool
	}{
		{"system admin creates org admin", models.RoleSystemAdmin, models.RoleOrgAdmin, true},
		{"system admin creates dept admin", models.RoleSystemAdmin, models.RoleDeptAdmin, true},
		{"system admin creates faculty", models.RoleSystemAdmin, models.RoleFaculty, true},
		{"system admin creates system admin", models.RoleSystemAdmin, models.RoleSystemAdmin, true},
		{"system admin cannot create unknown role", models.RoleSystemAdmin, models.Role("INTERN"), false},
		{"org admin creates dept admin", models.RoleOrgAdmin, models.RoleDeptAdmin, true},
		{"org admin creates faculty", models.RoleOrgAdmin, models.RoleFaculty, true},
		{"org admin cannot create org admin", models.RoleOrgAdmin, models.RoleOrgAdmin, false},
		{"dept admin creates faculty", models.RoleDeptAdmin, models.RoleFaculty, true},
		{"dept admin cannot create dept admin", models.RoleDeptAdmin, models.RoleDeptAdmin, false},
		{"faculty creates nothing", models.RoleFaculty, models.RoleFaculty, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanCreateRole(tc.actor, tc.target))
		})
	}
}

func newTestAuthorizer() *Authorizer {
	departments := &fakeDepartments{byID: map[int64]*models.Department{
		10: {ID: 10, OrganisationID: 1, Name: "Computer Science", TotalSemesters: 8},
		20: {ID: 20, OrganisationID: 2, Name: "Mechanical", TotalSemesters: 8},
	}}
	subjects := &fakeSubjects{
		byID: map[int64]*models.Subject{
			100: {ID: 100, DepartmentID: 10, Name: "Databases", Semester: 4, IsActive: true},
			200: {ID: 200, DepartmentID: 20, Name: "Thermodynamics", Semester: 3, IsActive: true},
		},
		assigned: map[int64]map[int64]bool{
			100: {7: true},
		},
	}
	users := &fakeUsers{byID: map[int64]*models.User{
		7: {ID: 7, Role: models.RoleFaculty, DepartmentID: ptr(10)},
		8: {ID: 8, Role: models.RoleFaculty, DepartmentID: ptr(20)},
		9: {ID: 9, Role: models.RoleDeptAdmin, DepartmentID: ptr(10)},
	}}
	return NewAuthorizer(departments, subjects, users)
}

func TestResolveOrganisation(t *testing.T) {
	a := newTestAuthorizer()

	sysAdmin := Actor{UserID: 1, Role: models.RoleSystemAdmin}
	orgAdmin := Actor{UserID: 2, Role: models.RoleOrgAdmin, OrganisationID: ptr(1)}

	assert.NoError(t, a.ResolveOrganisation(sysAdmin, 1))
	assert.NoError(t, a.ResolveOrganisation(sysAdmin, 2))
	assert.NoError(t, a.ResolveOrganisation(orgAdmin, 1))
	assert.ErrorIs(t, a.ResolveOrganisation(orgAdmin, 2), apperrors.ErrScopeViolation)
}

func TestResolveDepartment_ScopeEnforcement(t *testing.T) {
	a := newTestAuthorizer()
	ctx := context.Background()

	testCases := []struct {
		name         string
		actor        Actor
		departmentID int64
		wantErr      error
	}{
		{"system admin sees any department", Actor{Role: models.RoleSystemAdmin}, 10, nil},
		{"org admin sees own org's department", Actor{Role: models.RoleOrgAdmin, OrganisationID: ptr(1)}, 10, nil},
		{"org admin blocked from foreign org", Actor{Role: models.RoleOrgAdmin, OrganisationID: ptr(1)}, 20, apperrors.ErrScopeViolation},
		{"dept admin sees own department", Actor{Role: models.RoleDeptAdmin, OrganisationID: ptr(1), DepartmentID: ptr(10)}, 10, nil},
		{"dept admin blocked from sibling", Actor{Role: models.RoleDeptAdmin, OrganisationID: ptr(1), DepartmentID: ptr(10)}, 20, apperrors.ErrScopeViolation},
		{"faculty sees own department", Actor{UserID: 7, Role: models.RoleFaculty, OrganisationID: ptr(1), DepartmentID: ptr(10)}, 10, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			department, err := a.ResolveDepartment(ctx, tc.actor, tc.departmentID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, department)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.departmentID, department.ID)
			}
		})
	}
}

func TestResolveDepartment_MissingIsNotFoundNotForbidden(t *testing.T) {
	a := newTestAuthorizer()
	actor := Actor{Role: models.RoleOrgAdmin, OrganisationID: ptr(1)}

	_, err := a.ResolveDepartment(context.Background(), actor, 999)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NotErrorIs(t, err, apperrors.ErrScopeViolation)
}

func TestResolveSubject_FacultyAssignmentRequired(t *testing.T) {
	a := newTestAuthorizer()
	ctx := context.Background()

	assignedFaculty := Actor{UserID: 7, Role: models.RoleFaculty, OrganisationID: ptr(1), DepartmentID: ptr(10)}
	unassignedFaculty := Actor{UserID: 9, Role: models.RoleFaculty, OrganisationID: ptr(1), DepartmentID: ptr(10)}

	subject, department, err := a.ResolveSubject(ctx, assignedFaculty, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), subject.ID)
	assert.Equal(t, int64(10), department.ID)

	_, _, err = a.ResolveSubject(ctx, unassignedFaculty, 100)
	assert.ErrorIs(t, err, apperrors.ErrScopeViolation)
}

func TestResolveSubject_DeptAdminNeedsNoAssignment(t *testing.T) {
	a := newTestAuthorizer()
	actor := Actor{UserID: 9, Role: models.RoleDeptAdmin, OrganisationID: ptr(1), DepartmentID: ptr(10)}

	subject, _, err := a.ResolveSubject(context.Background(), actor, 100)

	require.NoError(t, err)
	assert.Equal(t, int64(100), subject.ID)
}

func TestResolveSubject_CrossDepartment(t *testing.T) {
	a := newTestAuthorizer()
	actor := Actor{UserID: 9, Role: models.RoleDeptAdmin, OrganisationID: ptr(1), DepartmentID: ptr(10)}

	_, _, err := a.ResolveSubject(context.Background(), actor, 200)

	assert.ErrorIs(t, err, apperrors.ErrScopeViolation)
}

func TestValidateFaculties(t *testing.T) {
	a := newTestAuthorizer()
	ctx := context.Background()

	assert.NoError(t, a.ValidateFaculties(ctx, 10, nil))
	assert.NoError(t, a.ValidateFaculties(ctx, 10, []int64{7}))

	err := a.ValidateFaculties(ctx, 10, []int64{7, 404})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = a.ValidateFaculties(ctx, 10, []int64{9})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = a.ValidateFaculties(ctx, 10, []int64{8})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestVisibleSubjects(t *testing.T) {
	departments := &fakeDepartments{byID: map[int64]*models.Department{
		10: {ID: 10, OrganisationID: 1},
	}}
	deptSubjects := []*models.Subject{
		{ID: 100, DepartmentID: 10},
		{ID: 101, DepartmentID: 10},
	}
	subjects := &fakeSubjects{
		byID:      map[int64]*models.Subject{},
		byDept:    map[int64][]*models.Subject{10: deptSubjects},
		byFaculty: map[int64][]*models.Subject{7: deptSubjects[:1]},
	}
	a := NewAuthorizer(departments, subjects, &fakeUsers{})

	admin := Actor{UserID: 9, Role: models.RoleDeptAdmin, OrganisationID: ptr(1), DepartmentID: ptr(10)}
	visible, err := a.VisibleSubjects(context.Background(), admin, 10)
	require.NoError(t, err)
	assert.Len(t, visible, 2)

	faculty := Actor{UserID: 7, Role: models.RoleFaculty, OrganisationID: ptr(1), DepartmentID: ptr(10)}
	visible, err = a.VisibleSubjects(context.Background(), faculty, 10)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, int64(100), visible[0].ID)
}

func TestScopeFilter(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		want    Scope
		wantErr error
	}{
		{
			name:  "system admin is unrestricted",
			actor: Actor{UserID: 1, Role: models.RoleSystemAdmin},
			want:  Scope{},
		},
		{
			name:  "org admin narrows to the organisation",
			actor: Actor{UserID: 2, Role: models.RoleOrgAdmin, OrganisationID: ptr(1)},
			want:  Scope{OrganisationID: ptr(1)},
		},
		{
			name:  "dept admin narrows to the department",
			actor: Actor{UserID: 3, Role: models.RoleDeptAdmin, OrganisationID: ptr(1), DepartmentID: ptr(10)},
			want:  Scope{DepartmentID: ptr(10)},
		},
		{
			name:  "faculty narrows to assigned subjects",
			actor: Actor{UserID: 7, Role: models.RoleFaculty, OrganisationID: ptr(1), DepartmentID: ptr(10)},
			want:  Scope{DepartmentID: ptr(10), FacultyID: ptr(7)},
		},
		{
			name:    "org admin without organisation",
			actor:   Actor{UserID: 2, Role: models.RoleOrgAdmin},
			wantErr: apperrors.ErrScopeViolation,
		},
		{
			name:    "unknown role",
			actor:   Actor{UserID: 4, Role: models.Role("INTERN")},
			wantErr: apperrors.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, err := ScopeFilter(tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, scope)
		})
	}
}
