// Package authz implements the hierarchical authorization model. Every
// request passes through a single gate that resolves the target resource
// and checks it against the actor's scope before any service logic runs.
//
// A failed lookup and a scope breach are distinct outcomes: a resource
// that does not exist yields a not-found error, while one that exists
// outside the actor's scope yields a scope violation.
package authz

import (
	"context"
	"fmt"

	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/pkg/apperrors"
)

// Actor is the authenticated caller as seen by the gate
type Actor struct {
	UserID         int64
	Role           models.Role
	OrganisationID *int64
	DepartmentID   *int64
}

// ActorFromUser builds an Actor from a loaded user record
func ActorFromUser(user *models.User) Actor {
	return Actor{
		UserID:         user.ID,
		Role:           user.Role,
		OrganisationID: user.OrganisationID,
		DepartmentID:   user.DepartmentID,
	}
}

// Scope is a record-visibility predicate derived from an actor. Nil
// fields leave that axis unrestricted; repository list queries apply the
// set fields as SQL conditions so a single query returns exactly the
// actor's subtree.
type Scope struct {
	OrganisationID *int64
	DepartmentID   *int64
	FacultyID      *int64
}

// ScopeFilter derives the visibility predicate for an actor
func ScopeFilter(actor Actor) (Scope, error) {
	switch actor.Role {
	case models.RoleSystemAdmin:
		return Scope{}, nil
	case models.RoleOrgAdmin:
		if actor.OrganisationID == nil {
			return Scope{}, apperrors.ErrScopeViolation
		}
		return Scope{OrganisationID: actor.OrganisationID}, nil
	case models.RoleDeptAdmin:
		if actor.DepartmentID == nil {
			return Scope{}, apperrors.ErrScopeViolation
		}
		return Scope{DepartmentID: actor.DepartmentID}, nil
	case models.RoleFaculty:
		if actor.DepartmentID == nil {
			return Scope{}, apperrors.ErrScopeViolation
		}
		return Scope{DepartmentID: actor.DepartmentID, FacultyID: &actor.UserID}, nil
	default:
		return Scope{}, apperrors.ErrPermissionDenied
	}
}

// CanCreateRole reports whether an actor role may create accounts with the
// target role. Each role creates roles below its own level; the system
// admin may create any role, with the single-admin constraints enforced
// separately at insert time.
func CanCreateRole(actor, target models.Role) bool {
	switch actor {
	case models.RoleSystemAdmin:
		return target.Valid()
	case models.RoleOrgAdmin:
		return target == models.RoleDeptAdmin || target == models.RoleFaculty
	case models.RoleDeptAdmin:
		return target == models.RoleFaculty
	default:
		return false
	}
}

type departmentReader interface {
	GetByID(ctx context.Context, id int64) (*models.Department, error)
}

type subjectReader interface {
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	GetByDepartmentID(ctx context.Context, departmentID int64) ([]*models.Subject, error)
	GetByFacultyID(ctx context.Context, userID int64) ([]*models.Subject, error)
	IsFacultyAssigned(ctx context.Context, subjectID, userID int64) (bool, error)
}

type userReader interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
}

// Authorizer resolves resources and enforces scope boundaries
type Authorizer struct {
	departments departmentReader
	subjects    subjectReader
	users       userReader
}

// NewAuthorizer creates the authorization gate
func NewAuthorizer(departments departmentReader, subjects subjectReader, users userReader) *Authorizer {
	return &Authorizer{
		departments: departments,
		subjects:    subjects,
		users:       users,
	}
}

// ResolveOrganisation checks that the actor may act within the given
// organisation.
func (a *Authorizer) ResolveOrganisation(actor Actor, organisationID int64) error {
	if actor.Role == models.RoleSystemAdmin {
		return nil
	}
	if actor.OrganisationID == nil || *actor.OrganisationID != organisationID {
		return apperrors.ErrScopeViolation
	}
	return nil
}

// ResolveDepartment loads a department and checks it falls inside the
// actor's scope. The not-found outcome is preserved so callers can tell a
// missing department from a forbidden one.
func (a *Authorizer) ResolveDepartment(ctx context.Context, actor Actor, departmentID int64) (*models.Department, error) {
	department, err := a.departments.GetByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleSystemAdmin:
		return department, nil
	case models.RoleOrgAdmin:
		if actor.OrganisationID == nil || *actor.OrganisationID != department.OrganisationID {
			return nil, apperrors.ErrScopeViolation
		}
		return department, nil
	case models.RoleDeptAdmin, models.RoleFaculty:
		if actor.DepartmentID == nil || *actor.DepartmentID != department.ID {
			return nil, apperrors.ErrScopeViolation
		}
		return department, nil
	default:
		return nil, apperrors.ErrScopeViolation
	}
}

// ResolveSubject loads a subject and checks the actor can act on it. A
// faculty actor must additionally be assigned to the subject; department
// membership alone is not enough.
func (a *Authorizer) ResolveSubject(ctx context.Context, actor Actor, subjectID int64) (*models.Subject, *models.Department, error) {
	subject, err := a.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return nil, nil, err
	}

	department, err := a.ResolveDepartment(ctx, actor, subject.DepartmentID)
	if err != nil {
		return nil, nil, err
	}

	if actor.Role == models.RoleFaculty {
		assigned, err := a.subjects.IsFacultyAssigned(ctx, subject.ID, actor.UserID)
		if err != nil {
			return nil, nil, err
		}
		if !assigned {
			return nil, nil, apperrors.ErrScopeViolation
		}
	}

	return subject, department, nil
}

// ValidateFaculties checks that every referenced user exists, carries the
// FACULTY role and belongs to the given department.
func (a *Authorizer) ValidateFaculties(ctx context.Context, departmentID int64, facultyIDs []int64) error {
	if len(facultyIDs) == 0 {
		return nil
	}

	users, err := a.users.GetByIDs(ctx, facultyIDs)
	if err != nil {
		return err
	}

	byID := make(map[int64]*models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	for _, id := range facultyIDs {
		user, ok := byID[id]
		if !ok {
			return apperrors.NewValidationError(fmt.Sprintf("faculty user %d not found", id))
		}
		if user.Role != models.RoleFaculty {
			return apperrors.NewValidationError(fmt.Sprintf("user %d is not a faculty member", id))
		}
		if user.DepartmentID == nil || *user.DepartmentID != departmentID {
			return apperrors.NewValidationError(fmt.Sprintf("faculty user %d belongs to another department", id))
		}
	}

	return nil
}

// VisibleSubjects returns the subjects whose lectures the actor may see:
// the whole department for admins, assigned subjects only for faculty.
func (a *Authorizer) VisibleSubjects(ctx context.Context, actor Actor, departmentID int64) ([]*models.Subject, error) {
	if _, err := a.ResolveDepartment(ctx, actor, departmentID); err != nil {
		return nil, err
	}

	if actor.Role == models.RoleFaculty {
		return a.subjects.GetByFacultyID(ctx, actor.UserID)
	}
	return a.subjects.GetByDepartmentID(ctx, departmentID)
}
