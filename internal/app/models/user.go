package models

import (
	"time"
)

// Role defines the actor role type. Roles form a strict hierarchy: every
// role below SYSTEM_ADMIN is scoped to a node of the organisation tree.
type Role string

const (
	RoleSystemAdmin Role = "SYSTEM_ADMIN"
	RoleOrgAdmin    Role = "ORG_ADMIN"
	RoleDeptAdmin   Role = "DEPT_ADMIN"
	RoleFaculty     Role = "FACULTY"
)

// Roles lists all valid roles.
var Roles = []Role{RoleSystemAdmin, RoleOrgAdmin, RoleDeptAdmin, RoleFaculty}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystemAdmin, RoleOrgAdmin, RoleDeptAdmin, RoleFaculty:
		return true
	}
	return false
}

// User defines the actor model based on the 'users' table. A single row
// carries every role variant; OrganisationID and DepartmentID are set
// according to the role's scope (both nil for SYSTEM_ADMIN, only
// OrganisationID for ORG_ADMIN, both for DEPT_ADMIN and FACULTY).
type User struct {
	ID             int64         `json:"id" db:"id"`
	Name           string        `json:"name" db:"name"`
	Email          string        `json:"email" db:"email"`
	Password       string        `json:"-" db:"password"`
	Role           Role          `json:"role" db:"role"`
	IsActive       bool          `json:"isActive" db:"is_active"`
	OrganisationID *int64        `json:"organisationId,omitempty" db:"organisation_id"`
	DepartmentID   *int64        `json:"departmentId,omitempty" db:"department_id"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
	Organisation   *Organisation `json:"organisation,omitempty"` // Relation, no db tag
	Department     *Department   `json:"department,omitempty"`   // Relation, no db tag
}
