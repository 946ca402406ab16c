package models

import "time"

// Department represents a department within an organisation
type Department struct {
	ID             int64         `json:"id" db:"id"`
	OrganisationID int64         `json:"organisationId" db:"organisation_id"`
	Name           string        `json:"name" db:"name"`
	TotalSemesters int           `json:"totalSemesters" db:"total_semesters"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
	Organisation   *Organisation `json:"organisation,omitempty"` // Relation, no db tag
}
