package models

import "time"

// Organisation represents a root tenant of the hierarchy
type Organisation struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Website   string    `json:"website" db:"website"`
	Contact   string    `json:"contact" db:"contact"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
