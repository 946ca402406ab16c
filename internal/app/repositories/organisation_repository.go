package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/dberrors"
	"github.com/presentia/backend/internal/pkg/logger"
)

// OrganisationRepository handles database operations for organisations
type OrganisationRepository struct {
	db *pgxpool.Pool
}

// NewOrganisationRepository creates a new organisation repository
func NewOrganisationRepository(db *pgxpool.Pool) *OrganisationRepository {
	return &OrganisationRepository{
		db: db,
	}
}

// Create creates a new organisation
func (r *OrganisationRepository) Create(ctx context.Context, organisation *models.Organisation) error {
	query := `
		INSERT INTO organisations (name, address, website, contact)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		organisation.Name, organisation.Address, organisation.Website, organisation.Contact,
	).Scan(&organisation.ID, &organisation.CreatedAt, &organisation.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "organisations_contact_key") {
			return apperrors.ErrContactAlreadyExists
		}
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		logger.Error().Err(err).Str("name", organisation.Name).Msg("Error creating organisation")
		return fmt.Errorf("error creating organisation: %w", err)
	}

	return nil
}

// GetByID retrieves an organisation by ID
func (r *OrganisationRepository) GetByID(ctx context.Context, id int64) (*models.Organisation, error) {
	query := `
		SELECT id, name, address, website, contact, created_at, updated_at
		FROM organisations
		WHERE id = $1
	`

	var organisation models.Organisation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&organisation.ID,
		&organisation.Name,
		&organisation.Address,
		&organisation.Website,
		&organisation.Contact,
		&organisation.CreatedAt,
		&organisation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrganisationNotFound
		}
		return nil, fmt.Errorf("error retrieving organisation: %w", err)
	}

	return &organisation, nil
}

// GetAll retrieves all organisations
func (r *OrganisationRepository) GetAll(ctx context.Context) ([]*models.Organisation, error) {
	query := `
		SELECT id, name, address, website, contact, created_at, updated_at
		FROM organisations
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var organisations []*models.Organisation
	for rows.Next() {
		var organisation models.Organisation
		if err := rows.Scan(
			&organisation.ID,
			&organisation.Name,
			&organisation.Address,
			&organisation.Website,
			&organisation.Contact,
			&organisation.CreatedAt,
			&organisation.UpdatedAt,
		); err != nil {
			return nil, err
		}
		organisations = append(organisations, &organisation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return organisations, nil
}

// Update updates an existing organisation
func (r *OrganisationRepository) Update(ctx context.Context, organisation *models.Organisation) error {
	query := `
		UPDATE organisations
		SET name = $1, address = $2, website = $3, contact = $4, updated_at = NOW()
		WHERE id = $5
	`

	cmdTag, err := r.db.Exec(ctx, query,
		organisation.Name, organisation.Address, organisation.Website, organisation.Contact, organisation.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "organisations_contact_key") {
			return apperrors.ErrContactAlreadyExists
		}
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		return fmt.Errorf("error updating organisation: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOrganisationNotFound
	}

	return nil
}

// Delete deletes an organisation by ID
func (r *OrganisationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM organisations WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error deleting organisation: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOrganisationNotFound
	}

	return nil
}

// Count returns the total number of organisations
func (r *OrganisationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM organisations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting organisations: %w", err)
	}
	return count, nil
}
