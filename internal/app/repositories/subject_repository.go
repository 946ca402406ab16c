package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/logger"
)

// SubjectRepository handles database operations for subjects and their
// faculty assignments
type SubjectRepository struct {
	db *pgxpool.Pool
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{
		db: db,
	}
}

const subjectSelect = `
	SELECT s.id, s.department_id, s.name, s.semester, s.is_active,
	       COALESCE(ARRAY_AGG(sf.user_id) FILTER (WHERE sf.user_id IS NOT NULL), '{}'),
	       s.created_at, s.updated_at
	FROM subjects s
	LEFT JOIN subject_faculties sf ON sf.subject_id = s.id
`

func scanSubject(row pgx.Row) (*models.Subject, error) {
	var subject models.Subject
	err := row.Scan(
		&subject.ID,
		&subject.DepartmentID,
		&subject.Name,
		&subject.Semester,
		&subject.IsActive,
		&subject.FacultyIDs,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create inserts a subject together with its faculty assignments in a
// single transaction.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO subjects (department_id, name, semester, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, is_active, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		subject.DepartmentID, subject.Name, subject.Semester,
	).Scan(&subject.ID, &subject.IsActive, &subject.CreatedAt, &subject.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Str("name", subject.Name).Msg("Error creating subject")
		return fmt.Errorf("error creating subject: %w", err)
	}

	for _, userID := range subject.FacultyIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO subject_faculties (subject_id, user_id) VALUES ($1, $2)`,
			subject.ID, userID); err != nil {
			return fmt.Errorf("error assigning faculty %d: %w", userID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing subject creation: %w", err)
	}

	return nil
}

// GetByID retrieves a subject by ID, including inactive ones
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	query := subjectSelect + `
	WHERE s.id = $1
	GROUP BY s.id`

	subject, err := scanSubject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error retrieving subject: %w", err)
	}

	return subject, nil
}

// GetByDepartmentID retrieves all active subjects of a department
func (r *SubjectRepository) GetByDepartmentID(ctx context.Context, departmentID int64) ([]*models.Subject, error) {
	query := subjectSelect + `
	WHERE s.department_id = $1 AND s.is_active
	GROUP BY s.id
	ORDER BY s.semester, s.name`

	rows, err := r.db.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSubjects(rows)
}

// GetByFacultyID retrieves the active subjects a faculty member is
// assigned to
func (r *SubjectRepository) GetByFacultyID(ctx context.Context, userID int64) ([]*models.Subject, error) {
	query := subjectSelect + `
	WHERE s.is_active AND s.id IN (SELECT subject_id FROM subject_faculties WHERE user_id = $1)
	GROUP BY s.id
	ORDER BY s.semester, s.name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSubjects(rows)
}

// ListVisible retrieves every active subject inside a visibility scope.
// The scope conditions join against departments, so an organisation-wide
// listing spans all its departments in one query.
func (r *SubjectRepository) ListVisible(ctx context.Context, scope authz.Scope) ([]*models.Subject, error) {
	query := subjectSelect + `
	JOIN departments d ON d.id = s.department_id
	WHERE s.is_active`

	var args []any
	if scope.OrganisationID != nil {
		args = append(args, *scope.OrganisationID)
		query += fmt.Sprintf(" AND d.organisation_id = $%d", len(args))
	}
	if scope.DepartmentID != nil {
		args = append(args, *scope.DepartmentID)
		query += fmt.Sprintf(" AND s.department_id = $%d", len(args))
	}
	if scope.FacultyID != nil {
		args = append(args, *scope.FacultyID)
		query += fmt.Sprintf(" AND s.id IN (SELECT subject_id FROM subject_faculties WHERE user_id = $%d)", len(args))
	}

	query += `
	GROUP BY s.id
	ORDER BY s.department_id, s.semester, s.name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSubjects(rows)
}

func collectSubjects(rows pgx.Rows) ([]*models.Subject, error) {
	var subjects []*models.Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subjects, nil
}

// Update updates a subject and replaces its faculty assignments when
// facultyIDs is non-nil.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject, facultyIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE subjects
		SET name = $1, semester = $2, updated_at = NOW()
		WHERE id = $3
	`

	cmdTag, err := tx.Exec(ctx, query, subject.Name, subject.Semester, subject.ID)
	if err != nil {
		return fmt.Errorf("error updating subject: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}

	if facultyIDs != nil {
		if _, err := tx.Exec(ctx,
			`DELETE FROM subject_faculties WHERE subject_id = $1`, subject.ID); err != nil {
			return fmt.Errorf("error clearing faculty assignments: %w", err)
		}
		for _, userID := range facultyIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO subject_faculties (subject_id, user_id) VALUES ($1, $2)`,
				subject.ID, userID); err != nil {
				return fmt.Errorf("error assigning faculty %d: %w", userID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing subject update: %w", err)
	}

	return nil
}

// Deactivate soft-deletes a subject. Its lectures stay queryable.
func (r *SubjectRepository) Deactivate(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE subjects SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deactivating subject: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}

	return nil
}

// DeactivateByDepartmentID soft-deletes every active subject of a
// department and returns how many were affected.
func (r *SubjectRepository) DeactivateByDepartmentID(ctx context.Context, departmentID int64) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE subjects SET is_active = FALSE, updated_at = NOW() WHERE department_id = $1 AND is_active`,
		departmentID)
	if err != nil {
		return 0, fmt.Errorf("error deactivating subjects: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// IsFacultyAssigned reports whether the user is assigned to the subject
func (r *SubjectRepository) IsFacultyAssigned(ctx context.Context, subjectID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM subject_faculties WHERE subject_id = $1 AND user_id = $2)`,
		subjectID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking faculty assignment: %w", err)
	}
	return exists, nil
}

// CountByDepartmentID returns the number of active subjects in a department
func (r *SubjectRepository) CountByDepartmentID(ctx context.Context, departmentID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subjects WHERE department_id = $1 AND is_active`, departmentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting subjects: %w", err)
	}
	return count, nil
}
