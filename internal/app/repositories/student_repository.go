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

// StudentRepository handles database operations for students. Reference
// images and face embeddings are stored as jsonb documents on the row.
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
	}
}

const studentColumns = `id, department_id, name, roll_number, division, batch, email, semester, is_alumni, images, embeddings, created_at, updated_at`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var student models.Student
	err := row.Scan(
		&student.ID,
		&student.DepartmentID,
		&student.Name,
		&student.RollNumber,
		&student.Division,
		&student.Batch,
		&student.Email,
		&student.Semester,
		&student.IsAlumni,
		&student.Images,
		&student.Embeddings,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Create creates a new student record
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (department_id, name, roll_number, division, batch, email, semester, is_alumni, images, embeddings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		student.DepartmentID, student.Name, student.RollNumber, student.Division,
		student.Batch, student.Email, student.Semester, student.Images, student.Embeddings,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_roll_number_key") {
			return apperrors.ErrRollNumberAlreadyExists
		}
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		logger.Error().Err(err).Str("rollNumber", student.RollNumber).Msg("Error creating student")
		return fmt.Errorf("error creating student: %w", err)
	}

	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	student, err := scanStudent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return student, nil
}

// GetByRollNumber retrieves a student by roll number
func (r *StudentRepository) GetByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE roll_number = $1`

	student, err := scanStudent(r.db.QueryRow(ctx, query, rollNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student by roll number: %w", err)
	}

	return student, nil
}

// StudentFilter narrows List results within a department
type StudentFilter struct {
	Division string
	Batch    string
	Semester int
	IsAlumni *bool
}

// List retrieves students of a department matching the filter
func (r *StudentRepository) List(ctx context.Context, departmentID int64, filter StudentFilter) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE department_id = $1`
	args := []interface{}{departmentID}

	if filter.Division != "" {
		args = append(args, filter.Division)
		query += fmt.Sprintf(" AND division = $%d", len(args))
	}
	if filter.Batch != "" {
		args = append(args, filter.Batch)
		query += fmt.Sprintf(" AND batch = $%d", len(args))
	}
	if filter.Semester != 0 {
		args = append(args, filter.Semester)
		query += fmt.Sprintf(" AND semester = $%d", len(args))
	}
	if filter.IsAlumni != nil {
		args = append(args, *filter.IsAlumni)
		query += fmt.Sprintf(" AND is_alumni = $%d", len(args))
	}
	query += " ORDER BY roll_number"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStudents(rows)
}

// GetCohort retrieves the active students a lecture draws attendance from:
// same department, semester and division, optionally narrowed to a batch.
func (r *StudentRepository) GetCohort(ctx context.Context, departmentID int64, semester int, division string, batch *string) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + `
		FROM students
		WHERE department_id = $1 AND semester = $2 AND division = $3 AND NOT is_alumni`
	args := []interface{}{departmentID, semester, division}

	if batch != nil && *batch != "" {
		args = append(args, *batch)
		query += fmt.Sprintf(" AND batch = $%d", len(args))
	}
	query += " ORDER BY roll_number"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStudents(rows)
}

func collectStudents(rows pgx.Rows) ([]*models.Student, error) {
	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

// Update updates a student's profile fields
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students
		SET name = $1, division = $2, batch = $3, email = $4, semester = $5, updated_at = NOW()
		WHERE id = $6
	`

	cmdTag, err := r.db.Exec(ctx, query,
		student.Name, student.Division, student.Batch, student.Email, student.Semester, student.ID)
	if err != nil {
		return fmt.Errorf("error updating student: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// UpdateAssets replaces a student's stored images and embeddings
func (r *StudentRepository) UpdateAssets(ctx context.Context, id int64, images []models.ImageRef, embeddings []models.Embedding) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE students SET images = $1, embeddings = $2, updated_at = NOW() WHERE id = $3`,
		images, embeddings, id)
	if err != nil {
		return fmt.Errorf("error updating student assets: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// Delete deletes a student by ID
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// DeleteByDepartmentID deletes every student of a department and returns
// how many rows were removed.
func (r *StudentRepository) DeleteByDepartmentID(ctx context.Context, departmentID int64) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM students WHERE department_id = $1`, departmentID)
	if err != nil {
		return 0, fmt.Errorf("error deleting students: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// Promotion is one student's semester move computed by a promotion run
type Promotion struct {
	StudentID int64
	Semester  int
	IsAlumni  bool
}

// ApplyPromotions writes a promotion run's results in one transaction
func (r *StudentRepository) ApplyPromotions(ctx context.Context, promotions []Promotion) error {
	if len(promotions) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range promotions {
		if _, err := tx.Exec(ctx,
			`UPDATE students SET semester = $1, is_alumni = $2, updated_at = NOW() WHERE id = $3`,
			p.Semester, p.IsAlumni, p.StudentID); err != nil {
			return fmt.Errorf("error promoting student %d: %w", p.StudentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing promotions: %w", err)
	}

	return nil
}

// CountByDepartmentID returns active (non-alumni) student counts
func (r *StudentRepository) CountByDepartmentID(ctx context.Context, departmentID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM students WHERE department_id = $1 AND NOT is_alumni`, departmentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting students: %w", err)
	}
	return count, nil
}

// CountByOrganisationID returns active student counts across an organisation
func (r *StudentRepository) CountByOrganisationID(ctx context.Context, organisationID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM students st
		JOIN departments d ON d.id = st.department_id
		WHERE d.organisation_id = $1 AND NOT st.is_alumni`, organisationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting students: %w", err)
	}
	return count, nil
}
