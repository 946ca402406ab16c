package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/logger"
)

// LectureRepository handles database operations for lectures. The
// attendance sheet and image references are stored as jsonb documents.
type LectureRepository struct {
	db *pgxpool.Pool
}

// NewLectureRepository creates a new lecture repository
func NewLectureRepository(db *pgxpool.Pool) *LectureRepository {
	return &LectureRepository{
		db: db,
	}
}

const lectureColumns = `id, subject_id, division, batch, attendance, images, annotated_images, created_at, updated_at`

func scanLecture(row pgx.Row) (*models.Lecture, error) {
	var lecture models.Lecture
	err := row.Scan(
		&lecture.ID,
		&lecture.SubjectID,
		&lecture.Division,
		&lecture.Batch,
		&lecture.Attendance,
		&lecture.Images,
		&lecture.AnnotatedImages,
		&lecture.CreatedAt,
		&lecture.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lecture, nil
}

// Create inserts a lecture shell. Attendance and image references are
// filled in later by Finalize once enrichment succeeds.
func (r *LectureRepository) Create(ctx context.Context, lecture *models.Lecture) error {
	query := `
		INSERT INTO lectures (subject_id, division, batch, attendance, images, annotated_images)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		lecture.SubjectID, lecture.Division, lecture.Batch,
		lecture.Attendance, lecture.Images, lecture.AnnotatedImages,
	).Scan(&lecture.ID, &lecture.CreatedAt, &lecture.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", lecture.SubjectID).Msg("Error creating lecture")
		return fmt.Errorf("error creating lecture: %w", err)
	}

	return nil
}

// GetByID retrieves a lecture by ID
func (r *LectureRepository) GetByID(ctx context.Context, id int64) (*models.Lecture, error) {
	query := `SELECT ` + lectureColumns + ` FROM lectures WHERE id = $1`

	lecture, err := scanLecture(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLectureNotFound
		}
		return nil, fmt.Errorf("error retrieving lecture: %w", err)
	}

	return lecture, nil
}

// LectureFilter narrows List results
type LectureFilter struct {
	SubjectID int64
	Date      *time.Time
}

// ListBySubjectIDs retrieves lectures for the given subjects, optionally
// narrowed by the filter. Results are newest first.
func (r *LectureRepository) ListBySubjectIDs(ctx context.Context, subjectIDs []int64, filter LectureFilter) ([]*models.Lecture, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + lectureColumns + ` FROM lectures WHERE subject_id = ANY($1)`
	args := []interface{}{subjectIDs}

	if filter.SubjectID != 0 {
		args = append(args, filter.SubjectID)
		query += fmt.Sprintf(" AND subject_id = $%d", len(args))
	}
	if filter.Date != nil {
		args = append(args, filter.Date.Format("2006-01-02"))
		query += fmt.Sprintf(" AND created_at::date = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lectures []*models.Lecture
	for rows.Next() {
		lecture, err := scanLecture(rows)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, lecture)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lectures, nil
}

// Finalize stores the derived attendance sheet and image references on a
// lecture shell.
func (r *LectureRepository) Finalize(ctx context.Context, id int64, attendance []models.AttendanceEntry, images, annotatedImages []models.ImageRef) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE lectures
		SET attendance = $1, images = $2, annotated_images = $3, updated_at = NOW()
		WHERE id = $4`,
		attendance, images, annotatedImages, id)
	if err != nil {
		return fmt.Errorf("error finalizing lecture: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLectureNotFound
	}

	return nil
}

// UpdateAttendance replaces a lecture's attendance sheet with manual
// corrections.
func (r *LectureRepository) UpdateAttendance(ctx context.Context, id int64, attendance []models.AttendanceEntry) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE lectures SET attendance = $1, updated_at = NOW() WHERE id = $2`,
		attendance, id)
	if err != nil {
		return fmt.Errorf("error updating attendance: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLectureNotFound
	}

	return nil
}

// Delete deletes a lecture by ID
func (r *LectureRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM lectures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting lecture: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLectureNotFound
	}

	return nil
}

// DeleteBySubjectID deletes every lecture of a subject and returns how
// many rows were removed.
func (r *LectureRepository) DeleteBySubjectID(ctx context.Context, subjectID int64) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM lectures WHERE subject_id = $1`, subjectID)
	if err != nil {
		return 0, fmt.Errorf("error deleting lectures: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// CountBySubjectIDs returns the number of lectures across the subjects
func (r *LectureRepository) CountBySubjectIDs(ctx context.Context, subjectIDs []int64) (int64, error) {
	if len(subjectIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM lectures WHERE subject_id = ANY($1)`, subjectIDs).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting lectures: %w", err)
	}
	return count, nil
}
