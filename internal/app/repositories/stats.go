package repositories

import (
	"context"
	"fmt"

	"github.com/presentia/backend/internal/app/models"
)

// DepartmentCount is a per-department tally used by the dashboards
type DepartmentCount struct {
	DepartmentName string
	Count          int64
}

// CountByRole returns user counts grouped by role
func (r *UserRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("error counting users by role: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var role string
		var count int64
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// CountGroupedByDepartment returns active student counts per department.
// organisationID of zero means all organisations.
func (r *StudentRepository) CountGroupedByDepartment(ctx context.Context, organisationID int64) ([]DepartmentCount, error) {
	query := `
		SELECT d.name, COUNT(st.id)
		FROM departments d
		LEFT JOIN students st ON st.department_id = d.id AND NOT st.is_alumni
	`
	args := []interface{}{}
	if organisationID != 0 {
		args = append(args, organisationID)
		query += " WHERE d.organisation_id = $1"
	}
	query += " GROUP BY d.id, d.name ORDER BY d.name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting students by department: %w", err)
	}
	defer rows.Close()

	var counts []DepartmentCount
	for rows.Next() {
		var dc DepartmentCount
		if err := rows.Scan(&dc.DepartmentName, &dc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// CountFacultyByOrganisationID returns the number of faculty accounts in
// an organisation
func (r *UserRepository) CountFacultyByOrganisationID(ctx context.Context, organisationID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1 AND organisation_id = $2`,
		models.RoleFaculty, organisationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting faculty: %w", err)
	}
	return count, nil
}

// CountAllActive returns the platform-wide active student count
func (r *StudentRepository) CountAllActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM students WHERE NOT is_alumni`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting students: %w", err)
	}
	return count, nil
}

// ListRecent retrieves the newest lectures across the given subjects,
// oldest of the window first so callers can chart a trend. A nil subject
// list means all lectures.
func (r *LectureRepository) ListRecent(ctx context.Context, subjectIDs []int64, limit int) ([]*models.Lecture, error) {
	query := `SELECT ` + lectureColumns + ` FROM lectures`
	args := []interface{}{}
	if subjectIDs != nil {
		args = append(args, subjectIDs)
		query += " WHERE subject_id = ANY($1)"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

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

	// Reverse into chronological order.
	for i, j := 0, len(lectures)-1; i < j; i, j = i+1, j-1 {
		lectures[i], lectures[j] = lectures[j], lectures[i]
	}

	return lectures, nil
}
