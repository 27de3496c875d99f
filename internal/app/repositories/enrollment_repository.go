package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// EnrollmentFilter narrows the enrollment listing
type EnrollmentFilter struct {
	ClassID    int64
	DivisionID int64
	Status     string
}

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List retrieves enrollments with student, class, division and academic year populated,
// newest admissions first
func (r *EnrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]*models.Enrollment, error) {
	builder := psql.Select(
		"e.id", "e.student_id", "e.class_id", "e.division_id", "e.academic_year_id",
		"e.admission_type", "e.mode", "e.admission_date", "e.status",
		"s.first_name", "s.last_name", "s.gender", "s.bus_stop_id",
		"c.name", "c.grade_level", "d.name", "ay.name", "ay.is_current",
	).
		From("enrollments e").
		Join("students s ON e.student_id = s.id").
		Join("classes c ON e.class_id = c.id").
		Join("academic_years ay ON e.academic_year_id = ay.id").
		LeftJoin("divisions d ON e.division_id = d.id").
		OrderBy("e.admission_date DESC", "e.id DESC")

	if filter.ClassID > 0 {
		builder = builder.Where(squirrel.Eq{"e.class_id": filter.ClassID})
	}
	if filter.DivisionID > 0 {
		builder = builder.Where(squirrel.Eq{"e.division_id": filter.DivisionID})
	}
	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"e.status": filter.Status})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list enrollments SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list enrollments query")
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0)
	for rows.Next() {
		var (
			e            models.Enrollment
			s            models.Student
			c            models.Class
			y            models.AcademicYear
			divisionName *string
		)
		if err := rows.Scan(
			&e.ID, &e.StudentID, &e.ClassID, &e.DivisionID, &e.AcademicYearID,
			&e.AdmissionType, &e.Mode, &e.AdmissionDate, &e.Status,
			&s.FirstName, &s.LastName, &s.Gender, &s.BusStopID,
			&c.Name, &c.GradeLevel, &divisionName, &y.Name, &y.IsCurrent,
		); err != nil {
			logger.Error().Err(err).Msg("Error scanning enrollment row")
			return nil, err
		}
		s.ID, c.ID, y.ID = e.StudentID, e.ClassID, e.AcademicYearID
		e.Student, e.Class, e.AcademicYear = &s, &c, &y
		if e.DivisionID != nil {
			e.Division = &models.Division{ID: *e.DivisionID, Name: deref(divisionName), ClassID: e.ClassID}
		}
		enrollments = append(enrollments, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}
	return enrollments, nil
}
