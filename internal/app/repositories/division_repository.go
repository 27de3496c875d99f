package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/dberrors"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

const divisionNameConstraint = "divisions_class_name_key"

// DivisionRepository handles database operations for divisions
type DivisionRepository struct {
	db *pgxpool.Pool
}

// NewDivisionRepository creates a new division repository
func NewDivisionRepository(db *pgxpool.Pool) *DivisionRepository {
	return &DivisionRepository{db: db}
}

func (r *DivisionRepository) selectQuery() squirrel.SelectBuilder {
	return psql.Select("d.id", "d.name", "d.class_id", "d.capacity", "d.class_teacher", "d.created_at", "d.updated_at", "c.name").
		From("divisions d").
		Join("classes c ON d.class_id = c.id")
}

func scanDivision(row pgx.Row) (*models.Division, error) {
	var d models.Division
	var className string
	if err := row.Scan(&d.ID, &d.Name, &d.ClassID, &d.Capacity, &d.ClassTeacher, &d.CreatedAt, &d.UpdatedAt, &className); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDivisionNotFound
		}
		return nil, err
	}
	d.Class = &models.Class{ID: d.ClassID, Name: className}
	return &d, nil
}

// List retrieves divisions, optionally of one class
func (r *DivisionRepository) List(ctx context.Context, classID int64) ([]*models.Division, error) {
	builder := r.selectQuery().OrderBy("c.grade_level ASC", "d.name ASC")
	if classID > 0 {
		builder = builder.Where(squirrel.Eq{"d.class_id": classID})
	}
	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list divisions SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list divisions query")
		return nil, fmt.Errorf("error listing divisions: %w", err)
	}
	defer rows.Close()

	divisions := make([]*models.Division, 0)
	for rows.Next() {
		d, err := scanDivision(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning division row")
			return nil, err
		}
		divisions = append(divisions, d)
	}
	return divisions, rows.Err()
}

// GetByID retrieves a division with its class name
func (r *DivisionRepository) GetByID(ctx context.Context, id int64) (*models.Division, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"d.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get division SQL")
		return nil, err
	}
	return scanDivision(r.db.QueryRow(ctx, sql, args...))
}

// Create inserts a new division
func (r *DivisionRepository) Create(ctx context.Context, d *models.Division) error {
	sql, args, err := psql.Insert("divisions").
		Columns("name", "class_id", "capacity", "class_teacher").
		Values(d.Name, d.ClassID, d.Capacity, d.ClassTeacher).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create division SQL")
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return r.mapWriteError(err, "create")
	}
	return nil
}

// Update replaces the editable fields of a division
func (r *DivisionRepository) Update(ctx context.Context, d *models.Division) error {
	sql, args, err := psql.Update("divisions").
		Set("name", d.Name).
		Set("class_id", d.ClassID).
		Set("capacity", d.Capacity).
		Set("class_teacher", d.ClassTeacher).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": d.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update division SQL")
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrDivisionNotFound
		}
		return r.mapWriteError(err, "update")
	}
	return nil
}

func (r *DivisionRepository) mapWriteError(err error, op string) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, divisionNameConstraint):
		return apperrors.ErrDivisionAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrClassNotFound
	}
	logger.Error().Err(err).Str("op", op).Msg("Error executing division write query")
	return fmt.Errorf("error on division %s: %w", op, err)
}

// CountEnrollments returns how many enrollments reference the division
func (r *DivisionRepository) CountEnrollments(ctx context.Context, id int64) (int, error) {
	sql, args, err := psql.Select("count(*)").From("enrollments").Where(squirrel.Eq{"division_id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count division enrollments SQL")
		return 0, err
	}
	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error executing count division enrollments query")
		return 0, fmt.Errorf("error counting division enrollments: %w", err)
	}
	return count, nil
}

// Delete removes a division
func (r *DivisionRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("divisions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete division SQL")
		return err
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDivisionHasStudents
		}
		logger.Error().Err(err).Int64("id", id).Msg("Error executing delete division query")
		return fmt.Errorf("error deleting division: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDivisionNotFound
	}
	return nil
}
