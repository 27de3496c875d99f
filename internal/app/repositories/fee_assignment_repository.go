package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/dberrors"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// FeeAssignmentFilter narrows the assignment listing
type FeeAssignmentFilter struct {
	Target   models.AssignmentTarget
	EntityID int64
	// ActiveOn keeps only assignments whose date range covers the day
	ActiveOn *time.Time
}

// FeeAssignmentRepository handles database operations for fee assignments
type FeeAssignmentRepository struct {
	db *pgxpool.Pool
}

// NewFeeAssignmentRepository creates a new fee assignment repository
func NewFeeAssignmentRepository(db *pgxpool.Pool) *FeeAssignmentRepository {
	return &FeeAssignmentRepository{db: db}
}

func (r *FeeAssignmentRepository) selectQuery() squirrel.SelectBuilder {
	columns := append([]string{
		"fa.id", "fa.fee_definition_id", "fa.class_id", "fa.bus_stop_id", "fa.student_id",
		"fa.priority", "fa.start_date", "fa.end_date", "fa.created_at",
		"c.name", "bs.name",
	}, feeDefinitionColumns...)
	return psql.Select(columns...).
		From("fee_assignments fa").
		Join("fee_definitions fd ON fa.fee_definition_id = fd.id").
		LeftJoin("fee_types ft ON fd.fee_type_id = ft.id").
		LeftJoin("classes c ON fa.class_id = c.id").
		LeftJoin("bus_stops bs ON fa.bus_stop_id = bs.id")
}

// scanFeeAssignment scans an assignment together with its populated fee
func scanFeeAssignment(row pgx.Row) (*models.FeeAssignment, error) {
	var (
		fa          models.FeeAssignment
		fd          models.FeeDefinition
		className   *string
		busStopName *string
		typeID      *int64
		typeCode    *string
		typeName    *string
		typeActive  *bool
	)
	err := row.Scan(
		&fa.ID, &fa.FeeDefinitionID, &fa.ClassID, &fa.BusStopID, &fa.StudentID,
		&fa.Priority, &fa.StartDate, &fa.EndDate, &fa.CreatedAt,
		&className, &busStopName,
		&fd.ID, &fd.Name, &fd.TypeID, &fd.BaseAmount, &fd.Frequency, &fd.Currency,
		&fd.Description, &fd.Installments, &fd.CreatedAt, &fd.UpdatedAt,
		&typeID, &typeCode, &typeName, &typeActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFeeAssignmentNotFound
		}
		return nil, err
	}
	if typeID != nil {
		fd.Type = &models.FeeType{ID: *typeID, Code: deref(typeCode), Name: deref(typeName), Active: deref(typeActive)}
	}
	if fd.Installments == nil {
		fd.Installments = []models.Installment{}
	}
	fa.Fee = &fd
	if fa.ClassID != nil {
		fa.Class = &models.Class{ID: *fa.ClassID, Name: deref(className)}
	}
	if fa.BusStopID != nil {
		fa.BusStop = &models.BusStop{ID: *fa.BusStopID, Name: deref(busStopName)}
	}
	return &fa, nil
}

// List retrieves assignments ordered by priority, newest first within a priority
func (r *FeeAssignmentRepository) List(ctx context.Context, filter FeeAssignmentFilter) ([]*models.FeeAssignment, error) {
	builder := r.selectQuery().OrderBy("fa.priority DESC", "fa.id ASC")

	switch filter.Target {
	case models.TargetClass:
		builder = builder.Where(squirrel.NotEq{"fa.class_id": nil})
		if filter.EntityID > 0 {
			builder = builder.Where(squirrel.Eq{"fa.class_id": filter.EntityID})
		}
	case models.TargetBusStop:
		builder = builder.Where(squirrel.NotEq{"fa.bus_stop_id": nil})
		if filter.EntityID > 0 {
			builder = builder.Where(squirrel.Eq{"fa.bus_stop_id": filter.EntityID})
		}
	case models.TargetStudent:
		builder = builder.Where(squirrel.NotEq{"fa.student_id": nil})
		if filter.EntityID > 0 {
			builder = builder.Where(squirrel.Eq{"fa.student_id": filter.EntityID})
		}
	}
	if filter.ActiveOn != nil {
		day := *filter.ActiveOn
		builder = builder.Where(squirrel.Or{squirrel.Eq{"fa.start_date": nil}, squirrel.LtOrEq{"fa.start_date": day}}).
			Where(squirrel.Or{squirrel.Eq{"fa.end_date": nil}, squirrel.GtOrEq{"fa.end_date": day}})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list fee assignments SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list fee assignments query")
		return nil, fmt.Errorf("error listing fee assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]*models.FeeAssignment, 0)
	for rows.Next() {
		fa, err := scanFeeAssignment(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning fee assignment row")
			return nil, err
		}
		assignments = append(assignments, fa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}
	return assignments, nil
}

// GetByID retrieves one assignment with its fee populated
func (r *FeeAssignmentRepository) GetByID(ctx context.Context, id int64) (*models.FeeAssignment, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"fa.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get fee assignment SQL")
		return nil, err
	}
	return scanFeeAssignment(r.db.QueryRow(ctx, sql, args...))
}

// Create inserts a new fee assignment
func (r *FeeAssignmentRepository) Create(ctx context.Context, fa *models.FeeAssignment) error {
	sql, args, err := psql.Insert("fee_assignments").
		Columns("fee_definition_id", "class_id", "bus_stop_id", "student_id", "priority", "start_date", "end_date").
		Values(fa.FeeDefinitionID, fa.ClassID, fa.BusStopID, fa.StudentID, fa.Priority, fa.StartDate, fa.EndDate).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create fee assignment SQL")
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&fa.ID, &fa.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("referenced fee definition or target does not exist")
		}
		logger.Error().Err(err).Msg("Error executing create fee assignment query")
		return fmt.Errorf("error creating fee assignment: %w", err)
	}
	return nil
}

// Delete removes a fee assignment
func (r *FeeAssignmentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("fee_assignments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete fee assignment SQL")
		return err
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error executing delete fee assignment query")
		return fmt.Errorf("error deleting fee assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFeeAssignmentNotFound
	}
	return nil
}
