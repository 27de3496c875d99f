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
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// ActiveEnrollmentStatus marks enrollments counted in headcounts
const ActiveEnrollmentStatus = "active"

// ClassWithCount is a class and the number of actively enrolled students
type ClassWithCount struct {
	Class        *models.Class
	StudentCount int
}

// ClassRepository handles database operations for classes and bus stops
type ClassRepository struct {
	db *pgxpool.Pool
}

// NewClassRepository creates a new class repository
func NewClassRepository(db *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) selectQuery() squirrel.SelectBuilder {
	// question placeholders; the outer builder renumbers them
	activeCount := squirrel.Select("count(*)").
		From("enrollments e").
		Where("e.class_id = c.id").
		Where(squirrel.Eq{"e.status": ActiveEnrollmentStatus})
	return psql.Select("c.id", "c.name", "c.grade_level", "c.capacity", "c.created_at", "c.updated_at").
		Column(squirrel.Alias(activeCount, "student_count")).
		From("classes c")
}

func scanClass(row pgx.Row) (*ClassWithCount, error) {
	var c models.Class
	var count int
	if err := row.Scan(&c.ID, &c.Name, &c.GradeLevel, &c.Capacity, &c.CreatedAt, &c.UpdatedAt, &count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrClassNotFound
		}
		return nil, err
	}
	return &ClassWithCount{Class: &c, StudentCount: count}, nil
}

// List retrieves all classes with their headcounts ordered by grade
func (r *ClassRepository) List(ctx context.Context) ([]*ClassWithCount, error) {
	sql, args, err := r.selectQuery().OrderBy("c.grade_level ASC", "c.name ASC").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list classes SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list classes query")
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	defer rows.Close()

	classes := make([]*ClassWithCount, 0)
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning class row")
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// GetByID retrieves a class with its headcount
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*ClassWithCount, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get class SQL")
		return nil, err
	}
	return scanClass(r.db.QueryRow(ctx, sql, args...))
}

// GetBusStop retrieves a bus stop and the number of actively enrolled students using it
func (r *ClassRepository) GetBusStop(ctx context.Context, id int64) (*models.BusStop, int, error) {
	sql, args, err := psql.Select("bs.id", "bs.name", "bs.route").
		Column("(SELECT count(DISTINCT s.id) FROM students s JOIN enrollments e ON e.student_id = s.id "+
			"WHERE s.bus_stop_id = bs.id AND e.status = ?) AS student_count", ActiveEnrollmentStatus).
		From("bus_stops bs").
		Where(squirrel.Eq{"bs.id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get bus stop SQL")
		return nil, 0, err
	}

	var stop models.BusStop
	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&stop.ID, &stop.Name, &stop.Route, &count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, apperrors.ErrBusStopNotFound
		}
		logger.Error().Err(err).Int64("id", id).Msg("Error executing get bus stop query")
		return nil, 0, fmt.Errorf("error retrieving bus stop: %w", err)
	}
	return &stop, count, nil
}
