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

// FeeTypeRepository handles database operations for fee types
type FeeTypeRepository struct {
	db *pgxpool.Pool
}

// NewFeeTypeRepository creates a new fee type repository
func NewFeeTypeRepository(db *pgxpool.Pool) *FeeTypeRepository {
	return &FeeTypeRepository{db: db}
}

func (r *FeeTypeRepository) selectQuery() squirrel.SelectBuilder {
	return psql.Select("id", "code", "name", "active", "created_at", "updated_at").From("fee_types")
}

func scanFeeType(row pgx.Row) (*models.FeeType, error) {
	var ft models.FeeType
	if err := row.Scan(&ft.ID, &ft.Code, &ft.Name, &ft.Active, &ft.CreatedAt, &ft.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFeeTypeNotFound
		}
		return nil, err
	}
	return &ft, nil
}

// Create inserts a new fee type
func (r *FeeTypeRepository) Create(ctx context.Context, ft *models.FeeType) error {
	sql, args, err := psql.Insert("fee_types").
		Columns("code", "name", "active").
		Values(ft.Code, ft.Name, ft.Active).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create fee type SQL")
		return err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&ft.ID, &ft.CreatedAt, &ft.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrFeeTypeAlreadyExists
		}
		logger.Error().Err(err).Str("code", ft.Code).Msg("Error executing create fee type query")
		return fmt.Errorf("error creating fee type: %w", err)
	}
	return nil
}

// GetByID retrieves a fee type by ID
func (r *FeeTypeRepository) GetByID(ctx context.Context, id int64) (*models.FeeType, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get fee type SQL")
		return nil, err
	}
	return scanFeeType(r.db.QueryRow(ctx, sql, args...))
}

// List retrieves fee types ordered by name. A non-nil active filters on the flag.
func (r *FeeTypeRepository) List(ctx context.Context, active *bool) ([]*models.FeeType, error) {
	builder := r.selectQuery().OrderBy("name ASC")
	if active != nil {
		builder = builder.Where(squirrel.Eq{"active": *active})
	}
	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list fee types SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list fee types query")
		return nil, fmt.Errorf("error listing fee types: %w", err)
	}
	defer rows.Close()

	types := make([]*models.FeeType, 0)
	for rows.Next() {
		ft, err := scanFeeType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, ft)
	}
	return types, rows.Err()
}

// Update changes the name and active flag of a fee type. The code is immutable.
func (r *FeeTypeRepository) Update(ctx context.Context, ft *models.FeeType) error {
	sql, args, err := psql.Update("fee_types").
		Set("name", ft.Name).
		Set("active", ft.Active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ft.ID}).
		Suffix("RETURNING code, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update fee type SQL")
		return err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&ft.Code, &ft.CreatedAt, &ft.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrFeeTypeNotFound
		}
		logger.Error().Err(err).Int64("id", ft.ID).Msg("Error executing update fee type query")
		return fmt.Errorf("error updating fee type: %w", err)
	}
	return nil
}

// Delete removes a fee type that no fee definition references
func (r *FeeTypeRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("fee_types").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete fee type SQL")
		return err
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrFeeTypeInUse
		}
		logger.Error().Err(err).Int64("id", id).Msg("Error executing delete fee type query")
		return fmt.Errorf("error deleting fee type: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFeeTypeNotFound
	}
	return nil
}
