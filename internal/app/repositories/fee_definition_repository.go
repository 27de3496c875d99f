package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/dberrors"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// FeeDefinitionListParams holds filters and paging for the definition listing
type FeeDefinitionListParams struct {
	TypeID    *int64
	Frequency string
	Page      int
	Size      int
}

// FeeDefinitionRepository handles database operations for fee definitions
type FeeDefinitionRepository struct {
	db *pgxpool.Pool
}

// NewFeeDefinitionRepository creates a new fee definition repository
func NewFeeDefinitionRepository(db *pgxpool.Pool) *FeeDefinitionRepository {
	return &FeeDefinitionRepository{db: db}
}

// feeDefinitionColumns selects a definition with its type populated
var feeDefinitionColumns = []string{
	"fd.id", "fd.name", "fd.fee_type_id", "fd.base_amount", "fd.frequency", "fd.currency",
	"fd.description", "fd.installments", "fd.created_at", "fd.updated_at",
	"ft.id", "ft.code", "ft.name", "ft.active",
}

func (r *FeeDefinitionRepository) selectQuery() squirrel.SelectBuilder {
	return psql.Select(feeDefinitionColumns...).
		From("fee_definitions fd").
		LeftJoin("fee_types ft ON fd.fee_type_id = ft.id")
}

// scanFeeDefinition reads the columns of feeDefinitionColumns
func scanFeeDefinition(row pgx.Row) (*models.FeeDefinition, error) {
	var fd models.FeeDefinition
	var (
		typeID     *int64
		typeCode   *string
		typeName   *string
		typeActive *bool
	)
	err := row.Scan(
		&fd.ID, &fd.Name, &fd.TypeID, &fd.BaseAmount, &fd.Frequency, &fd.Currency,
		&fd.Description, &fd.Installments, &fd.CreatedAt, &fd.UpdatedAt,
		&typeID, &typeCode, &typeName, &typeActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFeeDefinitionNotFound
		}
		return nil, err
	}
	if typeID != nil {
		fd.Type = &models.FeeType{ID: *typeID, Code: deref(typeCode), Name: deref(typeName), Active: deref(typeActive)}
	}
	if fd.Installments == nil {
		fd.Installments = []models.Installment{}
	}
	return &fd, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Create inserts a new fee definition
func (r *FeeDefinitionRepository) Create(ctx context.Context, fd *models.FeeDefinition) error {
	if fd.Installments == nil {
		fd.Installments = []models.Installment{}
	}
	sql, args, err := psql.Insert("fee_definitions").
		Columns("name", "fee_type_id", "base_amount", "frequency", "currency", "description", "installments").
		Values(fd.Name, fd.TypeID, fd.BaseAmount, fd.Frequency, fd.Currency, fd.Description, fd.Installments).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create fee definition SQL")
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&fd.ID, &fd.CreatedAt, &fd.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrFeeTypeNotFound
		}
		logger.Error().Err(err).Msg("Error executing create fee definition query")
		return fmt.Errorf("error creating fee definition: %w", err)
	}
	return nil
}

// GetByID retrieves a fee definition with its type
func (r *FeeDefinitionRepository) GetByID(ctx context.Context, id int64) (*models.FeeDefinition, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"fd.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get fee definition SQL")
		return nil, err
	}
	return scanFeeDefinition(r.db.QueryRow(ctx, sql, args...))
}

// List retrieves a page of fee definitions ordered by name
func (r *FeeDefinitionRepository) List(ctx context.Context, params FeeDefinitionListParams) ([]*models.FeeDefinition, dto.PaginationInfo, error) {
	builder := r.selectQuery()
	countBuilder := psql.Select("count(*)").From("fee_definitions fd")

	if params.TypeID != nil {
		builder = builder.Where(squirrel.Eq{"fd.fee_type_id": *params.TypeID})
		countBuilder = countBuilder.Where(squirrel.Eq{"fd.fee_type_id": *params.TypeID})
	}
	if params.Frequency != "" {
		builder = builder.Where(squirrel.Eq{"fd.frequency": params.Frequency})
		countBuilder = countBuilder.Where(squirrel.Eq{"fd.frequency": params.Frequency})
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count fee definitions SQL")
		return nil, dto.PaginationInfo{}, err
	}
	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error executing count fee definitions query")
		return nil, dto.PaginationInfo{}, fmt.Errorf("error counting fee definitions: %w", err)
	}

	pagination := helpers.NewPaginationInfo(totalItems, params.Page, params.Size)
	if totalItems == 0 {
		return []*models.FeeDefinition{}, pagination, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(params.Page, params.Size)
	sql, args, err := builder.OrderBy("fd.name ASC", "fd.id ASC").Limit(uint64(limit)).Offset(offset).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list fee definitions SQL")
		return nil, dto.PaginationInfo{}, err
	}

	defs, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, pagination, err
	}
	return defs, pagination, nil
}

// ListAll retrieves every fee definition
func (r *FeeDefinitionRepository) ListAll(ctx context.Context) ([]*models.FeeDefinition, error) {
	sql, args, err := r.selectQuery().OrderBy("fd.name ASC", "fd.id ASC").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list all fee definitions SQL")
		return nil, err
	}
	return r.query(ctx, sql, args...)
}

func (r *FeeDefinitionRepository) query(ctx context.Context, sql string, args ...any) ([]*models.FeeDefinition, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing fee definitions query")
		return nil, fmt.Errorf("error listing fee definitions: %w", err)
	}
	defer rows.Close()

	defs := make([]*models.FeeDefinition, 0)
	for rows.Next() {
		fd, err := scanFeeDefinition(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning fee definition row")
			return nil, err
		}
		defs = append(defs, fd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}
	return defs, nil
}

// Update replaces the editable fields of a fee definition
func (r *FeeDefinitionRepository) Update(ctx context.Context, fd *models.FeeDefinition) error {
	if fd.Installments == nil {
		fd.Installments = []models.Installment{}
	}
	sql, args, err := psql.Update("fee_definitions").
		Set("name", fd.Name).
		Set("fee_type_id", fd.TypeID).
		Set("base_amount", fd.BaseAmount).
		Set("frequency", fd.Frequency).
		Set("currency", fd.Currency).
		Set("description", fd.Description).
		Set("installments", fd.Installments).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": fd.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update fee definition SQL")
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&fd.CreatedAt, &fd.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrFeeDefinitionNotFound
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrFeeTypeNotFound
		}
		logger.Error().Err(err).Int64("id", fd.ID).Msg("Error executing update fee definition query")
		return fmt.Errorf("error updating fee definition: %w", err)
	}
	return nil
}

// Delete removes a fee definition that is not assigned or billed
func (r *FeeDefinitionRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("fee_definitions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete fee definition SQL")
		return err
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrFeeDefinitionInUse
		}
		logger.Error().Err(err).Int64("id", id).Msg("Error executing delete fee definition query")
		return fmt.Errorf("error deleting fee definition: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFeeDefinitionNotFound
	}
	return nil
}
