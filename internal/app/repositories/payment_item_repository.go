package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/feecalc"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// PaymentItemListParams holds filters and paging for the payment item listing
type PaymentItemListParams struct {
	Status     models.PaymentStatus
	ScheduleID int64
	Page       int
	Size       int
}

// PaymentItemRepository handles database operations for payment items
type PaymentItemRepository struct {
	db *pgxpool.Pool
}

// NewPaymentItemRepository creates a new payment item repository
func NewPaymentItemRepository(db *pgxpool.Pool) *PaymentItemRepository {
	return &PaymentItemRepository{db: db}
}

// selectQuery populates schedule, enrollment, student, academic year and fee definition
func (r *PaymentItemRepository) selectQuery() squirrel.SelectBuilder {
	columns := append([]string{
		"pi.id", "pi.payment_schedule_id", "pi.fee_definition_id", "pi.label", "pi.amount",
		"pi.paid_amount", "pi.due_date", "pi.status", "pi.updated_at",
		"ps.id", "ps.enrollment_id", "ps.created_at",
		"e.id", "e.student_id", "e.class_id", "e.division_id", "e.academic_year_id",
		"e.admission_type", "e.mode", "e.admission_date", "e.status",
		"s.id", "s.first_name", "s.last_name", "s.gender",
		"ay.id", "ay.name", "ay.start_date", "ay.end_date", "ay.is_current",
	}, nullableFeeDefinitionColumns...)

	return psql.Select(columns...).
		From("payment_items pi").
		Join("payment_schedules ps ON pi.payment_schedule_id = ps.id").
		Join("enrollments e ON ps.enrollment_id = e.id").
		Join("students s ON e.student_id = s.id").
		Join("academic_years ay ON e.academic_year_id = ay.id").
		LeftJoin("fee_definitions fd ON pi.fee_definition_id = fd.id").
		LeftJoin("fee_types ft ON fd.fee_type_id = ft.id")
}

// nullableFeeDefinitionColumns are the fee definition columns of a LEFT JOIN
var nullableFeeDefinitionColumns = []string{
	"fd.id", "fd.name", "fd.base_amount", "fd.frequency", "ft.id", "ft.code", "ft.name",
}

func scanPaymentItem(row pgx.Row) (*models.PaymentItem, error) {
	var (
		item     models.PaymentItem
		schedule models.PaymentSchedule
		enroll   models.Enrollment
		student  models.Student
		year     models.AcademicYear

		feeID    *int64
		feeName  *string
		feeBase  decimal.NullDecimal
		feeFreq  *string
		typeID   *int64
		typeCode *string
		typeName *string
	)
	err := row.Scan(
		&item.ID, &item.PaymentScheduleID, &item.FeeDefinitionID, &item.Label, &item.Amount,
		&item.PaidAmount, &item.DueDate, &item.Status, &item.UpdatedAt,
		&schedule.ID, &schedule.EnrollmentID, &schedule.CreatedAt,
		&enroll.ID, &enroll.StudentID, &enroll.ClassID, &enroll.DivisionID, &enroll.AcademicYearID,
		&enroll.AdmissionType, &enroll.Mode, &enroll.AdmissionDate, &enroll.Status,
		&student.ID, &student.FirstName, &student.LastName, &student.Gender,
		&year.ID, &year.Name, &year.StartDate, &year.EndDate, &year.IsCurrent,
		&feeID, &feeName, &feeBase, &feeFreq, &typeID, &typeCode, &typeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPaymentItemNotFound
		}
		return nil, err
	}

	enroll.Student = &student
	enroll.AcademicYear = &year
	schedule.Enrollment = &enroll
	item.PaymentSchedule = &schedule
	if feeID != nil {
		fd := &models.FeeDefinition{ID: *feeID, Name: deref(feeName), BaseAmount: feeBase.Decimal}
		if feeFreq != nil {
			fd.Frequency = feecalc.Frequency(*feeFreq)
		}
		if typeID != nil {
			fd.Type = &models.FeeType{ID: *typeID, Code: deref(typeCode), Name: deref(typeName)}
		}
		item.FeeDefinition = fd
	}
	item.Transactions = []*models.PaymentTransaction{}
	return &item, nil
}

// List retrieves a page of payment items, most recently due first
func (r *PaymentItemRepository) List(ctx context.Context, params PaymentItemListParams) ([]*models.PaymentItem, dto.PaginationInfo, error) {
	builder := r.selectQuery()
	countBuilder := psql.Select("count(*)").From("payment_items pi")

	if params.Status != "" {
		builder = builder.Where(squirrel.Eq{"pi.status": params.Status})
		countBuilder = countBuilder.Where(squirrel.Eq{"pi.status": params.Status})
	}
	if params.ScheduleID > 0 {
		builder = builder.Where(squirrel.Eq{"pi.payment_schedule_id": params.ScheduleID})
		countBuilder = countBuilder.Where(squirrel.Eq{"pi.payment_schedule_id": params.ScheduleID})
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count payment items SQL")
		return nil, dto.PaginationInfo{}, err
	}
	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error executing count payment items query")
		return nil, dto.PaginationInfo{}, fmt.Errorf("error counting payment items: %w", err)
	}

	pagination := helpers.NewPaginationInfo(totalItems, params.Page, params.Size)
	if totalItems == 0 {
		return []*models.PaymentItem{}, pagination, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(params.Page, params.Size)
	sql, args, err := builder.OrderBy("pi.due_date DESC", "pi.id ASC").Limit(uint64(limit)).Offset(offset).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list payment items SQL")
		return nil, dto.PaginationInfo{}, err
	}

	items, err := r.queryItems(ctx, sql, args...)
	if err != nil {
		return nil, pagination, err
	}
	return items, pagination, nil
}

// GetByID retrieves a payment item with its relations and transactions
func (r *PaymentItemRepository) GetByID(ctx context.Context, id int64) (*models.PaymentItem, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"pi.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get payment item SQL")
		return nil, err
	}

	item, err := scanPaymentItem(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, err
	}
	if err := r.loadTransactions(ctx, []*models.PaymentItem{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// ListBySchedule retrieves all items of a payment schedule ordered by due date ascending
func (r *PaymentItemRepository) ListBySchedule(ctx context.Context, scheduleID int64) ([]*models.PaymentItem, error) {
	sql, args, err := r.selectQuery().
		Where(squirrel.Eq{"pi.payment_schedule_id": scheduleID}).
		OrderBy("pi.due_date ASC", "pi.id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list payment items by schedule SQL")
		return nil, err
	}
	return r.queryItems(ctx, sql, args...)
}

// UpdateStatus sets the status and, when given, the paid amount of an item
func (r *PaymentItemRepository) UpdateStatus(ctx context.Context, id int64, status models.PaymentStatus, paidAmount *decimal.Decimal) error {
	builder := psql.Update("payment_items").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	if paidAmount != nil {
		builder = builder.Set("paid_amount", *paidAmount)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update payment status SQL")
		return err
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error executing update payment status query")
		return fmt.Errorf("error updating payment status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPaymentItemNotFound
	}
	return nil
}

func (r *PaymentItemRepository) queryItems(ctx context.Context, sql string, args ...any) ([]*models.PaymentItem, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing payment items query")
		return nil, fmt.Errorf("error listing payment items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.PaymentItem, 0)
	for rows.Next() {
		item, err := scanPaymentItem(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning payment item row")
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}
	rows.Close()

	if err := r.loadTransactions(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// loadTransactions attaches payment transactions to the given items
func (r *PaymentItemRepository) loadTransactions(ctx context.Context, items []*models.PaymentItem) error {
	if len(items) == 0 {
		return nil
	}
	byID := make(map[int64]*models.PaymentItem, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		byID[item.ID] = item
		ids = append(ids, item.ID)
	}

	sql, args, err := psql.Select("id", "payment_item_id", "amount", "method", "reference", "paid_at").
		From("payment_transactions").
		Where(squirrel.Eq{"payment_item_id": ids}).
		OrderBy("paid_at ASC", "id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building payment transactions SQL")
		return err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing payment transactions query")
		return fmt.Errorf("error loading payment transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tx models.PaymentTransaction
		if err := rows.Scan(&tx.ID, &tx.PaymentItemID, &tx.Amount, &tx.Method, &tx.Reference, &tx.PaidAt); err != nil {
			return err
		}
		if item, ok := byID[tx.PaymentItemID]; ok {
			item.Transactions = append(item.Transactions, &tx)
		}
	}
	return rows.Err()
}
