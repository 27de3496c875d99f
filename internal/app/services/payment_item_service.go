package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

// PaymentItemRepository is the storage used by PaymentItemService
type PaymentItemRepository interface {
	List(ctx context.Context, params repositories.PaymentItemListParams) ([]*models.PaymentItem, dto.PaginationInfo, error)
	GetByID(ctx context.Context, id int64) (*models.PaymentItem, error)
	ListBySchedule(ctx context.Context, scheduleID int64) ([]*models.PaymentItem, error)
	UpdateStatus(ctx context.Context, id int64, status models.PaymentStatus, paidAmount *decimal.Decimal) error
}

// PaymentItemService defines the interface for payment item operations
type PaymentItemService interface {
	ListPaymentItems(ctx context.Context, filter *dto.PaymentItemFilter, page, size int) ([]*models.PaymentItem, dto.PaginationInfo, error)
	GetPaymentItem(ctx context.Context, id int64) (*models.PaymentItem, error)
	ListBySchedule(ctx context.Context, scheduleID int64) ([]*models.PaymentItem, error)
	UpdateStatus(ctx context.Context, id int64, req *dto.UpdatePaymentStatusRequest) (*models.PaymentItem, error)
}

// paymentItemServiceImpl implements PaymentItemService
type paymentItemServiceImpl struct {
	repo PaymentItemRepository
}

// NewPaymentItemService creates a new PaymentItemService
func NewPaymentItemService(repo PaymentItemRepository) PaymentItemService {
	return &paymentItemServiceImpl{repo: repo}
}

func (s *paymentItemServiceImpl) ListPaymentItems(ctx context.Context, filter *dto.PaymentItemFilter, page, size int) ([]*models.PaymentItem, dto.PaginationInfo, error) {
	params := repositories.PaymentItemListParams{Page: page, Size: size}
	if filter != nil {
		params.Status = models.PaymentStatus(filter.Status)
		params.ScheduleID = filter.ScheduleID
	}
	return s.repo.List(ctx, params)
}

func (s *paymentItemServiceImpl) GetPaymentItem(ctx context.Context, id int64) (*models.PaymentItem, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: payment item ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *paymentItemServiceImpl) ListBySchedule(ctx context.Context, scheduleID int64) ([]*models.PaymentItem, error) {
	if scheduleID <= 0 {
		return nil, fmt.Errorf("%w: schedule ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.repo.ListBySchedule(ctx, scheduleID)
}

// UpdateStatus changes the status of an item. Marking an item paid without a
// paid amount settles it in full.
func (s *paymentItemServiceImpl) UpdateStatus(ctx context.Context, id int64, req *dto.UpdatePaymentStatusRequest) (*models.PaymentItem, error) {
	status := models.PaymentStatus(req.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", apperrors.ErrValidationFailed, req.Status)
	}
	if req.PaidAmount != nil && req.PaidAmount.IsNegative() {
		return nil, fmt.Errorf("%w: paid_amount cannot be negative", apperrors.ErrValidationFailed)
	}

	item, err := s.GetPaymentItem(ctx, id)
	if err != nil {
		return nil, err
	}

	paid := req.PaidAmount
	if paid != nil && paid.GreaterThan(item.Amount) {
		return nil, fmt.Errorf("%w: paid_amount cannot exceed the item amount %s", apperrors.ErrValidationFailed, item.Amount.StringFixed(2))
	}
	if paid == nil && status == models.PaymentPaid {
		full := item.Amount
		paid = &full
	}

	if err := s.repo.UpdateStatus(ctx, id, status, paid); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
