package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/yigit/schooladmin/internal/client/api"
	"github.com/yigit/schooladmin/internal/client/domain"
	"github.com/yigit/schooladmin/internal/client/mapper"
)

// PaymentRepository is the part of the API repository the payment service uses
type PaymentRepository interface {
	ListPaymentItems(ctx context.Context, status string, scheduleID int64, page, size int) (*api.Envelope, error)
	GetPaymentItem(ctx context.Context, id int64) (*api.Envelope, error)
	ListPaymentItemsBySchedule(ctx context.Context, scheduleID int64) (*api.Envelope, error)
	UpdatePaymentStatus(ctx context.Context, id int64, payload any) (*api.Envelope, error)
}

var paymentStatuses = map[string]bool{"pending": true, "partial": true, "paid": true, "waived": true, "overdue": true}

// PaymentItemService reads and settles payment items
type PaymentItemService struct {
	repo PaymentRepository
}

// NewPaymentItemService creates a PaymentItemService
func NewPaymentItemService(repo PaymentRepository) *PaymentItemService {
	return &PaymentItemService{repo: repo}
}

// List returns payment items filtered by status
func (s *PaymentItemService) List(ctx context.Context, status string, page, size int) Result[[]domain.PaymentItem] {
	env, err := s.repo.ListPaymentItems(ctx, status, 0, page, size)
	if err != nil {
		return Fail[[]domain.PaymentItem](err, "Failed to fetch payment items")
	}
	items, err := decodeMany(env, mapper.PaymentItemToDomain)
	if err != nil {
		return Fail[[]domain.PaymentItem](err, "Failed to fetch payment items")
	}
	return Ok(items)
}

// BySchedule returns the items of one schedule ordered by due date
func (s *PaymentItemService) BySchedule(ctx context.Context, scheduleID int64) Result[[]domain.PaymentItem] {
	env, err := s.repo.ListPaymentItemsBySchedule(ctx, scheduleID)
	if err != nil {
		return Fail[[]domain.PaymentItem](err, "Failed to fetch payment items")
	}
	items, err := decodeMany(env, mapper.PaymentItemToDomain)
	if err != nil {
		return Fail[[]domain.PaymentItem](err, "Failed to fetch payment items")
	}
	return Ok(items)
}

// UpdateStatus changes the status of an item. paidAmount may be nil.
func (s *PaymentItemService) UpdateStatus(ctx context.Context, id int64, status string, paidAmount *decimal.Decimal) Result[domain.PaymentItem] {
	if !paymentStatuses[status] {
		return Invalid[domain.PaymentItem]("Invalid payment status: " + status)
	}
	if paidAmount != nil && paidAmount.IsNegative() {
		return Invalid[domain.PaymentItem]("Paid amount cannot be negative")
	}

	payload := map[string]any{"status": status}
	if paidAmount != nil {
		payload["paid_amount"] = *paidAmount
	}
	env, err := s.repo.UpdatePaymentStatus(ctx, id, payload)
	if err != nil {
		return Fail[domain.PaymentItem](err, "Failed to update payment status")
	}
	item, err := decodeOne(env, mapper.PaymentItemToDomain)
	if err != nil {
		return Fail[domain.PaymentItem](err, "Failed to update payment status")
	}
	return Ok(item)
}

// OutstandingTotal sums what is still owed across items
func OutstandingTotal(items []domain.PaymentItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].Outstanding())
	}
	return total
}
