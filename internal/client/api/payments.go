package api

import (
	"context"
	"fmt"
	"strconv"
)

// ListPaymentItems lists payment items, optionally by status and schedule
func (r *Repository) ListPaymentItems(ctx context.Context, status string, scheduleID int64, page, size int) (*Envelope, error) {
	q := pageQuery(page, size)
	if status != "" {
		q.Set("status", status)
	}
	if scheduleID > 0 {
		q.Set("scheduleId", strconv.FormatInt(scheduleID, 10))
	}
	return r.get(ctx, "/payment-items", q)
}

// GetPaymentItem fetches one payment item
func (r *Repository) GetPaymentItem(ctx context.Context, id int64) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/payment-items/%d", id), nil)
}

// ListPaymentItemsBySchedule lists the items of one payment schedule
func (r *Repository) ListPaymentItemsBySchedule(ctx context.Context, scheduleID int64) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/payment-items/by-schedule/%d", scheduleID), nil)
}

// UpdatePaymentStatus changes the status of a payment item
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int64, payload any) (*Envelope, error) {
	return r.put(ctx, fmt.Sprintf("/payment-items/%d/status", id), payload)
}
