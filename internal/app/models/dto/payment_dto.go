package dto

import "github.com/shopspring/decimal"

// UpdatePaymentStatusRequest changes the status of a payment item
type UpdatePaymentStatusRequest struct {
	Status     string           `json:"status" binding:"required,oneof=pending partial paid waived overdue"`
	PaidAmount *decimal.Decimal `json:"paid_amount" swaggertype:"number"`
}

// PaymentItemFilter holds the query parameters of the payment item listing
type PaymentItemFilter struct {
	Status     string `form:"status" binding:"omitempty,oneof=pending partial paid waived overdue"`
	ScheduleID int64  `form:"scheduleId" binding:"omitempty,gt=0"`
}
