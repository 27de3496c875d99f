package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of a payment item
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
	PaymentWaived  PaymentStatus = "waived"
	PaymentOverdue PaymentStatus = "overdue"
)

// IsValid reports whether s is a known payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentWaived, PaymentOverdue:
		return true
	}
	return false
}

// PaymentSchedule groups the payment items of one enrollment.
type PaymentSchedule struct {
	ID           int64     `db:"id" json:"id"`
	EnrollmentID int64     `db:"enrollment_id" json:"enrollment_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Enrollment *Enrollment `json:"enrollment,omitempty"`
}

// PaymentTransaction records money received against a payment item.
type PaymentTransaction struct {
	ID            int64           `db:"id" json:"id"`
	PaymentItemID int64           `db:"payment_item_id" json:"payment_item_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Method        string          `db:"method" json:"method"`
	Reference     *string         `db:"reference" json:"reference,omitempty"`
	PaidAt        time.Time       `db:"paid_at" json:"paid_at"`
}

// PaymentItem is one charge due within a payment schedule.
type PaymentItem struct {
	ID                int64           `db:"id" json:"id"`
	PaymentScheduleID int64           `db:"payment_schedule_id" json:"payment_schedule_id"`
	FeeDefinitionID   *int64          `db:"fee_definition_id" json:"fee_definition_id,omitempty"`
	Label             string          `db:"label" json:"label"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	PaidAmount        decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	DueDate           time.Time       `db:"due_date" json:"due_date"`
	Status            PaymentStatus   `db:"status" json:"status"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`

	PaymentSchedule *PaymentSchedule      `json:"payment_schedule,omitempty"`
	FeeDefinition   *FeeDefinition        `json:"fee_definition,omitempty"`
	Transactions    []*PaymentTransaction `json:"transactions"`
}

// Outstanding returns the unpaid remainder, never negative.
func (p *PaymentItem) Outstanding() decimal.Decimal {
	rest := p.Amount.Sub(p.PaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}
