package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yigit/schooladmin/internal/pkg/feecalc"
)

// --- Fee types ---

// CreateFeeTypeRequest represents fee type creation data
type CreateFeeTypeRequest struct {
	Code   string `json:"code" binding:"required,max=50"`
	Name   string `json:"name" binding:"required,max=100"`
	Active *bool  `json:"active"`
}

// UpdateFeeTypeRequest represents fee type update data
type UpdateFeeTypeRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Active *bool  `json:"active"`
}

// --- Fee definitions ---

// InstallmentRequest is one installment of a fee definition
type InstallmentRequest struct {
	Label   string          `json:"label" binding:"omitempty,max=100"`
	Amount  decimal.Decimal `json:"amount" swaggertype:"number"`
	DueDate *time.Time      `json:"due_date"`
}

// FeeDefinitionRequest represents fee definition create and update data
type FeeDefinitionRequest struct {
	Name         string               `json:"name" binding:"required,max=200"`
	TypeID       *int64               `json:"type_id" binding:"omitempty,gt=0"`
	BaseAmount   decimal.Decimal      `json:"base_amount" swaggertype:"number"`
	Frequency    feecalc.Frequency    `json:"frequency" binding:"required"`
	Currency     string               `json:"currency" binding:"omitempty,len=3"`
	Description  *string              `json:"description"`
	Installments []InstallmentRequest `json:"installments" binding:"omitempty,dive"`
}

// --- Fee assignments ---

// CreateFeeAssignmentRequest represents fee assignment creation data.
// Exactly one of ClassID, BusStopID and StudentID must be set.
type CreateFeeAssignmentRequest struct {
	FeeDefinitionID int64      `json:"fee_definition_id" binding:"required,gt=0"`
	ClassID         *int64     `json:"class_id" binding:"omitempty,gt=0"`
	BusStopID       *int64     `json:"bus_stop_id" binding:"omitempty,gt=0"`
	StudentID       *int64     `json:"student_id" binding:"omitempty,gt=0"`
	Priority        int        `json:"priority" binding:"gte=0"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
}

// FeeAssignmentFilter holds the query parameters of the assignment listing
type FeeAssignmentFilter struct {
	Filter   string `form:"filter" binding:"omitempty,oneof=class bus_stop student"`
	EntityID int64  `form:"entityId" binding:"omitempty,gt=0"`
}

// --- Fee summaries ---

// FeeSummaryResponse is the fee summary of one class or bus stop
type FeeSummaryResponse struct {
	EntityType string                 `json:"entityType" example:"class"`
	EntityID   int64                  `json:"entityId" example:"1"`
	EntityName string                 `json:"entityName" example:"Grade 5"`
	Summary    feecalc.Summary        `json:"summary"`
	FeeTypes   []feecalc.FeeTypeTotal `json:"feeTypes"`
}
