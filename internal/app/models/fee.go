package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yigit/schooladmin/internal/pkg/feecalc"
)

// FeeType is a label for fee definitions ("Tuition", "Transport").
type FeeType struct {
	ID        int64     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Installment is one part payment of a fee definition. Installments are
// stored as JSONB and their total is not required to match the base amount.
type Installment struct {
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate *time.Time      `json:"due_date,omitempty"`
}

// FeeDefinition describes a chargeable fee.
type FeeDefinition struct {
	ID           int64             `db:"id" json:"id"`
	Name         string            `db:"name" json:"name"`
	TypeID       *int64            `db:"fee_type_id" json:"type_id,omitempty"`
	BaseAmount   decimal.Decimal   `db:"base_amount" json:"base_amount"`
	Frequency    feecalc.Frequency `db:"frequency" json:"frequency"`
	Currency     string            `db:"currency" json:"currency"`
	Description  *string           `db:"description" json:"description,omitempty"`
	Installments []Installment     `db:"installments" json:"installments"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`

	Type *FeeType `json:"type,omitempty"`
}

// InstallmentTotal sums the installment amounts.
func (f *FeeDefinition) InstallmentTotal() decimal.Decimal {
	return feecalc.InstallmentTotal(f.calcInstallments())
}

// ToCalc converts the definition to the input of the fee calculator.
func (f *FeeDefinition) ToCalc() *feecalc.Fee {
	if f == nil {
		return nil
	}
	typeName := ""
	if f.Type != nil {
		typeName = f.Type.Name
	}
	return &feecalc.Fee{
		ID:           f.ID,
		Name:         f.Name,
		TypeName:     typeName,
		BaseAmount:   f.BaseAmount,
		Frequency:    f.Frequency,
		Installments: f.calcInstallments(),
	}
}

func (f *FeeDefinition) calcInstallments() []feecalc.Installment {
	out := make([]feecalc.Installment, 0, len(f.Installments))
	for _, inst := range f.Installments {
		out = append(out, feecalc.Installment{Label: inst.Label, Amount: inst.Amount, DueDate: inst.DueDate})
	}
	return out
}

// FeeAssignment links a fee definition to exactly one class, bus stop or student.
type FeeAssignment struct {
	ID              int64      `db:"id" json:"id"`
	FeeDefinitionID int64      `db:"fee_definition_id" json:"fee_definition_id"`
	ClassID         *int64     `db:"class_id" json:"class_id,omitempty"`
	BusStopID       *int64     `db:"bus_stop_id" json:"bus_stop_id,omitempty"`
	StudentID       *int64     `db:"student_id" json:"student_id,omitempty"`
	Priority        int        `db:"priority" json:"priority"`
	StartDate       *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`

	Fee     *FeeDefinition `json:"fee,omitempty"`
	Class   *Class         `json:"class,omitempty"`
	BusStop *BusStop       `json:"bus_stop,omitempty"`
}

// Target returns which kind of entity the assignment points to.
func (a *FeeAssignment) Target() AssignmentTarget {
	switch {
	case a.ClassID != nil:
		return TargetClass
	case a.BusStopID != nil:
		return TargetBusStop
	case a.StudentID != nil:
		return TargetStudent
	}
	return ""
}

// ActiveOn reports whether the assignment's date range covers t.
func (a *FeeAssignment) ActiveOn(t time.Time) bool {
	if a.StartDate != nil && t.Before(*a.StartDate) {
		return false
	}
	if a.EndDate != nil && t.After(*a.EndDate) {
		return false
	}
	return true
}

// ToCalcAssignments converts assignments for the fee calculator.
func ToCalcAssignments(assignments []*FeeAssignment) []feecalc.Assignment {
	out := make([]feecalc.Assignment, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, feecalc.Assignment{ID: a.ID, Priority: a.Priority, Fee: a.Fee.ToCalc()})
	}
	return out
}
