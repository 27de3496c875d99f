// Package domain holds the client-side models produced by the mapper.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yigit/schooladmin/internal/pkg/feecalc"
)

// FeeType is a fee label such as TUITION
type FeeType struct {
	ID     int64
	Code   string
	Name   string
	Active bool
}

// Installment is one part payment of a fee definition
type Installment struct {
	Label   string
	Amount  decimal.Decimal
	DueDate *time.Time
}

// FeeDefinition is a chargeable fee
type FeeDefinition struct {
	ID           int64
	Name         string
	Type         *FeeType
	BaseAmount   decimal.Decimal
	Frequency    feecalc.Frequency
	Currency     string
	Description  string
	Installments []Installment
}

// TypeName returns the fee type name or an empty string
func (f *FeeDefinition) TypeName() string {
	if f.Type == nil {
		return ""
	}
	return f.Type.Name
}

// AnnualAmount is the base amount scaled to one year with the default multipliers
func (f *FeeDefinition) AnnualAmount() decimal.Decimal {
	return feecalc.DefaultMultipliers().Annualize(f.BaseAmount, f.Frequency)
}

// ToCalc converts the definition to the calculator input
func (f *FeeDefinition) ToCalc() *feecalc.Fee {
	if f == nil {
		return nil
	}
	installments := make([]feecalc.Installment, 0, len(f.Installments))
	for _, inst := range f.Installments {
		installments = append(installments, feecalc.Installment{Label: inst.Label, Amount: inst.Amount, DueDate: inst.DueDate})
	}
	return &feecalc.Fee{
		ID:           f.ID,
		Name:         f.Name,
		TypeName:     f.TypeName(),
		BaseAmount:   f.BaseAmount,
		Frequency:    f.Frequency,
		Installments: installments,
	}
}

// FeeAssignment links a fee to a class, bus stop or student
type FeeAssignment struct {
	ID        int64
	Fee       *FeeDefinition
	ClassID   *int64
	BusStopID *int64
	StudentID *int64
	Priority  int
	StartDate *time.Time
	EndDate   *time.Time
}

// Class is a grade level
type Class struct {
	ID           int64
	Name         string
	GradeLevel   int
	Capacity     int
	StudentCount int
}

// Division is a section of a class
type Division struct {
	ID           int64
	Name         string
	ClassID      int64
	Capacity     int
	ClassTeacher string
}

// Student is an enrolled learner
type Student struct {
	ID        int64
	FirstName string
	LastName  string
	Gender    string
}

// FullName returns "First Last"
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// AcademicYear is a school year
type AcademicYear struct {
	ID        int64
	Name      string
	IsCurrent bool
}

// Enrollment places a student in a class
type Enrollment struct {
	ID            int64
	Student       *Student
	Class         *Class
	Division      *Division
	AcademicYear  *AcademicYear
	AdmissionType string
	Mode          string
	AdmissionDate time.Time
	Status        string
}

// ClassName returns the enrolled class name or an empty string
func (e *Enrollment) ClassName() string {
	if e.Class == nil {
		return ""
	}
	return e.Class.Name
}

// PaymentItem is one amount due on a payment schedule
type PaymentItem struct {
	ID                int64
	PaymentScheduleID int64
	Label             string
	FeeName           string
	StudentName       string
	Amount            decimal.Decimal
	PaidAmount        decimal.Decimal
	DueDate           *time.Time
	Status            string
}

// Outstanding is the unpaid part of the item, never negative
func (p *PaymentItem) Outstanding() decimal.Decimal {
	if p.Status == "waived" {
		return decimal.Zero
	}
	rest := p.Amount.Sub(p.PaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// Wallet is a student's prepaid balance
type Wallet struct {
	ID                  int64
	WalletID            string
	StudentID           int64
	StudentName         string
	CurrentBalance      decimal.Decimal
	TotalDeposits       decimal.Decimal
	TotalWithdrawals    decimal.Decimal
	DailySpendingLimit  decimal.Decimal
	LowBalanceThreshold decimal.Decimal
	Status              string
}

// IsLowBalance reports whether the balance is at or below the threshold
func (w *Wallet) IsLowBalance() bool {
	return w.CurrentBalance.LessThanOrEqual(w.LowBalanceThreshold)
}

// WalletTransaction is a ledger row
type WalletTransaction struct {
	ID            int64
	Type          string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Category      string
	Description   string
	Reference     string
	CreatedAt     time.Time
}

// Pagination mirrors the meta.pagination block of list responses
type Pagination struct {
	CurrentPage int
	TotalPages  int
	PageSize    int
	TotalItems  int64
}

// FeeSummary is the server computed fee summary of a class or bus stop
type FeeSummary struct {
	EntityType string                 `json:"entityType"`
	EntityID   int64                  `json:"entityId"`
	EntityName string                 `json:"entityName"`
	Summary    feecalc.Summary        `json:"summary"`
	FeeTypes   []feecalc.FeeTypeTotal `json:"feeTypes"`
}
