// Package feecalc aggregates fee assignments into revenue summaries.
//
// All functions are pure: they never perform I/O and return identical
// results for identical inputs.
package feecalc

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// OtherFeeType is the group used when a fee has no type.
const OtherFeeType = "Other"

// Installment is one scheduled part payment of a fee.
type Installment struct {
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate *time.Time      `json:"dueDate,omitempty"`
}

// Fee is the part of a fee definition the calculation needs.
type Fee struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	TypeName     string          `json:"typeName"`
	BaseAmount   decimal.Decimal `json:"baseAmount"`
	Frequency    Frequency       `json:"frequency"`
	Installments []Installment   `json:"installments,omitempty"`
}

// Assignment links a fee to the entity being summarized. Fee may be nil when
// the referenced definition was deleted.
type Assignment struct {
	ID       int64 `json:"id"`
	Priority int   `json:"priority"`
	Fee      *Fee  `json:"fee"`
}

// Totals groups revenue figures.
type Totals struct {
	Revenue decimal.Decimal `json:"totalRevenue"`
	Monthly decimal.Decimal `json:"totalMonthlyFees"`
	Yearly  decimal.Decimal `json:"totalYearlyFees"`
	OneTime decimal.Decimal `json:"totalOneTimeFees"`
}

// FeeTypeTotal is the annualized revenue of one fee type.
type FeeTypeTotal struct {
	Name             string          `json:"name"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PerStudentAmount decimal.Decimal `json:"perStudentAmount"`
	Count            int             `json:"count"`
}

// FeeExcess describes installments that add up to more than the base amount.
type FeeExcess struct {
	FeeID            int64           `json:"feeId"`
	FeeName          string          `json:"feeName"`
	BaseAmount       decimal.Decimal `json:"baseAmount"`
	InstallmentTotal decimal.Decimal `json:"installmentTotal"`
	Excess           decimal.Decimal `json:"excess"`
	TotalExcess      decimal.Decimal `json:"totalExcess"`
}

// Summary is the result of Aggregate.
type Summary struct {
	StudentCount         int                     `json:"studentCount"`
	AssignmentCount      int                     `json:"assignmentCount"`
	Totals               Totals                  `json:"totals"`
	PerStudent           Totals                  `json:"perStudent"`
	ByFeeType            map[string]FeeTypeTotal `json:"byFeeType"`
	FrequencyCounts      map[Frequency]int       `json:"frequencyCounts"`
	BucketCounts         map[Bucket]int          `json:"bucketCounts"`
	PredominantFrequency Bucket                  `json:"predominantFrequency,omitempty"`
	InstallmentExcess    decimal.Decimal         `json:"installmentExcess"`
	Excesses             []FeeExcess             `json:"excesses,omitempty"`
}

// Aggregate computes revenue totals for the assignments of one entity
// (a class or a bus stop) attended by studentCount students.
//
// With zero students every total is zero while PerStudent keeps the rate.
func Aggregate(assignments []Assignment, studentCount int, table MultiplierTable) Summary {
	if table == nil {
		table = DefaultMultipliers()
	}
	if studentCount < 0 {
		studentCount = 0
	}

	summary := Summary{
		StudentCount:      studentCount,
		ByFeeType:         make(map[string]FeeTypeTotal),
		FrequencyCounts:   make(map[Frequency]int),
		BucketCounts:      make(map[Bucket]int),
		InstallmentExcess: decimal.Zero,
	}

	perStudent := Totals{
		Revenue: decimal.Zero,
		Monthly: decimal.Zero,
		Yearly:  decimal.Zero,
		OneTime: decimal.Zero,
	}
	byType := make(map[string]decimal.Decimal)
	typeCounts := make(map[string]int)
	predominantCount := 0
	students := decimal.NewFromInt(int64(studentCount))

	for _, a := range assignments {
		if a.Fee == nil {
			continue
		}
		fee := a.Fee
		summary.AssignmentCount++

		amount := nonNegative(fee.BaseAmount)
		freq := fee.Frequency
		if !freq.IsValid() {
			freq = ParseFrequency(string(freq))
		}
		annual := table.Annualize(amount, freq)

		// bucket totals hold the charged amount, only Revenue is annualized
		bucket := freq.Bucket()
		switch bucket {
		case BucketMonthly:
			perStudent.Monthly = perStudent.Monthly.Add(amount)
		case BucketYearly:
			perStudent.Yearly = perStudent.Yearly.Add(amount)
		default:
			perStudent.OneTime = perStudent.OneTime.Add(amount)
		}
		perStudent.Revenue = perStudent.Revenue.Add(annual)

		typeName := fee.TypeName
		if typeName == "" {
			typeName = OtherFeeType
		}
		byType[typeName] = byType[typeName].Add(annual)
		typeCounts[typeName]++

		summary.FrequencyCounts[freq]++
		summary.BucketCounts[bucket]++
		if c := summary.BucketCounts[bucket]; c > predominantCount {
			predominantCount = c
			summary.PredominantFrequency = bucket
		}

		if excess, ok := installmentExcess(fee, amount); ok {
			excess.TotalExcess = excess.Excess.Mul(students)
			summary.InstallmentExcess = summary.InstallmentExcess.Add(excess.TotalExcess)
			summary.Excesses = append(summary.Excesses, excess)
		}
	}

	summary.PerStudent = perStudent
	summary.Totals = Totals{
		Revenue: perStudent.Revenue.Mul(students),
		Monthly: perStudent.Monthly.Mul(students),
		Yearly:  perStudent.Yearly.Mul(students),
		OneTime: perStudent.OneTime.Mul(students),
	}
	for name, rate := range byType {
		summary.ByFeeType[name] = FeeTypeTotal{
			Name:             name,
			TotalAmount:      rate.Mul(students),
			PerStudentAmount: rate,
			Count:            typeCounts[name],
		}
	}

	return summary
}

// FeeTypes returns the fee type totals ordered by amount, largest first.
func (s Summary) FeeTypes() []FeeTypeTotal {
	out := make([]FeeTypeTotal, 0, len(s.ByFeeType))
	for _, t := range s.ByFeeType {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].PerStudentAmount.Cmp(out[j].PerStudentAmount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// InstallmentExcess returns max(0, Σinstallments − base) × studentCount for
// one fee. Fees without installments have no excess.
func InstallmentExcess(fee Fee, studentCount int) decimal.Decimal {
	if studentCount <= 0 {
		return decimal.Zero
	}
	excess, ok := installmentExcess(&fee, nonNegative(fee.BaseAmount))
	if !ok {
		return decimal.Zero
	}
	return excess.Excess.Mul(decimal.NewFromInt(int64(studentCount)))
}

// InstallmentTotal sums the installment amounts of a fee.
func InstallmentTotal(installments []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range installments {
		total = total.Add(nonNegative(inst.Amount))
	}
	return total
}

// PerStudentShare divides total by count, returning zero when there are no
// students.
func PerStudentShare(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(count)), 2)
}

func installmentExcess(fee *Fee, base decimal.Decimal) (FeeExcess, bool) {
	if len(fee.Installments) == 0 {
		return FeeExcess{}, false
	}
	total := InstallmentTotal(fee.Installments)
	excess := total.Sub(base)
	if !excess.IsPositive() {
		return FeeExcess{}, false
	}
	return FeeExcess{
		FeeID:            fee.ID,
		FeeName:          fee.Name,
		BaseAmount:       base,
		InstallmentTotal: total,
		Excess:           excess,
	}, true
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
