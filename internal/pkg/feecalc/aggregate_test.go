package feecalc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func fee(name, typeName, amount string, freq Frequency, installments ...string) *Fee {
	f := &Fee{Name: name, TypeName: typeName, BaseAmount: dec(amount), Frequency: freq}
	for _, a := range installments {
		f.Installments = append(f.Installments, Installment{Amount: dec(a)})
	}
	return f
}

func TestAnnualize(t *testing.T) {
	tests := []struct {
		name  string
		table MultiplierTable
		freq  Frequency
		want  string
	}{
		{name: "monthly", table: DefaultMultipliers(), freq: FrequencyMonthly, want: "1200"},
		{name: "quarterly", table: DefaultMultipliers(), freq: FrequencyQuarterly, want: "400"},
		{name: "term default", table: DefaultMultipliers(), freq: FrequencyTerm, want: "300"},
		{name: "term two per year", table: MultipliersWithTerms(2), freq: FrequencyTerm, want: "200"},
		{name: "yearly", table: DefaultMultipliers(), freq: FrequencyYearly, want: "100"},
		{name: "one time", table: DefaultMultipliers(), freq: FrequencyOneTime, want: "100"},
		{name: "unknown frequency", table: DefaultMultipliers(), freq: Frequency("fortnightly"), want: "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDec(t, tt.want, tt.table.Annualize(dec("100"), tt.freq))
		})
	}
}

func TestParseFrequency(t *testing.T) {
	assert.Equal(t, FrequencyMonthly, ParseFrequency(" Monthly "))
	assert.Equal(t, FrequencyTerm, ParseFrequency("term"))
	assert.Equal(t, FrequencyYearly, ParseFrequency("annual"))
	assert.Equal(t, FrequencyOneTime, ParseFrequency(""))
	assert.Equal(t, FrequencyOneTime, ParseFrequency("whenever"))
}

func TestMultipliersWithTermsFallsBack(t *testing.T) {
	assert.Equal(t, int64(DefaultTermsPerYear), MultipliersWithTerms(0).Multiplier(FrequencyTerm))
	assert.Equal(t, int64(1), MultiplierTable{}.Multiplier(FrequencyMonthly))
}

func TestAggregate(t *testing.T) {
	assignments := []Assignment{
		{ID: 1, Fee: fee("Tuition", "Tuition", "100", FrequencyMonthly)},
		{ID: 2, Fee: fee("Library", "Facilities", "50", FrequencyYearly)},
		{ID: 3, Fee: fee("Admission", "", "500", FrequencyOneTime)},
		{ID: 4, Fee: fee("Lab", "Facilities", "30", FrequencyTerm)},
	}

	s := Aggregate(assignments, 10, DefaultMultipliers())

	require.Equal(t, 4, s.AssignmentCount)
	assertDec(t, "100", s.PerStudent.Monthly)
	assertDec(t, "80", s.PerStudent.Yearly) // 50 + 30, not annualized
	assertDec(t, "500", s.PerStudent.OneTime)
	assertDec(t, "1840", s.PerStudent.Revenue) // 1200 + 50 + 500 + 90

	assertDec(t, "1000", s.Totals.Monthly)
	assertDec(t, "800", s.Totals.Yearly)
	assertDec(t, "5000", s.Totals.OneTime)
	assertDec(t, "18400", s.Totals.Revenue)

	require.Contains(t, s.ByFeeType, "Facilities")
	assertDec(t, "1400", s.ByFeeType["Facilities"].TotalAmount)
	assertDec(t, "140", s.ByFeeType["Facilities"].PerStudentAmount)
	assert.Equal(t, 2, s.ByFeeType["Facilities"].Count)
	require.Contains(t, s.ByFeeType, OtherFeeType)
	assertDec(t, "5000", s.ByFeeType[OtherFeeType].TotalAmount)

	types := s.FeeTypes()
	require.Len(t, types, 3)
	assert.Equal(t, "Tuition", types[0].Name)
}

func TestAggregateZeroStudents(t *testing.T) {
	assignments := []Assignment{
		{Fee: fee("Tuition", "Tuition", "100", FrequencyMonthly)},
		{Fee: fee("Trip", "Events", "40", FrequencyOneTime)},
		{Fee: fee("Sports", "", "25", FrequencyYearly, "20", "20")},
	}

	s := Aggregate(assignments, 0, nil)

	assert.True(t, s.Totals.Revenue.IsZero())
	assert.True(t, s.Totals.Monthly.IsZero())
	assert.True(t, s.Totals.Yearly.IsZero())
	assert.True(t, s.Totals.OneTime.IsZero())
	assert.True(t, s.InstallmentExcess.IsZero())
	for name, total := range s.ByFeeType {
		assert.Truef(t, total.TotalAmount.IsZero(), "fee type %s should be zero", name)
	}
	// the per-student rate is still reported
	assertDec(t, "1265", s.PerStudent.Revenue)
}

func TestAggregatePredominantFrequency(t *testing.T) {
	tests := []struct {
		name  string
		freqs []Frequency
		want  Bucket
	}{
		{name: "monthly majority", freqs: []Frequency{FrequencyYearly, FrequencyMonthly, FrequencyMonthly}, want: BucketMonthly},
		{name: "tie goes to first to reach max", freqs: []Frequency{FrequencyYearly, FrequencyMonthly, FrequencyMonthly, FrequencyYearly}, want: BucketMonthly},
		{name: "term counts as yearly", freqs: []Frequency{FrequencyTerm}, want: BucketYearly},
		{
			name:  "term and quarterly join the yearly bucket",
			freqs: []Frequency{FrequencyMonthly, FrequencyMonthly, FrequencyTerm, FrequencyQuarterly, FrequencyYearly},
			want:  BucketYearly,
		},
		{name: "one-time", freqs: []Frequency{FrequencyOneTime, FrequencyMonthly, FrequencyOneTime}, want: BucketOneTime},
		{name: "empty", freqs: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var assignments []Assignment
			for _, f := range tt.freqs {
				assignments = append(assignments, Assignment{Fee: fee("x", "", "10", f)})
			}
			assert.Equal(t, tt.want, Aggregate(assignments, 1, nil).PredominantFrequency)
		})
	}
}

func TestAggregateYearlyBucketIsNotAnnualized(t *testing.T) {
	s := Aggregate([]Assignment{
		{Fee: fee("Lab", "Facilities", "100", FrequencyTerm)},
		{Fee: fee("Sports", "Activities", "100", FrequencyQuarterly)},
	}, 1, DefaultMultipliers())

	assertDec(t, "200", s.Totals.Yearly)
	assertDec(t, "700", s.Totals.Revenue) // 100*3 + 100*4
	assert.Equal(t, 2, s.BucketCounts[BucketYearly])
	assert.Equal(t, 1, s.FrequencyCounts[FrequencyTerm])
	assert.Equal(t, BucketYearly, s.PredominantFrequency)
}

func TestAggregateInstallmentExcess(t *testing.T) {
	over := fee("Tuition", "Tuition", "1000", FrequencyYearly, "600", "600")
	under := fee("Bus", "Transport", "1000", FrequencyYearly, "450", "450")

	s := Aggregate([]Assignment{{Fee: over}, {Fee: under}}, 3, nil)

	assertDec(t, "600", s.InstallmentExcess)
	require.Len(t, s.Excesses, 1)
	assertDec(t, "200", s.Excesses[0].Excess)
	assertDec(t, "1200", s.Excesses[0].InstallmentTotal)

	assertDec(t, "800", InstallmentExcess(*over, 4))
	assertDec(t, "0", InstallmentExcess(*under, 4))
	assertDec(t, "0", InstallmentExcess(Fee{BaseAmount: dec("10")}, 4))
}

func TestAggregateSkipsMissingFee(t *testing.T) {
	assignments := []Assignment{
		{ID: 1},
		{ID: 2, Fee: fee("Tuition", "Tuition", "100", FrequencyYearly)},
		{ID: 3, Fee: nil},
	}

	s := Aggregate(assignments, 2, nil)

	assert.Equal(t, 1, s.AssignmentCount)
	assertDec(t, "200", s.Totals.Revenue)
	assert.Len(t, s.ByFeeType, 1)
}

func TestAggregateCoercesNegativeAmounts(t *testing.T) {
	s := Aggregate([]Assignment{
		{Fee: fee("Refund", "", "-100", FrequencyMonthly)},
		{Fee: &Fee{Name: "Blank"}},
	}, 5, nil)

	assert.True(t, s.Totals.Revenue.IsZero())
	assert.Equal(t, 2, s.AssignmentCount)
	assert.Equal(t, 1, s.FrequencyCounts[FrequencyOneTime])
}

func TestAggregateIsIdempotent(t *testing.T) {
	assignments := []Assignment{
		{Fee: fee("Tuition", "Tuition", "100", FrequencyMonthly, "700", "700")},
		{Fee: fee("Bus", "Transport", "30", FrequencyQuarterly)},
	}

	first := Aggregate(assignments, 7, nil)
	second := Aggregate(assignments, 7, nil)

	assert.Equal(t, first, second)
}

func TestPerStudentShare(t *testing.T) {
	assertDec(t, "0", PerStudentShare(dec("100"), 0))
	assertDec(t, "33.33", PerStudentShare(dec("100"), 3))
}
