package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/yigit/schooladmin/internal/pkg/feecalc"
)

func TestFeeDefinitionAnnualAmount(t *testing.T) {
	fee := FeeDefinition{BaseAmount: decimal.NewFromInt(100), Frequency: feecalc.FrequencyMonthly}
	assert.True(t, fee.AnnualAmount().Equal(decimal.NewFromInt(1200)))
}

func TestFeeDefinitionToCalc(t *testing.T) {
	var nilFee *FeeDefinition
	assert.Nil(t, nilFee.ToCalc())

	fee := &FeeDefinition{ID: 3, Name: "Bus", Type: &FeeType{Name: "Transport"}, BaseAmount: decimal.NewFromInt(500),
		Frequency: feecalc.FrequencyTerm, Installments: []Installment{{Label: "T1", Amount: decimal.NewFromInt(200)}}}
	calc := fee.ToCalc()
	assert.Equal(t, "Transport", calc.TypeName)
	assert.Len(t, calc.Installments, 1)
}

func TestPaymentItemOutstanding(t *testing.T) {
	item := PaymentItem{Amount: decimal.NewFromInt(1000), PaidAmount: decimal.NewFromInt(400), Status: "partial"}
	assert.True(t, item.Outstanding().Equal(decimal.NewFromInt(600)))

	item.PaidAmount = decimal.NewFromInt(1200)
	assert.True(t, item.Outstanding().IsZero())

	item = PaymentItem{Amount: decimal.NewFromInt(1000), Status: "waived"}
	assert.True(t, item.Outstanding().IsZero())
}

func TestWalletLowBalance(t *testing.T) {
	w := Wallet{CurrentBalance: decimal.NewFromInt(50), LowBalanceThreshold: decimal.NewFromInt(50)}
	assert.True(t, w.IsLowBalance())
	w.CurrentBalance = decimal.NewFromInt(51)
	assert.False(t, w.IsLowBalance())
}
