package validation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateTopup(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		max    string
		valid  bool
		errMsg string
	}{
		{"positive", "250", "0", true, ""},
		{"zero", "0", "0", false, "Amount must be greater than zero"},
		{"negative", "-5", "0", false, "Amount must be greater than zero"},
		{"at default max", "100000", "0", true, ""},
		{"above default max", "100000.01", "0", false, "Amount cannot exceed 100000.00"},
		{"above custom max", "600", "500", false, "Amount cannot exceed 500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateTopup(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.max))
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.errMsg, res.Error)
		})
	}
}

func TestValidatePurchase(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		category    string
		description string
		valid       bool
		errContains string
	}{
		{"valid", "12.50", "canteen", "Lunch", true, ""},
		{"category is case insensitive", "1", "Stationery", "Pens", true, ""},
		{"zero amount", "0", "canteen", "Lunch", false, "greater than zero"},
		{"unknown category", "5", "casino", "Chips", false, "Category must be one of"},
		{"missing description", "5", "event", "  ", false, "Description is required"},
		{"short description", "5", "event", "ab", false, "between 3 and 200"},
		{"long description", "5", "event", strings.Repeat("x", 201), false, "between 3 and 200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePurchase(decimal.RequireFromString(tt.amount), tt.category, tt.description)
			assert.Equal(t, tt.valid, res.Valid)
			if tt.errContains != "" {
				assert.Contains(t, res.Error, tt.errContains)
			} else {
				assert.Empty(t, res.Error)
			}
		})
	}
}

func TestIsFeeTypeCode(t *testing.T) {
	assert.True(t, IsFeeTypeCode("TUITION"))
	assert.True(t, IsFeeTypeCode("BUS_ROUTE_2"))
	assert.False(t, IsFeeTypeCode("tuition"))
	assert.False(t, IsFeeTypeCode("LAB-FEE"))
	assert.False(t, IsFeeTypeCode(""))
}

func TestStringValidationCountsCharacters(t *testing.T) {
	assert.True(t, NewStringValidation("çay").WithMinLength(3).WithMaxLength(3).Validate())
	assert.True(t, NewStringValidation("").WithRequired(false).WithMinLength(3).Validate())
}
