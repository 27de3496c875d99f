package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation rule patterns
var (
	// Fee type code: uppercase letters, digits and underscores
	FeeTypeCodePattern = `^[A-Z0-9_]+$`

	// Currency code: ISO 4217 alpha code
	CurrencyPattern = `^[A-Z]{3}$`

	// Wallet descriptions
	DescriptionMinLength = 3
	DescriptionMaxLength = 200

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// DefaultMaxTopup is the largest single top-up accepted when not configured otherwise
var DefaultMaxTopup = decimal.NewFromInt(100000)

// PurchaseCategories are the accepted purchase categories
var PurchaseCategories = []string{"canteen", "stationery", "transport", "event", "other"}

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	FeeTypeCode *regexp.Regexp
	Currency    *regexp.Regexp
}{
	FeeTypeCode: regexp.MustCompile(FeeTypeCodePattern),
	Currency:    regexp.MustCompile(CurrencyPattern),
}

// Result is the outcome of a validation guard
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func ok() Result { return Result{Valid: true} }

func fail(format string, args ...interface{}) Result {
	return Result{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation. Lengths count characters, not bytes.
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}

	n := utf8.RuneCountInString(v.Value)
	if v.MinLen > 0 && n < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && n > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// AmountValidation checks a money amount against exclusive-zero and inclusive-max bounds
type AmountValidation struct {
	Value decimal.Decimal
	Max   *decimal.Decimal
}

// NewAmountValidation creates a new amount validation
func NewAmountValidation(value decimal.Decimal) *AmountValidation {
	return &AmountValidation{Value: value}
}

// WithMax sets the inclusive maximum
func (v *AmountValidation) WithMax(max decimal.Decimal) *AmountValidation {
	v.Max = &max
	return v
}

// IsPositive reports whether the amount is greater than zero
func (v *AmountValidation) IsPositive() bool {
	return v.Value.IsPositive()
}

// WithinMax reports whether the amount does not exceed the maximum
func (v *AmountValidation) WithinMax() bool {
	return v.Max == nil || v.Value.LessThanOrEqual(*v.Max)
}

// ValidateTopup checks a top-up amount. A zero max uses DefaultMaxTopup.
func ValidateTopup(amount, max decimal.Decimal) Result {
	if max.IsZero() {
		max = DefaultMaxTopup
	}
	v := NewAmountValidation(amount).WithMax(max)
	if !v.IsPositive() {
		return fail("Amount must be greater than zero")
	}
	if !v.WithinMax() {
		return fail("Amount cannot exceed %s", max.StringFixed(2))
	}
	return ok()
}

// ValidatePurchase checks a purchase amount, category and description
func ValidatePurchase(amount decimal.Decimal, category, description string) Result {
	if !NewAmountValidation(amount).IsPositive() {
		return fail("Amount must be greater than zero")
	}
	if !IsPurchaseCategory(category) {
		return fail("Category must be one of: %s", strings.Join(PurchaseCategories, ", "))
	}
	if strings.TrimSpace(description) == "" {
		return fail("Description is required")
	}
	desc := NewStringValidation(description).
		WithMinLength(DescriptionMinLength).
		WithMaxLength(DescriptionMaxLength)
	if !desc.Validate() {
		return fail("Description must be between %d and %d characters", DescriptionMinLength, DescriptionMaxLength)
	}
	return ok()
}

// IsPurchaseCategory reports whether category is accepted
func IsPurchaseCategory(category string) bool {
	return slices.Contains(PurchaseCategories, strings.ToLower(strings.TrimSpace(category)))
}

// IsFeeTypeCode reports whether code is a valid fee type code
func IsFeeTypeCode(code string) bool {
	return NewStringValidation(code).WithMaxLength(50).WithPattern(CompiledPatterns.FeeTypeCode).Validate()
}
