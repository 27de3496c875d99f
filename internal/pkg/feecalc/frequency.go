package feecalc

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Frequency is how often a fee is charged.
type Frequency string

// Supported payment frequencies
const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyTerm      Frequency = "term"
	FrequencyYearly    Frequency = "yearly"
	FrequencyOneTime   Frequency = "one_time"
)

// Bucket is the normalized frequency group used for reporting.
type Bucket string

// Reporting buckets
const (
	BucketMonthly Bucket = "monthly"
	BucketYearly  Bucket = "yearly"
	BucketOneTime Bucket = "one-time"
)

// DefaultTermsPerYear is the number of school terms in an academic year.
const DefaultTermsPerYear = 3

// Frequencies lists every supported frequency in display order.
var Frequencies = []Frequency{
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencyTerm,
	FrequencyYearly,
	FrequencyOneTime,
}

// ParseFrequency normalizes a raw frequency string. Empty or unknown values
// are treated as one-time charges.
func ParseFrequency(raw string) Frequency {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "monthly":
		return FrequencyMonthly
	case "quarterly":
		return FrequencyQuarterly
	case "term", "termly", "per_term":
		return FrequencyTerm
	case "yearly", "annual", "annually", "per_year":
		return FrequencyYearly
	default:
		return FrequencyOneTime
	}
}

// IsValid reports whether f is one of the supported frequencies.
func (f Frequency) IsValid() bool {
	for _, known := range Frequencies {
		if f == known {
			return true
		}
	}
	return false
}

// Bucket returns the reporting bucket for f. Term and quarterly fees are
// reported per year.
func (f Frequency) Bucket() Bucket {
	switch f {
	case FrequencyMonthly:
		return BucketMonthly
	case FrequencyYearly, FrequencyTerm, FrequencyQuarterly:
		return BucketYearly
	default:
		return BucketOneTime
	}
}

// MultiplierTable maps a frequency to the number of charges per year.
type MultiplierTable map[Frequency]int64

// DefaultMultipliers returns the standard annualization table.
func DefaultMultipliers() MultiplierTable {
	return MultipliersWithTerms(DefaultTermsPerYear)
}

// MultipliersWithTerms returns the standard table with a custom number of
// terms per year. Non-positive values fall back to DefaultTermsPerYear.
func MultipliersWithTerms(terms int) MultiplierTable {
	if terms <= 0 {
		terms = DefaultTermsPerYear
	}
	return MultiplierTable{
		FrequencyMonthly:   12,
		FrequencyQuarterly: 4,
		FrequencyTerm:      int64(terms),
		FrequencyYearly:    1,
		FrequencyOneTime:   1,
	}
}

// Multiplier returns the charges per year for f, 1 when f is not in the table.
func (t MultiplierTable) Multiplier(f Frequency) int64 {
	if m, ok := t[f]; ok && m > 0 {
		return m
	}
	return 1
}

// Annualize converts a per-period amount into its yearly equivalent.
func (t MultiplierTable) Annualize(amount decimal.Decimal, f Frequency) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(t.Multiplier(f)))
}
