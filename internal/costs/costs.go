package costs

import (
	"math"
	"time"
)

// Currency identifies the currency every figure in a single estimation run is
// expressed in. One run never mixes currencies: each supported destination
// country maps to exactly one currency.
type Currency string

const (
	USD Currency = "USD"
	AUD Currency = "AUD"
	GBP Currency = "GBP"
	CAD Currency = "CAD"
	EUR Currency = "EUR"
	HKD Currency = "HKD"
	MOP Currency = "MOP"
	SGD Currency = "SGD"
)

// Range is a whole-unit {min,max} interval. All resolver arithmetic happens on
// the bounds so uncertainty survives the transform chain.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Estimate pairs a point amount with its range.
type Estimate struct {
	Amount int   `json:"amount"`
	Range  Range `json:"range"`
}

// Round converts a fractional amount to whole currency units, half away from
// zero.
func Round(v float64) int {
	return int(math.Round(v))
}

// RangeAround builds a symmetric range of the given relative variance around a
// base amount, e.g. variance 0.2 yields [0.8x, 1.2x].
func RangeAround(base float64, variance float64) Range {
	return Range{
		Min: Round(base * (1 - variance)),
		Max: Round(base * (1 + variance)),
	}
}

// Band is the flat ±10% confidence band attached to every summary aggregate.
// Band width deliberately does not vary with the underlying data quality.
func Band(amount int) Range {
	return RangeAround(float64(amount), 0.1)
}

// Scale multiplies both bounds by a factor and rounds.
func (r Range) Scale(factor float64) Range {
	return Range{
		Min: Round(float64(r.Min) * factor),
		Max: Round(float64(r.Max) * factor),
	}
}

// Mid returns the rounded midpoint of the range.
func (r Range) Mid() int {
	return Round(float64(r.Min+r.Max) / 2)
}

// Contains reports whether amount lies within the range inclusive.
func (r Range) Contains(amount int) bool {
	return amount >= r.Min && amount <= r.Max
}

// TuitionRecord is the tuition resolver's output: the whole-program tuition
// sum, never a per-period figure. ProgramDuration is in years and is always
// greater than zero because it divides the total downstream.
type TuitionRecord struct {
	Total           int       `json:"total"`
	Currency        Currency  `json:"currency"`
	ProgramDuration float64   `json:"programDuration"`
	Source          string    `json:"source"`
	IsEstimate      bool      `json:"isEstimate"`
	Confidence      float64   `json:"confidence"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// AccommodationCost is a monthly rent range for the chosen housing type and
// location preference.
type AccommodationCost struct {
	MonthlyRange Range    `json:"monthlyRange"`
	Currency     Currency `json:"currency"`
	Source       string   `json:"source"`
	Confidence   float64  `json:"confidence,omitempty"`
	Reasoning    string   `json:"reasoning,omitempty"`
}

// LivingFigure is the non-accommodation living-cost resolver's output: one
// aggregate monthly figure excluding rent. Invariant: Range.Min <= Amount <=
// Range.Max.
type LivingFigure struct {
	Amount     int     `json:"amount"`
	Range      Range   `json:"range"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Clamp repairs the figure so the amount sits inside its own range.
func (f LivingFigure) Clamp() LivingFigure {
	if f.Range.Min > f.Range.Max {
		f.Range.Min, f.Range.Max = f.Range.Max, f.Range.Min
	}
	if f.Amount < f.Range.Min {
		f.Amount = f.Range.Min
	}
	if f.Amount > f.Range.Max {
		f.Amount = f.Range.Max
	}
	return f
}

// LivingCosts composes the non-accommodation figure with the accommodation
// range for reporting. Period is always monthly.
type LivingCosts struct {
	Total         Estimate          `json:"total"`
	Accommodation AccommodationCost `json:"accommodation"`
	Currency      Currency          `json:"currency"`
	Sources       []string          `json:"sources"`
	Confidence    float64           `json:"confidence,omitempty"`
}

// MonthlyTotal is the overall monthly living figure used by the summary
// arithmetic: the excluding-rent aggregate plus the midpoint of the rent
// range.
func (l LivingCosts) MonthlyTotal() int {
	return l.Total.Amount + l.Accommodation.MonthlyRange.Mid()
}

// FeeItem is a single one-time fee with provenance.
type FeeItem struct {
	Amount     int     `json:"amount"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence,omitempty"`
}

// OtherCosts bundles the one-time fees. HealthInsurance is nil when no
// reliable official source was found; absence signals "unknown or not
// required", never a guessed premium. Downstream aggregation treats a nil
// insurance as zero cost.
type OtherCosts struct {
	ApplicationFee  FeeItem  `json:"applicationFee"`
	VisaFee         FeeItem  `json:"visaFee"`
	HealthInsurance *FeeItem `json:"healthInsurance,omitempty"`
	Currency        Currency `json:"currency"`
}

// OneTimeTotal sums application, visa and (if present) insurance fees.
func (o OtherCosts) OneTimeTotal() int {
	total := o.ApplicationFee.Amount + o.VisaFee.Amount
	if o.HealthInsurance != nil {
		total += o.HealthInsurance.Amount
	}
	return total
}
