package service

import "github.com/shopspring/decimal"

// Reference results for the example market data and the tolerance bands used
// to recognise common mistakes. The diagnosis bands are heuristics, so they
// live together here for recalibration.
var (
	referenceAmount  = decimal.NewFromInt(1000)
	referenceRate    = decimal.RequireFromString("7.0")
	referenceMonthly = decimal.RequireFromString("30.78")
	referenceTotal   = decimal.RequireFromString("1108.10")

	// blendedMonthly is the repayment for 1200 borrowed across several lenders,
	// with the rate weighted by the amount each lender supplies.
	blendedMonthly = decimal.RequireFromString("36.96")

	// nominalMonthly is what candidates get by dividing the annual rate by 12
	// instead of converting it to a monthly rate. For 1200 it also matches an
	// evenly averaged lender rate.
	nominalMonthly = decimal.RequireFromString("30.88")

	// Totals in this band suggest the principal was compounded over the term
	// without an amortising schedule.
	compoundLower = decimal.NewFromInt(1200)
	compoundUpper = decimal.NewFromInt(1300)

	tolerance = decimal.RequireFromString("0.02")
)

// EqualWithin reports whether |a - b| <= eps using exact decimal arithmetic.
func EqualWithin(a, b, eps decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(eps)
}
