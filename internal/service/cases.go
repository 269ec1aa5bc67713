package service

import (
	"fmt"

	"github.com/amccague/zscore/internal/models"
)

// Case is a single grading scenario: one candidate invocation and its rubric.
type Case struct {
	Name     string
	Amount   int
	MaxScore int
	// Grade scores the parsed output. out is nil when the candidate produced
	// no result. Diagnostics are advisory and never change the score.
	Grade func(out *models.CandidateOutput) (score int, diagnostics []string)
}

// DefaultCases returns the loan rubric in reporting order.
func DefaultCases() []Case {
	return []Case{
		{Name: "Example case", Amount: 1000, MaxScore: 100, Grade: gradeExample},
		rejectCase("Amount too high", 15100, "is too high"),
		rejectCase("Amount too low", 900, "is too low"),
		rejectCase("Increments", 1050, "is not an increment of 100"),
		{Name: "Monthly rate calculation", Amount: 1000, MaxScore: 100, Grade: gradeMonthlyRate},
		{Name: "Blended interest rates", Amount: 1200, MaxScore: 100, Grade: gradeBlendedRates},
		{Name: "Compound interest", Amount: 1200, MaxScore: 100, Grade: gradeCompoundInterest},
	}
}

func gradeExample(out *models.CandidateOutput) (int, []string) {
	if out == nil {
		return 0, nil
	}

	score := 0
	var diags []string
	if out.RequestedAmount.Equal(referenceAmount) {
		score += 25
	} else {
		diags = append(diags, fmt.Sprintf("Requested amount %s, expected %s", out.RequestedAmount, referenceAmount))
	}
	if out.InterestRate.Equal(referenceRate) {
		score += 25
	} else {
		diags = append(diags, fmt.Sprintf("Interest rate %s, expected %s", out.InterestRate, referenceRate.StringFixed(1)))
	}
	if out.MonthlyRepayment.Equal(referenceMonthly) {
		score += 25
	} else {
		diags = append(diags, fmt.Sprintf("Monthly repayment %s, expected %s", out.MonthlyRepayment, referenceMonthly))
	}

	switch {
	case out.TotalRepayment.Equal(referenceTotal):
		score += 25
	case EqualWithin(out.TotalRepayment, referenceTotal, tolerance):
		score += 20
		diags = append(diags, fmt.Sprintf("Total repayment has reduced precision; total repayment: %s", out.TotalRepayment))
	default:
		diags = append(diags, fmt.Sprintf("Total repayment %s, expected %s", out.TotalRepayment, referenceTotal.StringFixed(2)))
	}
	return score, diags
}

// rejectCase builds a case that awards full marks only when the candidate
// refuses the amount by producing no result.
func rejectCase(name string, amount int, why string) Case {
	const full = 25
	return Case{
		Name:     name,
		Amount:   amount,
		MaxScore: full,
		Grade: func(out *models.CandidateOutput) (int, []string) {
			if out == nil {
				return full, nil
			}
			return 0, []string{fmt.Sprintf("No result should be produced if the amount (%d) %s", amount, why)}
		},
	}
}

func gradeMonthlyRate(out *models.CandidateOutput) (int, []string) {
	if out == nil {
		return 0, nil
	}

	monthly := out.MonthlyRepayment
	switch {
	case monthly.Equal(referenceMonthly):
		return 100, nil
	case EqualWithin(monthly, referenceMonthly, tolerance):
		return 80, []string{fmt.Sprintf("Result has reduced precision; monthly payment: %s", monthly)}
	case EqualWithin(monthly, nominalMonthly, tolerance):
		return 80, []string{fmt.Sprintf("Candidate potentially divided annual rate by 12; monthly payment: %s", monthly)}
	}
	return 0, []string{fmt.Sprintf("Unexpected monthly payment: %s", monthly)}
}

func gradeBlendedRates(out *models.CandidateOutput) (int, []string) {
	if out == nil {
		return 0, nil
	}

	monthly := out.MonthlyRepayment
	switch {
	case EqualWithin(monthly, blendedMonthly, tolerance):
		return 100, nil
	case EqualWithin(monthly, nominalMonthly, tolerance):
		return 20, []string{fmt.Sprintf("Candidate appears to have evenly averaged the interest rates of the lenders; monthly payment: %s", monthly)}
	}
	return 0, []string{fmt.Sprintf("Unexpected monthly payment: %s", monthly)}
}

func gradeCompoundInterest(out *models.CandidateOutput) (int, []string) {
	if out == nil {
		return 0, nil
	}

	total := out.TotalRepayment
	if EqualWithin(total, referenceTotal, tolerance) {
		return 100, nil
	}

	diags := []string{fmt.Sprintf("Failed to produce expected amortised (%s) total repayment: %s", referenceTotal.StringFixed(2), total)}
	switch {
	case total.GreaterThan(compoundLower) && total.LessThan(compoundUpper):
		return 25, append(diags, fmt.Sprintf("Candidate has potentially compounded the principal without an amortising schedule; total repayment: %s", total))
	case total.GreaterThan(compoundUpper):
		return 0, append(diags, fmt.Sprintf("Candidate's total repayment is far too high; total repayment: %s", total))
	}
	return 0, diags
}
