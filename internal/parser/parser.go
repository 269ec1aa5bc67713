// Package parser reads the values a candidate prints.
//
// A candidate reports one value per line, in a fixed order: requested amount,
// interest rate, monthly repayment, total repayment. A line may carry a
// human-readable label before the value:
//
//	output := line line line line
//	line   := [label WS+] value
//	value  := the last whitespace-separated token, keeping only [0-9.-]
//
// So "Monthly repayment: $30.78" reads as 30.78. Any other line count, or a
// value that is not a decimal number, means the candidate produced no result.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amccague/zscore/internal/models"
	"github.com/shopspring/decimal"
)

// ValueCount is the number of lines a well-formed output carries.
const ValueCount = 4

// ErrMalformed is matched by every *MalformedError.
var ErrMalformed = errors.New("malformed candidate output")

// MalformedError describes output that does not follow the line grammar.
type MalformedError struct {
	Reason string
	Tokens []string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Tokens)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// ParseLine returns the cleaned value token of a single output line.
// A blank line yields an empty token.
func ParseLine(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return strings.Map(keepNumeric, fields[len(fields)-1])
}

func keepNumeric(r rune) rune {
	if (r >= '0' && r <= '9') || r == '.' || r == '-' {
		return r
	}
	return -1
}

// Parse converts raw output lines into a CandidateOutput.
// The returned error is a *MalformedError when the output carries no result.
func Parse(lines []string) (*models.CandidateOutput, error) {
	tokens := make([]string, 0, len(lines))
	for _, line := range lines {
		tokens = append(tokens, ParseLine(line))
	}

	if len(tokens) != ValueCount {
		return nil, &MalformedError{
			Reason: fmt.Sprintf("did not produce %d output values", ValueCount),
			Tokens: tokens,
		}
	}

	values := make([]decimal.Decimal, ValueCount)
	for i, token := range tokens {
		v, err := decimal.NewFromString(token)
		if err != nil {
			return nil, &MalformedError{Reason: "outputs are not parsable", Tokens: tokens}
		}
		values[i] = v
	}

	return &models.CandidateOutput{
		RequestedAmount:  values[0],
		InterestRate:     values[1],
		MonthlyRepayment: values[2],
		TotalRepayment:   values[3],
	}, nil
}
