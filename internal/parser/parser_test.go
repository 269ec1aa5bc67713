package parser

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"1000", "1000"},
		{"Requested amount: £1000", "1000"},
		{"Monthly repayment: $30.78", "30.78"},
		{"Rate: 7.0%", "7.0"},
		{"Balance -12.5", "-12.5"},
		{"  padded   30.78  ", "30.78"},
		{"tab\tseparated\t1108.10", "1108.10"},
		{"", ""},
		{"   ", ""},
		{"no digits here", ""},
		{"1,108.10", "1108.10"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLine(tt.line), "line %q", tt.line)
	}
}

func TestParse_Labelled(t *testing.T) {
	out, err := Parse([]string{
		"Requested amount: £1000",
		"Rate: 7.0%",
		"Monthly repayment: £30.78",
		"Total repayment: £1108.10",
	})
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.True(t, out.RequestedAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, out.InterestRate.Equal(decimal.RequireFromString("7")))
	assert.True(t, out.MonthlyRepayment.Equal(decimal.RequireFromString("30.78")))
	assert.True(t, out.TotalRepayment.Equal(decimal.RequireFromString("1108.1")))
}

func TestParse_WrongLineCount(t *testing.T) {
	for _, lines := range [][]string{
		nil,
		{"1000", "7.0", "30.78"},
		{"1000", "7.0", "30.78", "1108.10", ""},
	} {
		out, err := Parse(lines)
		assert.Nil(t, out)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformed))

		var malformed *MalformedError
		require.True(t, errors.As(err, &malformed))
		assert.Len(t, malformed.Tokens, len(lines))
		assert.Contains(t, malformed.Reason, "did not produce 4 output values")
	}
}

func TestParse_Unparsable(t *testing.T) {
	out, err := Parse([]string{
		"Requested amount: 1000",
		"Rate: unknown",
		"Monthly repayment: 30.78",
		"Total repayment: 1.108.10",
	})
	assert.Nil(t, out)
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "not parsable")
}

func TestParse_BlankLinesCount(t *testing.T) {
	_, err := Parse([]string{"", "", "", ""})
	require.ErrorIs(t, err, ErrMalformed)
}
