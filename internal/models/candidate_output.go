package models

import "github.com/shopspring/decimal"

// CandidateOutput represents the four values a candidate prints for one loan request
type CandidateOutput struct {
	RequestedAmount  decimal.Decimal `json:"requested_amount" yaml:"requested_amount"`
	InterestRate     decimal.Decimal `json:"interest_rate" yaml:"interest_rate"`
	MonthlyRepayment decimal.Decimal `json:"monthly_repayment" yaml:"monthly_repayment"`
	TotalRepayment   decimal.Decimal `json:"total_repayment" yaml:"total_repayment"`
}
