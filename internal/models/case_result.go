package models

// CaseResult represents the score a single grading case awarded
type CaseResult struct {
	Name        string           `json:"name" yaml:"name"`
	Amount      int              `json:"amount" yaml:"amount"`
	Score       int              `json:"score" yaml:"score"`
	MaxScore    int              `json:"max_score" yaml:"max_score"`
	Output      *CandidateOutput `json:"output,omitempty" yaml:"output,omitempty"` // nil when no result was produced
	Diagnostics []string         `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	DurationMs  int64            `json:"duration_ms" yaml:"duration_ms"`
}

// Passed reports whether the case awarded full marks
func (c CaseResult) Passed() bool {
	return c.Score >= c.MaxScore
}
