package models

import "time"

// Report represents the outcome of scoring one executable
type Report struct {
	Executable string       `json:"executable" yaml:"executable"`
	Score      int          `json:"score" yaml:"score"` // percentage, 0-100
	Cases      []CaseResult `json:"cases" yaml:"cases"`
	Error      string       `json:"error,omitempty" yaml:"error,omitempty"` // set when the run collapsed to 0
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
}

// Failed reports whether the run was aborted rather than scored
func (r Report) Failed() bool {
	return r.Error != ""
}
