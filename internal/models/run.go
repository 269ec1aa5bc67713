package models

import "time"

// Run represents a stored scoring run
type Run struct {
	ID         string    `json:"id"`
	Executable string    `json:"executable"`
	Score      int       `json:"score"`
	CasesJSON  string    `json:"cases"`
	Error      string    `json:"error,omitempty"`
	HMAC       string    `json:"hmac"`
	Verified   bool      `json:"verified"` // HMAC checked on read, never stored
	CreatedAt  time.Time `json:"created_at"`
}
