package model

import "time"

// Report summarizes one scrape run
type Report struct {
	Site        string    `json:"site"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Total       int       `json:"total"`     // Projects in the input list
	Processed   int       `json:"processed"` // Projects fetched and extracted
	Invalid     []Invalid `json:"invalid,omitempty"`
	Skipped     []Skipped `json:"skipped,omitempty"`
	Interrupted bool      `json:"interrupted"`
}

// Invalid records a project that lacked a table's primary container
type Invalid struct {
	ID    string    `json:"id"`
	Table TableKind `json:"table"`
}

// Skipped records a project whose fetch failed under the skip policy
type Skipped struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}
