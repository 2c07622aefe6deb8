package models

import "time"

// Run is one persisted analysis invocation.
type Run struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Summary   Summary   `json:"summary"`
	Manifest  Manifest  `json:"manifest"`
	CreatedAt time.Time `json:"created_at"`
}
