package domain

import "time"

// Summary holds the current summary text for a filename. The store keeps one
// visible row per filename; a newer summarization completion replaces it.
type Summary struct {
	Filename  string    `json:"filename"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
