package domain

import "time"

// Job is the unit of background work carried over the queue. DocumentID is set
// for ingestion jobs created at upload time; summarization jobs are keyed by
// filename only, matching the summarize endpoint contract.
type Job struct {
	ID          string    `json:"id"`
	Type        JobType   `json:"type"`
	Filename    string    `json:"filename"`
	DocumentID  string    `json:"document_id,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
