package domain

import "time"

type JobType string

const (
	JobIngestion     JobType = "ingestion"
	JobSummarization JobType = "summarization"
)

type JobStatus string

const (
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Notification is one record in the append-only completion feed. The ID is the
// poll cursor: assigned by the log at append time, strictly increasing, never
// reused across process restarts.
type Notification struct {
	ID        int64     `json:"id"`
	Type      JobType   `json:"type"`
	Filename  string    `json:"filename"`
	Status    JobStatus `json:"status"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CompletionRequest is the payload the worker posts to the completion webhook
// when a job reaches a terminal state.
type CompletionRequest struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Result   string `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}
