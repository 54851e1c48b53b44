package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/docstream/internal/core/domain"
)

// JobCompleter is the inbound contract of the completion webhook.
type JobCompleter interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (*domain.Notification, error)
}

// NotificationPoller is the inbound contract of the long-poll read API.
type NotificationPoller interface {
	Poll(ctx context.Context, sinceID int64, timeout time.Duration) ([]domain.Notification, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// SummarizeSubmitter enqueues summarization work and returns the task id.
type SummarizeSubmitter interface {
	SubmitSummarize(ctx context.Context, filename string) (string, error)
}

// JobProcessor executes a background job to its terminal state and reports
// the outcome through the completion webhook.
type JobProcessor interface {
	ProcessJob(ctx context.Context, job domain.Job) error
}

// SummaryReader serves the summary history and summary-grounded QA.
type SummaryReader interface {
	ListSummaries(ctx context.Context) ([]domain.Summary, error)
	AnswerFromSummary(ctx context.Context, filename, question string) (string, error)
}

// DocumentQueryService is the inbound contract for RAG over indexed chunks.
type DocumentQueryService interface {
	Answer(ctx context.Context, question string, limit int, filter domain.SearchFilter) (*domain.Answer, error)
}

// DocumentCatalog lists and removes indexed documents.
type DocumentCatalog interface {
	List(ctx context.Context) ([]domain.IndexedDocument, error)
	Remove(ctx context.Context, filename string) error
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
