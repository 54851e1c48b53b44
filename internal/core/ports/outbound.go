package ports

import (
	"context"
	"io"

	"github.com/kirillkom/docstream/internal/core/domain"
)

// NotificationLog is the durable append-only completion feed. Append assigns
// the next cursor atomically against the shared store; ReadSince returns all
// records with id > sinceID in ascending id order.
type NotificationLog interface {
	Append(ctx context.Context, n *domain.Notification) (int64, error)
	ReadSince(ctx context.Context, sinceID int64) ([]domain.Notification, error)
}

// SummaryStore keeps the current summary per filename with upsert semantics.
type SummaryStore interface {
	Upsert(ctx context.Context, filename, text string) error
	Get(ctx context.Context, filename string) (*domain.Summary, error)
	Delete(ctx context.Context, filename string) (int64, error)
	ListAll(ctx context.Context) ([]domain.Summary, error)
}

// DocumentRepository persists and reads document metadata/state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetByFilename(ctx context.Context, filename string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// JobQueue publishes/consumes background jobs.
type JobQueue interface {
	PublishJob(ctx context.Context, job domain.Job) error
	SubscribeJobs(ctx context.Context, handler func(context.Context, domain.Job) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Chunker splits text into semantically usable chunks.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore indexes chunks, performs semantic search and maintains the
// per-filename catalog.
type VectorStore interface {
	IndexChunks(ctx context.Context, doc *domain.Document, chunks []string, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int, filter domain.SearchFilter) ([]domain.RetrievedChunk, error)
	ListDocuments(ctx context.Context) ([]domain.IndexedDocument, error)
	DeleteByFilename(ctx context.Context, filename string) error
}

// AnswerGenerator creates user-facing answers and summaries.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, chunks []domain.RetrievedChunk) (string, error)
	AnswerWithContext(ctx context.Context, question, contextText string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
}

// CompletionNotifier reports a terminal job outcome to the completion webhook.
type CompletionNotifier interface {
	NotifyCompletion(ctx context.Context, req domain.CompletionRequest) error
}
