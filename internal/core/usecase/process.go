package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/docstream/internal/core/domain"
	"github.com/kirillkom/docstream/internal/core/ports"
)

// ProcessJobUseCase executes background jobs on the worker and reports the
// terminal outcome to the completion webhook. The webhook call is the only
// delivery channel back to the web tier, so a failed delivery fails the job
// handler and the queue redelivers.
type ProcessJobUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	generator ports.AnswerGenerator
	notifier  ports.CompletionNotifier
}

func NewProcessJobUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	generator ports.AnswerGenerator,
	notifier ports.CompletionNotifier,
) *ProcessJobUseCase {
	return &ProcessJobUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		vectorDB:  vectorDB,
		generator: generator,
		notifier:  notifier,
	}
}

func (uc *ProcessJobUseCase) ProcessJob(ctx context.Context, job domain.Job) error {
	var result string
	var jobErr error

	switch job.Type {
	case domain.JobIngestion:
		jobErr = uc.runIngestion(ctx, job)
	case domain.JobSummarization:
		result, jobErr = uc.runSummarization(ctx, job)
	default:
		jobErr = domain.WrapError(domain.ErrInvalidInput, "process job", fmt.Errorf("unknown job type %q", job.Type))
	}

	req := domain.CompletionRequest{
		Type:     string(job.Type),
		Filename: job.Filename,
		Status:   string(domain.JobCompleted),
		Result:   result,
	}
	if jobErr != nil {
		req.Status = string(domain.JobFailed)
		req.Result = ""
		req.Error = jobErr.Error()
	}

	if err := uc.notifier.NotifyCompletion(ctx, req); err != nil {
		if jobErr != nil {
			return fmt.Errorf("notify completion: %w (job error: %v)", err, jobErr)
		}
		return fmt.Errorf("notify completion: %w", err)
	}
	return jobErr
}

func (uc *ProcessJobUseCase) runIngestion(ctx context.Context, job domain.Job) error {
	if err := uc.repo.UpdateStatus(ctx, job.DocumentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	err := uc.ingestPipeline(ctx, job.DocumentID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, job.DocumentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, job.DocumentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessJobUseCase) ingestPipeline(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return err
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	vectors, err := uc.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	if err := uc.vectorDB.IndexChunks(ctx, doc, chunks, vectors); err != nil {
		return fmt.Errorf("index chunks in vector db: %w", err)
	}
	return nil
}

func (uc *ProcessJobUseCase) runSummarization(ctx context.Context, job domain.Job) (string, error) {
	doc, err := uc.resolveDocument(ctx, job)
	if err != nil {
		return "", err
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return "", err
	}

	summary, err := uc.generator.Summarize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	if summary == "" {
		return "", domain.WrapError(domain.ErrUpstream, "generate summary", errors.New("empty summary"))
	}
	return summary, nil
}

func (uc *ProcessJobUseCase) resolveDocument(ctx context.Context, job domain.Job) (*domain.Document, error) {
	if job.DocumentID != "" {
		doc, err := uc.repo.GetByID(ctx, job.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("fetch document by id: %w", err)
		}
		return doc, nil
	}
	doc, err := uc.repo.GetByFilename(ctx, job.Filename)
	if err != nil {
		return nil, fmt.Errorf("fetch document by filename: %w", err)
	}
	return doc, nil
}

func (uc *ProcessJobUseCase) extractText(ctx context.Context, doc *domain.Document) (string, error) {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}
