package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/docstream/internal/core/domain"
	"github.com/kirillkom/docstream/internal/core/ports"
)

// SubmitSummarizeUseCase enqueues summarization work. The caller is told the
// task id only; the outcome arrives later through the notification feed.
type SubmitSummarizeUseCase struct {
	queue ports.JobQueue
}

func NewSubmitSummarizeUseCase(queue ports.JobQueue) *SubmitSummarizeUseCase {
	return &SubmitSummarizeUseCase{queue: queue}
}

func (uc *SubmitSummarizeUseCase) SubmitSummarize(ctx context.Context, filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "submit summarize", fmt.Errorf("filename is required"))
	}

	job := domain.Job{
		ID:          uuid.NewString(),
		Type:        domain.JobSummarization,
		Filename:    filename,
		SubmittedAt: time.Now().UTC(),
	}
	if err := uc.queue.PublishJob(ctx, job); err != nil {
		return "", fmt.Errorf("publish summarization job: %w", err)
	}
	return job.ID, nil
}
