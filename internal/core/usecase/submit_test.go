package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/docstream/internal/core/domain"
)

func TestSubmitSummarizePublishesJob(t *testing.T) {
	queue := &ingestQueueFake{}
	uc := NewSubmitSummarizeUseCase(queue)

	taskID, err := uc.SubmitSummarize(context.Background(), "report.pdf")
	if err != nil {
		t.Fatalf("SubmitSummarize() error = %v", err)
	}
	if taskID == "" {
		t.Fatalf("expected task id")
	}
	if len(queue.published) != 1 {
		t.Fatalf("expected one job, got %d", len(queue.published))
	}
	job := queue.published[0]
	if job.Type != domain.JobSummarization {
		t.Fatalf("expected summarization job, got %s", job.Type)
	}
	if job.Filename != "report.pdf" {
		t.Fatalf("expected filename carried, got %s", job.Filename)
	}
	if job.ID != taskID {
		t.Fatalf("returned id %s differs from published %s", taskID, job.ID)
	}
	if job.SubmittedAt.IsZero() {
		t.Fatalf("expected submitted timestamp")
	}
}

func TestSubmitSummarizeRejectsEmptyFilename(t *testing.T) {
	uc := NewSubmitSummarizeUseCase(&ingestQueueFake{})

	_, err := uc.SubmitSummarize(context.Background(), "  ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitSummarizePublishFailureSurfaces(t *testing.T) {
	uc := NewSubmitSummarizeUseCase(&ingestQueueFake{err: errors.New("nats down")})

	if _, err := uc.SubmitSummarize(context.Background(), "report.pdf"); err == nil {
		t.Fatalf("expected error when publish fails")
	}
}
