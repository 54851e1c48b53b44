package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/docstream/internal/core/domain"
	"github.com/kirillkom/docstream/internal/core/ports"
)

// CompleteJobUseCase is the completion webhook. The external worker may retry
// the same payload after a transient failure, so the summary write is an
// idempotent upsert and duplicate notifications are tolerated downstream.
type CompleteJobUseCase struct {
	summaries ports.SummaryStore
	log       ports.NotificationLog
}

func NewCompleteJobUseCase(summaries ports.SummaryStore, log ports.NotificationLog) *CompleteJobUseCase {
	return &CompleteJobUseCase{
		summaries: summaries,
		log:       log,
	}
}

// Complete persists the result and appends the notification, in that order.
// The summary must be durable before the notification becomes visible: a
// poller that observes the record must be able to resolve the summary read.
func (uc *CompleteJobUseCase) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.Notification, error) {
	if err := validateCompletion(req); err != nil {
		return nil, err
	}

	if req.Type == string(domain.JobSummarization) && req.Status == string(domain.JobCompleted) {
		if err := uc.summaries.Upsert(ctx, req.Filename, req.Result); err != nil {
			return nil, fmt.Errorf("persist summary: %w", err)
		}
	}

	notification := &domain.Notification{
		Type:     domain.JobType(req.Type),
		Filename: req.Filename,
		Status:   domain.JobStatus(req.Status),
		Result:   req.Result,
		Error:    req.Error,
	}
	id, err := uc.log.Append(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("append notification: %w", err)
	}
	notification.ID = id
	return notification, nil
}

func validateCompletion(req domain.CompletionRequest) error {
	if req.Filename == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate completion", fmt.Errorf("filename is required"))
	}
	switch req.Type {
	case string(domain.JobIngestion), string(domain.JobSummarization):
	default:
		return domain.WrapError(domain.ErrInvalidInput, "validate completion", fmt.Errorf("unknown job type %q", req.Type))
	}
	switch req.Status {
	case string(domain.JobCompleted), string(domain.JobFailed):
	default:
		return domain.WrapError(domain.ErrInvalidInput, "validate completion", fmt.Errorf("unknown status %q", req.Status))
	}
	return nil
}
