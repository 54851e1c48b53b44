package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/docstream/internal/core/domain"
	"github.com/kirillkom/docstream/internal/core/ports"
)

// SummaryQAUseCase answers questions against the stored summary of a single
// document. A missing summary is a domain-level not-found, not a server error.
type SummaryQAUseCase struct {
	summaries ports.SummaryStore
	generator ports.AnswerGenerator
}

func NewSummaryQAUseCase(summaries ports.SummaryStore, generator ports.AnswerGenerator) *SummaryQAUseCase {
	return &SummaryQAUseCase{
		summaries: summaries,
		generator: generator,
	}
}

func (uc *SummaryQAUseCase) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	summaries, err := uc.summaries.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return summaries, nil
}

func (uc *SummaryQAUseCase) AnswerFromSummary(ctx context.Context, filename, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "summary qa", fmt.Errorf("question is required"))
	}

	summary, err := uc.summaries.Get(ctx, filename)
	if err != nil {
		return "", err
	}

	answer, err := uc.generator.AnswerWithContext(ctx, question, summary.Summary)
	if err != nil {
		return "", domain.WrapError(domain.ErrUpstream, "summary qa", err)
	}
	return answer, nil
}
