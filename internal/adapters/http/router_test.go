package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/docstream/internal/config"
	"github.com/kirillkom/docstream/internal/core/domain"
)

type completerStub struct {
	notification *domain.Notification
	err          error
	got          domain.CompletionRequest
}

func (s *completerStub) Complete(_ context.Context, req domain.CompletionRequest) (*domain.Notification, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return s.notification, nil
}

type pollerStub struct {
	records []domain.Notification
	err     error
	sinceID int64
	timeout time.Duration
}

func (s *pollerStub) Poll(_ context.Context, sinceID int64, timeout time.Duration) ([]domain.Notification, error) {
	s.sinceID = sinceID
	s.timeout = timeout
	if s.err != nil {
		return nil, s.err
	}
	if s.records == nil {
		return []domain.Notification{}, nil
	}
	return s.records, nil
}

type ingestorStub struct {
	doc      *domain.Document
	err      error
	filename string
}

func (s *ingestorStub) Upload(_ context.Context, filename, _ string, body io.Reader) (*domain.Document, error) {
	s.filename = filename
	_, _ = io.Copy(io.Discard, body)
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

type submitterStub struct {
	taskID string
	err    error
}

func (s *submitterStub) SubmitSummarize(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.taskID, nil
}

type summaryReaderStub struct {
	summaries []domain.Summary
	answer    string
	err       error
}

func (s *summaryReaderStub) ListSummaries(context.Context) ([]domain.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summaries, nil
}

func (s *summaryReaderStub) AnswerFromSummary(context.Context, string, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

type queryStub struct {
	answer *domain.Answer
	err    error
}

func (s *queryStub) Answer(context.Context, string, int, domain.SearchFilter) (*domain.Answer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

type catalogStub struct {
	docs    []domain.IndexedDocument
	removed []string
	err     error
}

func (s *catalogStub) List(context.Context) ([]domain.IndexedDocument, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

func (s *catalogStub) Remove(_ context.Context, filename string) error {
	if s.err != nil {
		return s.err
	}
	s.removed = append(s.removed, filename)
	return nil
}

type docReaderStub struct {
	doc *domain.Document
	err error
}

func (s *docReaderStub) GetByID(context.Context, string) (*domain.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

type routerStubs struct {
	completer *completerStub
	poller    *pollerStub
	ingest    *ingestorStub
	summarize *submitterStub
	summaries *summaryReaderStub
	query     *queryStub
	catalog   *catalogStub
	docs      *docReaderStub
}

func defaultStubs() *routerStubs {
	return &routerStubs{
		completer: &completerStub{notification: &domain.Notification{ID: 1}},
		poller:    &pollerStub{},
		ingest:    &ingestorStub{doc: &domain.Document{ID: "doc-1", Status: domain.StatusUploaded}},
		summarize: &submitterStub{taskID: "task-1"},
		summaries: &summaryReaderStub{},
		query:     &queryStub{answer: &domain.Answer{Text: "a"}},
		catalog:   &catalogStub{},
		docs:      &docReaderStub{doc: &domain.Document{ID: "doc-1"}},
	}
}

func newTestHandler(cfg config.Config, stubs *routerStubs) http.Handler {
	if cfg.PollTimeoutSeconds == 0 {
		cfg.PollTimeoutSeconds = 1
	}
	return NewRouter(
		cfg,
		stubs.completer,
		stubs.poller,
		stubs.ingest,
		stubs.summarize,
		stubs.summaries,
		stubs.query,
		stubs.catalog,
		stubs.docs,
		nil,
	).Handler()
}

var errBoom = errors.New("boom")
