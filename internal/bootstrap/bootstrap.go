package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/docstream/internal/config"
	"github.com/kirillkom/docstream/internal/core/ports"
	"github.com/kirillkom/docstream/internal/core/usecase"
	"github.com/kirillkom/docstream/internal/infrastructure/chunking"
	"github.com/kirillkom/docstream/internal/infrastructure/extractor"
	"github.com/kirillkom/docstream/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/docstream/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/docstream/internal/infrastructure/extractor/xlsx"
	"github.com/kirillkom/docstream/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/docstream/internal/infrastructure/notify"
	"github.com/kirillkom/docstream/internal/infrastructure/queue/nats"
	"github.com/kirillkom/docstream/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/docstream/internal/infrastructure/resilience"
	"github.com/kirillkom/docstream/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/docstream/internal/infrastructure/vector/qdrant"
)

// App holds the wired dependency graph shared by the binaries. The API
// serves the inbound use cases; the worker consumes the queue through
// ProcessUC and reports back through the completion webhook.
type App struct {
	Config config.Config

	Queue ports.JobQueue

	CompleteUC  ports.JobCompleter
	PollUC      ports.NotificationPoller
	IngestUC    ports.DocumentIngestor
	SummarizeUC ports.SummarizeSubmitter
	SummariesUC ports.SummaryReader
	QueryUC     ports.DocumentQueryService
	CatalogUC   ports.DocumentCatalog
	Documents   ports.DocumentReader
	ProcessUC   ports.JobProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	notificationLog := postgres.NewNotificationLog(db)
	summaryRepo := postgres.NewSummaryRepository(db)
	docRepo := postgres.NewDocumentRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init job queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)

	textExtractor := extractor.NewDispatch(plaintext.NewExtractor(storage)).
		Register(".pdf", pdf.NewExtractor(storage)).
		Register(".xlsx", xlsx.NewExtractor(storage))

	notifier := notify.New(cfg.NotifyWebhookURL, resilience.NewExecutor(resilience.DefaultConfig()))

	pollInterval := time.Duration(cfg.PollIntervalMillis) * time.Millisecond
	pollMaxTimeout := time.Duration(cfg.PollMaxTimeoutSeconds) * time.Second

	return &App{
		Config: cfg,
		Queue:  queue,

		CompleteUC:  usecase.NewCompleteJobUseCase(summaryRepo, notificationLog),
		PollUC:      usecase.NewPollNotificationsUseCase(notificationLog, pollInterval, pollMaxTimeout),
		IngestUC:    usecase.NewIngestDocumentUseCase(docRepo, storage, queue),
		SummarizeUC: usecase.NewSubmitSummarizeUseCase(queue),
		SummariesUC: usecase.NewSummaryQAUseCase(summaryRepo, generator),
		QueryUC:     usecase.NewQueryUseCase(embedder, vectorDB, generator),
		CatalogUC:   usecase.NewCatalogUseCase(vectorDB, summaryRepo, docRepo, storage),
		Documents:   docRepo,
		ProcessUC: usecase.NewProcessJobUseCase(
			docRepo,
			textExtractor,
			chunker,
			embedder,
			vectorDB,
			generator,
			notifier,
		),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
