package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/docstream/internal/adapters/http"
	"github.com/kirillkom/docstream/internal/bootstrap"
	"github.com/kirillkom/docstream/internal/config"
	"github.com/kirillkom/docstream/internal/observability/logging"
	"github.com/kirillkom/docstream/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		cfg,
		app.CompleteUC,
		app.PollUC,
		app.IngestUC,
		app.SummarizeUC,
		app.SummariesUC,
		app.QueryUC,
		app.CatalogUC,
		app.Documents,
		metrics.NewHTTPServerMetrics("api"),
	)

	// WriteTimeout must exceed the poll timeout ceiling so long polls can
	// drain their full wait before the server cuts the connection.
	writeTimeout := time.Duration(cfg.PollMaxTimeoutSeconds+5) * time.Second
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown error", "error", err)
	}
}
