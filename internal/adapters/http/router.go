package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/docstream/internal/config"
	"github.com/kirillkom/docstream/internal/core/domain"
	"github.com/kirillkom/docstream/internal/core/ports"
	"github.com/kirillkom/docstream/internal/observability/metrics"
)

type Router struct {
	cfg config.Config

	completer ports.JobCompleter
	poller    ports.NotificationPoller
	ingest    ports.DocumentIngestor
	summarize ports.SummarizeSubmitter
	summaries ports.SummaryReader
	query     ports.DocumentQueryService
	catalog   ports.DocumentCatalog
	docs      ports.DocumentReader

	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	completer ports.JobCompleter,
	poller ports.NotificationPoller,
	ingest ports.DocumentIngestor,
	summarize ports.SummarizeSubmitter,
	summaries ports.SummaryReader,
	query ports.DocumentQueryService,
	catalog ports.DocumentCatalog,
	docs ports.DocumentReader,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		completer: completer,
		poller:    poller,
		ingest:    ingest,
		summarize: summarize,
		summaries: summaries,
		query:     query,
		catalog:   catalog,
		docs:      docs,
		metrics:   m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/poll", rt.pollNotifications)
	mux.HandleFunc("/internal/notify", rt.notifyCompletion)
	mux.HandleFunc("/agent/summaries", rt.listSummaries)
	mux.HandleFunc("/agent/summary_qa", rt.summaryQA)
	mux.HandleFunc("/agent/summarize", rt.submitSummarize)
	mux.HandleFunc("/agent/search", rt.search)
	mux.HandleFunc("/agent/documents", rt.listDocuments)
	mux.HandleFunc("/agent/documents/", rt.deleteDocument)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, 100*time.Millisecond)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) pollNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sinceID := int64(0)
	if raw := r.URL.Query().Get("since_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeDetail(w, http.StatusBadRequest, "since_id must be a non-negative integer")
			return
		}
		sinceID = parsed
	}

	start := time.Now()
	timeout := time.Duration(rt.cfg.PollTimeoutSeconds) * time.Second
	messages, err := rt.poller.Poll(r.Context(), sinceID, timeout)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(r.Context().Err(), context.Canceled) {
			// Client went away mid-wait; nothing left to answer.
			return
		}
		rt.writeError(w, r, "poll notifications", err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordPoll("api", len(messages), time.Since(start))
	}
	if messages == nil {
		messages = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (rt *Router) notifyCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req domain.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}

	notification, err := rt.completer.Complete(r.Context(), req)
	if err != nil {
		rt.writeError(w, r, "complete job", err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordNotificationAppend("api", string(notification.Type), string(notification.Status))
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": notification.ID})
}

func (rt *Router) listSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summaries, err := rt.summaries.ListSummaries(r.Context())
	if err != nil {
		rt.writeError(w, r, "list summaries", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}

func (rt *Router) summaryQA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Filename string `json:"filename"`
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}

	answer, err := rt.summaries.AnswerFromSummary(r.Context(), req.Filename, req.Question)
	if err != nil {
		if domain.IsKind(err, domain.ErrSummaryNotFound) {
			writeDetail(w, http.StatusNotFound, "Summary not found")
			return
		}
		rt.writeError(w, r, "summary qa", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (rt *Router) submitSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}

	taskID, err := rt.summarize.SubmitSummarize(r.Context(), req.Filename)
	if err != nil {
		rt.writeError(w, r, "submit summarize", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"task_id": taskID})
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Prompt   string `json:"prompt"`
		Limit    int    `json:"limit"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeDetail(w, http.StatusBadRequest, "prompt is required")
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = rt.cfg.RAGTopK
	}
	answer, err := rt.query.Answer(r.Context(), req.Prompt, limit, domain.SearchFilter{Filename: req.Filename})
	if err != nil {
		rt.writeError(w, r, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	docs, err := rt.catalog.List(r.Context())
	if err != nil {
		rt.writeError(w, r, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filename := strings.TrimPrefix(r.URL.Path, "/agent/documents/")
	if filename == "" {
		writeDetail(w, http.StatusBadRequest, "filename is required")
		return
	}

	if err := rt.catalog.Remove(r.Context(), filename); err != nil {
		rt.writeError(w, r, "delete document", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Deleted " + filename})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		rt.writeError(w, r, "upload document", err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeDetail(w, http.StatusBadRequest, "document id is required")
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		slog.Error("handler_error",
			"request_id", requestIDFromContext(r.Context()),
			"operation", operation,
			"error", err,
		)
	}
	writeDetail(w, status, safeErrorMessage(err, status))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
