package httpadapter

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/docstream/internal/config"
	"github.com/kirillkom/docstream/internal/core/domain"
)

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadDocumentReturnsAccepted(t *testing.T) {
	stubs := defaultStubs()
	handler := newTestHandler(config.Config{}, stubs)

	body, contentType := multipartBody(t, "file", "report.pdf", "content")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if stubs.ingest.filename != "report.pdf" {
		t.Fatalf("expected filename forwarded, got %q", stubs.ingest.filename)
	}
	var doc domain.Document
	if err := json.Unmarshal(res.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if doc.ID != "doc-1" {
		t.Fatalf("expected document in response, got %+v", doc)
	}
}

func TestUploadDocumentRequiresFileField(t *testing.T) {
	handler := newTestHandler(config.Config{}, defaultStubs())

	body, contentType := multipartBody(t, "attachment", "a.txt", "x")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentByIDReturnsMetadata(t *testing.T) {
	stubs := defaultStubs()
	stubs.docs.doc = &domain.Document{ID: "doc-5", Filename: "a.txt", Status: domain.StatusReady}
	handler := newTestHandler(config.Config{}, stubs)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-5", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var doc domain.Document
	if err := json.Unmarshal(res.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if doc.ID != "doc-5" || doc.Status != domain.StatusReady {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestGetDocumentByIDUnknownReturns404(t *testing.T) {
	stubs := defaultStubs()
	stubs.docs.doc = nil
	stubs.docs.err = domain.WrapError(domain.ErrDocumentNotFound, "get document", errBoom)
	handler := newTestHandler(config.Config{}, stubs)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/ghost", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}
