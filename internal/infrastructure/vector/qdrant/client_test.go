package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kirillkom/docstream/internal/core/domain"
)

func TestIndexChunksEnsuresCollectionOnce(t *testing.T) {
	var ensureCalls, upsertCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			atomic.AddInt32(&ensureCalls, 1)
			_, _ = w.Write([]byte(`{"result":true}`))
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points":
			atomic.AddInt32(&upsertCalls, 1)
			_, _ = w.Write([]byte(`{"result":{}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	doc := &domain.Document{ID: "doc-1", Filename: "a.txt"}
	vectors := [][]float32{{0.1, 0.2}}

	for i := 0; i < 3; i++ {
		if err := client.IndexChunks(context.Background(), doc, []string{"chunk"}, vectors); err != nil {
			t.Fatalf("IndexChunks() error = %v", err)
		}
	}

	if got := atomic.LoadInt32(&ensureCalls); got != 1 {
		t.Fatalf("expected one ensure-collection call, got %d", got)
	}
	if got := atomic.LoadInt32(&upsertCalls); got != 3 {
		t.Fatalf("expected 3 upserts, got %d", got)
	}
}

func TestIndexChunksTreatsConflictAsEnsured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/docs" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		_, _ = w.Write([]byte(`{"result":{}}`))
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	doc := &domain.Document{ID: "doc-1", Filename: "a.txt"}
	err := client.IndexChunks(context.Background(), doc, []string{"chunk"}, [][]float32{{0.1}})
	if err != nil {
		t.Fatalf("IndexChunks() error = %v", err)
	}
}

func TestSearchAppliesFilenameFilter(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/docs/points/search" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":[{"score":0.9,"payload":{"doc_id":"d1","filename":"a.txt","text":"hello"}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	chunks, err := client.Search(context.Background(), []float32{0.1}, 5, domain.SearchFilter{Filename: "a.txt"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(chunks) != 1 || chunks[0].Filename != "a.txt" || chunks[0].Score != 0.9 {
		t.Fatalf("unexpected chunks %+v", chunks)
	}
	if captured["filter"] == nil {
		t.Fatalf("expected filter in request, got %v", captured)
	}
	if captured["limit"] != float64(5) {
		t.Fatalf("expected limit 5, got %v", captured["limit"])
	}
}

func TestListDocumentsDeduplicatesByFilenameAcrossPages(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/docs/points/scroll" {
			http.NotFound(w, r)
			return
		}
		page := atomic.AddInt32(&calls, 1)
		if page == 1 {
			_, _ = w.Write([]byte(`{"result":{"points":[
				{"id":1,"payload":{"doc_id":"d1","filename":"a.txt","text":"chunk one"}},
				{"id":2,"payload":{"doc_id":"d1","filename":"a.txt","text":"chunk two"}}
			],"next_page_offset":3}}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":{"points":[
			{"id":3,"payload":{"doc_id":"d2","filename":"b.txt","text":"other"}}
		],"next_page_offset":null}}`))
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	docs, err := client.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d: %+v", len(docs), docs)
	}
	if docs[0].Filename != "a.txt" || docs[0].Snippet != "chunk one" {
		t.Fatalf("unexpected first doc %+v", docs[0])
	}
	if docs[1].Filename != "b.txt" {
		t.Fatalf("unexpected second doc %+v", docs[1])
	}
}

func TestDeleteByFilenameSendsFilter(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/docs/points/delete" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":{}}`))
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	if err := client.DeleteByFilename(context.Background(), "a.txt"); err != nil {
		t.Fatalf("DeleteByFilename() error = %v", err)
	}
	raw, _ := json.Marshal(captured["filter"])
	if !strings.Contains(string(raw), `"value":"a.txt"`) {
		t.Fatalf("expected filename filter, got %s", raw)
	}
}

func TestSearchIncludesErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "collection not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	_, err := client.Search(context.Background(), []float32{0.1}, 5, domain.SearchFilter{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "collection not found") {
		t.Fatalf("expected body in error, got %v", err)
	}
}
