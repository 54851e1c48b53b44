// Package extractor dispatches text extraction to a format-specific
// implementation based on the document's file extension.
package extractor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kirillkom/docstream/internal/core/domain"
	"github.com/kirillkom/docstream/internal/core/ports"
)

type Dispatch struct {
	byExtension map[string]ports.TextExtractor
	fallback    ports.TextExtractor
}

func NewDispatch(fallback ports.TextExtractor) *Dispatch {
	return &Dispatch{
		byExtension: make(map[string]ports.TextExtractor),
		fallback:    fallback,
	}
}

func (d *Dispatch) Register(ext string, e ports.TextExtractor) *Dispatch {
	d.byExtension[strings.ToLower(ext)] = e
	return d
}

func (d *Dispatch) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	if e, ok := d.byExtension[ext]; ok {
		return e.Extract(ctx, doc)
	}
	return d.fallback.Extract(ctx, doc)
}
