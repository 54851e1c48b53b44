package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/docstream/internal/core/domain"
	"github.com/kirillkom/docstream/internal/core/ports"
)

// CatalogUseCase lists indexed documents and removes a document's derived
// state: vector chunks first, then the summary row, then the stored blob.
type CatalogUseCase struct {
	vectorDB  ports.VectorStore
	summaries ports.SummaryStore
	repo      ports.DocumentRepository
	storage   ports.ObjectStorage
}

func NewCatalogUseCase(
	vectorDB ports.VectorStore,
	summaries ports.SummaryStore,
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
) *CatalogUseCase {
	return &CatalogUseCase{
		vectorDB:  vectorDB,
		summaries: summaries,
		repo:      repo,
		storage:   storage,
	}
}

func (uc *CatalogUseCase) List(ctx context.Context) ([]domain.IndexedDocument, error) {
	docs, err := uc.vectorDB.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexed documents: %w", err)
	}
	return docs, nil
}

func (uc *CatalogUseCase) Remove(ctx context.Context, filename string) error {
	if strings.TrimSpace(filename) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "remove document", fmt.Errorf("filename is required"))
	}

	if err := uc.vectorDB.DeleteByFilename(ctx, filename); err != nil {
		return fmt.Errorf("delete vector chunks: %w", err)
	}
	// A document without a summary is fine; 0 rows removed is not an error.
	if _, err := uc.summaries.Delete(ctx, filename); err != nil {
		return fmt.Errorf("delete summary: %w", err)
	}

	doc, err := uc.repo.GetByFilename(ctx, filename)
	if err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			return nil
		}
		return fmt.Errorf("resolve document blob: %w", err)
	}
	if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete stored blob: %w", err)
	}
	return nil
}
