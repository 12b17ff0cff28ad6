package app

import (
	"context"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/importer"
)

type SequenceUseCase interface {
	Sequence(ctx context.Context, req SequenceRequest) (*SequenceResponse, error)
}

type ImportDocumentUseCase interface {
	ImportDocument(ctx context.Context, filePath string) (*ImportResult, error)
	ImportDocumentFromSchema(ctx context.Context, file *importer.DocumentFile) (*ImportResult, error)
}

type DocumentUseCase interface {
	List(ctx context.Context, kind *domain.DocumentKind) ([]*domain.Document, error)
	Get(ctx context.Context, id string) (*DocumentView, error)
	Delete(ctx context.Context, id string) error
	Schedule(ctx context.Context, id string, mode domain.CriticalPathMode) (*domain.Schedule, error)
	Convert(ctx context.Context, id string) (*ConvertResult, error)
}
