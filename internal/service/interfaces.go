package service

import (
	"context"

	"github.com/alexanderramin/buildseq/internal/app"
	"github.com/alexanderramin/buildseq/internal/importer"
	"github.com/alexanderramin/buildseq/internal/sequencer"
)

type SequenceService interface {
	app.SequenceUseCase
	// Rules exposes the rule table the service classifies against.
	Rules() *sequencer.RuleTable
}

type ImportService interface {
	app.ImportDocumentUseCase
}

type DocumentService interface {
	app.DocumentUseCase
	// Export returns the document in import file form.
	Export(ctx context.Context, id string) (*importer.DocumentFile, error)
}
