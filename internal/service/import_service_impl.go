package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/buildseq/internal/app"
	"github.com/alexanderramin/buildseq/internal/db"
	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/importer"
	"github.com/alexanderramin/buildseq/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportDocument(ctx context.Context, filePath string) (*app.ImportResult, error) {
	file, err := importer.LoadDocumentFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importFile(ctx, file)
}

func (s *importService) ImportDocumentFromSchema(ctx context.Context, file *importer.DocumentFile) (*app.ImportResult, error) {
	return s.importFile(ctx, file)
}

func (s *importService) importFile(ctx context.Context, file *importer.DocumentFile) (result *app.ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "import-document", startedAt, fields, err) }()

	if errs := importer.ValidateDocumentFile(file); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	converted := importer.Convert(file)
	doc := converted.Document
	fields["kind"] = string(doc.Kind)
	fields["line_items"] = len(converted.LineItems)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		seqRepo := repository.NewSQLiteDocumentSequenceRepo(tx)
		if doc.ShortID == "" {
			n, err := seqRepo.NextShortSeq(ctx, doc.Kind)
			if err != nil {
				return err
			}
			doc.ShortID = domain.FormatShortID(doc.Kind, n)
		} else if n, ok := domain.ShortIDNumber(doc.Kind, doc.ShortID); ok {
			if err := seqRepo.AdvancePast(ctx, doc.Kind, n); err != nil {
				return err
			}
		}
		if err := repository.NewSQLiteDocumentRepo(tx).Create(ctx, doc); err != nil {
			return fmt.Errorf("creating document %s: %w", doc.ShortID, err)
		}
		if err := repository.NewSQLiteLineItemRepo(tx).CreateBatch(ctx, converted.LineItems); err != nil {
			return fmt.Errorf("creating line items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["short_id"] = doc.ShortID

	return &app.ImportResult{Document: doc, LineItemCount: len(converted.LineItems)}, nil
}
