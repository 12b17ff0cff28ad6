package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/buildseq/internal/app"
	"github.com/alexanderramin/buildseq/internal/db"
	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/importer"
	"github.com/alexanderramin/buildseq/internal/repository"
	"github.com/alexanderramin/buildseq/internal/sequencer"
	"github.com/google/uuid"
)

type documentService struct {
	documents repository.DocumentRepo
	items     repository.LineItemRepo
	schedules repository.ScheduleRepo
	uow       db.UnitOfWork
	seq       *sequencer.Sequencer
	observer  UseCaseObserver
}

// NewDocumentService reads through the given repositories and performs
// every multi-row write inside uow.
func NewDocumentService(
	documents repository.DocumentRepo,
	items repository.LineItemRepo,
	schedules repository.ScheduleRepo,
	uow db.UnitOfWork,
	seq *sequencer.Sequencer,
	observers ...UseCaseObserver,
) DocumentService {
	if seq == nil {
		seq = sequencer.New(nil)
	}
	return &documentService{
		documents: documents,
		items:     items,
		schedules: schedules,
		uow:       uow,
		seq:       seq,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *documentService) List(ctx context.Context, kind *domain.DocumentKind) ([]*domain.Document, error) {
	return s.documents.List(ctx, kind)
}

func (s *documentService) Get(ctx context.Context, id string) (*app.DocumentView, error) {
	doc, err := resolveDocument(ctx, s.documents, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	view := &app.DocumentView{Document: doc, LineItems: items}

	sched, err := s.schedules.GetLatestByDocument(ctx, doc.ID)
	switch {
	case err == nil:
		view.Schedule = sched
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return view, nil
}

func (s *documentService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"document": id}
	defer func() { observe(ctx, s.observer, "delete-document", startedAt, fields, err) }()

	doc, err := resolveDocument(ctx, s.documents, id)
	if err != nil {
		return err
	}
	return s.documents.Delete(ctx, doc.ID)
}

func (s *documentService) Export(ctx context.Context, id string) (*importer.DocumentFile, error) {
	doc, err := resolveDocument(ctx, s.documents, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return importer.Export(doc, items), nil
}

// Schedule sequences the document's line items, stores the result and
// marks the document scheduled, all in one transaction. A converted
// document keeps its converted status.
func (s *documentService) Schedule(ctx context.Context, id string, mode domain.CriticalPathMode) (sched *domain.Schedule, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"document": id, "mode": string(mode)}
	defer func() {
		if sched != nil {
			fields["tasks"] = len(sched.Result.Tasks)
			fields["total_days"] = sched.Result.TotalDurationDays
		}
		observe(ctx, s.observer, "schedule-document", startedAt, fields, err)
	}()

	if mode == "" {
		mode = domain.CriticalPathHeuristic
	}
	if err := validateMode(mode); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		docs := repository.NewSQLiteDocumentRepo(tx)
		doc, err := resolveDocument(ctx, docs, id)
		if err != nil {
			return err
		}
		sched, err = s.scheduleInTx(ctx, tx, doc, mode)
		if err != nil {
			return err
		}
		if doc.Status == domain.DocumentConverted {
			return nil
		}
		return docs.UpdateStatus(ctx, doc.ID, domain.DocumentScheduled)
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}

// Convert moves a document one step along estimate, invoice, work order.
// The new document copies the line items and points back at its source,
// and the source is marked converted. A new work order is scheduled in the
// same transaction.
func (s *documentService) Convert(ctx context.Context, id string) (result *app.ConvertResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"document": id}
	defer func() {
		if result != nil {
			fields["new_document"] = result.Document.ShortID
			fields["new_kind"] = string(result.Document.Kind)
		}
		observe(ctx, s.observer, "convert-document", startedAt, fields, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		docs := repository.NewSQLiteDocumentRepo(tx)
		items := repository.NewSQLiteLineItemRepo(tx)

		src, err := resolveDocument(ctx, docs, id)
		if err != nil {
			return err
		}
		nextKind, ok := src.Kind.Next()
		if !ok {
			return documentErr(app.DocumentErrInvalidTransition,
				"%s is a %s; work orders cannot be converted further", src.DisplayID(), src.Kind)
		}
		if src.Status == domain.DocumentConverted {
			return documentErr(app.DocumentErrInvalidTransition,
				"%s has already been converted", src.DisplayID())
		}

		srcItems, err := items.ListByDocument(ctx, src.ID)
		if err != nil {
			return err
		}
		if len(srcItems) == 0 {
			return documentErr(app.DocumentErrNoLineItems, "%s has no line items to convert", src.DisplayID())
		}

		n, err := repository.NewSQLiteDocumentSequenceRepo(tx).NextShortSeq(ctx, nextKind)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		sourceID := src.ID
		doc := &domain.Document{
			ID:            uuid.New().String(),
			ShortID:       domain.FormatShortID(nextKind, n),
			Kind:          nextKind,
			Title:         src.Title,
			Customer:      src.Customer,
			Location:      src.Location,
			ProjectType:   src.ProjectType,
			SquareFootage: src.SquareFootage,
			SourceID:      &sourceID,
			Status:        domain.DocumentDraft,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if nextKind == domain.KindWorkOrder {
			doc.Status = domain.DocumentScheduled
		}
		if err := docs.Create(ctx, doc); err != nil {
			return fmt.Errorf("creating %s: %w", nextKind, err)
		}
		if err := items.CreateBatch(ctx, copyLineItems(srcItems, doc.ID, now)); err != nil {
			return fmt.Errorf("copying line items: %w", err)
		}
		if err := docs.UpdateStatus(ctx, src.ID, domain.DocumentConverted); err != nil {
			return err
		}
		src.Status = domain.DocumentConverted

		result = &app.ConvertResult{Source: src, Document: doc}
		if nextKind == domain.KindWorkOrder {
			sched, err := s.scheduleInTx(ctx, tx, doc, domain.CriticalPathHeuristic)
			if err != nil {
				return err
			}
			result.Schedule = sched
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scheduleInTx sequences doc's stored line items and saves the schedule.
func (s *documentService) scheduleInTx(ctx context.Context, tx db.DBTX, doc *domain.Document, mode domain.CriticalPathMode) (*domain.Schedule, error) {
	items, err := repository.NewSQLiteLineItemRepo(tx).ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, documentErr(app.DocumentErrNoLineItems, "%s has no line items to schedule", doc.DisplayID())
	}

	opts := sequencer.DefaultOptions()
	opts.Meta = metaFromDocument(doc)
	opts.Mode = mode
	result, err := runSequencer(s.seq, lineItemsToSequencerItems(items), opts)
	if err != nil {
		return nil, err
	}

	sched := &domain.Schedule{
		ID:          uuid.New().String(),
		DocumentID:  doc.ID,
		GeneratedAt: time.Now().UTC(),
		Mode:        mode,
		Result:      *result,
	}
	if err := repository.NewSQLiteScheduleRepo(tx).Create(ctx, sched); err != nil {
		return nil, fmt.Errorf("saving schedule: %w", err)
	}
	return sched, nil
}

func copyLineItems(src []*domain.LineItem, documentID string, now time.Time) []*domain.LineItem {
	out := make([]*domain.LineItem, len(src))
	for i, li := range src {
		cp := *li
		cp.ID = uuid.New().String()
		cp.DocumentID = documentID
		cp.CreatedAt = now
		if li.DependsOn != nil {
			cp.DependsOn = append([]string(nil), li.DependsOn...)
		}
		out[i] = &cp
	}
	return out
}
