package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/buildseq/internal/app"
	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/importer"
	"github.com/alexanderramin/buildseq/internal/repository"
	"github.com/alexanderramin/buildseq/internal/sequencer"
)

func sequenceErr(code app.SequenceErrorCode, err error, format string, args ...any) *app.SequenceError {
	return &app.SequenceError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func documentErr(code app.DocumentErrorCode, format string, args ...any) *app.DocumentError {
	return &app.DocumentError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// errorCode extracts the machine-readable code from a use-case error.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var seqErr *app.SequenceError
	if errors.As(err, &seqErr) {
		return string(seqErr.Code)
	}
	var docErr *app.DocumentError
	if errors.As(err, &docErr) {
		return string(docErr.Code)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return string(app.DocumentErrNotFound)
	}
	return string(app.SequenceErrInternal)
}

// validateMode accepts only the two critical path modes.
func validateMode(mode domain.CriticalPathMode) error {
	switch mode {
	case domain.CriticalPathHeuristic, domain.CriticalPathCPM:
		return nil
	}
	return sequenceErr(app.SequenceErrInvalidInput, nil,
		"critical_path_mode %q must be %q or %q", mode, domain.CriticalPathHeuristic, domain.CriticalPathCPM)
}

// toSequencerItems validates caller items and converts them. Every
// problem is reported, one per line. Batches share the import cap on
// line items.
func toSequencerItems(items []app.SequenceItem) ([]sequencer.Item, error) {
	if len(items) > importer.MaxItems {
		return nil, sequenceErr(app.SequenceErrInvalidInput, nil,
			"items: %d line items, at most %d allowed", len(items), importer.MaxItems)
	}
	out := make([]sequencer.Item, 0, len(items))
	var problems []string
	for i, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("items[%d].name is required", i))
		}
		if it.Quantity < 0 {
			problems = append(problems, fmt.Sprintf("items[%d].quantity must not be negative", i))
		}
		if it.DurationDays != nil && *it.DurationDays < 0 {
			problems = append(problems, fmt.Sprintf("items[%d].duration_days must not be negative", i))
		}

		item := sequencer.Item{
			Name:         name,
			Description:  it.Description,
			Quantity:     it.Quantity,
			DurationDays: it.DurationDays,
			DependsOn:    it.DependsOn,
		}
		if it.Phase != "" {
			p, err := domain.ParsePhase(it.Phase)
			if err != nil {
				problems = append(problems, fmt.Sprintf("items[%d].phase: %v", i, err))
			} else {
				item.Phase = &p
			}
		}
		out = append(out, item)
	}
	if len(problems) > 0 {
		return nil, sequenceErr(app.SequenceErrInvalidInput, nil, "%s", strings.Join(problems, "; "))
	}
	return out, nil
}

func lineItemsToSequencerItems(items []*domain.LineItem) []sequencer.Item {
	out := make([]sequencer.Item, len(items))
	for i, li := range items {
		out[i] = sequencer.Item{
			Name:         li.Name,
			Description:  li.Description,
			Quantity:     li.Quantity,
			Phase:        li.Phase,
			DurationDays: li.DurationDays,
			DependsOn:    li.DependsOn,
		}
	}
	return out
}

func metaFromRequest(m *app.ProjectMeta) (sequencer.ProjectMeta, error) {
	if m == nil {
		return sequencer.ProjectMeta{}, nil
	}
	if m.SquareFootage < 0 {
		return sequencer.ProjectMeta{}, sequenceErr(app.SequenceErrInvalidInput, nil, "project_meta.square_footage must not be negative")
	}
	return sequencer.ProjectMeta{
		SquareFootage: m.SquareFootage,
		ProjectType:   m.ProjectType,
		Location:      m.Location,
	}, nil
}

func metaFromDocument(d *domain.Document) sequencer.ProjectMeta {
	return sequencer.ProjectMeta{
		SquareFootage: d.SquareFootage,
		ProjectType:   d.ProjectType,
		Location:      d.Location,
	}
}

// runSequencer maps pipeline failures onto sequence error codes.
func runSequencer(seq *sequencer.Sequencer, items []sequencer.Item, opts sequencer.Options) (*domain.SequencingResult, error) {
	result, err := seq.Sequence(items, opts)
	if err == nil {
		return result, nil
	}
	var cycle *sequencer.CycleError
	if errors.As(err, &cycle) {
		return nil, sequenceErr(app.SequenceErrCycleDetected, err, "%s", cycle.Error())
	}
	return nil, sequenceErr(app.SequenceErrInternal, err, "sequencing failed: %v", err)
}

// resolveDocument accepts a short ID (EST0012, case-insensitive) or a
// full document ID.
func resolveDocument(ctx context.Context, docs repository.DocumentRepo, id string) (*domain.Document, error) {
	id = strings.TrimSpace(id)
	doc, err := docs.GetByShortID(ctx, id)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	doc, err = docs.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, documentErr(app.DocumentErrNotFound, "document %q not found", id)
	}
	return doc, err
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
