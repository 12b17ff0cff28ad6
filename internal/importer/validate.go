package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/buildseq/internal/domain"
)

// MaxItems bounds one document's line items.
const MaxItems = 500

// ValidateDocumentFile checks a decoded file before conversion and
// returns every problem found.
func ValidateDocumentFile(f *DocumentFile) []error {
	var errs []error
	errs = append(errs, validateDocument(&f.Document)...)
	errs = append(errs, validateItems(f.Items)...)
	return errs
}

func validateDocument(d *DocumentImport) []error {
	var errs []error

	kind := domain.DocumentKind(d.Kind)
	if d.Kind == "" {
		errs = append(errs, fmt.Errorf("document.kind is required"))
	} else if !domain.ValidDocumentKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("document.kind: invalid value %q (expected estimate, invoice or work_order)", d.Kind))
	}
	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, fmt.Errorf("document.title is required"))
	}
	if d.ShortID != "" {
		doc := domain.Document{ShortID: strings.ToUpper(d.ShortID)}
		if err := doc.ValidateShortID(); err != nil {
			errs = append(errs, fmt.Errorf("document.short_id: %w", err))
		} else if domain.ValidDocumentKinds[d.Kind] && !strings.HasPrefix(doc.ShortID, kind.ShortIDPrefix()) {
			errs = append(errs, fmt.Errorf("document.short_id %q does not match kind %s (expected prefix %s)",
				d.ShortID, d.Kind, kind.ShortIDPrefix()))
		}
	}
	if d.SquareFootage != nil && *d.SquareFootage < 0 {
		errs = append(errs, fmt.Errorf("document.square_footage must not be negative"))
	}
	if d.Status != "" && !domain.ValidDocumentStatuses[d.Status] {
		errs = append(errs, fmt.Errorf("document.status: invalid value %q", d.Status))
	}
	return errs
}

func validateItems(items []ItemImport) []error {
	var errs []error
	if len(items) == 0 {
		return append(errs, fmt.Errorf("items: at least one line item is required"))
	}
	if len(items) > MaxItems {
		errs = append(errs, fmt.Errorf("items: %d line items, at most %d allowed", len(items), MaxItems))
	}

	for i, it := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		name := strings.TrimSpace(it.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if it.Phase != "" {
			if _, err := domain.ParsePhase(it.Phase); err != nil {
				errs = append(errs, fmt.Errorf("%s.phase: %w", prefix, err))
			}
		}
		if it.Quantity != nil && *it.Quantity < 0 {
			errs = append(errs, fmt.Errorf("%s.quantity must not be negative", prefix))
		}
		if it.DurationDays != nil && *it.DurationDays < 0 {
			errs = append(errs, fmt.Errorf("%s.duration_days must not be negative", prefix))
		}
		for _, dep := range it.DependsOn {
			if name != "" && strings.EqualFold(strings.TrimSpace(dep), name) {
				errs = append(errs, fmt.Errorf("%s.depends_on: item %q depends on itself", prefix, name))
			}
		}
	}
	return errs
}
