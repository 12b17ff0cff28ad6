package importer

import (
	"strings"
	"time"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/google/uuid"
)

// ConvertedDocument is a validated file turned into domain objects ready
// for persistence.
type ConvertedDocument struct {
	Document  *domain.Document
	LineItems []*domain.LineItem
}

// Convert assumes ValidateDocumentFile returned no errors. An empty
// ShortID is left for the caller to assign.
func Convert(f *DocumentFile) *ConvertedDocument {
	now := time.Now().UTC()

	status := domain.DocumentDraft
	if f.Document.Status != "" {
		status = domain.DocumentStatus(f.Document.Status)
	}
	doc := &domain.Document{
		ID:            uuid.New().String(),
		ShortID:       strings.ToUpper(strings.TrimSpace(f.Document.ShortID)),
		Kind:          domain.DocumentKind(f.Document.Kind),
		Title:         strings.TrimSpace(f.Document.Title),
		Customer:      f.Document.Customer,
		Location:      f.Document.Location,
		ProjectType:   f.Document.ProjectType,
		SquareFootage: domain.FloatFromPtrWithDefault(0, f.Document.SquareFootage),
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	items := make([]*domain.LineItem, 0, len(f.Items))
	for i, it := range f.Items {
		li := &domain.LineItem{
			ID:           uuid.New().String(),
			DocumentID:   doc.ID,
			Position:     i,
			Name:         strings.TrimSpace(it.Name),
			Description:  strings.TrimSpace(it.Description),
			Quantity:     domain.FloatFromPtrWithDefault(1, it.Quantity),
			Unit:         it.Unit,
			DurationDays: it.DurationDays,
			CreatedAt:    now,
		}
		if it.Phase != "" {
			if p, err := domain.ParsePhase(it.Phase); err == nil {
				li.Phase = &p
			}
		}
		for _, dep := range it.DependsOn {
			if dep = strings.TrimSpace(dep); dep != "" {
				li.DependsOn = append(li.DependsOn, dep)
			}
		}
		items = append(items, li)
	}

	return &ConvertedDocument{Document: doc, LineItems: items}
}

// Export turns a stored document back into its file form.
func Export(doc *domain.Document, items []*domain.LineItem) *DocumentFile {
	f := &DocumentFile{
		Document: DocumentImport{
			ShortID:     doc.ShortID,
			Kind:        string(doc.Kind),
			Title:       doc.Title,
			Customer:    doc.Customer,
			Location:    doc.Location,
			ProjectType: doc.ProjectType,
			Status:      string(doc.Status),
		},
		Items: make([]ItemImport, 0, len(items)),
	}
	if doc.SquareFootage > 0 {
		sqft := doc.SquareFootage
		f.Document.SquareFootage = &sqft
	}
	for _, li := range items {
		qty := li.Quantity
		it := ItemImport{
			Name:         li.Name,
			Description:  li.Description,
			Quantity:     &qty,
			Unit:         li.Unit,
			DurationDays: li.DurationDays,
			DependsOn:    li.DependsOn,
		}
		if li.Phase != nil {
			it.Phase = string(*li.Phase)
		}
		f.Items = append(f.Items, it)
	}
	return f
}
