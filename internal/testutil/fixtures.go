package testutil

import (
	"sync/atomic"
	"time"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/google/uuid"
)

var testShortIDCounter atomic.Int64

// Document options
type DocumentOption func(*domain.Document)

func WithKind(k domain.DocumentKind) DocumentOption {
	return func(d *domain.Document) {
		d.Kind = k
		d.ShortID = defaultShortID(k)
	}
}

func WithShortID(id string) DocumentOption {
	return func(d *domain.Document) {
		d.ShortID = id
	}
}

func WithDocumentStatus(s domain.DocumentStatus) DocumentOption {
	return func(d *domain.Document) {
		d.Status = s
	}
}

func WithSquareFootage(sqft float64) DocumentOption {
	return func(d *domain.Document) {
		d.SquareFootage = sqft
	}
}

func WithSourceID(id string) DocumentOption {
	return func(d *domain.Document) {
		d.SourceID = &id
	}
}

func WithCustomer(name string) DocumentOption {
	return func(d *domain.Document) {
		d.Customer = name
	}
}

// defaultShortID uses numbers from 9000 up so fixtures never collide with
// IDs the allocator hands out in small tests.
func defaultShortID(kind domain.DocumentKind) string {
	n := testShortIDCounter.Add(1)
	return domain.FormatShortID(kind, 9000+int(n%1000))
}

func NewTestDocument(title string, opts ...DocumentOption) *domain.Document {
	now := time.Now().UTC()
	d := &domain.Document{
		ID:        uuid.New().String(),
		ShortID:   defaultShortID(domain.KindEstimate),
		Kind:      domain.KindEstimate,
		Title:     title,
		Status:    domain.DocumentDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LineItem options
type LineItemOption func(*domain.LineItem)

func WithPhase(p domain.Phase) LineItemOption {
	return func(li *domain.LineItem) {
		li.Phase = &p
	}
}

func WithDurationDays(days float64) LineItemOption {
	return func(li *domain.LineItem) {
		li.DurationDays = &days
	}
}

func WithDependsOn(names ...string) LineItemOption {
	return func(li *domain.LineItem) {
		li.DependsOn = names
	}
}

func WithDescription(desc string) LineItemOption {
	return func(li *domain.LineItem) {
		li.Description = desc
	}
}

func WithQuantity(q float64, unit string) LineItemOption {
	return func(li *domain.LineItem) {
		li.Quantity = q
		li.Unit = unit
	}
}

func NewTestLineItem(documentID string, position int, name string, opts ...LineItemOption) *domain.LineItem {
	li := &domain.LineItem{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Position:   position,
		Name:       name,
		Quantity:   1,
		CreatedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(li)
	}
	return li
}

// NewTestLineItems builds one plain line item per name, positioned in order.
func NewTestLineItems(documentID string, names ...string) []*domain.LineItem {
	items := make([]*domain.LineItem, len(names))
	for i, name := range names {
		items[i] = NewTestLineItem(documentID, i, name)
	}
	return items
}
