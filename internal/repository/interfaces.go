package repository

import (
	"context"

	"github.com/alexanderramin/buildseq/internal/domain"
)

type DocumentRepo interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Document, error)
	// List returns documents oldest first; a nil kind lists every kind.
	List(ctx context.Context, kind *domain.DocumentKind) ([]*domain.Document, error)
	ListBySource(ctx context.Context, sourceID string) ([]*domain.Document, error)
	Update(ctx context.Context, d *domain.Document) error
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	Delete(ctx context.Context, id string) error
}

type LineItemRepo interface {
	Create(ctx context.Context, li *domain.LineItem) error
	CreateBatch(ctx context.Context, items []*domain.LineItem) error
	ListByDocument(ctx context.Context, documentID string) ([]*domain.LineItem, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

type ScheduleRepo interface {
	// Create stores the schedule header and one row per task.
	Create(ctx context.Context, s *domain.Schedule) error
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	GetLatestByDocument(ctx context.Context, documentID string) (*domain.Schedule, error)
	CountByDocument(ctx context.Context, documentID string) (int, error)
}

// DocumentSequenceRepo hands out per-kind short ID numbers.
type DocumentSequenceRepo interface {
	NextShortSeq(ctx context.Context, kind domain.DocumentKind) (int, error)
	AdvancePast(ctx context.Context, kind domain.DocumentKind, n int) error
}
