package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/buildseq/internal/db"
	"github.com/alexanderramin/buildseq/internal/domain"
)

// SQLiteDocumentSequenceRepo allocates per-kind short ID numbers
// atomically using the document_sequences table.
type SQLiteDocumentSequenceRepo struct {
	db db.DBTX
}

// NewSQLiteDocumentSequenceRepo creates a new SQLiteDocumentSequenceRepo.
func NewSQLiteDocumentSequenceRepo(conn db.DBTX) *SQLiteDocumentSequenceRepo {
	return &SQLiteDocumentSequenceRepo{db: conn}
}

// NextShortSeq returns the next available number for a document kind.
// Allocation is atomic and safe under concurrent writes.
func (r *SQLiteDocumentSequenceRepo) NextShortSeq(ctx context.Context, kind domain.DocumentKind) (int, error) {
	if err := r.seed(ctx, kind); err != nil {
		return 0, err
	}

	var next int
	allocQuery := `UPDATE document_sequences
		SET next_seq = next_seq + 1
		WHERE kind = ?
		RETURNING next_seq - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, string(kind)).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating next short ID for %s: %w", kind, err)
	}
	return next, nil
}

// AdvancePast moves the kind's counter beyond n so an explicitly chosen
// short ID is never handed out again. The counter never moves backwards.
func (r *SQLiteDocumentSequenceRepo) AdvancePast(ctx context.Context, kind domain.DocumentKind, n int) error {
	if err := r.seed(ctx, kind); err != nil {
		return err
	}
	query := `INSERT INTO document_sequences (kind, next_seq) VALUES (?, ?)
		ON CONFLICT(kind) DO UPDATE SET next_seq = MAX(next_seq, excluded.next_seq)`
	if _, err := r.db.ExecContext(ctx, query, string(kind), n+1); err != nil {
		return fmt.Errorf("advancing document sequence for %s: %w", kind, err)
	}
	return nil
}

// seed creates the kind's counter from the highest stored short ID when
// the row is missing.
func (r *SQLiteDocumentSequenceRepo) seed(ctx context.Context, kind domain.DocumentKind) error {
	query := `INSERT OR IGNORE INTO document_sequences (kind, next_seq)
		SELECT ?, COALESCE(MAX(CAST(SUBSTR(short_id, ?) AS INTEGER)), 0) + 1
		FROM documents WHERE kind = ?`
	prefixLen := len(kind.ShortIDPrefix())
	if _, err := r.db.ExecContext(ctx, query, string(kind), prefixLen+1, string(kind)); err != nil {
		return fmt.Errorf("seeding document sequence for %s: %w", kind, err)
	}
	return nil
}
