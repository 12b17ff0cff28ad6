package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/buildseq/internal/db"
	"github.com/alexanderramin/buildseq/internal/domain"
)

const lineItemColumns = `id, document_id, position, name, description, quantity, unit,
		phase, duration_days, depends_on, created_at`

// SQLiteLineItemRepo implements LineItemRepo using a SQLite database.
type SQLiteLineItemRepo struct {
	db db.DBTX
}

// NewSQLiteLineItemRepo creates a new SQLiteLineItemRepo.
func NewSQLiteLineItemRepo(conn db.DBTX) *SQLiteLineItemRepo {
	return &SQLiteLineItemRepo{db: conn}
}

func (r *SQLiteLineItemRepo) Create(ctx context.Context, li *domain.LineItem) error {
	deps, err := encodeJSON(li.DependsOn)
	if err != nil {
		return fmt.Errorf("encoding depends_on: %w", err)
	}
	var phase any
	if li.Phase != nil {
		phase = string(*li.Phase)
	}

	query := `INSERT INTO line_items (` + lineItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		li.ID,
		li.DocumentID,
		li.Position,
		li.Name,
		li.Description,
		li.Quantity,
		li.Unit,
		phase,
		nullableFloatToValue(li.DurationDays),
		deps,
		formatTime(li.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting line item %q: %w", li.Name, err)
	}
	return nil
}

// CreateBatch inserts items in order. Callers wanting all-or-nothing
// semantics run it inside a UnitOfWork.
func (r *SQLiteLineItemRepo) CreateBatch(ctx context.Context, items []*domain.LineItem) error {
	for _, li := range items {
		if err := r.Create(ctx, li); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteLineItemRepo) ListByDocument(ctx context.Context, documentID string) ([]*domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items WHERE document_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing line items: %w", err)
	}
	defer rows.Close()

	var items []*domain.LineItem
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating line items: %w", err)
	}
	return items, nil
}

func (r *SQLiteLineItemRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM line_items WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("deleting line items: %w", err)
	}
	return nil
}

func scanLineItem(row scanner) (*domain.LineItem, error) {
	var li domain.LineItem
	var phase sql.NullString
	var duration sql.NullFloat64
	var depsStr, createdAtStr string

	err := row.Scan(
		&li.ID, &li.DocumentID, &li.Position, &li.Name, &li.Description,
		&li.Quantity, &li.Unit, &phase, &duration, &depsStr, &createdAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning line item: %w", err)
	}

	if phase.Valid {
		p := domain.Phase(phase.String)
		li.Phase = &p
	}
	li.DurationDays = nullableFloat(duration)
	if li.DependsOn, err = decodeJSON[string]("depends_on", depsStr); err != nil {
		return nil, err
	}
	if li.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	return &li, nil
}
