package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/buildseq/internal/db"
	"github.com/alexanderramin/buildseq/internal/domain"
)

// documentColumns is the canonical SELECT column list for documents.
const documentColumns = `id, short_id, kind, title, customer, location, project_type,
		square_footage, source_id, status, created_at, updated_at`

// SQLiteDocumentRepo implements DocumentRepo using a SQLite database.
type SQLiteDocumentRepo struct {
	db db.DBTX
}

// NewSQLiteDocumentRepo creates a new SQLiteDocumentRepo.
func NewSQLiteDocumentRepo(conn db.DBTX) *SQLiteDocumentRepo {
	return &SQLiteDocumentRepo{db: conn}
}

func (r *SQLiteDocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	query := `INSERT INTO documents (` + documentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.ShortID,
		string(d.Kind),
		d.Title,
		d.Customer,
		d.Location,
		d.ProjectType,
		d.SquareFootage,
		d.SourceID, // *string: nil becomes SQL NULL
		string(d.Status),
		formatTime(d.CreatedAt),
		formatTime(d.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

func (r *SQLiteDocumentRepo) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`
	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return d, err
}

func (r *SQLiteDocumentRepo) GetByShortID(ctx context.Context, shortID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE UPPER(short_id) = UPPER(?)`
	d, err := scanDocument(r.db.QueryRowContext(ctx, query, shortID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", shortID, ErrNotFound)
	}
	return d, err
}

func (r *SQLiteDocumentRepo) List(ctx context.Context, kind *domain.DocumentKind) ([]*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	if kind != nil {
		query += ` WHERE kind = ?`
		args = append(args, string(*kind))
	}
	query += ` ORDER BY created_at, short_id`
	return r.queryDocuments(ctx, query, args...)
}

func (r *SQLiteDocumentRepo) ListBySource(ctx context.Context, sourceID string) ([]*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE source_id = ? ORDER BY created_at, short_id`
	return r.queryDocuments(ctx, query, sourceID)
}

func (r *SQLiteDocumentRepo) Update(ctx context.Context, d *domain.Document) error {
	query := `UPDATE documents SET title = ?, customer = ?, location = ?, project_type = ?,
		square_footage = ?, source_id = ?, status = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		d.Title,
		d.Customer,
		d.Location,
		d.ProjectType,
		d.SquareFootage,
		d.SourceID,
		string(d.Status),
		formatTime(d.UpdatedAt),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	return requireAffected(res, "document", d.ID)
}

func (r *SQLiteDocumentRepo) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	query := `UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, string(status), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	return requireAffected(res, "document", id)
}

func (r *SQLiteDocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return requireAffected(res, "document", id)
}

func (r *SQLiteDocumentRepo) queryDocuments(ctx context.Context, query string, args ...any) ([]*domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func scanDocument(row scanner) (*domain.Document, error) {
	var d domain.Document
	var kindStr, statusStr, createdAtStr, updatedAtStr string
	var sourceID sql.NullString

	err := row.Scan(
		&d.ID, &d.ShortID, &kindStr, &d.Title,
		&d.Customer, &d.Location, &d.ProjectType, &d.SquareFootage,
		&sourceID, &statusStr,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	d.Kind = domain.DocumentKind(kindStr)
	d.Status = domain.DocumentStatus(statusStr)
	if sourceID.Valid {
		s := sourceID.String
		d.SourceID = &s
	}
	if d.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &d, nil
}

func requireAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}
