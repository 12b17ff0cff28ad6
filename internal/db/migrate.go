package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every statement in migrations, then the data backfills.
// All steps are idempotent, so Migrate runs on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Additive ALTER TABLE statements fail once the column exists.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillDocumentSequences(db); err != nil {
		return fmt.Errorf("backfilling document sequence allocator state: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id             TEXT PRIMARY KEY,
		short_id       TEXT NOT NULL,
		kind           TEXT NOT NULL CHECK(kind IN ('estimate','invoice','work_order')),
		title          TEXT NOT NULL,
		customer       TEXT NOT NULL DEFAULT '',
		location       TEXT NOT NULL DEFAULT '',
		project_type   TEXT NOT NULL DEFAULT '',
		square_footage REAL NOT NULL DEFAULT 0 CHECK(square_footage >= 0),
		source_id      TEXT REFERENCES documents(id) ON DELETE SET NULL,
		status         TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft','sent','converted','scheduled')),
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_short_id ON documents(short_id)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source_id)`,

	`CREATE TABLE IF NOT EXISTS document_sequences (
		kind     TEXT PRIMARY KEY CHECK(kind IN ('estimate','invoice','work_order')),
		next_seq INTEGER NOT NULL CHECK(next_seq > 0)
	)`,

	`CREATE TABLE IF NOT EXISTS line_items (
		id            TEXT PRIMARY KEY,
		document_id   TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL CHECK(position >= 0),
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		quantity      REAL NOT NULL DEFAULT 1 CHECK(quantity >= 0),
		unit          TEXT NOT NULL DEFAULT '',
		phase         TEXT,
		duration_days REAL CHECK(duration_days IS NULL OR duration_days >= 0),
		depends_on    TEXT NOT NULL DEFAULT '[]',
		created_at    TEXT NOT NULL,
		UNIQUE(document_id, position)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_line_items_document ON line_items(document_id)`,

	`CREATE TABLE IF NOT EXISTS schedules (
		id                  TEXT PRIMARY KEY,
		document_id         TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		generated_at        TEXT NOT NULL,
		mode                TEXT NOT NULL CHECK(mode IN ('heuristic','cpm')),
		total_duration_days REAL NOT NULL DEFAULT 0,
		critical_path       TEXT NOT NULL DEFAULT '[]',
		inspections         TEXT NOT NULL DEFAULT '[]',
		permits             TEXT NOT NULL DEFAULT '[]'
	)`,

	`CREATE INDEX IF NOT EXISTS idx_schedules_document ON schedules(document_id, generated_at)`,

	`CREATE TABLE IF NOT EXISTS scheduled_tasks (
		schedule_id         TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		task_id             TEXT NOT NULL,
		position            INTEGER NOT NULL,
		name                TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		phase               TEXT NOT NULL,
		trade               TEXT NOT NULL DEFAULT '',
		quantity            REAL NOT NULL DEFAULT 0,
		duration_days       REAL NOT NULL CHECK(duration_days > 0),
		start_day           REAL NOT NULL CHECK(start_day >= 0),
		end_day             REAL NOT NULL,
		critical_path       INTEGER NOT NULL DEFAULT 0,
		slack_days          REAL,
		inspection_required INTEGER NOT NULL DEFAULT 0,
		permit_required     INTEGER NOT NULL DEFAULT 0,
		classified          INTEGER NOT NULL DEFAULT 0,
		dependencies        TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (schedule_id, task_id),
		CHECK(end_day >= start_day)
	)`,

	// Added after the first release.
	`ALTER TABLE schedules ADD COLUMN warnings TEXT NOT NULL DEFAULT '[]'`,
	`ALTER TABLE schedules ADD COLUMN phase_summary TEXT NOT NULL DEFAULT '[]'`,
}

// migrateBackfillDocumentSequences makes sure the short ID allocator for
// each kind is ahead of every short ID already stored, including rows
// written before the allocator table existed.
func migrateBackfillDocumentSequences(db *sql.DB) error {
	ctx := context.Background()

	query := `INSERT INTO document_sequences (kind, next_seq)
		SELECT kind, COALESCE(MAX(CAST(SUBSTR(short_id, LENGTH(prefix) + 1) AS INTEGER)), 0) + 1
		FROM (
			SELECT kind, short_id,
				CASE kind WHEN 'invoice' THEN 'INV' WHEN 'work_order' THEN 'WO' ELSE 'EST' END AS prefix
			FROM documents
		)
		WHERE true
		GROUP BY kind
		ON CONFLICT(kind) DO UPDATE
		SET next_seq = MAX(document_sequences.next_seq, excluded.next_seq)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("upserting document sequence rows: %w", err)
	}
	return nil
}
