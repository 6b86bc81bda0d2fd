package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed by the journal.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bracket_session (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS session_item (
    session_id TEXT NOT NULL REFERENCES bracket_session(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    item_key TEXT NOT NULL,
    PRIMARY KEY (session_id, position)
)`,
	`CREATE TABLE IF NOT EXISTS session_op (
    session_id TEXT NOT NULL REFERENCES bracket_session(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('next', 'select', 'requeue', 'ignore', 'undo', 'redo', 'add')),
    item_keys TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (session_id, seq)
)`,
	`CREATE INDEX IF NOT EXISTS idx_session_op_session_id ON session_op(session_id)`,
}
