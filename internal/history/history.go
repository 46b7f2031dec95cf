// Package history records applied change batches in a local sqlite journal.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const idCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func generateID() string {
	return gonanoid.MustGenerate(idCharset, 6)
}

// Entry is one recorded directive.
type Entry struct {
	File      string
	Action    string
	FirstLine float64
	LastLine  float64
}

// BatchSummary describes one recorded batch.
type BatchSummary struct {
	ID         string
	CreatedAt  time.Time
	Files      int
	Directives int
}

// Journal stores applied change batches. The caller owns opening and closing
// it; it is not safe for concurrent use, matching the single-session model of
// the engine.
type Journal struct {
	db          *sql.DB
	idGenerator func() string
}

// Open opens (creating if needed) the journal at path and ensures the schema
// exists.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal schema: %w", err)
	}
	return &Journal{db: db, idGenerator: generateID}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordBatch stores one batch with one row per entry and returns the batch
// id. The batch is written in a single transaction.
func (j *Journal) RecordBatch(ctx context.Context, entries []Entry) (string, error) {
	id := j.idGenerator()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO change_batches (id) VALUES (?)", id); err != nil {
		return "", fmt.Errorf("recording batch: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO change_entries (batch_id, file, action, first_line, last_line) VALUES (?, ?, ?, ?, ?)",
			id, e.File, e.Action, e.FirstLine, e.LastLine); err != nil {
			return "", fmt.Errorf("recording entry for %s: %w", e.File, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListBatches returns up to limit batch summaries, most recent first.
func (j *Journal) ListBatches(ctx context.Context, limit int) ([]BatchSummary, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT b.id, b.created_at, COUNT(DISTINCT e.file), COUNT(e.id)
		FROM change_batches b
		LEFT JOIN change_entries e ON e.batch_id = b.id
		GROUP BY b.id
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []BatchSummary
	for rows.Next() {
		var b BatchSummary
		if err := rows.Scan(&b.ID, &b.CreatedAt, &b.Files, &b.Directives); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
