// Package journal persists an append-only record of executions and
// rollbacks so operators can audit what ran and when. Persistence is
// optional: a nil *Journal is a no-op.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded engine run.
type Entry struct {
	RollbackID string
	ActionID   string
	// Kind is "execute" or "rollback".
	Kind       string
	Success    bool
	OutputHash string
	Timestamp  time.Time
}

type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at path and applies the
// schema. Schema failure is fatal to the caller at startup.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		rollback_id TEXT NOT NULL,
		action_id   TEXT NOT NULL,
		kind        TEXT NOT NULL,
		success     INTEGER NOT NULL,
		output_hash TEXT NOT NULL,
		timestamp   DATETIME NOT NULL
	);`
	_, err := j.db.ExecContext(context.Background(), query)
	if err != nil {
		return fmt.Errorf("journal: migrate: %w", err)
	}
	return nil
}

// Append records one run. Nil-safe.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	if j == nil {
		return nil
	}
	query := `INSERT INTO runs (rollback_id, action_id, kind, success, output_hash, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`
	success := 0
	if e.Success {
		success = 1
	}
	_, err := j.db.ExecContext(ctx, query,
		e.RollbackID, e.ActionID, e.Kind, success, e.OutputHash,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Nil-safe.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil {
		return nil, nil
	}
	query := `SELECT rollback_id, action_id, kind, success, output_hash, timestamp
		FROM runs ORDER BY timestamp DESC LIMIT ?`
	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var success int
		var ts string
		if err := rows.Scan(&e.RollbackID, &e.ActionID, &e.Kind, &success, &e.OutputHash, &ts); err != nil {
			return nil, err
		}
		e.Success = success != 0
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = parsed
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Close releases the underlying database. Nil-safe.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}
