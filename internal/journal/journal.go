package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/epuerta/codex-patch/internal/editor"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded operation
type Entry struct {
	ID      string
	BatchID string
	Type    editor.OperationType
	Path    string
	Status  editor.Status
	Output  string
	Fuzz    int
	DryRun  bool
	At      time.Time
}

// Journal stores operation results in SQLite
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path. ":memory:" is accepted.
func Open(ctx context.Context, path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}

	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS operations (
    id TEXT PRIMARY KEY,
    batch_id TEXT NOT NULL,
    op_type TEXT NOT NULL,
    path TEXT NOT NULL,
    status TEXT NOT NULL,
    output TEXT NOT NULL,
    fuzz INTEGER NOT NULL DEFAULT 0,
    dry_run INTEGER NOT NULL DEFAULT 0,
    recorded_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_operations_recorded_at ON operations(recorded_at);
CREATE INDEX IF NOT EXISTS idx_operations_path ON operations(path);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record implements editor.Recorder
func (j *Journal) Record(ev editor.Event) error {
	return j.Insert(context.Background(), Entry{
		BatchID: ev.BatchID,
		Type:    ev.Type,
		Path:    ev.Path,
		Status:  ev.Status,
		Output:  ev.Output,
		Fuzz:    ev.Fuzz,
		DryRun:  ev.DryRun,
		At:      ev.At,
	})
}

// Insert stores e, assigning an ID and timestamp when missing
func (j *Journal) Insert(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	_, err := j.db.ExecContext(ctx, `
INSERT INTO operations (id, batch_id, op_type, path, status, output, fuzz, dry_run, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.BatchID, string(e.Type), e.Path, string(e.Status), e.Output, e.Fuzz, e.DryRun, e.At.UTC())
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Pass an empty path to
// list all files.
func (j *Journal) Recent(ctx context.Context, path string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx, `
SELECT id, batch_id, op_type, path, status, output, fuzz, dry_run, recorded_at
FROM operations
WHERE ? = '' OR path = ?
ORDER BY recorded_at DESC, rowid DESC
LIMIT ?`, path, path, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			opType string
			status string
		)
		if err := rows.Scan(&e.ID, &e.BatchID, &opType, &e.Path, &status, &e.Output, &e.Fuzz, &e.DryRun, &e.At); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Type = editor.OperationType(opType)
		e.Status = editor.Status(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

var _ editor.Recorder = (*Journal)(nil)
