package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"craftbench/internal/bench"
	"craftbench/internal/database/migrations"
	"craftbench/internal/pending"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase stores pending edits and the edit journal in SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

var (
	_ bench.Journal = (*SQLiteDatabase)(nil)
	_ pending.Table = (*SQLiteDatabase)(nil)
)

// NewSQLiteDatabase opens the database at path, applies any pending
// migrations and verifies the resulting schema version.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	if err := migrations.CheckDBMigrationStatus(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens a SQLite connection with foreign keys enabled.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection to :memory: would see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// Pending edits

func (s *SQLiteDatabase) PutPendingEdit(e bench.PendingEdit) error {
	_, err := s.db.Exec(`
		INSERT INTO pending_edits (scratch_path, original_id, command_name, model, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (scratch_path) DO UPDATE SET
			original_id = excluded.original_id,
			command_name = excluded.command_name,
			model = excluded.model,
			created_at = excluded.created_at`,
		e.ScratchPath, e.OriginalID, e.CommandName, e.Model, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("upserting pending edit: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) GetPendingEdit(scratchPath string) (*bench.PendingEdit, error) {
	row := s.db.QueryRow(`
		SELECT scratch_path, original_id, command_name, model, created_at
		FROM pending_edits WHERE scratch_path = ?`, scratchPath)
	e, err := scanPendingEdit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding pending edit: %w", err)
	}
	return e, nil
}

func (s *SQLiteDatabase) DeletePendingEdit(scratchPath string) error {
	if _, err := s.db.Exec("DELETE FROM pending_edits WHERE scratch_path = ?", scratchPath); err != nil {
		return fmt.Errorf("deleting pending edit: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListPendingEdits() ([]bench.PendingEdit, error) {
	rows, err := s.db.Query(`
		SELECT scratch_path, original_id, command_name, model, created_at
		FROM pending_edits ORDER BY scratch_path`)
	if err != nil {
		return nil, fmt.Errorf("listing pending edits: %w", err)
	}
	defer rows.Close()

	var edits []bench.PendingEdit
	for rows.Next() {
		e, err := scanPendingEdit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pending edit: %w", err)
		}
		edits = append(edits, *e)
	}
	return edits, rows.Err()
}

// Journal

func (s *SQLiteDatabase) Record(e bench.Event) error {
	_, err := s.db.Exec(`
		INSERT INTO edit_events (id, kind, command_name, original_id, scratch_path, destination, model, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.CommandName, e.OriginalID, e.ScratchPath, e.Destination, e.Model, formatTime(e.OccurredAt))
	if err != nil {
		return fmt.Errorf("inserting edit event: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) Events(limit int) ([]bench.Event, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, command_name, original_id, scratch_path, destination, model, occurred_at
		FROM edit_events ORDER BY occurred_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing edit events: %w", err)
	}
	defer rows.Close()

	var events []bench.Event
	for rows.Next() {
		var (
			e          bench.Event
			kind       string
			occurredAt string
		)
		if err := rows.Scan(&e.ID, &kind, &e.CommandName, &e.OriginalID, &e.ScratchPath, &e.Destination, &e.Model, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning edit event: %w", err)
		}
		e.Kind = bench.EventKind(kind)
		if e.OccurredAt, err = parseTime(occurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPendingEdit(row scanner) (*bench.PendingEdit, error) {
	var (
		e         bench.PendingEdit
		createdAt string
	)
	if err := row.Scan(&e.ScratchPath, &e.OriginalID, &e.CommandName, &e.Model, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = t
	return &e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
