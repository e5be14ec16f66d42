// Package source provides SQLite-based persistence for the HR system of
// record. It manages employee rows and the append-only employee change log,
// and guarantees that every employee mutation commits atomically with
// exactly one change-log row.
package source

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrEmployeeNotFound is returned when a requested employee does not exist.
var ErrEmployeeNotFound = errors.New("employee not found")

// TransactionError wraps an underlying store write or commit failure.
// The operation that produced it has not partially applied: either the
// employee write and its change-log row both committed or neither did.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// ConsistencyError reports that the exactly-once extraction boundary was
// breached: the payload write succeeded but the processed-flag commit
// failed. It must be surfaced, never silently retried, because a retry
// would double-extract the same change events.
type ConsistencyError struct {
	SyncID string
	Err    error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("payload %s written but processed flags not committed: %v", e.SyncID, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

// Store represents the HR SQLite database store
type Store struct {
	db *sql.DB
}

// New creates a new store connection
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the database schema
func (s *Store) Initialize() error {
	schema := `
	-- Employees (source of record)
	CREATE TABLE IF NOT EXISTS employees (
		employee_id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		department TEXT,
		position TEXT,
		salary REAL,
		status TEXT DEFAULT 'active',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Change log (append-only; processed is the only mutable column)
	CREATE TABLE IF NOT EXISTS employee_change_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		change_type TEXT NOT NULL,
		old_values TEXT,
		new_values TEXT,
		change_timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed BOOLEAN DEFAULT FALSE,
		FOREIGN KEY (employee_id) REFERENCES employees(employee_id)
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_change_log_unprocessed ON employee_change_log(processed, change_timestamp);
	CREATE INDEX IF NOT EXISTS idx_change_log_employee ON employee_change_log(employee_id);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DB returns the underlying database connection for advanced queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// parseTimestamp parses a timestamp string from SQLite in various formats
func parseTimestamp(s string) time.Time {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999+07:00",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05+07:00",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
