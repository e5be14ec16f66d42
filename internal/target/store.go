// Package target provides bbolt-based persistence for the payroll system.
// It manages payroll employee records, upsertable by employee ID, and the
// append-only sync audit log, using a single embedded bbolt database file.
package target

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names used by the payroll store.
var (
	bucketEmployees = []byte("payroll_employees")
	bucketSyncLog   = []byte("sync_log")
	bucketCounters  = []byte("counters")
)

// Counter key names.
var counterSyncLogID = []byte("next_sync_log_id")

// ErrPayrollEmployeeNotFound is returned when a payroll record does not exist.
var ErrPayrollEmployeeNotFound = errors.New("payroll employee not found")

// Store represents the bbolt payroll database store.
type Store struct {
	db *bolt.DB
}

// New opens or creates a bbolt database at the given path.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Initialize creates all required buckets.
func (s *Store) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketEmployees,
			bucketSyncLog,
			bucketCounters,
		}
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}
