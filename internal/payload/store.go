// Package payload provides the single-slot file store for sync payloads.
// The slot holds exactly one payload at a time; writes atomically replace
// the previous content so a reader never observes a half-written file.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kilupskalvis/hrsync/internal/models"
)

// ErrPayloadNotFound is returned when the payload slot is empty.
var ErrPayloadNotFound = errors.New("sync payload not found")

// Store is a filesystem-backed payload slot.
//
// The slot supports a single consumer: Annotate is read-merge-write with
// last-writer-wins semantics and no locking, so concurrent applier
// instances against one slot are not supported.
type Store struct {
	path string
}

// NewStore creates a payload store writing to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the payload file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the slot currently holds a payload.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat payload: %w", err)
	}
	return true, nil
}

// Write replaces the slot content with the given payload. The payload is
// written to a temp file in the same directory and renamed into place.
func (s *Store) Write(p *models.SyncPayload) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create payload dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".payload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write payload data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename payload: %w", err)
	}

	return nil
}

// Read returns the current payload, or ErrPayloadNotFound when the slot is
// empty.
func (s *Store) Read() (*models.SyncPayload, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPayloadNotFound
		}
		return nil, fmt.Errorf("read payload: %w", err)
	}

	var p models.SyncPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return &p, nil
}

// Annotate reads the current payload, merges in the given status fields,
// and writes it back. Empty fields are left untouched.
func (s *Store) Annotate(status, processedTimestamp, processedBy string) error {
	p, err := s.Read()
	if err != nil {
		return err
	}

	if status != "" {
		p.Metadata.Status = status
	}
	if processedTimestamp != "" {
		p.Metadata.ProcessedTimestamp = processedTimestamp
	}
	if processedBy != "" {
		p.Metadata.ProcessedBy = processedBy
	}

	return s.Write(p)
}
