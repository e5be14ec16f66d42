package target

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kilupskalvis/hrsync/internal/models"
	bolt "go.etcd.io/bbolt"
)

// syncLogKey builds the bbolt key for a sync log entry.
func syncLogKey(id int64) []byte {
	return []byte(fmt.Sprintf("%08d", id))
}

// AppendSyncLog appends one audit entry with an auto-incrementing ID and
// returns the assigned ID. Entries are never mutated or deleted.
func (s *Store) AppendSyncLog(entry *models.SyncLogEntry) (int64, error) {
	var entryID int64

	err := s.db.Update(func(tx *bolt.Tx) error {
		countersBucket := tx.Bucket(bucketCounters)
		if countersBucket == nil {
			return fmt.Errorf("counters bucket not found")
		}

		logBucket := tx.Bucket(bucketSyncLog)
		if logBucket == nil {
			return fmt.Errorf("sync_log bucket not found")
		}

		// Get next entry ID
		counterVal := countersBucket.Get(counterSyncLogID)
		if counterVal == nil {
			entryID = 1
		} else {
			counter, err := strconv.ParseInt(string(counterVal), 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse sync log counter: %w", err)
			}
			entryID = counter
		}

		entry.ID = entryID
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal sync log entry: %w", err)
		}

		if err := logBucket.Put(syncLogKey(entryID), data); err != nil {
			return fmt.Errorf("store sync log entry: %w", err)
		}

		// Update counter
		nextID := entryID + 1
		return countersBucket.Put(counterSyncLogID, []byte(strconv.FormatInt(nextID, 10)))
	})

	if err != nil {
		return 0, err
	}

	return entryID, nil
}

// ListSyncLog returns audit entries, newest first. A limit of 0 returns
// everything.
func (s *Store) ListSyncLog(limit int) ([]*models.SyncLogEntry, error) {
	var entries []*models.SyncLogEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSyncLog).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var entry models.SyncLogEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshal sync log entry: %w", err)
			}
			entries = append(entries, &entry)
			if limit > 0 && len(entries) >= limit {
				return nil
			}
		}
		return nil
	})
	return entries, err
}

// CountSyncLog returns the number of audit entries.
func (s *Store) CountSyncLog() (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketSyncLog).Stats().KeyN
		return nil
	})
	return count, err
}
