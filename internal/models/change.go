package models

import "time"

// ChangeType represents the type of employee mutation captured in the change log.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Valid reports whether the change type is one of the known values.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}

// ChangeEvent is one immutable row of the employee change log.
// OldValues and NewValues are full tracked-attribute snapshots, not diffs;
// OldValues is empty for INSERT. A ChangeEvent is never mutated after
// creation except for the single Processed false->true transition performed
// by the batch extractor.
type ChangeEvent struct {
	LogID           int64          `json:"log_id"`
	EmployeeID      string         `json:"employee_id"`
	Type            ChangeType     `json:"change_type"`
	OldValues       map[string]any `json:"old_values"`
	NewValues       map[string]any `json:"new_values"`
	ChangeTimestamp time.Time      `json:"change_timestamp"`
	Processed       bool           `json:"processed"`
}
