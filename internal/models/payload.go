package models

import "time"

// Payload statuses.
const (
	PayloadReady     = "ready_for_sync"
	PayloadProcessed = "processed"
)

// SyncIDFormat is the time layout appended to the "SYNC_" prefix when
// generating payload sync IDs.
const SyncIDFormat = "20060102_150405"

// ChangeRecord is one change event as serialized into a sync payload,
// paired with the employee's current snapshot at extraction time.
type ChangeRecord struct {
	LogID           int64          `json:"log_id"`
	EmployeeID      string         `json:"employee_id"`
	Type            ChangeType     `json:"change_type"`
	OldValues       map[string]any `json:"old_values"`
	NewValues       map[string]any `json:"new_values"`
	ChangeTimestamp time.Time      `json:"change_timestamp"`

	// CurrentEmployeeData is the LEFT-JOINed employee row at extraction
	// time. Nil when the employee row no longer exists; consumers must
	// tolerate that.
	CurrentEmployeeData *Employee `json:"current_employee_data"`
}

// PayloadMetadata carries the payload's identity and lifecycle state.
type PayloadMetadata struct {
	GeneratedBy        string `json:"generated_by"`
	SyncID             string `json:"sync_id"`
	Status             string `json:"status"`
	ProcessedTimestamp string `json:"processed_timestamp,omitempty"`
	ProcessedBy        string `json:"processed_by,omitempty"`
}

// SyncPayload is the file-based handoff artifact between the HR and payroll
// systems. Exactly one payload exists at a time; a new extraction overwrites
// the prior file entirely.
type SyncPayload struct {
	SourceSystem  string          `json:"source_system"`
	TargetSystem  string          `json:"target_system"`
	SyncTimestamp string          `json:"sync_timestamp"`
	TotalChanges  int             `json:"total_changes"`
	Changes       []ChangeRecord  `json:"changes"`
	Metadata      PayloadMetadata `json:"metadata"`
}

// NewSyncID generates a payload sync ID from the given time, e.g.
// "SYNC_20240115_103000". Second precision, UTC.
func NewSyncID(t time.Time) string {
	return "SYNC_" + t.UTC().Format(SyncIDFormat)
}

// IsProcessed reports whether the payload has already been applied.
func (p *SyncPayload) IsProcessed() bool {
	return p.Metadata.Status == PayloadProcessed
}
