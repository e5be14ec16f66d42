package models

import "time"

// Tax statuses mirror the employee lifecycle on the payroll side.
const (
	TaxStatusActive   = "active"
	TaxStatusInactive = "inactive"
)

// Sync log statuses.
const (
	SyncCompleted = "completed"
	SyncFailed    = "failed"
)

// PayrollEmployee is the downstream mirror of an Employee, upsertable by
// EmployeeID. A DELETE change never removes the row; it flips TaxStatus to
// inactive.
type PayrollEmployee struct {
	EmployeeID        string    `json:"employee_id"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	Department        string    `json:"department"`
	Position          string    `json:"position"`
	BaseSalary        float64   `json:"base_salary"`
	PayGrade          string    `json:"pay_grade,omitempty"`
	TaxStatus         string    `json:"tax_status"`
	LastSyncTimestamp time.Time `json:"last_sync_timestamp"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

// SyncLogEntry is one append-only audit row recording the outcome of a
// single applied change.
type SyncLogEntry struct {
	ID            int64     `json:"id"`
	EmployeeID    string    `json:"employee_id"`
	SyncType      string    `json:"sync_type"` // "HR_" + change type
	SourceData    []byte    `json:"source_data,omitempty"`
	SyncStatus    string    `json:"sync_status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	SyncTimestamp time.Time `json:"sync_timestamp"`
}
