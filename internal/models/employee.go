package models

import "time"

// Employee statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Employee represents an HR system employee record.
// EmployeeID is immutable after creation; Email is unique across employees.
type Employee struct {
	EmployeeID string    `json:"employee_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Salary     float64   `json:"salary"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// FullName returns the display name used by the payroll system.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// IsActive reports whether the employee is in the active status.
func (e *Employee) IsActive() bool {
	return e.Status == StatusActive
}

// Attributes returns the tracked attribute snapshot used for change capture.
// The map is JSON-compatible so snapshots survive a round-trip through the
// change log and payload without loss.
func (e *Employee) Attributes() map[string]any {
	return map[string]any{
		"first_name": e.FirstName,
		"last_name":  e.LastName,
		"email":      e.Email,
		"department": e.Department,
		"position":   e.Position,
		"salary":     e.Salary,
		"status":     e.Status,
	}
}

// InsertAttributes returns the snapshot recorded for an INSERT change event.
// Unlike Attributes it includes the employee ID, matching the new_values
// shape the payroll side expects when creating a record.
func (e *Employee) InsertAttributes() map[string]any {
	attrs := e.Attributes()
	attrs["employee_id"] = e.EmployeeID
	return attrs
}
