package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kilupskalvis/hrsync/internal/models"
)

// changeColumns is the select list shared by the change-log readers: the
// change row joined with the employee's current snapshot (null when the
// employee row is gone).
const changeColumns = `
	cl.id, cl.employee_id, cl.change_type, cl.old_values, cl.new_values, cl.change_timestamp,
	e.employee_id, e.first_name, e.last_name, e.email, e.department, e.position, e.salary, e.status
`

// recordChange appends one change-log row inside the caller's transaction.
// Callers must invoke it in the same transaction as the employee write it
// describes so that both commit or neither does.
func recordChange(ctx context.Context, tx *sql.Tx, employeeID string, changeType models.ChangeType, oldValues, newValues map[string]any, ts time.Time) error {
	oldJSON, err := json.Marshal(oldValues)
	if err != nil {
		return fmt.Errorf("marshal old values: %w", err)
	}
	newJSON, err := json.Marshal(newValues)
	if err != nil {
		return fmt.Errorf("marshal new values: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO employee_change_log (employee_id, change_type, old_values, new_values, change_timestamp, processed)
		VALUES (?, ?, ?, ?, ?, FALSE)`,
		employeeID, string(changeType), string(oldJSON), string(newJSON), formatTimestamp(ts),
	)
	return err
}

// UnprocessedChanges returns all unconsumed change events joined with the
// current employee snapshot, ordered by change timestamp then log ID.
// Read-only: the processed flags are not touched.
func (s *Store) UnprocessedChanges(ctx context.Context) ([]models.ChangeRecord, error) {
	rows, err := s.db.QueryContext(ctx, unprocessedQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChangeRecords(rows)
}

// CountUnprocessed returns the number of unconsumed change events.
func (s *Store) CountUnprocessed(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employee_change_log WHERE processed = FALSE`).Scan(&n)
	return n, err
}

// ExtractUnprocessed implements the exactly-once hand-off boundary. Within
// a single transaction it selects all unprocessed change events in order,
// invokes write with them (the payload write), and then flips their
// processed flags. If write fails the transaction rolls back and the flags
// stay false (idempotent retry). If the flag commit fails after write
// succeeded, a ConsistencyError is returned and must not be retried
// blindly. With no unprocessed events, write is not called and zero is
// returned.
//
// write receives the selected changes and returns the sync ID it produced,
// used to identify the payload in a ConsistencyError.
func (s *Store) ExtractUnprocessed(ctx context.Context, write func(changes []models.ChangeRecord) (string, error)) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &TransactionError{Op: "extract changes", Err: err}
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, unprocessedQuery())
	if err != nil {
		return 0, &TransactionError{Op: "select unprocessed changes", Err: err}
	}
	changes, err := collectChangeRecords(rows)
	if err != nil {
		return 0, &TransactionError{Op: "scan unprocessed changes", Err: err}
	}
	if len(changes) == 0 {
		return 0, nil
	}

	syncID, err := write(changes)
	if err != nil {
		return 0, err
	}

	// Payload is on disk; the flag update below is the authoritative
	// commit point for the extraction.
	ids := make([]string, len(changes))
	args := make([]any, len(changes))
	for i, c := range changes {
		ids[i] = "?"
		args[i] = c.LogID
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		`UPDATE employee_change_log SET processed = TRUE WHERE id IN (%s)`,
		strings.Join(ids, ",")), args...)
	if err != nil {
		return 0, &ConsistencyError{SyncID: syncID, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &ConsistencyError{SyncID: syncID, Err: err}
	}
	return len(changes), nil
}

// ListChanges returns recent change-log rows, newest first. A limit of 0
// returns everything.
func (s *Store) ListChanges(ctx context.Context, limit int) ([]*models.ChangeEvent, error) {
	query := `
		SELECT id, employee_id, change_type, old_values, new_values, change_timestamp, processed
		FROM employee_change_log ORDER BY id DESC`

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.ChangeEvent
	for rows.Next() {
		var ev models.ChangeEvent
		var changeType, oldJSON, newJSON, ts string
		if err := rows.Scan(&ev.LogID, &ev.EmployeeID, &changeType, &oldJSON, &newJSON, &ts, &ev.Processed); err != nil {
			return nil, err
		}
		ev.Type = models.ChangeType(changeType)
		ev.ChangeTimestamp = parseTimestamp(ts)
		if err := json.Unmarshal([]byte(oldJSON), &ev.OldValues); err != nil {
			return nil, fmt.Errorf("unmarshal old values for log %d: %w", ev.LogID, err)
		}
		if err := json.Unmarshal([]byte(newJSON), &ev.NewValues); err != nil {
			return nil, fmt.Errorf("unmarshal new values for log %d: %w", ev.LogID, err)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// unprocessedQuery builds the ordered unprocessed-changes join.
// Ties on change_timestamp break by log ID for determinism.
func unprocessedQuery() string {
	return fmt.Sprintf(`
		SELECT %s
		FROM employee_change_log cl
		LEFT JOIN employees e ON cl.employee_id = e.employee_id
		WHERE cl.processed = FALSE
		ORDER BY cl.change_timestamp ASC, cl.id ASC`, changeColumns)
}

// collectChangeRecords scans joined change rows into ChangeRecords.
func collectChangeRecords(rows *sql.Rows) ([]models.ChangeRecord, error) {
	defer rows.Close()

	var changes []models.ChangeRecord
	for rows.Next() {
		var rec models.ChangeRecord
		var changeType, oldJSON, newJSON, ts string
		var empID, firstName, lastName, email, department, position, status sql.NullString
		var salary sql.NullFloat64

		err := rows.Scan(
			&rec.LogID, &rec.EmployeeID, &changeType, &oldJSON, &newJSON, &ts,
			&empID, &firstName, &lastName, &email, &department, &position, &salary, &status,
		)
		if err != nil {
			return nil, err
		}

		rec.Type = models.ChangeType(changeType)
		rec.ChangeTimestamp = parseTimestamp(ts)
		if err := json.Unmarshal([]byte(oldJSON), &rec.OldValues); err != nil {
			return nil, fmt.Errorf("unmarshal old values for log %d: %w", rec.LogID, err)
		}
		if err := json.Unmarshal([]byte(newJSON), &rec.NewValues); err != nil {
			return nil, fmt.Errorf("unmarshal new values for log %d: %w", rec.LogID, err)
		}

		// Employee snapshot is null when the row no longer exists.
		if empID.Valid {
			rec.CurrentEmployeeData = &models.Employee{
				EmployeeID: empID.String,
				FirstName:  firstName.String,
				LastName:   lastName.String,
				Email:      email.String,
				Department: department.String,
				Position:   position.String,
				Salary:     salary.Float64,
				Status:     status.String,
			}
		}

		changes = append(changes, rec)
	}
	return changes, rows.Err()
}
