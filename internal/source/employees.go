package source

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"time"

	"github.com/kilupskalvis/hrsync/internal/models"
)

// CreateEmployee inserts a new employee and records the INSERT change event
// in the same transaction. If either write fails, neither commits.
func (s *Store) CreateEmployee(ctx context.Context, emp *models.Employee) error {
	if emp.EmployeeID == "" {
		return fmt.Errorf("employee_id is required")
	}
	if emp.Status == "" {
		emp.Status = models.StatusActive
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &TransactionError{Op: "create employee", Err: err}
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO employees (employee_id, first_name, last_name, email, department, position, salary, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		emp.EmployeeID, emp.FirstName, emp.LastName, emp.Email,
		emp.Department, emp.Position, emp.Salary, emp.Status,
		formatTimestamp(now), formatTimestamp(now),
	)
	if err != nil {
		return &TransactionError{Op: "create employee", Err: err}
	}

	if err := recordChange(ctx, tx, emp.EmployeeID, models.ChangeInsert, map[string]any{}, emp.InsertAttributes(), now); err != nil {
		return &TransactionError{Op: "record insert change", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &TransactionError{Op: "commit create employee", Err: err}
	}
	return nil
}

// UpdateEmployee applies the given employee's tracked attributes to the
// stored row. When at least one tracked attribute differs, the row update
// and one UPDATE change event commit together and changed is true. A no-op
// update writes nothing and records no event.
func (s *Store) UpdateEmployee(ctx context.Context, emp *models.Employee) (changed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, &TransactionError{Op: "update employee", Err: err}
	}
	defer tx.Rollback()

	old, err := getEmployeeTx(ctx, tx, emp.EmployeeID)
	if err != nil {
		return false, err
	}

	if reflect.DeepEqual(old.Attributes(), emp.Attributes()) {
		return false, nil
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE employees SET first_name = ?, last_name = ?, email = ?, department = ?, position = ?, salary = ?, status = ?, updated_at = ?
		WHERE employee_id = ?`,
		emp.FirstName, emp.LastName, emp.Email, emp.Department,
		emp.Position, emp.Salary, emp.Status, formatTimestamp(now),
		emp.EmployeeID,
	)
	if err != nil {
		return false, &TransactionError{Op: "update employee", Err: err}
	}

	if err := recordChange(ctx, tx, emp.EmployeeID, models.ChangeUpdate, old.Attributes(), emp.Attributes(), now); err != nil {
		return false, &TransactionError{Op: "record update change", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return false, &TransactionError{Op: "commit update employee", Err: err}
	}
	return true, nil
}

// DeactivateEmployee transitions an employee to the inactive status and
// records a DELETE change event. The employees row is retained (soft
// delete); deactivating an already-inactive employee is a no-op.
func (s *Store) DeactivateEmployee(ctx context.Context, employeeID string) (changed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, &TransactionError{Op: "deactivate employee", Err: err}
	}
	defer tx.Rollback()

	old, err := getEmployeeTx(ctx, tx, employeeID)
	if err != nil {
		return false, err
	}
	if !old.IsActive() {
		return false, nil
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`UPDATE employees SET status = ?, updated_at = ? WHERE employee_id = ?`,
		models.StatusInactive, formatTimestamp(now), employeeID,
	)
	if err != nil {
		return false, &TransactionError{Op: "deactivate employee", Err: err}
	}

	updated := *old
	updated.Status = models.StatusInactive

	if err := recordChange(ctx, tx, employeeID, models.ChangeDelete, old.Attributes(), updated.Attributes(), now); err != nil {
		return false, &TransactionError{Op: "record delete change", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return false, &TransactionError{Op: "commit deactivate employee", Err: err}
	}
	return true, nil
}

// GetEmployee retrieves an employee by ID
func (s *Store) GetEmployee(ctx context.Context, employeeID string) (*models.Employee, error) {
	return scanEmployee(s.db.QueryRowContext(ctx, `
		SELECT employee_id, first_name, last_name, email, department, position, salary, status, created_at, updated_at
		FROM employees WHERE employee_id = ?`, employeeID))
}

// ListEmployees returns all employees ordered by ID
func (s *Store) ListEmployees(ctx context.Context) ([]*models.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, first_name, last_name, email, department, position, salary, status, created_at, updated_at
		FROM employees ORDER BY employee_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// getEmployeeTx loads an employee inside an open transaction.
func getEmployeeTx(ctx context.Context, tx *sql.Tx, employeeID string) (*models.Employee, error) {
	return scanEmployee(tx.QueryRowContext(ctx, `
		SELECT employee_id, first_name, last_name, email, department, position, salary, status, created_at, updated_at
		FROM employees WHERE employee_id = ?`, employeeID))
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*models.Employee, error) {
	var emp models.Employee
	var department, position, status sql.NullString
	var salary sql.NullFloat64
	var createdAt, updatedAt string

	err := row.Scan(
		&emp.EmployeeID, &emp.FirstName, &emp.LastName, &emp.Email,
		&department, &position, &salary, &status,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}

	emp.Department = department.String
	emp.Position = position.String
	emp.Salary = salary.Float64
	emp.Status = status.String
	emp.CreatedAt = parseTimestamp(createdAt)
	emp.UpdatedAt = parseTimestamp(updatedAt)
	return &emp, nil
}

// formatTimestamp renders a timestamp the way the store persists it. The
// fractional part is fixed width so text comparison matches time order.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
