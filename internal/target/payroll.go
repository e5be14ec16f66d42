package target

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kilupskalvis/hrsync/internal/models"
	bolt "go.etcd.io/bbolt"
)

// UpsertEmployee inserts or replaces a payroll record keyed by employee ID.
// Re-applying the same record is idempotent. Fields the sync source does
// not carry (pay grade, created_at) are preserved from the existing record.
func (s *Store) UpsertEmployee(emp *models.PayrollEmployee) error {
	if emp.EmployeeID == "" {
		return fmt.Errorf("employee_id is required")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEmployees)
		key := []byte(emp.EmployeeID)

		if v := b.Get(key); v != nil {
			var existing models.PayrollEmployee
			if err := json.Unmarshal(v, &existing); err != nil {
				return fmt.Errorf("unmarshal payroll employee: %w", err)
			}
			if emp.PayGrade == "" {
				emp.PayGrade = existing.PayGrade
			}
			emp.CreatedAt = existing.CreatedAt
		} else if emp.CreatedAt.IsZero() {
			emp.CreatedAt = emp.LastSyncTimestamp
		}
		emp.UpdatedAt = emp.LastSyncTimestamp

		data, err := json.Marshal(emp)
		if err != nil {
			return fmt.Errorf("marshal payroll employee: %w", err)
		}
		return b.Put(key, data)
	})
}

// DeactivateEmployee flips a payroll record's tax status to inactive and
// stamps the sync time. The record is never removed. Deactivating an
// unknown employee returns ErrPayrollEmployeeNotFound.
func (s *Store) DeactivateEmployee(employeeID string, syncTime time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEmployees)
		key := []byte(employeeID)

		v := b.Get(key)
		if v == nil {
			return ErrPayrollEmployeeNotFound
		}

		var emp models.PayrollEmployee
		if err := json.Unmarshal(v, &emp); err != nil {
			return fmt.Errorf("unmarshal payroll employee: %w", err)
		}

		emp.TaxStatus = models.TaxStatusInactive
		emp.LastSyncTimestamp = syncTime
		emp.UpdatedAt = syncTime

		data, err := json.Marshal(&emp)
		if err != nil {
			return fmt.Errorf("marshal payroll employee: %w", err)
		}
		return b.Put(key, data)
	})
}

// GetEmployee retrieves a payroll record by employee ID.
func (s *Store) GetEmployee(employeeID string) (*models.PayrollEmployee, error) {
	var emp models.PayrollEmployee
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketEmployees).Get([]byte(employeeID))
		if v == nil {
			return ErrPayrollEmployeeNotFound
		}
		return json.Unmarshal(v, &emp)
	})
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns all payroll records ordered by employee ID.
func (s *Store) ListEmployees() ([]*models.PayrollEmployee, error) {
	var employees []*models.PayrollEmployee
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEmployees).ForEach(func(k, v []byte) error {
			var emp models.PayrollEmployee
			if err := json.Unmarshal(v, &emp); err != nil {
				return fmt.Errorf("unmarshal payroll employee %s: %w", k, err)
			}
			employees = append(employees, &emp)
			return nil
		})
	})
	return employees, err
}
