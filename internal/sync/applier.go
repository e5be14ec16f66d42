package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kilupskalvis/hrsync/internal/config"
	"github.com/kilupskalvis/hrsync/internal/models"
	"github.com/kilupskalvis/hrsync/internal/payload"
	"github.com/kilupskalvis/hrsync/internal/target"
)

// Applier reads the current sync payload and applies each change to the
// payroll store with upsert/soft-delete semantics. One applier instance
// must run at a time against a payload slot.
type Applier struct {
	cfg      *config.Config
	target   *target.Store
	payloads *payload.Store
}

// NewApplier creates an applier over the given stores.
func NewApplier(cfg *config.Config, tgt *target.Store, payloads *payload.Store) *Applier {
	return &Applier{cfg: cfg, target: tgt, payloads: payloads}
}

// ChangeResult reports the outcome of applying one change.
type ChangeResult struct {
	LogID      int64
	EmployeeID string
	ChangeType models.ChangeType
	Status     string // completed or failed
	Error      string
}

// ApplyResult reports the outcome of one ApplyBatch run.
type ApplyResult struct {
	SyncID           string
	ProcessedCount   int
	AlreadyProcessed bool
	Results          []ChangeResult
}

// ApplyBatch applies the current payload to the payroll store in payload
// order, appending one audit entry per change, then annotates the payload
// as processed. Later changes for the same employee win because application
// is sequential and upserts replace prior state.
//
// A payload that is already processed is a no-op returning ProcessedCount 0
// and no new audit rows. A malformed change is recorded as failed and the
// batch continues; only store-level failures abort the run.
// payload.ErrPayloadNotFound is returned when the slot is empty.
func (a *Applier) ApplyBatch(ctx context.Context) (*ApplyResult, error) {
	p, err := a.payloads.Read()
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{SyncID: p.Metadata.SyncID}
	if p.IsProcessed() {
		result.AlreadyProcessed = true
		return result, nil
	}

	applyTime := time.Now().UTC()
	for _, change := range p.Changes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := ChangeResult{
			LogID:      change.LogID,
			EmployeeID: change.EmployeeID,
			ChangeType: change.Type,
			Status:     models.SyncCompleted,
		}

		applyErr := a.applyChange(change, applyTime)
		if applyErr != nil {
			res.Status = models.SyncFailed
			res.Error = applyErr.Error()
		}

		if err := a.appendAudit(change, res, applyTime); err != nil {
			return nil, fmt.Errorf("append sync log for change %d: %w", change.LogID, err)
		}

		result.Results = append(result.Results, res)
		result.ProcessedCount++
	}

	if err := a.payloads.Annotate(models.PayloadProcessed, applyTime.Format(time.RFC3339), a.cfg.ProcessedBy); err != nil {
		return nil, fmt.Errorf("annotate payload: %w", err)
	}

	return result, nil
}

// applyChange applies a single change to the payroll store.
func (a *Applier) applyChange(change models.ChangeRecord, applyTime time.Time) error {
	if change.EmployeeID == "" {
		return &ValidationError{Field: "employee_id", Reason: "is missing"}
	}
	if !change.Type.Valid() {
		return &ValidationError{Field: "change_type", Reason: fmt.Sprintf("unknown value %q", change.Type)}
	}

	switch change.Type {
	case models.ChangeInsert, models.ChangeUpdate:
		emp, err := payrollFromSnapshot(change.EmployeeID, change.NewValues, applyTime)
		if err != nil {
			return err
		}
		return a.target.UpsertEmployee(emp)

	case models.ChangeDelete:
		err := a.target.DeactivateEmployee(change.EmployeeID, applyTime)
		if errors.Is(err, target.ErrPayrollEmployeeNotFound) {
			return &ValidationError{Field: "employee_id", Reason: "has no payroll record to deactivate"}
		}
		return err
	}
	return nil
}

// appendAudit writes exactly one sync log entry for an attempted change.
func (a *Applier) appendAudit(change models.ChangeRecord, res ChangeResult, applyTime time.Time) error {
	sourceData, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal source change: %w", err)
	}

	_, err = a.target.AppendSyncLog(&models.SyncLogEntry{
		EmployeeID:    change.EmployeeID,
		SyncType:      "HR_" + string(change.Type),
		SourceData:    sourceData,
		SyncStatus:    res.Status,
		ErrorMessage:  res.Error,
		SyncTimestamp: applyTime,
	})
	return err
}

// payrollFromSnapshot maps a new_values attribute snapshot onto a payroll
// record. The name parts concatenate into the payroll display name; salary
// maps to base salary and status to tax status.
func payrollFromSnapshot(employeeID string, values map[string]any, applyTime time.Time) (*models.PayrollEmployee, error) {
	if len(values) == 0 {
		return nil, &ValidationError{Field: "new_values", Reason: "is empty"}
	}

	firstName, err := stringField(values, "first_name")
	if err != nil {
		return nil, err
	}
	lastName, err := stringField(values, "last_name")
	if err != nil {
		return nil, err
	}
	email, err := stringField(values, "email")
	if err != nil {
		return nil, err
	}

	salary, err := numberField(values, "salary")
	if err != nil {
		return nil, err
	}

	department, _ := values["department"].(string)
	position, _ := values["position"].(string)
	status, ok := values["status"].(string)
	if !ok || status == "" {
		status = models.TaxStatusActive
	}

	return &models.PayrollEmployee{
		EmployeeID:        employeeID,
		FullName:          firstName + " " + lastName,
		Email:             email,
		Department:        department,
		Position:          position,
		BaseSalary:        salary,
		TaxStatus:         status,
		LastSyncTimestamp: applyTime,
	}, nil
}

func stringField(values map[string]any, field string) (string, error) {
	v, ok := values[field]
	if !ok {
		return "", &ValidationError{Field: field, Reason: "is missing"}
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", &ValidationError{Field: field, Reason: "must be a non-empty string"}
	}
	return s, nil
}

func numberField(values map[string]any, field string) (float64, error) {
	v, ok := values[field]
	if !ok {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &ValidationError{Field: field, Reason: "must be numeric"}
		}
		return f, nil
	default:
		return 0, &ValidationError{Field: field, Reason: "must be numeric"}
	}
}
