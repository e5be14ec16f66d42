package source

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kilupskalvis/hrsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a new HR store in a temp directory for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "hr_system.db")
	st, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Initialize())
	t.Cleanup(func() { st.Close() })
	return st
}

func testEmployee(id string) *models.Employee {
	return &models.Employee{
		EmployeeID: id,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      id + "@company.com",
		Department: "Eng",
		Position:   "Engineer",
		Salary:     90000,
		Status:     models.StatusActive,
	}
}

// ==================== Store Tests ====================

func TestStore_Initialize(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "hr_system.db")
	st, err := New(dbPath)
	require.NoError(t, err)
	defer st.Close()

	err = st.Initialize()
	assert.NoError(t, err)

	// Idempotent
	err = st.Initialize()
	assert.NoError(t, err)

	n, err := st.CountUnprocessed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// ==================== Employee Tests ====================

func TestStore_CreateEmployee(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.CreateEmployee(ctx, testEmployee("E1"))
	require.NoError(t, err)

	emp, err := st.GetEmployee(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", emp.FirstName)
	assert.Equal(t, "Ada Lovelace", emp.FullName())
	assert.Equal(t, models.StatusActive, emp.Status)
	assert.False(t, emp.CreatedAt.IsZero())
}

func TestStore_CreateEmployee_RecordsInsertEvent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))

	events, err := st.ListChanges(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, models.ChangeInsert, ev.Type)
	assert.Equal(t, "E1", ev.EmployeeID)
	assert.Empty(t, ev.OldValues)
	assert.Equal(t, "E1", ev.NewValues["employee_id"])
	assert.Equal(t, "Ada", ev.NewValues["first_name"])
	assert.False(t, ev.Processed)
}

func TestStore_CreateEmployee_DuplicateEmailAtomicity(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))

	dup := testEmployee("E2")
	dup.Email = "E1@company.com"
	err := st.CreateEmployee(ctx, dup)
	require.Error(t, err)

	var txErr *TransactionError
	assert.ErrorAs(t, err, &txErr)

	// Neither the employee nor a change event committed
	_, err = st.GetEmployee(ctx, "E2")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	n, err := st.CountUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_UpdateEmployee(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))

	emp, err := st.GetEmployee(ctx, "E1")
	require.NoError(t, err)
	emp.Salary = 95000

	changed, err := st.UpdateEmployee(ctx, emp)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := st.GetEmployee(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, 95000.0, got.Salary)

	events, err := st.ListChanges(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)

	// Full snapshots, not diffs
	ev := events[0]
	assert.Equal(t, models.ChangeUpdate, ev.Type)
	assert.Equal(t, 90000.0, ev.OldValues["salary"])
	assert.Equal(t, 95000.0, ev.NewValues["salary"])
	assert.Equal(t, "Ada", ev.OldValues["first_name"])
	assert.Equal(t, "Ada", ev.NewValues["first_name"])
}

func TestStore_UpdateEmployee_NoOpRecordsNoEvent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))

	emp, err := st.GetEmployee(ctx, "E1")
	require.NoError(t, err)

	changed, err := st.UpdateEmployee(ctx, emp)
	require.NoError(t, err)
	assert.False(t, changed)

	events, err := st.ListChanges(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1, "only the INSERT event should exist")
}

func TestStore_UpdateEmployee_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.UpdateEmployee(context.Background(), testEmployee("ghost"))
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestStore_DeactivateEmployee(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))

	changed, err := st.DeactivateEmployee(ctx, "E1")
	require.NoError(t, err)
	assert.True(t, changed)

	emp, err := st.GetEmployee(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, emp.Status)

	events, err := st.ListChanges(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.ChangeDelete, events[0].Type)
	assert.Equal(t, models.StatusActive, events[0].OldValues["status"])
	assert.Equal(t, models.StatusInactive, events[0].NewValues["status"])

	// Already inactive: no-op, no event
	changed, err = st.DeactivateEmployee(ctx, "E1")
	require.NoError(t, err)
	assert.False(t, changed)

	all, err := st.ListChanges(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_MutationCountEqualsEventCount(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))

	emp, err := st.GetEmployee(ctx, "E1")
	require.NoError(t, err)

	// Effective update
	emp.Salary = 95000
	_, err = st.UpdateEmployee(ctx, emp)
	require.NoError(t, err)

	// No-op update
	_, err = st.UpdateEmployee(ctx, emp)
	require.NoError(t, err)

	// Effective update
	emp.Email = "ada@company.com"
	_, err = st.UpdateEmployee(ctx, emp)
	require.NoError(t, err)

	events, err := st.ListChanges(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 3, "three effective mutations, three events")
}

// ==================== Change Log Tests ====================

func TestStore_ValuesSurviveRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("E1")
	emp.Salary = 90000.50
	require.NoError(t, st.CreateEmployee(ctx, emp))

	changes, err := st.UnprocessedChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 1)

	want := emp.InsertAttributes()
	assert.Equal(t, want, changes[0].NewValues)
	assert.Equal(t, map[string]any{}, changes[0].OldValues)
}

func TestStore_UnprocessedChanges_Ordering(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))
	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E2")))

	emp, err := st.GetEmployee(ctx, "E1")
	require.NoError(t, err)
	emp.Salary = 95000
	_, err = st.UpdateEmployee(ctx, emp)
	require.NoError(t, err)

	changes, err := st.UnprocessedChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	// Timestamp order, log ID breaking ties
	for i := 1; i < len(changes); i++ {
		prev, cur := changes[i-1], changes[i]
		if cur.ChangeTimestamp.Equal(prev.ChangeTimestamp) {
			assert.Greater(t, cur.LogID, prev.LogID)
		} else {
			assert.True(t, cur.ChangeTimestamp.After(prev.ChangeTimestamp))
		}
	}
}

func TestStore_UnprocessedChanges_JoinsCurrentSnapshot(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))

	emp, err := st.GetEmployee(ctx, "E1")
	require.NoError(t, err)
	emp.Salary = 95000
	_, err = st.UpdateEmployee(ctx, emp)
	require.NoError(t, err)

	changes, err := st.UnprocessedChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	// Both events carry the snapshot as of extraction, not as of the event
	for _, c := range changes {
		require.NotNil(t, c.CurrentEmployeeData)
		assert.Equal(t, 95000.0, c.CurrentEmployeeData.Salary)
	}
}

func TestStore_UnprocessedChanges_MissingEmployeeRow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))

	// Remove the row out of band; the change event must survive with a
	// null snapshot.
	_, err := st.DB().Exec(`DELETE FROM employees WHERE employee_id = 'E1'`)
	require.NoError(t, err)

	changes, err := st.UnprocessedChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].CurrentEmployeeData)
}

// ==================== Extraction Tests ====================

func TestStore_ExtractUnprocessed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))
	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E2")))

	var got []models.ChangeRecord
	count, err := st.ExtractUnprocessed(ctx, func(changes []models.ChangeRecord) (string, error) {
		got = changes
		return "SYNC_TEST", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, got, 2)

	// All flags flipped
	n, err := st.CountUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Second run finds nothing and never calls write
	count, err = st.ExtractUnprocessed(ctx, func([]models.ChangeRecord) (string, error) {
		t.Fatal("write must not be called with no unprocessed changes")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_ExtractUnprocessed_WriteFailureKeepsFlags(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("E1")))

	wantErr := errors.New("disk full")
	_, err := st.ExtractUnprocessed(ctx, func([]models.ChangeRecord) (string, error) {
		return "SYNC_TEST", wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// Flags untouched, next run retries the same event
	n, err := st.CountUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
