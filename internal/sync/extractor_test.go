package sync

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/kilupskalvis/hrsync/internal/config"
	"github.com/kilupskalvis/hrsync/internal/models"
	"github.com/kilupskalvis/hrsync/internal/payload"
	"github.com/kilupskalvis/hrsync/internal/source"
	"github.com/kilupskalvis/hrsync/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv wires a config and all three stores in a temp directory.
type testEnv struct {
	cfg      *config.Config
	source   *source.Store
	target   *target.Store
	payloads *payload.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		SourceSystem: "hr_system",
		TargetSystem: "payroll_system",
		ProcessedBy:  "payroll-sync",
	}

	src, err := source.New(filepath.Join(dir, "hr_system.db"))
	require.NoError(t, err)
	require.NoError(t, src.Initialize())
	t.Cleanup(func() { src.Close() })

	tgt, err := target.New(filepath.Join(dir, "payroll_system.db"))
	require.NoError(t, err)
	require.NoError(t, tgt.Initialize())
	t.Cleanup(func() { tgt.Close() })

	return &testEnv{
		cfg:      cfg,
		source:   src,
		target:   tgt,
		payloads: payload.NewStore(filepath.Join(dir, "sync_payload.json")),
	}
}

func (env *testEnv) addEmployee(t *testing.T, id string) {
	t.Helper()
	emp := &models.Employee{
		EmployeeID: id,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      id + "@company.com",
		Department: "Eng",
		Position:   "Engineer",
		Salary:     90000,
		Status:     models.StatusActive,
	}
	require.NoError(t, env.source.CreateEmployee(context.Background(), emp))
}

func (env *testEnv) updateSalary(t *testing.T, id string, salary float64) {
	t.Helper()
	ctx := context.Background()
	emp, err := env.source.GetEmployee(ctx, id)
	require.NoError(t, err)
	emp.Salary = salary
	changed, err := env.source.UpdateEmployee(ctx, emp)
	require.NoError(t, err)
	require.True(t, changed)
}

func TestExtractor_NoChanges(t *testing.T) {
	env := newTestEnv(t)
	extractor := NewExtractor(env.cfg, env.source, env.payloads)

	result, err := extractor.DetectAndBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.ChangesProcessed)

	// No payload was written
	_, err = env.payloads.Read()
	assert.ErrorIs(t, err, payload.ErrPayloadNotFound)
}

func TestExtractor_BatchesAllUnprocessed(t *testing.T) {
	env := newTestEnv(t)
	extractor := NewExtractor(env.cfg, env.source, env.payloads)
	ctx := context.Background()

	env.addEmployee(t, "E1")
	env.updateSalary(t, "E1", 95000)

	result, err := extractor.DetectAndBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ChangesProcessed)
	assert.Regexp(t, regexp.MustCompile(`^SYNC_\d{8}_\d{6}$`), result.SyncID)
	assert.Equal(t, env.payloads.Path(), result.PayloadPath)

	p, err := env.payloads.Read()
	require.NoError(t, err)
	assert.Equal(t, "hr_system", p.SourceSystem)
	assert.Equal(t, "payroll_system", p.TargetSystem)
	assert.Equal(t, 2, p.TotalChanges)
	assert.Equal(t, result.SyncID, p.Metadata.SyncID)
	assert.Equal(t, models.PayloadReady, p.Metadata.Status)
	require.Len(t, p.Changes, 2)
	assert.Equal(t, models.ChangeInsert, p.Changes[0].Type)
	assert.Equal(t, models.ChangeUpdate, p.Changes[1].Type)

	// All selected events flagged processed in one call
	n, err := env.source.CountUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestExtractor_SecondCallFindsNothing(t *testing.T) {
	env := newTestEnv(t)
	extractor := NewExtractor(env.cfg, env.source, env.payloads)
	ctx := context.Background()

	env.addEmployee(t, "E1")

	first, err := extractor.DetectAndBatch(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.ChangesProcessed)

	// No intervening mutation: zero processed, payload untouched
	second, err := extractor.DetectAndBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ChangesProcessed)

	p, err := env.payloads.Read()
	require.NoError(t, err)
	assert.Equal(t, first.SyncID, p.Metadata.SyncID)
}

func TestExtractor_PendingPayloadGuard(t *testing.T) {
	env := newTestEnv(t)
	extractor := NewExtractor(env.cfg, env.source, env.payloads)
	ctx := context.Background()

	env.addEmployee(t, "E1")
	first, err := extractor.DetectAndBatch(ctx)
	require.NoError(t, err)

	// New change while the payload is still unapplied
	env.updateSalary(t, "E1", 95000)

	_, err = extractor.DetectAndBatch(ctx)
	assert.ErrorIs(t, err, ErrPayloadPending)

	// The unapplied payload survives and the new change stays unprocessed
	p, err := env.payloads.Read()
	require.NoError(t, err)
	assert.Equal(t, first.SyncID, p.Metadata.SyncID)

	n, err := env.source.CountUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Force discards the pending payload
	extractor.AllowOverwrite = true
	result, err := extractor.DetectAndBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChangesProcessed)

	p, err = env.payloads.Read()
	require.NoError(t, err)
	require.Len(t, p.Changes, 1)
	assert.Equal(t, models.ChangeUpdate, p.Changes[0].Type)
}

func TestExtractor_ProcessedPayloadDoesNotBlock(t *testing.T) {
	env := newTestEnv(t)
	extractor := NewExtractor(env.cfg, env.source, env.payloads)
	applier := NewApplier(env.cfg, env.target, env.payloads)
	ctx := context.Background()

	env.addEmployee(t, "E1")
	_, err := extractor.DetectAndBatch(ctx)
	require.NoError(t, err)
	_, err = applier.ApplyBatch(ctx)
	require.NoError(t, err)

	env.updateSalary(t, "E1", 95000)

	result, err := extractor.DetectAndBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChangesProcessed)
}

func TestExtractor_PayloadWriteFailureKeepsFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addEmployee(t, "E1")

	// A directory at the payload path makes the rename fail
	badPath := filepath.Join(t.TempDir(), "slot")
	require.NoError(t, os.MkdirAll(badPath, 0755))
	extractor := NewExtractor(env.cfg, env.source, payload.NewStore(badPath))
	extractor.AllowOverwrite = true

	_, err := extractor.DetectAndBatch(ctx)
	require.Error(t, err)

	// Flags untouched: the next run retries the same event
	n, err := env.source.CountUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
