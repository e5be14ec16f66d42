package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilupskalvis/hrsync/internal/config"
	"github.com/kilupskalvis/hrsync/internal/models"
	"github.com/kilupskalvis/hrsync/internal/payload"
	"github.com/kilupskalvis/hrsync/internal/source"
)

// generatedBy identifies the extractor in payload metadata.
const generatedBy = "HR Change Detection System"

// Extractor batches unprocessed change events into a sync payload and marks
// them consumed. Each change event is included in precisely one payload.
// One extractor instance must run at a time; the store transaction around
// the select-then-flag sequence is the correctness boundary.
type Extractor struct {
	cfg      *config.Config
	source   *source.Store
	payloads *payload.Store

	// AllowOverwrite disables the pending-payload guard, permitting a new
	// extraction to replace a payload that has not been applied yet.
	AllowOverwrite bool
}

// NewExtractor creates an extractor over the given stores.
func NewExtractor(cfg *config.Config, src *source.Store, payloads *payload.Store) *Extractor {
	return &Extractor{cfg: cfg, source: src, payloads: payloads}
}

// ExtractResult reports the outcome of one DetectAndBatch run.
type ExtractResult struct {
	ChangesProcessed int
	SyncID           string
	PayloadPath      string
}

// DetectAndBatch selects all unprocessed change events in timestamp order,
// writes them as a single payload, and flips their processed flags — all
// treated as one unit. With no unprocessed events it returns
// ChangesProcessed = 0 and performs no write.
//
// If the payload write fails, the flags stay false and the next run retries
// the same events. If the flag commit fails after the payload write, a
// source.ConsistencyError is returned; it must be surfaced rather than
// retried, since a retry would emit the same events twice.
func (e *Extractor) DetectAndBatch(ctx context.Context) (*ExtractResult, error) {
	// With nothing to extract there is nothing to overwrite either, so the
	// pending-payload guard only applies when changes exist.
	pending, err := e.source.CountUnprocessed(ctx)
	if err != nil {
		return nil, fmt.Errorf("count unprocessed changes: %w", err)
	}
	if pending == 0 {
		return &ExtractResult{}, nil
	}

	if !e.AllowOverwrite {
		prior, err := e.payloads.Read()
		switch {
		case errors.Is(err, payload.ErrPayloadNotFound):
			// Empty slot, nothing to guard.
		case err != nil:
			return nil, fmt.Errorf("check payload slot: %w", err)
		case !prior.IsProcessed():
			return nil, fmt.Errorf("%w: %s", ErrPayloadPending, prior.Metadata.SyncID)
		}
	}

	var syncID string
	count, err := e.source.ExtractUnprocessed(ctx, func(changes []models.ChangeRecord) (string, error) {
		now := time.Now().UTC()
		syncID = models.NewSyncID(now)

		p := &models.SyncPayload{
			SourceSystem:  e.cfg.SourceSystem,
			TargetSystem:  e.cfg.TargetSystem,
			SyncTimestamp: now.Format(time.RFC3339),
			TotalChanges:  len(changes),
			Changes:       changes,
			Metadata: models.PayloadMetadata{
				GeneratedBy: generatedBy,
				SyncID:      syncID,
				Status:      models.PayloadReady,
			},
		}

		if err := e.payloads.Write(p); err != nil {
			return syncID, fmt.Errorf("write payload: %w", err)
		}
		return syncID, nil
	})
	if err != nil {
		return nil, err
	}

	if count == 0 {
		return &ExtractResult{}, nil
	}
	return &ExtractResult{
		ChangesProcessed: count,
		SyncID:           syncID,
		PayloadPath:      e.payloads.Path(),
	}, nil
}
