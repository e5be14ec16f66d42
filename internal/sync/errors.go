// Package sync implements the change-capture hand-off core: the batch
// extractor that packages unprocessed change events into a payload exactly
// once, and the batch applier that applies a payload to the payroll store
// idempotently.
package sync

import (
	"errors"
	"fmt"
)

// ErrPayloadPending is returned by DetectAndBatch when the payload slot
// still holds an unapplied payload. Overwriting it would lose changes that
// were already flagged processed in the change log.
var ErrPayloadPending = errors.New("pending payload has not been applied yet")

// ValidationError reports a malformed or missing required field in a change
// snapshot. It is recorded per change and does not abort the batch.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid change: %s %s", e.Field, e.Reason)
}
