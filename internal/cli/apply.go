package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/kilupskalvis/hrsync/internal/models"
	"github.com/kilupskalvis/hrsync/internal/payload"
	"github.com/kilupskalvis/hrsync/internal/sync"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the sync payload to the payroll store",
	Long: `Apply each change in the current sync payload to the payroll store.

Inserts and updates upsert the payroll record; deletes deactivate it. One
audit entry is written per change. A payload that was already applied is a
no-op. Per-change failures are recorded and do not abort the batch.`,
	Run: runApply,
}

func runApply(cmd *cobra.Command, args []string) {
	c := initTargetContext()
	defer c.Close()

	applier := sync.NewApplier(c.Config, c.Target, c.Payloads)
	result, err := applier.ApplyBatch(context.Background())
	if err != nil {
		if errors.Is(err, payload.ErrPayloadNotFound) {
			exitError("no sync payload found (run \"hrsync extract\" first)")
		}
		exitError("%v", err)
	}

	if result.AlreadyProcessed {
		fmt.Printf("Payload %s already processed, nothing to do\n", result.SyncID)
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	var failed int
	for _, res := range result.Results {
		if res.Status == models.SyncCompleted {
			green.Printf("  %-6s %s\n", res.ChangeType, res.EmployeeID)
		} else {
			failed++
			red.Printf("  %-6s %s: %s\n", res.ChangeType, res.EmployeeID, res.Error)
		}
	}

	fmt.Printf("\n[%s] %d change(s) applied", result.SyncID, result.ProcessedCount)
	if failed > 0 {
		red.Printf(", %d failed", failed)
	}
	fmt.Println()
}
