package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/kilupskalvis/hrsync/internal/models"
	"github.com/kilupskalvis/hrsync/internal/payload"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending changes and payload state",
	Long:  `Show unprocessed change events waiting for extraction and the current sync payload state.`,
	Run:   runStatus,
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	c := initSourceContext()
	defer c.Close()

	changes, err := c.Source.UnprocessedChanges(ctx)
	if err != nil {
		exitError("failed to read change log: %v", err)
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	if len(changes) == 0 {
		fmt.Println("No unprocessed changes")
	} else {
		fmt.Println("Changes to be extracted:")
		cyan.Println("  (use \"hrsync extract\" to build a sync payload)")
		fmt.Println()
		for _, change := range changes {
			switch change.Type {
			case models.ChangeInsert:
				green.Printf("        new:         %s\n", change.EmployeeID)
			case models.ChangeUpdate:
				yellow.Printf("        modified:    %s\n", change.EmployeeID)
			case models.ChangeDelete:
				red.Printf("        deactivated: %s\n", change.EmployeeID)
			}
		}
		fmt.Printf("\n%d unprocessed change(s)\n", len(changes))
	}

	p, err := c.Payloads.Read()
	switch {
	case errors.Is(err, payload.ErrPayloadNotFound):
		fmt.Println("\nNo sync payload")
	case err != nil:
		exitError("failed to read payload: %v", err)
	case p.IsProcessed():
		fmt.Printf("\nPayload %s: processed at %s by %s\n",
			p.Metadata.SyncID, p.Metadata.ProcessedTimestamp, p.Metadata.ProcessedBy)
	default:
		yellow.Printf("\nPayload %s: %d change(s) ready for sync\n", p.Metadata.SyncID, p.TotalChanges)
		cyan.Println("  (use \"hrsync apply\" to apply it to the payroll store)")
	}
}
