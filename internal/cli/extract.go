package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/kilupskalvis/hrsync/internal/sync"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Batch unprocessed changes into a sync payload",
	Long: `Select all unprocessed change events, write them as a single sync
payload, and mark them consumed. Each change event ends up in exactly one
payload.

If the previous payload has not been applied yet, extraction refuses to
overwrite it unless --force is given.`,
	Run: runExtract,
}

var extractForce bool

func init() {
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "Overwrite a pending payload that has not been applied")
}

func runExtract(cmd *cobra.Command, args []string) {
	c := initSourceContext()
	defer c.Close()

	extractor := sync.NewExtractor(c.Config, c.Source, c.Payloads)
	extractor.AllowOverwrite = extractForce

	result, err := extractor.DetectAndBatch(context.Background())
	if err != nil {
		if errors.Is(err, sync.ErrPayloadPending) {
			exitError("%v (apply it first, or pass --force to discard it)", err)
		}
		exitError("%v", err)
	}

	if result.ChangesProcessed == 0 {
		fmt.Println("No unprocessed changes found")
		return
	}

	green := color.New(color.FgGreen)
	green.Printf("[%s] %d change(s) extracted\n", result.SyncID, result.ChangesProcessed)
	fmt.Printf(" payload: %s\n", result.PayloadPath)
}
