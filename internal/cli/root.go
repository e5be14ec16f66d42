// Package cli implements the command-line interface for hrsync.
package cli

import (
	"fmt"
	"os"

	"github.com/kilupskalvis/hrsync/internal/config"
	"github.com/kilupskalvis/hrsync/internal/payload"
	"github.com/kilupskalvis/hrsync/internal/source"
	"github.com/kilupskalvis/hrsync/internal/target"
	"github.com/spf13/cobra"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config   *config.Config
	Source   *source.Store
	Target   *target.Store
	Payloads *payload.Store
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.Source != nil {
		c.Source.Close()
	}
	if c.Target != nil {
		c.Target.Close()
	}
}

// initSourceContext initializes config, the payload store, and the HR store
func initSourceContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	src, err := source.New(cfg.HRDatabasePath())
	if err != nil {
		exitError("failed to open HR store: %v", err)
	}

	return &cmdContext{Config: cfg, Source: src, Payloads: payload.NewStore(cfg.PayloadPath())}
}

// initTargetContext initializes config, the payload store, and the payroll store
func initTargetContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	tgt, err := target.New(cfg.PayrollDatabasePath())
	if err != nil {
		exitError("failed to open payroll store: %v", err)
	}

	return &cmdContext{Config: cfg, Target: tgt, Payloads: payload.NewStore(cfg.PayloadPath())}
}

// initFullContext initializes config and both stores
func initFullContext() *cmdContext {
	c := initSourceContext()

	tgt, err := target.New(c.Config.PayrollDatabasePath())
	if err != nil {
		c.Close()
		exitError("failed to open payroll store: %v", err)
	}
	c.Target = tgt

	return c
}

var rootCmd = &cobra.Command{
	Use:   "hrsync",
	Short: "HR to payroll change synchronization",
	Long: `hrsync propagates employee record changes from an HR source-of-record
store to a payroll store through a durable change log and a file-based
sync payload. Every employee mutation is captured as an immutable change
event; extraction batches unprocessed events into exactly one payload,
and apply upserts them into the payroll store with a full audit trail.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deactivateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(showCmd)
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
