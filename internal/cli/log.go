package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/kilupskalvis/hrsync/internal/models"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the change log or the payroll audit log",
	Long: `Show recent HR change-log events, newest first.

With --audit, show the payroll sync audit log instead: one entry per change
applied to the payroll store, including failures.`,
	Run: runLog,
}

var (
	logLimit int
	logAudit bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	logCmd.Flags().BoolVar(&logAudit, "audit", false, "Show the payroll sync audit log")
}

func runLog(cmd *cobra.Command, args []string) {
	if logAudit {
		showAuditLog()
		return
	}
	showChangeLog()
}

func showChangeLog() {
	c := initSourceContext()
	defer c.Close()

	events, err := c.Source.ListChanges(context.Background(), logLimit)
	if err != nil {
		exitError("failed to read change log: %v", err)
	}

	if len(events) == 0 {
		fmt.Println("No change events")
		return
	}

	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)
	for _, ev := range events {
		yellow.Printf("change %d", ev.LogID)
		if ev.Processed {
			cyan.Printf(" (processed)")
		}
		fmt.Println()
		fmt.Printf("  Employee: %s\n", ev.EmployeeID)
		fmt.Printf("  Type:     %s\n", ev.Type)
		fmt.Printf("  Date:     %s\n", ev.ChangeTimestamp.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

func showAuditLog() {
	c := initTargetContext()
	defer c.Close()

	entries, err := c.Target.ListSyncLog(logLimit)
	if err != nil {
		exitError("failed to read sync log: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No sync log entries")
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	for _, entry := range entries {
		fmt.Printf("sync %d  %-10s %-8s ", entry.ID, entry.SyncType, entry.EmployeeID)
		if entry.SyncStatus == models.SyncCompleted {
			green.Printf("%s", entry.SyncStatus)
		} else {
			red.Printf("%s: %s", entry.SyncStatus, entry.ErrorMessage)
		}
		fmt.Printf("  %s\n", entry.SyncTimestamp.Format("2006-01-02 15:04:05"))
	}
}
