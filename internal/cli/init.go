package cli

import (
	"fmt"

	"github.com/kilupskalvis/hrsync/internal/config"
	"github.com/kilupskalvis/hrsync/internal/source"
	"github.com/kilupskalvis/hrsync/internal/target"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hrsync workspace",
	Long: `Initialize a new hrsync workspace in the current directory.
This creates a .hrsync directory holding the configuration, the HR and
payroll databases, and the sync payload slot.`,
	Run: runInit,
}

var (
	initSourceSystem string
	initTargetSystem string
)

func init() {
	initCmd.Flags().StringVar(&initSourceSystem, "source-system", config.DefaultSourceSystem, "Source system name recorded in payloads")
	initCmd.Flags().StringVar(&initTargetSystem, "target-system", config.DefaultTargetSystem, "Target system name recorded in payloads")
}

func runInit(cmd *cobra.Command, args []string) {
	// Check if already initialized
	if _, err := config.FindRoot(); err == nil {
		exitError("hrsync workspace already exists")
	}

	cfg, err := config.Initialize()
	if err != nil {
		exitError("failed to initialize config: %v", err)
	}

	cfg.SourceSystem = initSourceSystem
	cfg.TargetSystem = initTargetSystem
	if err := cfg.Save(); err != nil {
		exitError("failed to save config: %v", err)
	}

	src, err := source.New(cfg.HRDatabasePath())
	if err != nil {
		exitError("failed to create HR store: %v", err)
	}
	defer src.Close()

	if err := src.Initialize(); err != nil {
		exitError("failed to initialize HR store: %v", err)
	}

	tgt, err := target.New(cfg.PayrollDatabasePath())
	if err != nil {
		exitError("failed to create payroll store: %v", err)
	}
	defer tgt.Close()

	if err := tgt.Initialize(); err != nil {
		exitError("failed to initialize payroll store: %v", err)
	}

	fmt.Printf("Initialized empty hrsync workspace in .hrsync/\n")
	fmt.Printf("Source system: %s\n", cfg.SourceSystem)
	fmt.Printf("Target system: %s\n", cfg.TargetSystem)
}
