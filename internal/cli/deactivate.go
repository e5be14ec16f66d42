package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <employee-id>",
	Short: "Deactivate an employee (soft delete)",
	Long: `Transition an employee to the inactive status and record a DELETE
change event. The employee row is retained; the payroll side mirrors the
deactivation without removing its record.`,
	Args: cobra.ExactArgs(1),
	Run:  runDeactivate,
}

func runDeactivate(cmd *cobra.Command, args []string) {
	c := initSourceContext()
	defer c.Close()

	changed, err := c.Source.DeactivateEmployee(context.Background(), args[0])
	if err != nil {
		exitError("%v", err)
	}

	if !changed {
		fmt.Printf("%s already inactive, no event recorded\n", args[0])
		return
	}

	red := color.New(color.FgRed)
	red.Printf("deactivated %s\n", args[0])
}
