package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/kilupskalvis/hrsync/internal/models"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	Long:  `List employees in the HR store, or in the payroll store with --payroll.`,
	Run:   runList,
}

var listPayroll bool

func init() {
	listCmd.Flags().BoolVar(&listPayroll, "payroll", false, "List payroll records instead of HR employees")
}

func runList(cmd *cobra.Command, args []string) {
	if listPayroll {
		listPayrollEmployees()
		return
	}
	listHREmployees()
}

func listHREmployees() {
	c := initSourceContext()
	defer c.Close()

	employees, err := c.Source.ListEmployees(context.Background())
	if err != nil {
		exitError("failed to list employees: %v", err)
	}

	if len(employees) == 0 {
		fmt.Println("No employees")
		return
	}

	red := color.New(color.FgRed)
	for _, emp := range employees {
		fmt.Printf("%-8s %-24s %-28s %-14s %-22s %10.2f", emp.EmployeeID, emp.FullName(), emp.Email, emp.Department, emp.Position, emp.Salary)
		if emp.Status != models.StatusActive {
			red.Printf("  %s", emp.Status)
		}
		fmt.Println()
	}
	fmt.Printf("\n%d employee(s)\n", len(employees))
}

func listPayrollEmployees() {
	c := initTargetContext()
	defer c.Close()

	employees, err := c.Target.ListEmployees()
	if err != nil {
		exitError("failed to list payroll records: %v", err)
	}

	if len(employees) == 0 {
		fmt.Println("No payroll records")
		return
	}

	red := color.New(color.FgRed)
	for _, emp := range employees {
		fmt.Printf("%-8s %-24s %-28s %-14s %10.2f", emp.EmployeeID, emp.FullName, emp.Email, emp.Department, emp.BaseSalary)
		if emp.TaxStatus != models.TaxStatusActive {
			red.Printf("  %s", emp.TaxStatus)
		}
		if !emp.LastSyncTimestamp.IsZero() {
			fmt.Printf("  synced %s", emp.LastSyncTimestamp.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}
	fmt.Printf("\n%d payroll record(s)\n", len(employees))
}
