package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <employee-id>",
	Short: "Update an existing employee's attributes",
	Long: `Update one or more attributes of an existing employee.

Only the flags you pass change; everything else keeps its current value.
An update that changes nothing records no change event.`,
	Args: cobra.ExactArgs(1),
	Run:  runUpdate,
}

var (
	updFirstName  string
	updLastName   string
	updEmail      string
	updDepartment string
	updPosition   string
	updSalary     float64
	updStatus     string
)

func init() {
	updateCmd.Flags().StringVar(&updFirstName, "first-name", "", "First name")
	updateCmd.Flags().StringVar(&updLastName, "last-name", "", "Last name")
	updateCmd.Flags().StringVar(&updEmail, "email", "", "Email")
	updateCmd.Flags().StringVar(&updDepartment, "department", "", "Department")
	updateCmd.Flags().StringVar(&updPosition, "position", "", "Position")
	updateCmd.Flags().Float64Var(&updSalary, "salary", 0, "Salary")
	updateCmd.Flags().StringVar(&updStatus, "status", "", "Status (active or inactive)")
}

func runUpdate(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	c := initSourceContext()
	defer c.Close()

	emp, err := c.Source.GetEmployee(ctx, args[0])
	if err != nil {
		exitError("%v", err)
	}

	flags := cmd.Flags()
	if flags.Changed("first-name") {
		emp.FirstName = updFirstName
	}
	if flags.Changed("last-name") {
		emp.LastName = updLastName
	}
	if flags.Changed("email") {
		emp.Email = updEmail
	}
	if flags.Changed("department") {
		emp.Department = updDepartment
	}
	if flags.Changed("position") {
		emp.Position = updPosition
	}
	if flags.Changed("salary") {
		emp.Salary = updSalary
	}
	if flags.Changed("status") {
		emp.Status = updStatus
	}

	changed, err := c.Source.UpdateEmployee(ctx, emp)
	if err != nil {
		exitError("%v", err)
	}

	if !changed {
		fmt.Printf("%s unchanged, no event recorded\n", emp.EmployeeID)
		return
	}

	yellow := color.New(color.FgYellow)
	yellow.Printf("updated %s (%s)\n", emp.EmployeeID, emp.FullName())
}
