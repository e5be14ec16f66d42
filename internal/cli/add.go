package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/kilupskalvis/hrsync/internal/models"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <employee-id>",
	Short: "Add a new employee to the HR system",
	Long: `Add a new employee to the HR source-of-record store.

The insert and its INSERT change event commit in one transaction, so the
change is guaranteed to be picked up by the next extraction.`,
	Args: cobra.ExactArgs(1),
	Run:  runAdd,
}

var (
	addFirstName  string
	addLastName   string
	addEmail      string
	addDepartment string
	addPosition   string
	addSalary     float64
)

func init() {
	addCmd.Flags().StringVar(&addFirstName, "first-name", "", "First name (required)")
	addCmd.Flags().StringVar(&addLastName, "last-name", "", "Last name (required)")
	addCmd.Flags().StringVar(&addEmail, "email", "", "Email, unique across employees (required)")
	addCmd.Flags().StringVar(&addDepartment, "department", "", "Department")
	addCmd.Flags().StringVar(&addPosition, "position", "", "Position")
	addCmd.Flags().Float64Var(&addSalary, "salary", 0, "Salary")
	addCmd.MarkFlagRequired("first-name")
	addCmd.MarkFlagRequired("last-name")
	addCmd.MarkFlagRequired("email")
}

func runAdd(cmd *cobra.Command, args []string) {
	c := initSourceContext()
	defer c.Close()

	emp := &models.Employee{
		EmployeeID: args[0],
		FirstName:  addFirstName,
		LastName:   addLastName,
		Email:      addEmail,
		Department: addDepartment,
		Position:   addPosition,
		Salary:     addSalary,
		Status:     models.StatusActive,
	}

	if err := c.Source.CreateEmployee(context.Background(), emp); err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("added %s (%s)\n", emp.EmployeeID, emp.FullName())
}
