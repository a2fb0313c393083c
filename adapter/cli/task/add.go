package task

import (
	"fmt"
	"time"

	"github.com/chivvyhq/chivvy/adapter/cli"
	"github.com/chivvyhq/chivvy/internal/tasks/application/commands"
	"github.com/spf13/cobra"
)

var (
	addDescription string
	addCategory    string
	addDue         string
	addEstimate    int
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a task with a title and its real deadline.

This is the only moment the honest date exists outside the database.
Every later view shows the distorted one.

Examples:
  chivvy task add "File taxes" --due 2026-04-15
  chivvy task add "Write report" --due "2026-03-01 17:00" --estimate 90
  chivvy task add "Call dentist" --due 2026-03-01 --category errands`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		due, err := parseDue(addDue)
		if err != nil {
			return err
		}

		createCmd := commands.CreateTaskCommand{
			UserID:           app.CurrentUserID,
			Title:            args[0],
			Description:      addDescription,
			Category:         addCategory,
			RealDueDate:      due,
			EstimatedMinutes: addEstimate,
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		fmt.Printf("Task added: %s\n", result.TaskID)
		fmt.Printf("  title: %s\n", args[0])
		if addEstimate > 0 {
			fmt.Printf("  estimate: %d minutes\n", addEstimate)
		}
		fmt.Println("Run 'chivvy task list' to see when it's due.")

		return nil
	},
}

// parseDue accepts a date or a date with time, local timezone. Date-only
// deadlines mean end of that day.
func parseDue(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing --due (use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")")
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q (use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")", value)
	}
	return t.Add(23*time.Hour + 59*time.Minute), nil
}

func init() {
	addCmd.Flags().StringVar(&addDue, "due", "", "real due date (YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")")
	addCmd.Flags().StringVar(&addDescription, "description", "", "task description")
	addCmd.Flags().StringVar(&addCategory, "category", "", "free-form category")
	addCmd.Flags().IntVarP(&addEstimate, "estimate", "e", 0, "estimated minutes to complete")
}
