package task

import (
	"fmt"

	"github.com/chivvyhq/chivvy/adapter/cli"
	"github.com/chivvyhq/chivvy/internal/tasks/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTaskHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		v, err := app.GetTaskHandler.Handle(cmd.Context(), queries.GetTaskQuery{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", v.Title)
		fmt.Printf("  id:        %s\n", v.ID)
		if v.Description != "" {
			fmt.Printf("  notes:     %s\n", v.Description)
		}
		if v.Category != "" {
			fmt.Printf("  category:  %s\n", v.Category)
		}
		fmt.Printf("  status:    %s\n", v.Status)
		if v.CompletedAt != nil {
			fmt.Printf("  completed: %s\n", v.CompletedAt.Local().Format("2006-01-02 15:04"))
		} else {
			fmt.Printf("  due:       %s (%s)\n", v.DueDate.Local().Format("2006-01-02 15:04"), v.Remaining)
			fmt.Printf("  urgency:   %s\n", v.Urgency)
		}
		if v.EstimatedMinutes != nil {
			fmt.Printf("  estimate:  %d minutes\n", *v.EstimatedMinutes)
		}

		return nil
	},
}
