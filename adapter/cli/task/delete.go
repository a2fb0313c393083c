package task

import (
	"fmt"

	"github.com/chivvyhq/chivvy/adapter/cli"
	"github.com/chivvyhq/chivvy/internal/tasks/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Short:   "Delete a task",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteTaskHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		err = app.DeleteTaskHandler.Handle(cmd.Context(), commands.DeleteTaskCommand{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		fmt.Println("Task deleted. It never happened.")
		return nil
	},
}
