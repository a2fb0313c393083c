package task

import (
	"fmt"
	"strings"

	"github.com/chivvyhq/chivvy/adapter/cli"
	"github.com/chivvyhq/chivvy/internal/tasks/application/queries"
	"github.com/spf13/cobra"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks ordered by due date, most urgent first.

Examples:
  chivvy task list          # Pending tasks
  chivvy task list --all    # Including completed`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTasksHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		views, err := app.ListTasksHandler.Handle(cmd.Context(), queries.ListTasksQuery{
			UserID:      app.CurrentUserID,
			PendingOnly: !listAll,
		})
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if len(views) == 0 {
			fmt.Println("No tasks. Enjoy it while it lasts.")
			return nil
		}

		fmt.Printf("%-36s  %-30s  %-16s  %-10s  %s\n", "ID", "TITLE", "DUE", "URGENCY", "REMAINING")
		fmt.Println(strings.Repeat("-", 110))
		for _, v := range views {
			title := v.Title
			if len(title) > 30 {
				title = title[:27] + "..."
			}
			if v.CompletedAt != nil {
				fmt.Printf("%-36s  %-30s  %-16s  %-10s  done\n",
					v.ID, title, v.CompletedAt.Local().Format("2006-01-02 15:04"), "-")
				continue
			}
			fmt.Printf("%-36s  %-30s  %-16s  %-10s  %s\n",
				v.ID, title, v.DueDate.Local().Format("2006-01-02 15:04"), v.Urgency, v.Remaining)
		}

		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include completed tasks")
}
