package task

import (
	"fmt"
	"time"

	"github.com/chivvyhq/chivvy/adapter/cli"
	"github.com/chivvyhq/chivvy/internal/tasks/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var postponeUntil string

var postponeCmd = &cobra.Command{
	Use:   "postpone [task-id]",
	Short: "Silence reminders for a task",
	Long: `Postpone a task until a given time. Reminders stay quiet until then.

The deadline does not move. Postponing changes when you hear about the
task, not when it is due.

Examples:
  chivvy task postpone 4f8d... --until 2026-03-05
  chivvy task postpone 4f8d... --until "2026-03-05 09:00"`,
	Aliases: []string{"snooze"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PostponeTaskHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		until, err := parseUntil(postponeUntil)
		if err != nil {
			return err
		}

		err = app.PostponeTaskHandler.Handle(cmd.Context(), commands.PostponeTaskCommand{
			TaskID: taskID,
			UserID: app.CurrentUserID,
			Until:  until,
		})
		if err != nil {
			return fmt.Errorf("failed to postpone task: %w", err)
		}

		fmt.Printf("Postponed until %s. The deadline hasn't moved, just your peace of mind.\n",
			until.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func parseUntil(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing --until (use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")")
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --until %q (use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")", value)
	}
	return t, nil
}

func init() {
	postponeCmd.Flags().StringVar(&postponeUntil, "until", "", "silence reminders until (YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")")
}
