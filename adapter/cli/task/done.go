package task

import (
	"fmt"

	"github.com/chivvyhq/chivvy/adapter/cli"
	"github.com/chivvyhq/chivvy/internal/messages"
	profilesDomain "github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/chivvyhq/chivvy/internal/tasks/application/commands"
	"github.com/chivvyhq/chivvy/internal/tasks/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var doneMinutes int

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Complete a task",
	Long: `Complete a task, optionally recording how long it actually took.

Recording minutes feeds the estimation feedback loop: chivvy compares
them to your estimate and tells you how wrong you were.

Examples:
  chivvy task done 4f8d...
  chivvy task done 4f8d... --minutes 130`,
	Aliases: []string{"complete"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteTaskHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		// Title for message copy, fetched before the status flips.
		title := ""
		if app.GetTaskHandler != nil {
			if v, err := app.GetTaskHandler.Handle(cmd.Context(), queries.GetTaskQuery{TaskID: taskID, UserID: app.CurrentUserID}); err == nil {
				title = v.Title
			}
		}

		completeCmd := commands.CompleteTaskCommand{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		}
		if doneMinutes > 0 {
			m := doneMinutes
			completeCmd.ActualMinutes = &m
		}

		result, err := app.CompleteTaskHandler.Handle(cmd.Context(), completeCmd)
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}

		if result.OnTime {
			fmt.Println("Done, and genuinely on time. Savor it.")
		} else {
			fmt.Println("Done. Late, but done.")
		}

		profile := currentProfile(cmd, app)
		if result.HasOutcome && profile != nil && profile.Flags.EstimateAlerts {
			printVerdict(app, profile, taskID, title, result)
		}

		return nil
	},
}

func printVerdict(app *cli.App, profile *profilesDomain.Profile, taskID uuid.UUID, title string, result *commands.CompleteTaskResult) {
	msg := app.MessageSelector.Select(messages.Context(result.Outcome), profile.Theme, title)
	fmt.Printf("\n%s\n%s\n", msg.Title, msg.Body)

	if app.Calibration == nil || result.EstimatedMinutes <= 0 {
		return
	}
	app.Calibration.Observe(taskID, float64(result.ActualMinutes)/float64(result.EstimatedMinutes))
	if accuracy, ok := app.Calibration.Accuracy(); ok {
		ctx := messages.ContextCalibBad
		if accuracy >= 70 {
			ctx = messages.ContextCalibGood
		}
		trend := app.MessageSelector.Select(ctx, profile.Theme, title)
		fmt.Printf("\n%s (%.0f%% over your last %d estimates)\n", trend.Body, accuracy, app.Calibration.Count())
	}
}

func currentProfile(cmd *cobra.Command, app *cli.App) *profilesDomain.Profile {
	if app.SettingsService == nil {
		return nil
	}
	profile, err := app.SettingsService.Get(cmd.Context(), app.CurrentUserID)
	if err != nil {
		return nil
	}
	return profile
}

func init() {
	doneCmd.Flags().IntVarP(&doneMinutes, "minutes", "m", 0, "actual minutes spent")
}
