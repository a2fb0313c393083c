// Package pick implements the pick-for-me command group.
package pick

import (
	"errors"
	"fmt"

	"github.com/chivvyhq/chivvy/adapter/cli"
	"github.com/chivvyhq/chivvy/internal/messages"
	pickerServices "github.com/chivvyhq/chivvy/internal/picker/application/services"
	pickerDomain "github.com/chivvyhq/chivvy/internal/picker/domain"
	profilesDomain "github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/spf13/cobra"
)

// Cmd is the pick command group. Invoked bare it picks a task.
var Cmd = &cobra.Command{
	Use:   "pick",
	Short: "Let chivvy pick your next task",
	Long: `Pick a task to work on, weighted toward what's closest to blowing up.

Asking again without finishing the first pick has consequences.

Examples:
  chivvy pick            # Pick a task
  chivvy pick dismiss    # Reject the current pick
  chivvy pick exit       # Bail out of single-task lockdown
  chivvy pick status     # Where you stand`,
	RunE: runPick,
}

func runPick(cmd *cobra.Command, args []string) error {
	app := cli.GetApp()
	if app == nil || app.PickerEngine == nil {
		return fmt.Errorf("application not initialized")
	}

	theme := currentTheme(cmd, app)

	result, err := app.PickerEngine.Pick(cmd.Context(), app.CurrentUserID)
	if errors.Is(err, pickerServices.ErrEscalationLocked) {
		fmt.Println("No. You picked, you re-picked, and now you finish what's in front of you.")
		printEarnOut(app.PickerEngine.State(cmd.Context(), app.CurrentUserID))
		return nil
	}
	if errors.Is(err, pickerServices.ErrNoPendingTasks) {
		fmt.Println("Nothing to pick from. Add a task first.")
		return nil
	}
	if err != nil {
		return err
	}

	if allOverdue, _ := app.PickerEngine.AllOverdue(cmd.Context(), app.CurrentUserID); allOverdue {
		msg := app.MessageSelector.Select(messages.ContextAllOverdue, theme, result.Task.Title())
		fmt.Printf("%s\n\n", msg.Body)
	}

	ctxKey := messages.ContextPick
	if result.State.Mode == pickerDomain.ModeEscalated {
		ctxKey = messages.ContextEscalation
	}
	msg := app.MessageSelector.Select(ctxKey, theme, result.Task.Title())
	fmt.Printf("%s\n\n", msg.Body)

	fmt.Printf("  -> %s\n", result.Task.Title())
	fmt.Printf("     id: %s\n", result.Task.ID())
	for _, reason := range result.Reasons {
		fmt.Printf("     %s\n", reason)
	}
	if result.State.Mode == pickerDomain.ModeEscalated {
		printEarnOut(result.State)
	}

	return nil
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Reject the current pick",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PickerEngine == nil {
			return fmt.Errorf("application not initialized")
		}

		result, err := app.PickerEngine.Dismiss(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return err
		}

		if result.Task == nil {
			fmt.Println("Pick cleared. Choose your own adventure.")
			return nil
		}

		// Escalated: dismissal just cycles to the next candidate.
		theme := currentTheme(cmd, app)
		msg := app.MessageSelector.Select(messages.ContextEscalation, theme, result.Task.Title())
		fmt.Printf("%s\n\n", msg.Body)
		fmt.Printf("  -> %s\n", result.Task.Title())
		fmt.Printf("     id: %s\n", result.Task.ID())
		printEarnOut(result.State)
		return nil
	},
}

var exitCmd = &cobra.Command{
	Use:   "exit",
	Short: "Bail out of single-task lockdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PickerEngine == nil {
			return fmt.Errorf("application not initialized")
		}

		state := app.PickerEngine.State(cmd.Context(), app.CurrentUserID)
		if state.Mode != pickerDomain.ModeEscalated {
			fmt.Println("You're not in lockdown. Nothing to exit.")
			return nil
		}

		if err := app.PickerEngine.ExitEscalation(cmd.Context(), app.CurrentUserID); err != nil {
			return err
		}
		fmt.Println("Fine. Lockdown lifted. We both know what happened here.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pick-for-me state",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PickerEngine == nil {
			return fmt.Errorf("application not initialized")
		}

		state := app.PickerEngine.State(cmd.Context(), app.CurrentUserID)
		switch state.Mode {
		case pickerDomain.ModeEscalated:
			fmt.Println("mode: escalated (single-task lockdown)")
			printEarnOut(state)
		case pickerDomain.ModeSinglePicked:
			fmt.Println("mode: picked")
			if state.PickedTaskID != nil {
				fmt.Printf("  current pick: %s\n", *state.PickedTaskID)
			}
		default:
			fmt.Println("mode: idle")
		}

		if ok, err := app.PickerEngine.CanUsePick(cmd.Context(), app.CurrentUserID); err == nil && !ok {
			fmt.Println("  picking unavailable (needs the feature on, two pending tasks, and no lockdown)")
		}
		return nil
	},
}

func printEarnOut(state *pickerDomain.State) {
	remaining := state.TasksToComplete - state.CompletionsSoFar
	if remaining < 0 {
		remaining = 0
	}
	fmt.Printf("     finish %d more task(s) to unlock picking again\n", remaining)
}

func currentTheme(cmd *cobra.Command, app *cli.App) profilesDomain.Theme {
	if app.SettingsService != nil {
		if profile, err := app.SettingsService.Get(cmd.Context(), app.CurrentUserID); err == nil {
			return profile.Theme
		}
	}
	return profilesDomain.ThemeHinged
}

func init() {
	Cmd.AddCommand(dismissCmd)
	Cmd.AddCommand(exitCmd)
	Cmd.AddCommand(statusCmd)
}
