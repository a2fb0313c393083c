package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	estimationServices "github.com/chivvyhq/chivvy/internal/estimation/application/services"
	"github.com/chivvyhq/chivvy/internal/messages"
	profilesDomain "github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/chivvyhq/chivvy/internal/tasks/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var focusCmd = &cobra.Command{
	Use:   "focus [task-id]",
	Short: "Start a focus session on a task",
	Long: `Work on one task while chivvy watches the clock.

Milestone alerts fire as elapsed time crosses thresholds. If the task
has an estimate, overage alerts fire as you blow past it.

End the session with Ctrl+C, then record the damage:
  chivvy task done <task-id> --minutes <elapsed>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetTaskHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		view, err := app.GetTaskHandler.Handle(cmd.Context(), queries.GetTaskQuery{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return err
		}

		milestones, overages := true, true
		theme := profilesDomain.ThemeHinged
		if app.SettingsService != nil {
			if p, err := app.SettingsService.Get(cmd.Context(), app.CurrentUserID); err == nil {
				milestones = p.Flags.MilestoneAlerts
				overages = p.Flags.EstimateAlerts
				theme = p.Theme
			}
		}

		estimate := 0
		if view.EstimatedMinutes != nil {
			estimate = *view.EstimatedMinutes
		}

		fmt.Println()
		fmt.Println(strings.Repeat("=", 50))
		fmt.Printf("  FOCUS: %s\n", view.Title)
		if estimate > 0 {
			fmt.Printf("  estimate: %d minutes\n", estimate)
		}
		fmt.Println("  Press Ctrl+C to end the session")
		fmt.Println(strings.Repeat("=", 50))
		fmt.Println()

		start := time.Now()
		monitor := estimationServices.NewFocusMonitor(taskID, start, estimate)
		monitor.SetAlertKinds(milestones, overages)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		ticker := time.NewTicker(app.FocusPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-cmd.Context().Done():
				printSessionSummary(taskID, start)
				return nil
			case <-sigCh:
				printSessionSummary(taskID, start)
				return nil
			case now := <-ticker.C:
				alert := monitor.Check(now)
				if alert == nil {
					continue
				}
				switch alert.Kind {
				case estimationServices.AlertMilestone:
					msg := app.MessageSelector.Select(messages.ContextMilestone, theme, view.Title)
					fmt.Printf("\n  [%d min] %s\n", alert.Minutes, msg.Body)
				case estimationServices.AlertOverage:
					msg := app.MessageSelector.Select(messages.ContextOverage, theme, view.Title)
					fmt.Printf("\n  [%.1fx estimate] %s\n", alert.Ratio, msg.Body)
				}
			}
		}
	},
}

func printSessionSummary(taskID uuid.UUID, start time.Time) {
	elapsed := int(time.Since(start).Minutes())
	fmt.Println()
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("  Session ended after %d minute(s).\n", elapsed)
	fmt.Printf("  Finished? Run: chivvy task done %s --minutes %d\n", taskID, elapsed)
	fmt.Println(strings.Repeat("-", 50))
}

func init() {
	AddCommand(focusCmd)
}
