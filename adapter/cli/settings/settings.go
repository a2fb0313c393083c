// Package settings implements the settings command group.
package settings

import (
	"errors"
	"fmt"

	"github.com/chivvyhq/chivvy/adapter/cli"
	"github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/spf13/cobra"
)

// Cmd is the settings command group.
var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage user settings",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		p, err := app.SettingsService.Get(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return err
		}

		fmt.Printf("theme:     %s\n", p.Theme)
		fmt.Printf("channels:  %s\n", p.Channels)
		email := p.Email
		if email == "" {
			email = "(not set)"
		}
		fmt.Printf("email:     %s\n", email)
		fmt.Println("flags:")
		fmt.Printf("  milestone_alerts: %t\n", p.Flags.MilestoneAlerts)
		fmt.Printf("  estimate_alerts:  %t\n", p.Flags.EstimateAlerts)
		fmt.Printf("  pick_for_me:      %t\n", p.Flags.PickForMe)
		fmt.Printf("  escalation:       %t\n", p.Flags.Escalation)
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme [hinged|unhinged]",
	Short: "Switch message tone",
	Long: `Switch between message themes.

hinged is stern but professional. unhinged is not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		if err := app.SettingsService.SetTheme(cmd.Context(), app.CurrentUserID, domain.Theme(args[0])); err != nil {
			return err
		}
		fmt.Printf("Theme set to %s.\n", args[0])
		return nil
	},
}

var channelsCmd = &cobra.Command{
	Use:   "channels [none|email|browser|both]",
	Short: "Choose notification channels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		if err := app.SettingsService.SetChannels(cmd.Context(), app.CurrentUserID, domain.ChannelPreference(args[0])); err != nil {
			return err
		}
		fmt.Printf("Channels set to %s.\n", args[0])
		return nil
	},
}

var emailCmd = &cobra.Command{
	Use:   "email [address]",
	Short: "Set the delivery address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		if err := app.SettingsService.SetEmail(cmd.Context(), app.CurrentUserID, args[0]); err != nil {
			return err
		}
		fmt.Println("Email saved.")
		return nil
	},
}

var (
	flagMilestones bool
	flagEstimates  bool
	flagPick       bool
	flagEscalation bool
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Toggle features",
	Long: `Toggle per-feature flags. Only flags you pass change.

Examples:
  chivvy settings flags --pick=false
  chivvy settings flags --milestones=false --estimates=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		p, err := app.SettingsService.Get(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return err
		}

		flags := p.Flags
		if cmd.Flags().Changed("milestones") {
			flags.MilestoneAlerts = flagMilestones
		}
		if cmd.Flags().Changed("estimates") {
			flags.EstimateAlerts = flagEstimates
		}
		if cmd.Flags().Changed("pick") {
			flags.PickForMe = flagPick
		}
		if cmd.Flags().Changed("escalation") {
			flags.Escalation = flagEscalation
		}

		if err := app.SettingsService.SetFlags(cmd.Context(), app.CurrentUserID, flags); err != nil {
			return err
		}
		fmt.Println("Flags updated.")
		return nil
	},
}

func requireApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.SettingsService == nil {
		return nil, errors.New("application not initialized")
	}
	return app, nil
}

func init() {
	flagsCmd.Flags().BoolVar(&flagMilestones, "milestones", true, "milestone alerts during focus sessions")
	flagsCmd.Flags().BoolVar(&flagEstimates, "estimates", true, "estimate overage alerts and verdicts")
	flagsCmd.Flags().BoolVar(&flagPick, "pick", true, "pick-for-me")
	flagsCmd.Flags().BoolVar(&flagEscalation, "escalation", true, "pick-for-me escalation")

	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(themeCmd)
	Cmd.AddCommand(channelsCmd)
	Cmd.AddCommand(emailCmd)
	Cmd.AddCommand(flagsCmd)
}
