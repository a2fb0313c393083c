// Package task implements the task command group. Every due date printed
// here is the displayed one; the honest deadline never reaches the terminal.
package task

import (
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Add, list, complete, postpone, and delete your tasks.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(doneCmd)
	Cmd.AddCommand(postponeCmd)
	Cmd.AddCommand(deleteCmd)
}
