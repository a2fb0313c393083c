// Package application holds the cross-context application-layer contracts.
package application

import "context"

// Command represents a command that modifies system state.
type Command interface {
	CommandName() string
}

// CommandHandler handles a specific command type.
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, cmd C) error
}
