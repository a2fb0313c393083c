package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrStateNotFound = errors.New("pick state not found")

// StateRepository persists per-user pick-for-me state. Load-before-decide,
// save-after-mutate; the stored shape is an internal schema.
type StateRepository interface {
	Load(ctx context.Context, userID uuid.UUID) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, userID uuid.UUID) error
}
