package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines storage for user profiles.
type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Save(ctx context.Context, profile *Profile) error
	// ListNotifiable returns profiles with at least one channel enabled.
	ListNotifiable(ctx context.Context) ([]*Profile, error)
}
