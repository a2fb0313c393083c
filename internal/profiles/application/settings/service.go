// Package settings exposes read/update operations over a user's profile.
package settings

import (
	"context"
	"fmt"

	"github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/google/uuid"
)

// Service manages user profile settings.
type Service struct {
	repo domain.Repository
}

// NewService creates a settings service.
func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the user's profile.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return s.repo.Get(ctx, userID)
}

// SetTheme switches between hinged and unhinged message copy.
func (s *Service) SetTheme(ctx context.Context, userID uuid.UUID, theme domain.Theme) error {
	if theme != domain.ThemeHinged && theme != domain.ThemeUnhinged {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.update(ctx, userID, func(p *domain.Profile) {
		p.Theme = theme
	})
}

// SetChannels updates the notification channel preference.
func (s *Service) SetChannels(ctx context.Context, userID uuid.UUID, channels domain.ChannelPreference) error {
	switch channels {
	case domain.ChannelNone, domain.ChannelEmail, domain.ChannelBrowser, domain.ChannelBoth:
	default:
		return fmt.Errorf("unknown channel preference %q", channels)
	}
	return s.update(ctx, userID, func(p *domain.Profile) {
		p.Channels = channels
	})
}

// SetFlags replaces the per-feature enable flags.
func (s *Service) SetFlags(ctx context.Context, userID uuid.UUID, flags domain.FeatureFlags) error {
	return s.update(ctx, userID, func(p *domain.Profile) {
		p.Flags = flags
	})
}

// SetEmail updates the delivery address.
func (s *Service) SetEmail(ctx context.Context, userID uuid.UUID, email string) error {
	return s.update(ctx, userID, func(p *domain.Profile) {
		p.Email = email
	})
}

func (s *Service) update(ctx context.Context, userID uuid.UUID, mutate func(*domain.Profile)) error {
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	mutate(profile)
	return s.repo.Save(ctx, profile)
}
