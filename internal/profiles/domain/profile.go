// Package domain defines the per-user profile consumed by the distortion and
// notification engines. The reliability score is maintained elsewhere; here it
// is only a read input.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("profile not found")

// Theme selects which flavor of message copy the user receives. It affects
// content selection only, never engine logic.
type Theme string

const (
	ThemeHinged   Theme = "hinged"
	ThemeUnhinged Theme = "unhinged"
)

// ChannelPreference controls which transports may reach the user.
type ChannelPreference string

const (
	ChannelNone    ChannelPreference = "none"
	ChannelEmail   ChannelPreference = "email"
	ChannelBrowser ChannelPreference = "browser"
	ChannelBoth    ChannelPreference = "both"
)

// WantsEmail reports whether email sends are allowed.
func (c ChannelPreference) WantsEmail() bool {
	return c == ChannelEmail || c == ChannelBoth
}

// WantsBrowser reports whether browser push sends are allowed.
func (c ChannelPreference) WantsBrowser() bool {
	return c == ChannelBrowser || c == ChannelBoth
}

// FeatureFlags gates the optional engines per user.
type FeatureFlags struct {
	MilestoneAlerts bool `json:"milestone_alerts"`
	EstimateAlerts  bool `json:"estimate_alerts"`
	PickForMe       bool `json:"pick_for_me"`
	Escalation      bool `json:"escalation"`
}

// Profile holds a user's settings and reliability score.
type Profile struct {
	UserID           uuid.UUID
	Email            string
	ReliabilityScore float64 // 0-100, higher = less lying
	Theme            Theme
	Channels         ChannelPreference
	Flags            FeatureFlags
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewProfile creates a profile with the defaults applied at signup.
func NewProfile(userID uuid.UUID, email string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		UserID:           userID,
		Email:            strings.TrimSpace(email),
		ReliabilityScore: 50,
		Theme:            ThemeHinged,
		Channels:         ChannelBoth,
		Flags: FeatureFlags{
			MilestoneAlerts: true,
			EstimateAlerts:  true,
			PickForMe:       true,
			Escalation:      true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasValidEmail reports whether the stored address is plausibly deliverable.
// The notifier skips rather than crashes on a bad address.
func (p *Profile) HasValidEmail() bool {
	at := strings.Index(p.Email, "@")
	return at > 0 && at < len(p.Email)-1 && !strings.ContainsAny(p.Email, " \t")
}

// Notifiable reports whether any notification channel is enabled.
func (p *Profile) Notifiable() bool {
	return p.Channels != ChannelNone
}
