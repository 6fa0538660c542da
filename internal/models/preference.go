package models

import (
	"time"

	"github.com/google/uuid"
)

// Frequency controls how often notifications in a category are delivered.
type Frequency string

const (
	FrequencyImmediate Frequency = "immediate"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyNever     Frequency = "never"
)

// Preference is the per-user, per-category delivery configuration. Exactly
// one record exists per (user, category) pair; a missing record means
// DefaultPreference applies. Quiet hours are "HH:MM" wall-clock strings; an
// end before the start wraps past midnight.
type Preference struct {
	ID         uuid.UUID              `json:"id"`
	UserID     int64                  `json:"user_id"`
	Category   string                 `json:"category"`
	Channels   []string               `json:"channels"`
	Frequency  Frequency              `json:"frequency"`
	QuietStart string                 `json:"quiet_start,omitempty"`
	QuietEnd   string                 `json:"quiet_end,omitempty"`
	IsActive   bool                   `json:"is_active"`
	Settings   map[string]interface{} `json:"settings,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// DefaultPreference is the documented fallback when a user has no record for
// a category: email and in_app enabled, immediate delivery, no quiet hours.
func DefaultPreference(userID int64, category string) Preference {
	return Preference{
		UserID:    userID,
		Category:  category,
		Channels:  []string{ChannelEmail, ChannelInApp},
		Frequency: FrequencyImmediate,
		IsActive:  true,
	}
}

// HasChannel reports whether the channel is in the enabled set.
func (p Preference) HasChannel(channel string) bool {
	for _, c := range p.Channels {
		if c == channel {
			return true
		}
	}
	return false
}

// PreferenceUpdate is the body of PUT /notifications/preferences. The call is
// an upsert keyed on (authenticated user, category).
type PreferenceUpdate struct {
	Category  string                 `json:"category" binding:"required"`
	Channels  []string               `json:"channels" binding:"required"`
	Frequency struct {
		Type Frequency `json:"type" binding:"required"`
	} `json:"frequency" binding:"required"`
	QuietHours *struct {
		Start string `json:"start" binding:"required"`
		End   string `json:"end" binding:"required"`
	} `json:"quiet_hours,omitempty"`
	IsActive bool                   `json:"is_active"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}
