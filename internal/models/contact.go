package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a per-user delivery address for one channel: an email address,
// an E.164 phone number, or a push chat id. One record per (user, channel).
// The in_app channel needs no contact; delivery goes to live sessions.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Channel   string    `json:"channel"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactInput is the body of POST /contacts.
type ContactInput struct {
	Channel string `json:"channel" binding:"required"`
	Address string `json:"address" binding:"required"`
}
