package client

import "time"

// Wire types for the notification-center API.

type Notification struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Status      string                 `json:"status"`
	Priority    string                 `json:"priority"`
	ScheduledAt *time.Time             `json:"scheduled_at,omitempty"`
	SentAt      *time.Time             `json:"sent_at,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	LastError   string                 `json:"last_error,omitempty"`
	RecipientID int64                  `json:"recipient_id"`
	Channel     string                 `json:"channel"`
	IsRead      bool                   `json:"is_read"`
	Category    string                 `json:"category"`
	ActionURL   string                 `json:"action_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

type Preference struct {
	ID         string                 `json:"id"`
	UserID     int64                  `json:"user_id"`
	Category   string                 `json:"category"`
	Channels   []string               `json:"channels"`
	Frequency  string                 `json:"frequency"`
	QuietStart string                 `json:"quiet_start,omitempty"`
	QuietEnd   string                 `json:"quiet_end,omitempty"`
	IsActive   bool                   `json:"is_active"`
	Settings   map[string]interface{} `json:"settings,omitempty"`
}

type Stats struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
	Unread  int `json:"unread"`
}

// Filter narrows a feed load.
type Filter struct {
	Category   string
	Status     string
	UnreadOnly bool
}

// SendRequest is the body of POST /notifications/send.
type SendRequest struct {
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Recipients  []int64                `json:"recipients"`
	Type        string                 `json:"type,omitempty"`
	Priority    string                 `json:"priority,omitempty"`
	Category    string                 `json:"category,omitempty"`
	ActionURL   string                 `json:"action_url,omitempty"`
	ScheduledAt *time.Time             `json:"scheduled_at,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// QuietHours is the quiet-hours window of a preference update.
type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PreferenceUpdate is the body of PUT /notifications/preferences.
type PreferenceUpdate struct {
	Category  string `json:"category"`
	Channels  []string `json:"channels"`
	Frequency struct {
		Type string `json:"type"`
	} `json:"frequency"`
	QuietHours *QuietHours            `json:"quiet_hours,omitempty"`
	IsActive   bool                   `json:"is_active"`
	Settings   map[string]interface{} `json:"settings,omitempty"`
}
