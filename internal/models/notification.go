package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the delivery state of a notification.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Priority orders notifications for display; it does not affect dispatch order.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification is a single delivered or pending message for one recipient on
// one channel. sent_at is set only when status transitions to "sent";
// retry_count increments only when a failed delivery is resubmitted.
type Notification struct {
	ID          uuid.UUID              `json:"id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Status      Status                 `json:"status"`
	Priority    Priority               `json:"priority"`
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

// SendRequest is the body of POST /notifications/send and the payload shape
// consumed from the Kafka send topic.
type SendRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Message     string                 `json:"message" binding:"required"`
	Recipients  []int64                `json:"recipients" binding:"required,min=1"`
	Type        string                 `json:"type,omitempty"`
	Priority    Priority               `json:"priority,omitempty"`
	Category    string                 `json:"category,omitempty"`
	ActionURL   string                 `json:"action_url,omitempty"`
	ScheduledAt *time.Time             `json:"scheduled_at,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// TemplateSendRequest is the body of POST /notifications/send-template.
type TemplateSendRequest struct {
	TemplateName string            `json:"template_name" binding:"required"`
	Recipients   []int64           `json:"recipients" binding:"required,min=1"`
	Data         map[string]string `json:"data"`
}

// Stats are per-user aggregate counts for the notification bell.
type Stats struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
	Unread  int `json:"unread"`
}

// Filter narrows a feed listing.
type Filter struct {
	Category   string
	Status     Status
	UnreadOnly bool
}
