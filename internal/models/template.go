package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateVariable declares a named placeholder a template expects.
type TemplateVariable struct {
	Key      string `json:"key"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
}

// Template is a reusable title/message pattern with {{key}} placeholders.
// Names are unique; deletion is a hard delete.
type Template struct {
	ID              uuid.UUID              `json:"id"`
	Name            string                 `json:"name"`
	Category        string                 `json:"category"`
	Type            string                 `json:"type"`
	TitleTemplate   string                 `json:"title_template"`
	MessageTemplate string                 `json:"message_template"`
	Variables       []TemplateVariable     `json:"variables"`
	Channels        []string               `json:"channels"`
	Priority        Priority               `json:"priority"`
	IsActive        bool                   `json:"is_active"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// TemplateInput is the create/update body for the template CRUD endpoints.
type TemplateInput struct {
	Name            string                 `json:"name" binding:"required"`
	Category        string                 `json:"category" binding:"required"`
	Type            string                 `json:"type,omitempty"`
	TitleTemplate   string                 `json:"title_template" binding:"required"`
	MessageTemplate string                 `json:"message_template" binding:"required"`
	Variables       []TemplateVariable     `json:"variables"`
	Channels        []string               `json:"channels"`
	Priority        Priority               `json:"priority,omitempty"`
	IsActive        *bool                  `json:"is_active,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}
