// Package render expands {{key}} placeholders in notification templates.
package render

import (
	"strings"

	"notification-center/internal/models"
)

// Render produces a concrete title and message from a template and a data
// map. For each declared variable, every {{key}} occurrence is replaced by
// data[key], falling back to the variable's default, falling back to the
// literal text {key}. Placeholders with no declared variable are left as-is.
func Render(t models.Template, data map[string]string) (title, message string) {
	title = t.TitleTemplate
	message = t.MessageTemplate
	for _, v := range t.Variables {
		val, ok := data[v.Key]
		if !ok {
			if v.Default != "" {
				val = v.Default
			} else {
				val = "{" + v.Key + "}"
			}
		}
		placeholder := "{{" + v.Key + "}}"
		title = strings.ReplaceAll(title, placeholder, val)
		message = strings.ReplaceAll(message, placeholder, val)
	}
	return title, message
}

// MissingRequired lists declared required variables absent from data. Callers
// reject a send rather than delivering a message with {key} gaps.
func MissingRequired(t models.Template, data map[string]string) []string {
	var missing []string
	for _, v := range t.Variables {
		if !v.Required {
			continue
		}
		if _, ok := data[v.Key]; !ok {
			missing = append(missing, v.Key)
		}
	}
	return missing
}
