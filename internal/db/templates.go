package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"notification-center/internal/models"
)

// ErrTemplateNotFound is returned for lookups by id or name with no match.
var ErrTemplateNotFound = errors.New("template not found")

const templateColumns = `
        id, name, category, COALESCE(type, ''), title_template, message_template,
        variables, channels, priority, is_active, metadata, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (models.Template, error) {
	var t models.Template
	err := row.Scan(
		&t.ID, &t.Name, &t.Category, &t.Type, &t.TitleTemplate,
		&t.MessageTemplate, &t.Variables, &t.Channels, &t.Priority,
		&t.IsActive, &t.Metadata, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (d *DB) CreateTemplate(ctx context.Context, t models.Template) error {
	query := `
        INSERT INTO notification_templates (
            id, name, category, type, title_template, message_template,
            variables, channels, priority, is_active, metadata, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := d.Pool.Exec(ctx, query,
		t.ID, t.Name, t.Category, t.Type, t.TitleTemplate, t.MessageTemplate,
		t.Variables, t.Channels, t.Priority, t.IsActive, t.Metadata,
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create template %s: %w", t.Name, err)
	}
	return nil
}

func (d *DB) UpdateTemplate(ctx context.Context, t models.Template) (models.Template, error) {
	query := `
        UPDATE notification_templates
        SET name = $2, category = $3, type = $4, title_template = $5,
            message_template = $6, variables = $7, channels = $8,
            priority = $9, is_active = $10, metadata = $11, updated_at = $12
        WHERE id = $1
        RETURNING ` + templateColumns
	stored, err := scanTemplate(d.Pool.QueryRow(ctx, query,
		t.ID, t.Name, t.Category, t.Type, t.TitleTemplate, t.MessageTemplate,
		t.Variables, t.Channels, t.Priority, t.IsActive, t.Metadata, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Template{}, ErrTemplateNotFound
		}
		return models.Template{}, fmt.Errorf("failed to update template %s: %w", t.ID, err)
	}
	return stored, nil
}

func (d *DB) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM notification_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (d *DB) GetTemplate(ctx context.Context, id uuid.UUID) (models.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM notification_templates WHERE id = $1`
	t, err := scanTemplate(d.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Template{}, ErrTemplateNotFound
		}
		return models.Template{}, fmt.Errorf("failed to get template %s: %w", id, err)
	}
	return t, nil
}

func (d *DB) GetTemplateByName(ctx context.Context, name string) (models.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM notification_templates WHERE name = $1`
	t, err := scanTemplate(d.Pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Template{}, ErrTemplateNotFound
		}
		return models.Template{}, fmt.Errorf("failed to get template %q: %w", name, err)
	}
	return t, nil
}

func (d *DB) ListTemplates(ctx context.Context) ([]models.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM notification_templates ORDER BY name`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
