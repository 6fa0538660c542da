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

// ErrNoPreference is returned when a user has no record for a category; the
// caller substitutes models.DefaultPreference.
var ErrNoPreference = errors.New("no preference record")

const preferenceColumns = `
        id, user_id, category, channels, frequency, COALESCE(quiet_start, ''),
        COALESCE(quiet_end, ''), is_active, settings, created_at, updated_at`

func scanPreference(row interface{ Scan(...any) error }) (models.Preference, error) {
	var p models.Preference
	err := row.Scan(
		&p.ID, &p.UserID, &p.Category, &p.Channels, &p.Frequency,
		&p.QuietStart, &p.QuietEnd, &p.IsActive, &p.Settings,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (d *DB) ListPreferences(ctx context.Context, userID int64) ([]models.Preference, error) {
	query := `SELECT ` + preferenceColumns + `
        FROM notification_preferences
        WHERE user_id = $1
        ORDER BY category`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences for user %d: %w", userID, err)
	}
	defer rows.Close()

	var prefs []models.Preference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

func (d *DB) GetPreference(ctx context.Context, userID int64, category string) (models.Preference, error) {
	query := `SELECT ` + preferenceColumns + `
        FROM notification_preferences
        WHERE user_id = $1 AND category = $2`
	p, err := scanPreference(d.Pool.QueryRow(ctx, query, userID, category))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Preference{}, ErrNoPreference
		}
		return models.Preference{}, fmt.Errorf("failed to get preference for user %d category %s: %w", userID, category, err)
	}
	return p, nil
}

// UpsertPreference creates or replaces the single record for
// (user, category) and returns the stored row.
func (d *DB) UpsertPreference(ctx context.Context, p models.Preference) (models.Preference, error) {
	now := time.Now()
	query := `
        INSERT INTO notification_preferences (
            id, user_id, category, channels, frequency, quiet_start, quiet_end,
            is_active, settings, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $10)
        ON CONFLICT (user_id, category) DO UPDATE SET
            channels = EXCLUDED.channels,
            frequency = EXCLUDED.frequency,
            quiet_start = EXCLUDED.quiet_start,
            quiet_end = EXCLUDED.quiet_end,
            is_active = EXCLUDED.is_active,
            settings = EXCLUDED.settings,
            updated_at = EXCLUDED.updated_at
        RETURNING ` + preferenceColumns
	stored, err := scanPreference(d.Pool.QueryRow(ctx, query,
		uuid.New(), p.UserID, p.Category, p.Channels, p.Frequency,
		p.QuietStart, p.QuietEnd, p.IsActive, p.Settings, now))
	if err != nil {
		return models.Preference{}, fmt.Errorf("failed to upsert preference for user %d category %s: %w", p.UserID, p.Category, err)
	}
	return stored, nil
}
