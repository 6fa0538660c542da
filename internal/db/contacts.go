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

// ErrNoContact is returned when a user has no registered address for a
// channel.
var ErrNoContact = errors.New("no contact registered")

const contactColumns = `id, user_id, channel, address, created_at, updated_at`

func scanContact(row interface{ Scan(...any) error }) (models.Contact, error) {
	var c models.Contact
	err := row.Scan(&c.ID, &c.UserID, &c.Channel, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// UpsertContact creates or replaces the address for (user, channel).
func (d *DB) UpsertContact(ctx context.Context, c models.Contact) (models.Contact, error) {
	now := time.Now()
	query := `
        INSERT INTO notification_contacts (id, user_id, channel, address, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $5)
        ON CONFLICT (user_id, channel) DO UPDATE SET
            address = EXCLUDED.address,
            updated_at = EXCLUDED.updated_at
        RETURNING ` + contactColumns
	stored, err := scanContact(d.Pool.QueryRow(ctx, query, uuid.New(), c.UserID, c.Channel, c.Address, now))
	if err != nil {
		return models.Contact{}, fmt.Errorf("failed to upsert contact for user %d channel %s: %w", c.UserID, c.Channel, err)
	}
	return stored, nil
}

func (d *DB) GetContact(ctx context.Context, userID int64, channel string) (models.Contact, error) {
	query := `SELECT ` + contactColumns + `
        FROM notification_contacts
        WHERE user_id = $1 AND channel = $2`
	c, err := scanContact(d.Pool.QueryRow(ctx, query, userID, channel))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Contact{}, ErrNoContact
		}
		return models.Contact{}, fmt.Errorf("failed to get contact for user %d channel %s: %w", userID, channel, err)
	}
	return c, nil
}

func (d *DB) ListContacts(ctx context.Context, userID int64) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + `
        FROM notification_contacts
        WHERE user_id = $1
        ORDER BY channel`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts for user %d: %w", userID, err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
