package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"notification-center/internal/models"
)

const notificationColumns = `
        id, type, title, message, data, status, priority, scheduled_at, sent_at,
        retry_count, COALESCE(last_error, ''), recipient_id, channel, is_read,
        category, COALESCE(action_url, ''), metadata, created_at, updated_at`

func scanNotification(row interface{ Scan(...any) error }) (models.Notification, error) {
	var n models.Notification
	err := row.Scan(
		&n.ID, &n.Type, &n.Title, &n.Message, &n.Data, &n.Status, &n.Priority,
		&n.ScheduledAt, &n.SentAt, &n.RetryCount, &n.LastError, &n.RecipientID,
		&n.Channel, &n.IsRead, &n.Category, &n.ActionURL, &n.Metadata,
		&n.CreatedAt, &n.UpdatedAt,
	)
	return n, err
}

func (d *DB) CreateNotification(ctx context.Context, n models.Notification) error {
	query := `
        INSERT INTO notifications (
            id, type, title, message, data, status, priority, scheduled_at,
            retry_count, last_error, recipient_id, channel, is_read, category,
            action_url, metadata, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := d.Pool.Exec(ctx, query,
		n.ID, n.Type, n.Title, n.Message, n.Data, n.Status, n.Priority,
		n.ScheduledAt, n.RetryCount, n.LastError, n.RecipientID, n.Channel,
		n.IsRead, n.Category, n.ActionURL, n.Metadata, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (d *DB) GetNotification(ctx context.Context, id uuid.UUID) (models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(d.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return models.Notification{}, fmt.Errorf("failed to get notification %s: %w", id, err)
	}
	return n, nil
}

// ListNotifications returns the feed for one user, newest first, narrowed by
// the optional category/status/unread filters.
func (d *DB) ListNotifications(ctx context.Context, userID int64, f models.Filter) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`
	args := []any{userID}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.UnreadOnly {
		query += " AND is_read = FALSE"
	}
	query += " ORDER BY created_at DESC"

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", userID, err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flips is_read for one of the user's notifications and returns the
// updated record.
func (d *DB) MarkRead(ctx context.Context, id uuid.UUID, userID int64) (models.Notification, error) {
	query := `
        UPDATE notifications
        SET is_read = TRUE, updated_at = $3
        WHERE id = $1 AND recipient_id = $2
        RETURNING ` + notificationColumns
	n, err := scanNotification(d.Pool.QueryRow(ctx, query, id, userID, time.Now()))
	if err != nil {
		return models.Notification{}, fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return n, nil
}

// MarkAllRead flips is_read for every unread notification of the user,
// narrowed to one category when non-empty. Returns the number of rows
// touched.
func (d *DB) MarkAllRead(ctx context.Context, userID int64, category string) (int64, error) {
	query := `
        UPDATE notifications
        SET is_read = TRUE, updated_at = $2
        WHERE recipient_id = $1 AND is_read = FALSE`
	args := []any{userID, time.Now()}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	result, err := d.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all read for user %d: %w", userID, err)
	}
	return result.RowsAffected(), nil
}

func (d *DB) GetStats(ctx context.Context, userID int64) (models.Stats, error) {
	var s models.Stats
	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'sent'),
               COUNT(*) FILTER (WHERE status = 'pending'),
               COUNT(*) FILTER (WHERE status = 'failed'),
               COUNT(*) FILTER (WHERE is_read = FALSE)
        FROM notifications
        WHERE recipient_id = $1`
	err := d.Pool.QueryRow(ctx, query, userID).Scan(&s.Total, &s.Sent, &s.Pending, &s.Failed, &s.Unread)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to get stats for user %d: %w", userID, err)
	}
	return s, nil
}

// MarkSent records a successful delivery. sent_at is set here and nowhere
// else.
func (d *DB) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
        UPDATE notifications
        SET status = 'sent', sent_at = $2, last_error = '', updated_at = $2
        WHERE id = $1`
	if _, err := d.Pool.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to mark notification %s sent: %w", id, err)
	}
	return nil
}

func (d *DB) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `
        UPDATE notifications
        SET status = 'failed', last_error = $2, updated_at = $3
        WHERE id = $1`
	if _, err := d.Pool.Exec(ctx, query, id, lastError, time.Now()); err != nil {
		return fmt.Errorf("failed to mark notification %s failed: %w", id, err)
	}
	return nil
}

// IncrementRetry bumps retry_count and returns the notification to pending.
// Called only when a failed delivery is resubmitted.
func (d *DB) IncrementRetry(ctx context.Context, id uuid.UUID) error {
	query := `
        UPDATE notifications
        SET retry_count = retry_count + 1, status = 'pending', updated_at = $2
        WHERE id = $1`
	if _, err := d.Pool.Exec(ctx, query, id, time.Now()); err != nil {
		return fmt.Errorf("failed to increment retry for notification %s: %w", id, err)
	}
	return nil
}

// DeferUntil parks a pending notification until the given time; the
// scheduler re-queues it once due.
func (d *DB) DeferUntil(ctx context.Context, id uuid.UUID, until time.Time) error {
	query := `
        UPDATE notifications
        SET scheduled_at = $2, updated_at = $3
        WHERE id = $1 AND status = 'pending'`
	if _, err := d.Pool.Exec(ctx, query, id, until, time.Now()); err != nil {
		return fmt.Errorf("failed to defer notification %s: %w", id, err)
	}
	return nil
}

// RecordDecision merges a delivery-decision note into the metadata payload.
func (d *DB) RecordDecision(ctx context.Context, id uuid.UUID, note string) error {
	patch, err := json.Marshal(map[string]string{"delivery_decision": note})
	if err != nil {
		return fmt.Errorf("failed to encode decision note: %w", err)
	}
	query := `
        UPDATE notifications
        SET metadata = COALESCE(metadata, '{}'::jsonb) || $2::jsonb, updated_at = $3
        WHERE id = $1`
	if _, err := d.Pool.Exec(ctx, query, id, patch, time.Now()); err != nil {
		return fmt.Errorf("failed to record decision for notification %s: %w", id, err)
	}
	return nil
}

// ClaimDue atomically takes up to limit pending notifications whose
// scheduled_at has passed, clearing scheduled_at so a concurrent tick cannot
// pick them up again.
func (d *DB) ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	query := `
        UPDATE notifications
        SET scheduled_at = NULL, updated_at = $1
        WHERE id IN (
            SELECT id FROM notifications
            WHERE status = 'pending' AND scheduled_at IS NOT NULL AND scheduled_at <= $1
            ORDER BY scheduled_at
            LIMIT $2
            FOR UPDATE SKIP LOCKED
        )
        RETURNING ` + notificationColumns
	rows, err := d.Pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due notifications: %w", err)
	}
	defer rows.Close()

	var due []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due notification: %w", err)
		}
		due = append(due, n)
	}
	return due, rows.Err()
}
