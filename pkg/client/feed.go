package client

import (
	"context"
	"sync"
)

// Feed is the in-memory view of the current user's notifications. Load
// replaces the whole list; there is no incremental merge. Mark operations
// apply optimistically so the UI reflects intent before the server answers,
// and MarkRead reverts on an explicit failure.
type Feed struct {
	mu     sync.Mutex
	client *Client
	items  []Notification
}

func NewFeed(c *Client) *Feed {
	return &Feed{client: c}
}

// Load replaces the in-memory list with the server's response for the
// filter. Entries from a previous load are never retained.
func (f *Feed) Load(ctx context.Context, filter Filter) error {
	items, err := f.client.ListNotifications(ctx, filter)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
	return nil
}

// Items returns a copy of the current list.
func (f *Feed) Items() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// UnreadCount is computed on demand; it is not cached.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// MarkRead optimistically flips the local read flag, then confirms with the
// server. On failure the previous value is restored (compensating action)
// and the error returned.
func (f *Feed) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	idx := -1
	var previous bool
	for i := range f.items {
		if f.items[i].ID == id {
			idx = i
			previous = f.items[i].IsRead
			f.items[i].IsRead = true
			break
		}
	}
	f.mu.Unlock()

	updated, err := f.client.MarkRead(ctx, id)
	if err != nil {
		if idx >= 0 {
			f.mu.Lock()
			// The list may have been replaced while the request was in
			// flight; only roll back the same record.
			if idx < len(f.items) && f.items[idx].ID == id {
				f.items[idx].IsRead = previous
			}
			f.mu.Unlock()
		}
		return err
	}

	if idx >= 0 {
		f.mu.Lock()
		if idx < len(f.items) && f.items[idx].ID == id {
			f.items[idx] = updated
		}
		f.mu.Unlock()
	}
	return nil
}

// MarkAllRead flips the read flag on every local record matching the
// optional category, then tells the server. The local mutation is kept even
// when the call fails; the error is returned for surfacing.
func (f *Feed) MarkAllRead(ctx context.Context, category string) error {
	f.mu.Lock()
	for i := range f.items {
		if category == "" || f.items[i].Category == category {
			f.items[i].IsRead = true
		}
	}
	f.mu.Unlock()

	return f.client.MarkAllRead(ctx, category)
}
