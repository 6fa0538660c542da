package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer serves a canned feed and records mutations.
type fakeServer struct {
	mu            sync.Mutex
	notifications []Notification
	failMarkRead  bool
	lastAuth      string
}

func (s *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.lastAuth = r.Header.Get("Authorization")

		unreadOnly := r.URL.Query().Get("unread") == "true"
		out := []Notification{}
		for _, n := range s.notifications {
			if unreadOnly && n.IsRead {
				continue
			}
			out = append(out, n)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": out})
	})
	mux.HandleFunc("/notifications/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/notifications/")
		if r.Method != http.MethodPatch || !strings.HasSuffix(rest, "/read") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failMarkRead {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		id := strings.TrimSuffix(rest, "/read")
		for i := range s.notifications {
			if s.notifications[i].ID == id {
				s.notifications[i].IsRead = true
				json.NewEncoder(w).Encode(s.notifications[i])
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Notification not found"})
	})
	mux.HandleFunc("/notifications/mark-all-read", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		var body struct {
			Category string `json:"category"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for i := range s.notifications {
			if body.Category == "" || s.notifications[i].Category == body.Category {
				s.notifications[i].IsRead = true
			}
		}
		json.NewEncoder(w).Encode(map[string]int{"updated": 0})
	})
	mux.HandleFunc("/notifications/send", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req SendRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Notification{
			ID:          "created-1",
			Title:       req.Title,
			Message:     req.Message,
			Status:      "pending",
			Priority:    req.Priority,
			Category:    req.Category,
			RecipientID: req.Recipients[0],
			IsRead:      false,
		})
	})
	return mux
}

func newTestClient(t *testing.T, s *fakeServer) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(s.handler())
	session := NewSession()
	session.Activate("test-token")
	return New(srv.URL, session), srv.Close
}

func feedFixture() []Notification {
	return []Notification{
		{ID: "n1", Category: "project", IsRead: true},
		{ID: "n2", Category: "project", IsRead: false},
		{ID: "n3", Category: "hr", IsRead: false},
		{ID: "n4", Category: "finance", IsRead: false},
		{ID: "n5", Category: "system", IsRead: true},
	}
}

func TestFeedLoadReplacesList(t *testing.T) {
	server := &fakeServer{notifications: feedFixture()}
	c, done := newTestClient(t, server)
	defer done()
	feed := NewFeed(c)

	// Unread-only load first, then an unfiltered load: the second result
	// must fully replace the first, retaining nothing.
	require.NoError(t, feed.Load(context.Background(), Filter{UnreadOnly: true}))
	assert.Len(t, feed.Items(), 3)

	require.NoError(t, feed.Load(context.Background(), Filter{}))
	items := feed.Items()
	assert.Len(t, items, 5)

	seen := map[string]int{}
	for _, n := range items {
		seen[n.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "duplicate entry %s", id)
	}
}

func TestFeedUnreadCount(t *testing.T) {
	server := &fakeServer{notifications: feedFixture()}
	c, done := newTestClient(t, server)
	defer done()
	feed := NewFeed(c)

	require.NoError(t, feed.Load(context.Background(), Filter{}))
	assert.Equal(t, 3, feed.UnreadCount())
}

func TestFeedMarkReadOptimisticConfirmed(t *testing.T) {
	server := &fakeServer{notifications: feedFixture()}
	c, done := newTestClient(t, server)
	defer done()
	feed := NewFeed(c)
	require.NoError(t, feed.Load(context.Background(), Filter{}))

	require.NoError(t, feed.MarkRead(context.Background(), "n2"))
	for _, n := range feed.Items() {
		if n.ID == "n2" {
			assert.True(t, n.IsRead)
		}
	}
	assert.Equal(t, 2, feed.UnreadCount())
}

func TestFeedMarkReadRollsBackOnFailure(t *testing.T) {
	server := &fakeServer{notifications: feedFixture(), failMarkRead: true}
	c, done := newTestClient(t, server)
	defer done()
	feed := NewFeed(c)
	require.NoError(t, feed.Load(context.Background(), Filter{}))

	err := feed.MarkRead(context.Background(), "n2")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	// The optimistic flip must have been reverted.
	for _, n := range feed.Items() {
		if n.ID == "n2" {
			assert.False(t, n.IsRead)
		}
	}
	assert.Equal(t, 3, feed.UnreadCount())
}

func TestFeedMarkAllReadByCategory(t *testing.T) {
	server := &fakeServer{notifications: feedFixture()}
	c, done := newTestClient(t, server)
	defer done()
	feed := NewFeed(c)
	require.NoError(t, feed.Load(context.Background(), Filter{}))

	require.NoError(t, feed.MarkAllRead(context.Background(), "project"))

	// Both project records read, the other three untouched.
	for _, n := range feed.Items() {
		switch n.ID {
		case "n1", "n2":
			assert.True(t, n.IsRead, "%s should be read", n.ID)
		case "n3", "n4":
			assert.False(t, n.IsRead, "%s should be unchanged", n.ID)
		case "n5":
			assert.True(t, n.IsRead, "%s was already read", n.ID)
		}
	}
}

func TestSendCustomNotification(t *testing.T) {
	server := &fakeServer{}
	c, done := newTestClient(t, server)
	defer done()

	n, err := c.Send(context.Background(), SendRequest{
		Title:      "Test",
		Message:    "hello",
		Recipients: []int64{1},
		Category:   "system",
		Priority:   "normal",
	})
	require.NoError(t, err)

	assert.Contains(t, []string{"pending", "sent"}, n.Status)
	assert.False(t, n.IsRead)
	assert.Equal(t, "system", n.Category)
	assert.Equal(t, int64(1), n.RecipientID)
}

func TestClientAttachesBearerToken(t *testing.T) {
	server := &fakeServer{notifications: feedFixture()}
	c, done := newTestClient(t, server)
	defer done()

	_, err := c.ListNotifications(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", server.lastAuth)
}

func TestInvalidatedSessionBlocksRequests(t *testing.T) {
	server := &fakeServer{notifications: feedFixture()}
	srv := httptest.NewServer(server.handler())
	defer srv.Close()

	session := NewSession()
	session.Activate("tok")
	session.Invalidate()
	c := New(srv.URL, session)

	_, err := c.ListNotifications(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestInitSessionOmitsHeader(t *testing.T) {
	server := &fakeServer{notifications: feedFixture()}
	srv := httptest.NewServer(server.handler())
	defer srv.Close()

	c := New(srv.URL, NewSession())
	_, err := c.ListNotifications(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, server.lastAuth)
}
