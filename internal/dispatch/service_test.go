package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-center/internal/config"
	"notification-center/internal/db"
	"notification-center/internal/models"
)

type fakeStore struct {
	mu        sync.Mutex
	created   []models.Notification
	prefs     map[string]models.Preference
	contacts  map[string]models.Contact
	sent      []uuid.UUID
	failed    map[uuid.UUID]string
	deferred  map[uuid.UUID]time.Time
	decisions map[uuid.UUID]string
	retried   []uuid.UUID
	due       []models.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prefs:     map[string]models.Preference{},
		contacts:  map[string]models.Contact{},
		failed:    map[uuid.UUID]string{},
		deferred:  map[uuid.UUID]time.Time{},
		decisions: map[uuid.UUID]string{},
	}
}

func prefKey(userID int64, category string) string {
	return fmt.Sprintf("%d/%s", userID, category)
}

func (f *fakeStore) CreateNotification(_ context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, n)
	return nil
}

func (f *fakeStore) GetPreference(_ context.Context, userID int64, category string) (models.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[prefKey(userID, category)]
	if !ok {
		return models.Preference{}, db.ErrNoPreference
	}
	return p, nil
}

func (f *fakeStore) GetContact(_ context.Context, userID int64, channel string) (models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[prefKey(userID, channel)]
	if !ok {
		return models.Contact{}, db.ErrNoContact
	}
	return c, nil
}

func (f *fakeStore) MarkSent(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, id uuid.UUID, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = lastError
	return nil
}

func (f *fakeStore) DeferUntil(_ context.Context, id uuid.UUID, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deferred[id] = until
	return nil
}

func (f *fakeStore) RecordDecision(_ context.Context, id uuid.UUID, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions[id] = note
	return nil
}

func (f *fakeStore) IncrementRetry(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retried = append(f.retried, id)
	return nil
}

func (f *fakeStore) ClaimDue(_ context.Context, _ time.Time, _ int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	due := f.due
	f.due = nil
	return due, nil
}

type fakeProvider struct {
	mu        sync.Mutex
	sent      []models.Notification
	addresses []string
	err       error
}

func (p *fakeProvider) Send(_ context.Context, n models.Notification, address string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, n)
	p.addresses = append(p.addresses, address)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.Dispatch.QueueSize = 32
	cfg.Dispatch.MaxWorkers = 1
	cfg.Dispatch.MaxAttempts = 1
	return cfg
}

func newTestService(store Store, providers map[string]Provider) *Service {
	return New(store, testLogger(), testConfig(), providers, nil)
}

func TestIngestCreatesOnePerRecipient(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	created, err := svc.Ingest(context.Background(), models.SendRequest{
		Title:      "Test",
		Message:    "hello",
		Recipients: []int64{1, 2, 3},
		Category:   models.CategorySystem,
		Priority:   models.PriorityNormal,
	}, "http")
	require.NoError(t, err)
	require.Len(t, created, 3)

	for _, n := range created {
		assert.Equal(t, models.StatusPending, n.Status)
		assert.False(t, n.IsRead)
		assert.Equal(t, models.CategorySystem, n.Category)
		assert.Equal(t, models.ChannelInApp, n.Channel)
		assert.Nil(t, n.SentAt)
		assert.Zero(t, n.RetryCount)
	}
	assert.Len(t, store.created, 3)
	assert.Len(t, svc.tasks, 3)
}

func TestIngestRejectsUnknownCategory(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)

	_, err := svc.Ingest(context.Background(), models.SendRequest{
		Title:      "Test",
		Message:    "hello",
		Recipients: []int64{1},
		Category:   "gossip",
	}, "http")
	assert.Error(t, err)
}

func TestIngestLeavesScheduledForScheduler(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	future := time.Now().Add(time.Hour)
	created, err := svc.Ingest(context.Background(), models.SendRequest{
		Title:       "Later",
		Message:     "hello",
		Recipients:  []int64{1},
		ScheduledAt: &future,
	}, "http")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Len(t, svc.tasks, 0)
	assert.Len(t, store.created, 1)
}

func TestHandleTaskDeliversWithContactAddress(t *testing.T) {
	store := newFakeStore()
	store.prefs[prefKey(1, models.CategoryProject)] = models.Preference{
		UserID: 1, Category: models.CategoryProject,
		Channels: []string{models.ChannelEmail}, Frequency: models.FrequencyImmediate, IsActive: true,
	}
	store.contacts[prefKey(1, models.ChannelEmail)] = models.Contact{
		UserID: 1, Channel: models.ChannelEmail, Address: "kim@example.com",
	}
	provider := &fakeProvider{}
	svc := newTestService(store, map[string]Provider{models.ChannelEmail: provider})

	n := models.Notification{
		ID: uuid.New(), RecipientID: 1, Channel: models.ChannelEmail,
		Category: models.CategoryProject, Status: models.StatusPending,
	}
	svc.handleTask(models.Task{Notification: n})

	require.Len(t, provider.sent, 1)
	assert.Equal(t, "kim@example.com", provider.addresses[0])
	assert.Equal(t, []uuid.UUID{n.ID}, store.sent)
	assert.Empty(t, store.failed)
}

func TestHandleTaskFailsWithoutContact(t *testing.T) {
	store := newFakeStore()
	store.prefs[prefKey(1, models.CategoryProject)] = models.Preference{
		UserID: 1, Category: models.CategoryProject,
		Channels: []string{models.ChannelSMS}, Frequency: models.FrequencyImmediate, IsActive: true,
	}
	provider := &fakeProvider{}
	svc := newTestService(store, map[string]Provider{models.ChannelSMS: provider})

	n := models.Notification{ID: uuid.New(), RecipientID: 1, Channel: models.ChannelSMS, Category: models.CategoryProject}
	svc.handleTask(models.Task{Notification: n})

	assert.Empty(t, provider.sent)
	assert.Contains(t, store.failed[n.ID], "no sms contact")
}

func TestHandleTaskProviderFailureMarksFailed(t *testing.T) {
	store := newFakeStore()
	store.contacts[prefKey(1, models.ChannelEmail)] = models.Contact{UserID: 1, Channel: models.ChannelEmail, Address: "a@b.c"}
	provider := &fakeProvider{err: errors.New("smtp down")}
	svc := newTestService(store, map[string]Provider{models.ChannelEmail: provider})

	// Default preference enables email, so delivery is attempted.
	n := models.Notification{ID: uuid.New(), RecipientID: 1, Channel: models.ChannelEmail, Category: models.CategorySystem}
	svc.handleTask(models.Task{Notification: n})

	assert.Empty(t, store.sent)
	assert.Contains(t, store.failed[n.ID], "smtp down")
}

func TestHandleTaskInactivePreferenceSuppresses(t *testing.T) {
	store := newFakeStore()
	store.prefs[prefKey(1, models.CategoryFinance)] = models.Preference{
		UserID: 1, Category: models.CategoryFinance,
		Channels: []string{models.ChannelEmail}, Frequency: models.FrequencyImmediate, IsActive: false,
	}
	provider := &fakeProvider{}
	svc := newTestService(store, map[string]Provider{models.ChannelEmail: provider})

	n := models.Notification{ID: uuid.New(), RecipientID: 1, Channel: models.ChannelEmail, Category: models.CategoryFinance}
	svc.handleTask(models.Task{Notification: n})

	assert.Empty(t, provider.sent)
	assert.Empty(t, store.failed)
	assert.Equal(t, "suppressed", store.decisions[n.ID])
}

func TestHandleTaskQuietHoursDefers(t *testing.T) {
	store := newFakeStore()
	store.prefs[prefKey(1, models.CategoryHR)] = models.Preference{
		UserID: 1, Category: models.CategoryHR,
		Channels: []string{models.ChannelEmail}, Frequency: models.FrequencyImmediate, IsActive: true,
		QuietStart: "22:00", QuietEnd: "08:00",
	}
	svc := newTestService(store, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	}

	n := models.Notification{ID: uuid.New(), RecipientID: 1, Channel: models.ChannelEmail, Category: models.CategoryHR}
	svc.handleTask(models.Task{Notification: n})

	assert.Equal(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), store.deferred[n.ID])
	assert.Empty(t, store.failed)
}

func TestHandleTaskDailyFrequencyBatches(t *testing.T) {
	store := newFakeStore()
	store.prefs[prefKey(1, models.CategoryDevice)] = models.Preference{
		UserID: 1, Category: models.CategoryDevice,
		Channels: []string{models.ChannelEmail}, Frequency: models.FrequencyDaily, IsActive: true,
	}
	provider := &fakeProvider{}
	svc := newTestService(store, map[string]Provider{models.ChannelEmail: provider})

	n := models.Notification{ID: uuid.New(), RecipientID: 1, Channel: models.ChannelEmail, Category: models.CategoryDevice}
	svc.handleTask(models.Task{Notification: n})

	assert.Empty(t, provider.sent)
	assert.Equal(t, "batched", store.decisions[n.ID])
}

func TestResubmitBumpsRetryAndRequeues(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	n := models.Notification{ID: uuid.New(), RecipientID: 1, Status: models.StatusFailed, RetryCount: 1}
	require.NoError(t, svc.Resubmit(context.Background(), n))

	assert.Equal(t, []uuid.UUID{n.ID}, store.retried)
	require.Len(t, svc.tasks, 1)
	task := <-svc.tasks
	assert.True(t, task.Resubmit)
	assert.Equal(t, 2, task.Notification.RetryCount)
	assert.Equal(t, models.StatusPending, task.Notification.Status)
}

func TestResubmitRejectsNonFailed(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)

	err := svc.Resubmit(context.Background(), models.Notification{ID: uuid.New(), Status: models.StatusSent})
	assert.Error(t, err)
}

func TestFlushDueRequeues(t *testing.T) {
	store := newFakeStore()
	past := time.Now().Add(-time.Minute)
	store.due = []models.Notification{
		{ID: uuid.New(), ScheduledAt: &past},
		{ID: uuid.New(), ScheduledAt: &past},
	}
	svc := newTestService(store, nil)

	svc.FlushDue(context.Background())
	assert.Len(t, svc.tasks, 2)
}

func TestWorkerPoolProcessesQueue(t *testing.T) {
	store := newFakeStore()
	store.contacts[prefKey(1, models.ChannelEmail)] = models.Contact{UserID: 1, Channel: models.ChannelEmail, Address: "a@b.c"}
	provider := &fakeProvider{}
	svc := newTestService(store, map[string]Provider{models.ChannelEmail: provider})

	var wg sync.WaitGroup
	svc.Start(&wg)

	n := models.Notification{ID: uuid.New(), RecipientID: 1, Channel: models.ChannelEmail, Category: models.CategorySystem}
	svc.Queue(models.Task{Notification: n})

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.sent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	svc.Stop()
	wg.Wait()
}

func TestQueueOverflowDefersForScheduler(t *testing.T) {
	store := newFakeStore()
	cfg := testConfig()
	cfg.Dispatch.QueueSize = 1
	svc := New(store, testLogger(), cfg, nil, nil)

	// No workers running: the first task fills the queue, the second
	// overflows and must be parked for the scheduler.
	first := models.Notification{ID: uuid.New(), RecipientID: 1}
	overflow := models.Notification{ID: uuid.New(), RecipientID: 2}
	svc.Queue(models.Task{Notification: first})
	svc.Queue(models.Task{Notification: overflow})

	assert.Len(t, svc.tasks, 1)
	store.mu.Lock()
	defer store.mu.Unlock()
	until, ok := store.deferred[overflow.ID]
	require.True(t, ok, "overflowed notification was not deferred")
	assert.True(t, until.After(time.Now()))
	_, ok = store.deferred[first.ID]
	assert.False(t, ok)
}
