// Package dispatch owns the asynchronous delivery pipeline: a worker pool
// takes persisted notifications, runs the preference resolver, and pushes
// deliverable ones through the channel providers.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"notification-center/internal/cache"
	"notification-center/internal/config"
	"notification-center/internal/db"
	"notification-center/internal/delivery"
	"notification-center/internal/metrics"
	"notification-center/internal/models"
	"notification-center/internal/utils"
)

// Store is the persistence surface the pipeline needs. *db.DB satisfies it.
type Store interface {
	CreateNotification(ctx context.Context, n models.Notification) error
	GetPreference(ctx context.Context, userID int64, category string) (models.Preference, error)
	GetContact(ctx context.Context, userID int64, channel string) (models.Contact, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
	DeferUntil(ctx context.Context, id uuid.UUID, until time.Time) error
	RecordDecision(ctx context.Context, id uuid.UUID, note string) error
	IncrementRetry(ctx context.Context, id uuid.UUID) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
}

// Provider sends one notification to one address on its channel.
type Provider interface {
	Send(ctx context.Context, n models.Notification, address string) error
}

// Service processes dispatch Tasks through a fixed worker pool.
type Service struct {
	store     Store
	logger    *logrus.Logger
	cfg       config.Config
	tasks     chan models.Task
	ctx       context.Context
	cancel    context.CancelFunc
	wg        *sync.WaitGroup
	providers map[string]Provider
	cache     *cache.Cache
	now       func() time.Time
}

// New constructs a dispatch Service. cache may be nil when Redis is not
// configured.
func New(store Store, logger *logrus.Logger, cfg config.Config, providers map[string]Provider, c *cache.Cache) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:     store,
		logger:    logger,
		cfg:       cfg,
		tasks:     make(chan models.Task, cfg.Dispatch.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
		providers: providers,
		cache:     c,
		now:       time.Now,
	}
}

// Start launches the worker pool.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.cfg.Dispatch.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop cancels the workers; pending queue entries are dropped.
func (s *Service) Stop() {
	s.cancel()
}

// queueFullRetryDelay is how long an overflowed task waits before the
// scheduler requeues it.
const queueFullRetryDelay = time.Minute

// Queue enqueues a Task without blocking. When the queue is full the
// notification is deferred by a short delay so the next scheduler flush
// claims it instead of leaving it parked forever.
func (s *Service) Queue(task models.Task) {
	select {
	case s.tasks <- task:
		metrics.QueueDepth.Set(float64(len(s.tasks)))
		s.logger.Debugf("Queued notification %s", task.Notification.ID)
	default:
		if err := s.store.DeferUntil(s.ctx, task.Notification.ID, s.now().Add(queueFullRetryDelay)); err != nil {
			s.logger.Errorf("Failed to defer overflowed notification %s: %v", task.Notification.ID, err)
			return
		}
		s.logger.Errorf("Queue full, deferred notification %s for the scheduler", task.Notification.ID)
	}
}

// Ingest validates a send request, persists one pending notification per
// recipient, and queues immediate ones for dispatch. Requests with a future
// scheduled_at are left for the scheduler. Returns the created records.
func (s *Service) Ingest(ctx context.Context, req models.SendRequest, source string) ([]models.Notification, error) {
	if req.Category == "" {
		req.Category = models.CategorySystem
	}
	if !models.ValidCategory(req.Category) {
		return nil, fmt.Errorf("unknown category %q", req.Category)
	}
	if req.Priority == "" {
		req.Priority = models.PriorityNormal
	}
	if !models.ValidPriority(req.Priority) {
		return nil, fmt.Errorf("unknown priority %q", req.Priority)
	}
	channel := req.Type
	if channel == "" {
		channel = models.ChannelInApp
	}
	if !models.ValidChannel(channel) {
		return nil, fmt.Errorf("unknown channel %q", channel)
	}

	now := s.now()
	created := make([]models.Notification, 0, len(req.Recipients))
	for _, recipient := range req.Recipients {
		n := models.Notification{
			ID:          uuid.New(),
			Type:        channel,
			Title:       req.Title,
			Message:     req.Message,
			Data:        req.Data,
			Status:      models.StatusPending,
			Priority:    req.Priority,
			ScheduledAt: req.ScheduledAt,
			RecipientID: recipient,
			Channel:     channel,
			Category:    req.Category,
			ActionURL:   req.ActionURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.store.CreateNotification(ctx, n); err != nil {
			return created, fmt.Errorf("persist notification for recipient %d: %w", recipient, err)
		}
		created = append(created, n)
		s.invalidateStats(ctx, recipient)

		if n.ScheduledAt != nil && n.ScheduledAt.After(now) {
			s.logger.Infof("Notification %s scheduled for %s", n.ID, n.ScheduledAt)
			continue
		}
		s.Queue(models.Task{Notification: n})
	}
	metrics.Ingested.WithLabelValues(source).Add(float64(len(created)))
	return created, nil
}

// Resubmit requeues a failed notification, bumping its retry count.
func (s *Service) Resubmit(ctx context.Context, n models.Notification) error {
	if n.Status != models.StatusFailed {
		return fmt.Errorf("notification %s is not in failed state", n.ID)
	}
	if err := s.store.IncrementRetry(ctx, n.ID); err != nil {
		return err
	}
	n.Status = models.StatusPending
	n.RetryCount++
	s.Queue(models.Task{Notification: n, Resubmit: true})
	return nil
}

// FlushDue requeues pending notifications whose scheduled time has passed.
// Called by the cron scheduler.
func (s *Service) FlushDue(ctx context.Context) {
	due, err := s.store.ClaimDue(ctx, s.now(), 100)
	if err != nil {
		s.logger.Errorf("Failed to claim due notifications: %v", err)
		return
	}
	for _, n := range due {
		n.ScheduledAt = nil
		s.Queue(models.Task{Notification: n})
	}
	if len(due) > 0 {
		s.logger.Infof("Requeued %d due notifications", len(due))
	}
}

// worker processes Tasks until the context is cancelled.
func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Worker %d stopped", id)
			return
		case task := <-s.tasks:
			metrics.QueueDepth.Set(float64(len(s.tasks)))
			s.handleTask(task)
		}
	}
}

// handleTask resolves the recipient's preference for the notification's
// channel and acts on the verdict.
func (s *Service) handleTask(task models.Task) {
	n := task.Notification

	pref, err := s.store.GetPreference(s.ctx, n.RecipientID, n.Category)
	if err != nil {
		if !errors.Is(err, db.ErrNoPreference) {
			s.logger.Errorf("Failed to load preference for user %d: %v", n.RecipientID, err)
			return
		}
		pref = models.DefaultPreference(n.RecipientID, n.Category)
	}

	decision := delivery.Resolve(pref, n.Channel, s.now())
	switch decision.Verdict {
	case delivery.Suppress:
		// Not an error: the record stays pending in the feed, never
		// dispatched.
		if err := s.store.RecordDecision(s.ctx, n.ID, "suppressed"); err != nil {
			s.logger.Errorf("Failed to record suppression for %s: %v", n.ID, err)
		}
		metrics.Dispatched.WithLabelValues(n.Channel, "suppressed").Inc()
		s.logger.Infof("Notification %s suppressed by preference (user %d, category %s)", n.ID, n.RecipientID, n.Category)

	case delivery.Batch:
		// daily/weekly digests have no defined assembly semantics; hold the
		// record and mark the decision.
		if err := s.store.RecordDecision(s.ctx, n.ID, "batched"); err != nil {
			s.logger.Errorf("Failed to record batch decision for %s: %v", n.ID, err)
		}
		metrics.Dispatched.WithLabelValues(n.Channel, "batched").Inc()
		s.logger.Infof("Notification %s held for %s digest (user %d)", n.ID, pref.Frequency, n.RecipientID)

	case delivery.Defer:
		if err := s.store.DeferUntil(s.ctx, n.ID, decision.NextEligible); err != nil {
			s.logger.Errorf("Failed to defer %s: %v", n.ID, err)
			return
		}
		metrics.Dispatched.WithLabelValues(n.Channel, "deferred").Inc()
		s.logger.Infof("Notification %s deferred until %s (quiet hours)", n.ID, decision.NextEligible)

	case delivery.Deliver:
		s.deliver(n)
	}
}

// deliver pushes the notification through its channel provider with bounded
// retry and finalizes the status.
func (s *Service) deliver(n models.Notification) {
	provider, ok := s.providers[n.Channel]
	if !ok {
		s.fail(n, fmt.Sprintf("no provider for channel %s", n.Channel))
		return
	}

	address := ""
	if n.Channel != models.ChannelInApp {
		contact, err := s.store.GetContact(s.ctx, n.RecipientID, n.Channel)
		if err != nil {
			if errors.Is(err, db.ErrNoContact) {
				s.fail(n, fmt.Sprintf("no %s contact registered for user %d", n.Channel, n.RecipientID))
				return
			}
			s.logger.Errorf("Failed to load contact for user %d: %v", n.RecipientID, err)
			return
		}
		address = contact.Address
	}

	err := utils.Retry(s.logger, s.cfg.Dispatch.MaxAttempts, time.Second, func() error {
		return provider.Send(s.ctx, n, address)
	})
	if err != nil {
		s.fail(n, err.Error())
		return
	}

	if err := s.store.MarkSent(s.ctx, n.ID, s.now()); err != nil {
		s.logger.Errorf("Failed to mark %s sent: %v", n.ID, err)
		return
	}
	s.invalidateStats(s.ctx, n.RecipientID)
	metrics.Dispatched.WithLabelValues(n.Channel, "sent").Inc()
	s.logger.Infof("Notification %s sent via %s to user %d", n.ID, n.Channel, n.RecipientID)
}

func (s *Service) fail(n models.Notification, reason string) {
	if err := s.store.MarkFailed(s.ctx, n.ID, reason); err != nil {
		s.logger.Errorf("Failed to mark %s failed: %v", n.ID, err)
		return
	}
	s.invalidateStats(s.ctx, n.RecipientID)
	metrics.Dispatched.WithLabelValues(n.Channel, "failed").Inc()
	s.logger.Errorf("Notification %s failed via %s: %s", n.ID, n.Channel, reason)
}

func (s *Service) invalidateStats(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateStats(ctx, userID); err != nil {
		s.logger.Warnf("Failed to invalidate stats cache for user %d: %v", userID, err)
	}
}
