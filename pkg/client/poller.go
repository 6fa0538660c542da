package client

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Poller refreshes the feed on an interval. Unlike a fixed unconditional
// tick, consecutive failures back off exponentially with jitter, and after
// maxFailures the poller pauses entirely until Nudge is called on the next
// user-visible interaction.
type Poller struct {
	fetch       func(context.Context) error
	interval    time.Duration
	maxFailures int

	mu       sync.Mutex
	failures int

	nudge chan struct{}
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the base poll interval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithMaxFailures overrides how many consecutive failures pause the poller.
func WithMaxFailures(n int) PollerOption {
	return func(p *Poller) { p.maxFailures = n }
}

// NewPoller builds a poller around a fetch function (typically
// Feed.Load or Client.Stats wrapped in a closure).
func NewPoller(fetch func(context.Context) error, opts ...PollerOption) *Poller {
	p := &Poller{
		fetch:       fetch,
		interval:    30 * time.Second,
		maxFailures: 5,
		nudge:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Nudge resets the failure count and triggers an immediate fetch. Call it
// from user-visible interactions so a paused poller resumes.
func (p *Poller) Nudge() {
	p.mu.Lock()
	p.failures = 0
	p.mu.Unlock()
	select {
	case p.nudge <- struct{}{}:
	default:
	}
}

// Failures returns the current consecutive-failure count.
func (p *Poller) Failures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}

// Run polls until ctx is cancelled. It performs one immediate fetch, then
// waits interval (or a jittered backoff of it while failing) between
// attempts. After maxFailures consecutive failures it blocks until Nudge.
func (p *Poller) Run(ctx context.Context) {
	for {
		if err := p.fetch(ctx); err != nil {
			p.mu.Lock()
			p.failures++
			p.mu.Unlock()
		} else {
			p.mu.Lock()
			p.failures = 0
			p.mu.Unlock()
		}

		if p.Failures() >= p.maxFailures {
			// Paused: resume only on user interaction.
			select {
			case <-ctx.Done():
				return
			case <-p.nudge:
				continue
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-p.nudge:
		case <-time.After(p.delay()):
		}
	}
}

// delay is the wait before the next attempt: the base interval when healthy,
// interval*2^failures with full jitter while failing.
func (p *Poller) delay() time.Duration {
	failures := p.Failures()
	if failures == 0 {
		return p.interval
	}
	ceiling := p.interval << failures
	if ceiling <= 0 {
		ceiling = p.interval
	}
	return time.Duration(rand.Int63n(int64(ceiling))) + 1
}
