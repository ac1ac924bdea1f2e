// Package timer implements the periodic tick source that drives the
// pomodoro countdown.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Compile-time interface check.
var _ domain.TickSource = (*Ticker)(nil)

// Option configures the ticker.
type Option func(*Ticker)

// WithContext ties every schedule to ctx: cancelling it stops them all.
func WithContext(ctx context.Context) Option {
	return func(t *Ticker) {
		t.ctx = ctx
	}
}

// Ticker runs callbacks on fixed periods, one goroutine per schedule.
// Calls of one schedule never overlap.
type Ticker struct {
	log *logger.Logger
	ctx context.Context

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]context.CancelFunc
}

// New creates a ticker with the given dependencies and options.
func New(log *logger.Logger, opts ...Option) *Ticker {
	t := &Ticker{
		log:  log,
		ctx:  context.Background(),
		subs: make(map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Schedule calls fn every period until the returned stop function is called.
// Non-blocking. Stop is idempotent and safe to call from inside fn.
func (t *Ticker) Schedule(period time.Duration, fn func()) (stop func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if period <= 0 {
		period = time.Second
	}

	t.nextID++
	id := t.nextID
	ctx, cancel := context.WithCancel(t.ctx)
	t.subs[id] = cancel

	go t.loop(ctx, period, fn)

	t.log.Debug("schedule %d started (period=%s)", id, period)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
			t.log.Debug("schedule %d stopped", id)
		})
	}
}

// Active returns the number of schedules that have not been stopped.
func (t *Ticker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Close stops every schedule.
func (t *Ticker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, cancel := range t.subs {
		cancel()
		delete(t.subs, id)
	}
	t.log.Debug("ticker closed")
}

// loop is the per-schedule tick loop.
func (t *Ticker) loop(ctx context.Context, period time.Duration, fn func()) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Both channels may be ready at once; a stopped schedule must
			// not deliver one more tick.
			if ctx.Err() != nil {
				return
			}
			fn()
		}
	}
}
