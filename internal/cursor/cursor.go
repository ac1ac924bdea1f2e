// Package cursor tracks which day's statistics are on screen.
package cursor

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/pomotech/internal/domain"
)

// Counter is the slice of the statistics store the cursor reads from.
type Counter interface {
	DeriveCounts(ctx context.Context, date domain.Date) domain.Counts
}

// View is the state of the cursor after a move, with that day's counts
// freshly read.
type View struct {
	Date    domain.Date
	Counts  domain.Counts
	AtToday bool // forward navigation is disabled
}

// Option configures the cursor.
type Option func(*Cursor)

// WithClock sets the time source that decides what "today" is.
func WithClock(now func() time.Time) Option {
	return func(c *Cursor) {
		c.now = now
	}
}

// Cursor holds the displayed date. It can go back freely but never past
// today's local date.
type Cursor struct {
	stats Counter
	now   func() time.Time

	mu   sync.Mutex
	date domain.Date
}

// New creates a cursor on today.
func New(stats Counter, opts ...Option) *Cursor {
	c := &Cursor{stats: stats, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.date = c.Today()
	return c
}

// Today returns today's local date.
func (c *Cursor) Today() domain.Date {
	return domain.DateOf(c.now())
}

// Date returns the displayed date without reading statistics.
func (c *Cursor) Date() domain.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// Current re-reads the displayed date.
func (c *Cursor) Current(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked(ctx)
}

// Peek reads any date without moving the cursor. Dates after today are
// read as they are; they have no records.
func (c *Cursor) Peek(ctx context.Context, date domain.Date) View {
	return View{
		Date:    date,
		Counts:  c.stats.DeriveCounts(ctx, date),
		AtToday: date == c.Today(),
	}
}

// Step moves the cursor by days (negative goes back). Moves that would pass
// today stop at today.
func (c *Cursor) Step(ctx context.Context, days int) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.date = c.date.AddDays(days)
	return c.viewLocked(ctx)
}

// Reset moves the cursor back to today.
func (c *Cursor) Reset(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.date = c.Today()
	return c.viewLocked(ctx)
}

// viewLocked clamps the date and reads its counts.
func (c *Cursor) viewLocked(ctx context.Context) View {
	today := c.Today()
	if c.date.After(today) {
		c.date = today
	}
	return View{
		Date:    c.date,
		Counts:  c.stats.DeriveCounts(ctx, c.date),
		AtToday: !c.date.Before(today),
	}
}
