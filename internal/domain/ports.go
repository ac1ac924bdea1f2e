package domain

import (
	"context"
	"time"
)

// KVStore is the persistent string-keyed medium the statistics live in.
// Implementations can be in-memory, a JSON file, SQLite, or anything else
// that maps keys to strings.
type KVStore interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Keys(ctx context.Context) ([]string, error)
}

// TickSource runs a callback periodically. Schedule returns a stop function;
// after stop returns no new callback starts. Stop is idempotent and may be
// called from inside fn.
type TickSource interface {
	Schedule(period time.Duration, fn func()) (stop func())
}

// StatsRecorder files the terminal outcome of a phase under a calendar date.
type StatsRecorder interface {
	Append(ctx context.Context, date Date, kind RecordKind) error
}

// StatsReader exposes the derived daily counters.
type StatsReader interface {
	DeriveCounts(ctx context.Context, date Date) Counts
	WindowCounts(ctx context.Context, end Date, days int) []DayCount
}

// Notifier delivers messages to the user. Implementations can write to
// the terminal, raise desktop notifications, or ring a chime.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// CommandParser converts raw user input into structured commands.
type CommandParser interface {
	Parse(ctx context.Context, input string) (*Command, error)
}
