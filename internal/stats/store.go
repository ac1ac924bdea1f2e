// Package stats implements the per-day statistics log. Each local calendar
// date has one append-only list of phase records in the key-value store;
// the daily counters are always derived from it.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.StatsRecorder = (*Store)(nil)
	_ domain.StatsReader   = (*Store)(nil)
)

// KeyPrefix is prepended to the date to form the store key.
const KeyPrefix = "stats-"

// DefaultWindow is the number of days in the weekly chart.
const DefaultWindow = 7

// Key returns the store key of a date, e.g. "stats-2026-10-15".
func Key(d domain.Date) string {
	return KeyPrefix + d.String()
}

// Option configures the store.
type Option func(*Store)

// WithClock sets the time source used to stamp appended records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store reads and appends daily statistics in a key-value store.
type Store struct {
	kv  domain.KVStore
	log *logger.Logger
	now func() time.Time

	// mu serialises read-modify-write cycles on a key within this process.
	mu sync.Mutex
}

// New creates a statistics store on top of kv.
func New(kv domain.KVStore, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		log: log,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append files a record of kind, stamped with the current time, under date.
// The day's entry is created if it does not exist. An unreadable entry is
// treated as empty. The only error is a failed write to the underlying store.
func (s *Store) Append(ctx context.Context, date domain.Date, kind domain.RecordKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(date)
	e := s.loadEntry(ctx, key)
	e.appendRecord(kind, s.now(), date)

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("appending %s record to %s: %w", kind, key, err)
	}

	s.log.Debug("appended %s to %s (%d records)", kind, key, len(e.Records))
	return nil
}

// Read returns the log for date, or an empty one if nothing usable is stored.
func (s *Store) Read(ctx context.Context, date domain.Date) domain.DailyStats {
	key := Key(date)
	day, skipped := s.loadEntry(ctx, key).toDaily(date)
	if skipped > 0 {
		s.log.Debug("%s: skipped %d records of unknown type", key, skipped)
	}
	return day
}

// DeriveCounts returns the counters of date. A non-empty record log is
// always recounted; legacy counter-only entries are returned as stored.
func (s *Store) DeriveCounts(ctx context.Context, date domain.Date) domain.Counts {
	return s.Read(ctx, date).Counts()
}

// WindowCounts returns the completed-work count of each of the days days
// ending at end, oldest first. The last element is always end. days <= 0
// means DefaultWindow.
func (s *Store) WindowCounts(ctx context.Context, end domain.Date, days int) []domain.DayCount {
	if days <= 0 {
		days = DefaultWindow
	}
	out := make([]domain.DayCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := end.AddDays(-i)
		out = append(out, domain.DayCount{
			Date:      d,
			Completed: s.DeriveCounts(ctx, d).Completed,
		})
	}
	return out
}

// Week is WindowCounts over DefaultWindow days.
func (s *Store) Week(ctx context.Context, end domain.Date) []domain.DayCount {
	return s.WindowCounts(ctx, end, DefaultWindow)
}

// Days lists every date that has an entry, oldest first. Keys that do not
// name a date are ignored.
func (s *Store) Days(ctx context.Context) ([]domain.Date, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing days: %w", err)
	}

	var days []domain.Date
	for _, k := range keys {
		if !strings.HasPrefix(k, KeyPrefix) {
			continue
		}
		d, err := domain.ParseDate(strings.TrimPrefix(k, KeyPrefix))
		if err != nil {
			s.log.Debug("ignoring key %q: %v", k, err)
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// loadEntry fetches and decodes key. Missing, unreadable and malformed
// values all come back as an empty entry.
func (s *Store) loadEntry(ctx context.Context, key string) entry {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Warn("reading %s: %v (treating as empty)", key, err)
		return entry{}
	}
	if !ok {
		return entry{}
	}
	e, err := decodeEntry(raw)
	if err != nil {
		s.log.Warn("malformed entry %s: %v (treating as empty)", key, err)
		return entry{}
	}
	return e
}
