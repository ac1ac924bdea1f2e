package stats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
	"github.com/hammamikhairi/pomotech/internal/storage"
)

// brokenKV fails every call.
type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (brokenKV) Set(context.Context, string, string) error { return errors.New("disk on fire") }
func (brokenKV) Keys(context.Context) ([]string, error)    { return nil, errors.New("disk on fire") }

func newTestStore(t *testing.T, now time.Time) (*Store, *storage.MemoryKV) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	kv := storage.NewMemoryKV(log)
	return New(kv, log, WithClock(func() time.Time { return now })), kv
}

func mustDate(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestAppendThenRead(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.Local)
	store, _ := newTestStore(t, now)
	ctx := context.Background()
	day := mustDate(t, "2026-10-15")

	before := store.Read(ctx, day)
	assert.Empty(t, before.Records)

	require.NoError(t, store.Append(ctx, day, domain.RecordWork))

	after := store.Read(ctx, day)
	require.Len(t, after.Records, 1)
	assert.Equal(t, domain.RecordWork, after.Records[0].Kind)
	assert.False(t, after.Records[0].Timestamp.Before(now), "timestamp must not precede the call")
	assert.Equal(t, day, after.Date)
}

func TestAppendRealClockTimestamp(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := New(storage.NewMemoryKV(log), log)
	ctx := context.Background()
	day := domain.LocalDateOf(time.Now())

	called := time.Now()
	require.NoError(t, store.Append(ctx, day, domain.RecordWork))

	records := store.Read(ctx, day).Records
	require.Len(t, records, 1)
	assert.False(t, records[0].Timestamp.Before(called))
}

func TestAppendRoundsTimestampUp(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 500_000, time.UTC)
	store, kv := newTestStore(t, now)
	ctx := context.Background()
	day := mustDate(t, "2026-10-15")

	require.NoError(t, store.Append(ctx, day, domain.RecordWork))

	raw, _, _ := kv.Get(ctx, Key(day))
	assert.Contains(t, raw, `"timestamp":"2026-10-15T09:30:00.001Z"`)

	got := store.Read(ctx, day).Records
	require.Len(t, got, 1)
	assert.False(t, got[0].Timestamp.Before(now), "stored timestamp precedes the call")
}

func TestDeriveCountsFromRecords(t *testing.T) {
	store, _ := newTestStore(t, time.Now())
	ctx := context.Background()
	day := mustDate(t, "2026-10-15")

	for _, k := range []domain.RecordKind{
		domain.RecordWork, domain.RecordWork, domain.RecordShortBreak,
		domain.RecordLongBreak, domain.RecordCancelled,
	} {
		require.NoError(t, store.Append(ctx, day, k))
	}

	want := domain.Counts{Completed: 2, Breaks: 2, Cancelled: 1}
	assert.Equal(t, want, store.DeriveCounts(ctx, day))
	assert.Equal(t, want, store.DeriveCounts(ctx, day), "second read must match")
}

func TestPersistedLayout(t *testing.T) {
	now := time.Date(2026, 10, 15, 1, 2, 3, 456_000_000, time.UTC)
	store, kv := newTestStore(t, now)
	ctx := context.Background()
	day := mustDate(t, "2026-10-15")

	require.NoError(t, store.Append(ctx, day, domain.RecordShortBreak))

	raw, ok, err := kv.Get(ctx, "stats-2026-10-15")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{
		"completed": 0,
		"breaks": 1,
		"cancelled": 0,
		"records": [{"type": "shortBreak", "timestamp": "2026-10-15T01:02:03.456Z"}]
	}`, raw)
}

func TestLegacyEntryFallback(t *testing.T) {
	store, kv := newTestStore(t, time.Now())
	ctx := context.Background()
	day := mustDate(t, "2026-10-10")

	require.NoError(t, kv.Set(ctx, Key(day), `{"completed":3,"breaks":2}`))
	assert.Equal(t, domain.Counts{Completed: 3, Breaks: 2}, store.DeriveCounts(ctx, day))

	// An empty records array does not override the counters.
	require.NoError(t, kv.Set(ctx, Key(day), `{"completed":5,"records":[]}`))
	assert.Equal(t, domain.Counts{Completed: 5}, store.DeriveCounts(ctx, day))
}

func TestRecordsOverrideStaleCounters(t *testing.T) {
	store, kv := newTestStore(t, time.Now())
	ctx := context.Background()
	day := mustDate(t, "2026-10-10")

	require.NoError(t, kv.Set(ctx, Key(day),
		`{"completed":7,"breaks":7,"cancelled":7,"records":[{"type":"work","timestamp":"2026-10-10T08:00:00.000Z"}]}`))
	assert.Equal(t, domain.Counts{Completed: 1}, store.DeriveCounts(ctx, day))
}

func TestMalformedEntriesReadAsEmpty(t *testing.T) {
	store, kv := newTestStore(t, time.Now())
	ctx := context.Background()
	day := mustDate(t, "2026-10-10")

	for _, raw := range []string{`{not json`, `[1,2,3]`, `{"completed":"three"}`, `{"records":{"type":"work"}}`, `null`} {
		require.NoError(t, kv.Set(ctx, Key(day), raw))
		got := store.Read(ctx, day)
		assert.Empty(t, got.Records, "raw %q", raw)
		assert.Equal(t, domain.Counts{}, got.Counts(), "raw %q", raw)
	}
}

func TestAppendOverMalformedEntry(t *testing.T) {
	store, kv := newTestStore(t, time.Now())
	ctx := context.Background()
	day := mustDate(t, "2026-10-10")

	require.NoError(t, kv.Set(ctx, Key(day), `garbage`))
	require.NoError(t, store.Append(ctx, day, domain.RecordCancelled))

	assert.Equal(t, domain.Counts{Cancelled: 1}, store.DeriveCounts(ctx, day))
}

func TestUnknownRecordTypesSurviveAppend(t *testing.T) {
	store, kv := newTestStore(t, time.Now())
	ctx := context.Background()
	day := mustDate(t, "2026-10-10")

	require.NoError(t, kv.Set(ctx, Key(day),
		`{"records":[{"type":"nap","timestamp":"2026-10-10T08:00:00.000Z"},{"type":"work","timestamp":"bad"}]}`))

	got := store.Read(ctx, day)
	require.Len(t, got.Records, 1)
	assert.True(t, got.Records[0].Timestamp.IsZero())

	require.NoError(t, store.Append(ctx, day, domain.RecordWork))

	raw, _, _ := kv.Get(ctx, Key(day))
	var e entry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Len(t, e.Records, 3)
	assert.Equal(t, "nap", e.Records[0].Type)
	assert.Equal(t, 2, *e.Completed)
}

func TestUnknownOnlyLogIgnoresLegacyCounters(t *testing.T) {
	store, kv := newTestStore(t, time.Now())
	ctx := context.Background()
	day := mustDate(t, "2026-10-11")

	require.NoError(t, kv.Set(ctx, Key(day),
		`{"completed":5,"breaks":2,"records":[{"type":"nap","timestamp":"2026-10-11T08:00:00.000Z"}]}`))

	assert.Equal(t, domain.Counts{}, store.DeriveCounts(ctx, day))
	assert.True(t, store.Read(ctx, day).Logged)
}

func TestWindowCounts(t *testing.T) {
	store, kv := newTestStore(t, time.Now())
	ctx := context.Background()
	today := mustDate(t, "2026-10-15")

	require.NoError(t, store.Append(ctx, today, domain.RecordWork))
	require.NoError(t, store.Append(ctx, today.AddDays(-2), domain.RecordWork))
	require.NoError(t, store.Append(ctx, today.AddDays(-2), domain.RecordWork))
	require.NoError(t, kv.Set(ctx, Key(today.AddDays(-6)), `{"completed":4}`))
	// Outside the window.
	require.NoError(t, store.Append(ctx, today.AddDays(-7), domain.RecordWork))

	week := store.WindowCounts(ctx, today, 7)
	require.Len(t, week, 7)
	assert.Equal(t, today, week[6].Date)
	assert.Equal(t, today.AddDays(-6), week[0].Date)

	got := make([]int, len(week))
	for i, d := range week {
		got[i] = d.Completed
		if i > 0 {
			assert.True(t, week[i-1].Date.Before(d.Date), "window must be oldest first")
		}
	}
	assert.Equal(t, []int{4, 0, 0, 0, 2, 0, 1}, got)
}

func TestWindowCountsDefaultsAndShape(t *testing.T) {
	store, _ := newTestStore(t, time.Now())
	ctx := context.Background()
	today := mustDate(t, "2026-01-03")

	assert.Len(t, store.WindowCounts(ctx, today, 0), DefaultWindow)
	assert.Len(t, store.Week(ctx, today), DefaultWindow)

	three := store.WindowCounts(ctx, today, 3)
	require.Len(t, three, 3)
	assert.Equal(t, "2026-01-01", three[0].Date.String())
	assert.Equal(t, "2026-01-03", three[2].Date.String())
}

func TestBrokenStoreFailsOpen(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := New(brokenKV{}, log)
	ctx := context.Background()
	day := mustDate(t, "2026-10-15")

	assert.Equal(t, domain.Counts{}, store.DeriveCounts(ctx, day))
	assert.Len(t, store.Week(ctx, day), 7)
	assert.Error(t, store.Append(ctx, day, domain.RecordWork))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "stats-2026-03-07", Key(mustDate(t, "2026-03-07")))
}

func TestDaysListsDatedKeys(t *testing.T) {
	store, kv := newTestStore(t, time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, mustDate(t, "2026-10-15"), domain.RecordWork))
	require.NoError(t, store.Append(ctx, mustDate(t, "2025-12-31"), domain.RecordCancelled))
	require.NoError(t, kv.Set(ctx, "stats-not-a-date", "{}"))
	require.NoError(t, kv.Set(ctx, "theme", "dark"))

	days, err := store.Days(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Date{mustDate(t, "2025-12-31"), mustDate(t, "2026-10-15")}, days)

	_, err = New(brokenKV{}, logger.New(logger.LevelOff, nil)).Days(ctx)
	assert.Error(t, err)
}
