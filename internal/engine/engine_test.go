package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
	"github.com/hammamikhairi/pomotech/internal/stats"
	"github.com/hammamikhairi/pomotech/internal/storage"
	"github.com/hammamikhairi/pomotech/internal/timer"
)

var testNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.Local)

func setupEngine(t *testing.T, opts ...Option) (*Engine, *timer.Manual, *stats.Store, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	clock := func() time.Time { return testNow }
	store := stats.New(storage.NewMemoryKV(log), log, stats.WithClock(clock))
	ticks := timer.NewManual()
	opts = append([]Option{WithDurations(TestModeDurations()), WithClock(clock)}, opts...)
	eng := New(ticks, store, log, opts...)
	return eng, ticks, store, context.Background()
}

// failingRecorder rejects every append.
type failingRecorder struct{ calls int }

func (f *failingRecorder) Append(context.Context, domain.Date, domain.RecordKind) error {
	f.calls++
	return errors.New("read-only filesystem")
}

func TestInitialState(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	eng := New(timer.NewManual(), nil, log)

	s := eng.Snapshot()
	if s.Phase != domain.PhaseWork {
		t.Fatalf("expected work phase, got %s", s.Phase)
	}
	if s.RemainingSeconds != 25*60 || s.TotalSeconds != 25*60 {
		t.Fatalf("expected 1500/1500, got %d/%d", s.RemainingSeconds, s.TotalSeconds)
	}
	if s.Running {
		t.Fatal("expected idle engine")
	}
	if s.Progress() != 0 {
		t.Fatalf("expected zero progress, got %f", s.Progress())
	}
}

func TestTickCountsDown(t *testing.T) {
	eng, ticks, _, ctx := setupEngine(t, WithDurations(Durations{Work: 5, ShortBreak: 2, LongBreak: 3}))

	if !eng.Start(ctx) {
		t.Fatal("start refused")
	}
	ticks.Tick(2)

	s := eng.Snapshot()
	if s.RemainingSeconds != 3 || s.TotalSeconds != 5 {
		t.Fatalf("expected 3/5, got %d/%d", s.RemainingSeconds, s.TotalSeconds)
	}
	if !s.Running {
		t.Fatal("expected engine to still be running")
	}
	if got := s.Progress(); got < 0.39 || got > 0.41 {
		t.Fatalf("expected progress 0.4, got %f", got)
	}
}

func TestExactlyOneTransitionPerPhase(t *testing.T) {
	eng, ticks, store, ctx := setupEngine(t, WithDurations(Durations{Work: 4, ShortBreak: 2, LongBreak: 3}))

	var events []domain.PhaseEvent
	eng.OnPhaseCompleted(func(ev domain.PhaseEvent) { events = append(events, ev) })

	eng.Start(ctx)
	delivered := ticks.Tick(10)

	if delivered != 4 {
		t.Fatalf("expected the schedule to stop after 4 ticks, delivered %d", delivered)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one transition, got %d", len(events))
	}
	s := eng.Snapshot()
	if s.Running || s.Phase != domain.PhaseShortBreak {
		t.Fatalf("expected Idle(shortBreak), got running=%v phase=%s", s.Running, s.Phase)
	}
	if s.RemainingSeconds != 2 || s.TotalSeconds != 2 {
		t.Fatalf("expected short break constants 2/2, got %d/%d", s.RemainingSeconds, s.TotalSeconds)
	}
	if c := store.DeriveCounts(ctx, domain.DateOf(testNow)); c.Completed != 1 {
		t.Fatalf("expected 1 completed record, got %+v", c)
	}
}

func TestFullCycleScenario(t *testing.T) {
	eng, ticks, store, ctx := setupEngine(t)

	var seen []domain.Phase
	for i := 0; i < 8; i++ {
		seen = append(seen, eng.Snapshot().Phase)
		if !eng.Start(ctx) {
			t.Fatalf("start %d refused", i)
		}
		ticks.Tick(1)
		if eng.Snapshot().Running {
			t.Fatalf("phase %d did not finish after its single tick", i)
		}
	}

	want := []domain.Phase{
		domain.PhaseWork, domain.PhaseShortBreak,
		domain.PhaseWork, domain.PhaseShortBreak,
		domain.PhaseWork, domain.PhaseShortBreak,
		domain.PhaseWork, domain.PhaseLongBreak,
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("phase %d: expected %s, got %s (sequence %v)", i, want[i], seen[i], seen)
		}
	}

	today := domain.DateOf(testNow)
	c := store.DeriveCounts(ctx, today)
	if c.Completed != 4 || c.Breaks != 4 || c.Cancelled != 0 {
		t.Fatalf("expected {4 4 0}, got %+v", c)
	}
	if eng.Snapshot().Phase != domain.PhaseWork {
		t.Fatal("expected work to follow the long break")
	}
}

func TestLongBreakCadence(t *testing.T) {
	eng, ticks, _, ctx := setupEngine(t)

	for n := 1; n <= 12; n++ {
		eng.Start(ctx) // work
		ticks.Tick(1)
		s := eng.Snapshot()
		want := domain.PhaseShortBreak
		if n%PomodorosUntilLongBreak == 0 {
			want = domain.PhaseLongBreak
		}
		if s.Phase != want {
			t.Fatalf("after work %d: expected %s, got %s", n, want, s.Phase)
		}
		if s.CompletedWork != n {
			t.Fatalf("expected completed count %d, got %d", n, s.CompletedWork)
		}

		eng.Start(ctx) // break
		ticks.Tick(1)
		if p := eng.Snapshot().Phase; p != domain.PhaseWork {
			t.Fatalf("after break %d: expected work, got %s", n, p)
		}
	}
}

func TestCancelReturnsToWork(t *testing.T) {
	durations := Durations{Work: 10, ShortBreak: 3, LongBreak: 6}

	tests := []struct {
		name  string
		setup func(eng *Engine, ticks *timer.Manual, ctx context.Context)
		from  domain.Phase
	}{
		{
			name:  "during work",
			setup: func(eng *Engine, ticks *timer.Manual, ctx context.Context) {},
			from:  domain.PhaseWork,
		},
		{
			name: "during short break",
			setup: func(eng *Engine, ticks *timer.Manual, ctx context.Context) {
				eng.Start(ctx)
				ticks.Tick(10)
			},
			from: domain.PhaseShortBreak,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, ticks, store, ctx := setupEngine(t, WithDurations(durations))
			tt.setup(eng, ticks, ctx)
			before := eng.Snapshot()
			if before.Phase != tt.from {
				t.Fatalf("setup left engine in %s, want %s", before.Phase, tt.from)
			}

			var got []domain.PhaseEvent
			eng.OnPhaseCompleted(func(ev domain.PhaseEvent) { got = append(got, ev) })

			eng.Start(ctx)
			ticks.Tick(1)
			if !eng.Cancel(ctx) {
				t.Fatal("cancel refused while running")
			}

			s := eng.Snapshot()
			if s.Running || s.Phase != domain.PhaseWork {
				t.Fatalf("expected Idle(work), got running=%v phase=%s", s.Running, s.Phase)
			}
			if s.RemainingSeconds != durations.Work || s.TotalSeconds != durations.Work {
				t.Fatalf("expected %d/%d, got %d/%d", durations.Work, durations.Work, s.RemainingSeconds, s.TotalSeconds)
			}
			if s.CompletedWork != before.CompletedWork {
				t.Fatalf("cancel changed completed count %d -> %d", before.CompletedWork, s.CompletedWork)
			}
			if ticks.Active() {
				t.Fatal("tick source still active after cancel")
			}
			if n := ticks.Tick(3); n != 0 {
				t.Fatalf("%d ticks delivered after cancel", n)
			}

			c := store.DeriveCounts(ctx, domain.DateOf(testNow))
			if c.Cancelled != 1 {
				t.Fatalf("expected exactly one cancelled record, got %+v", c)
			}
			if len(got) != 1 || !got[0].Cancelled || got[0].Phase != tt.from || got[0].Kind != domain.RecordCancelled {
				t.Fatalf("unexpected events %+v", got)
			}
		})
	}
}

func TestInvalidCommandsAreNoOps(t *testing.T) {
	eng, ticks, store, ctx := setupEngine(t, WithDurations(Durations{Work: 5, ShortBreak: 1, LongBreak: 1}))

	if eng.Cancel(ctx) {
		t.Fatal("cancel while idle reported success")
	}
	if c := store.DeriveCounts(ctx, domain.DateOf(testNow)); c != (domain.Counts{}) {
		t.Fatalf("idle cancel wrote a record: %+v", c)
	}

	eng.Start(ctx)
	ticks.Tick(2)
	if eng.Start(ctx) {
		t.Fatal("duplicate start reported success")
	}
	if ticks.Starts() != 1 {
		t.Fatalf("duplicate start created a second schedule (%d)", ticks.Starts())
	}
	if s := eng.Snapshot(); s.RemainingSeconds != 3 {
		t.Fatalf("duplicate start disturbed the countdown: %d", s.RemainingSeconds)
	}
}

func TestRecordDurableBeforeListeners(t *testing.T) {
	eng, ticks, store, ctx := setupEngine(t)

	var countsAtEvent domain.Counts
	var phaseAtEvent domain.Phase
	eng.OnPhaseCompleted(func(ev domain.PhaseEvent) {
		countsAtEvent = store.DeriveCounts(ctx, domain.DateOf(ev.At))
		phaseAtEvent = eng.Snapshot().Phase
	})

	eng.Start(ctx)
	ticks.Tick(1)

	if countsAtEvent.Completed != 1 {
		t.Fatalf("listener saw %+v, record not yet stored", countsAtEvent)
	}
	if phaseAtEvent != domain.PhaseShortBreak {
		t.Fatalf("listener saw phase %s, expected the new phase", phaseAtEvent)
	}
}

func TestStaleTickIgnored(t *testing.T) {
	eng, _, _, ctx := setupEngine(t, WithDurations(Durations{Work: 5, ShortBreak: 1, LongBreak: 1}))

	eng.Start(ctx)
	staleGen := eng.gen
	eng.Cancel(ctx)
	eng.Start(ctx)

	eng.tick(staleGen)
	if s := eng.Snapshot(); s.RemainingSeconds != 5 {
		t.Fatalf("tick from a stopped schedule changed the countdown: %d", s.RemainingSeconds)
	}
}

func TestRecorderFailureKeepsTimerGoing(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	rec := &failingRecorder{}
	ticks := timer.NewManual()
	eng := New(ticks, rec, log, WithDurations(TestModeDurations()))
	ctx := context.Background()

	eng.Start(ctx)
	ticks.Tick(1)

	if rec.calls != 1 {
		t.Fatalf("expected one append attempt, got %d", rec.calls)
	}
	s := eng.Snapshot()
	if s.Phase != domain.PhaseShortBreak || s.CompletedWork != 1 {
		t.Fatalf("expected the timer to advance anyway, got %+v", s)
	}
}

func TestRecordFiledUnderLocalDate(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	// 03:00 at UTC+9; UTC is still on the 14th.
	at := time.Date(2026, 10, 15, 3, 0, 0, 0, time.FixedZone("JST", 9*60*60))
	clock := func() time.Time { return at }
	store := stats.New(storage.NewMemoryKV(log), log, stats.WithClock(clock))
	ticks := timer.NewManual()
	eng := New(ticks, store, log, WithDurations(TestModeDurations()), WithClock(clock))
	ctx := context.Background()

	eng.Start(ctx)
	ticks.Tick(1)

	local, _ := domain.ParseDate("2026-10-15")
	utc, _ := domain.ParseDate("2026-10-14")
	if store.DeriveCounts(ctx, local).Completed != 1 {
		t.Fatal("record not filed under the local date")
	}
	if store.DeriveCounts(ctx, utc).Completed != 0 {
		t.Fatal("record filed under the UTC date")
	}
}

func TestInvalidDurationsIgnored(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	eng := New(timer.NewManual(), nil, log, WithDurations(Durations{Work: 0, ShortBreak: 1, LongBreak: 1}))
	if eng.Durations() != DefaultDurations() {
		t.Fatalf("expected defaults, got %+v", eng.Durations())
	}
}

func TestTickPeriodPassedToSource(t *testing.T) {
	eng, ticks, _, ctx := setupEngine(t, WithTickPeriod(250*time.Millisecond))
	eng.Start(ctx)
	if ticks.Period() != 250*time.Millisecond {
		t.Fatalf("expected 250ms period, got %s", ticks.Period())
	}
}
