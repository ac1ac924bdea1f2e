// Package engine implements the core pomodoro session state machine.
//
// The machine is either idle or running in one of three phases. Start
// begins the countdown of the current phase, each tick takes one second off,
// and reaching zero files the phase's record in the statistics log and
// moves to the next phase, idle. Cancel files a cancelled record and drops
// back to an idle work phase.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Option configures the engine.
type Option func(*Engine)

// WithDurations sets the phase lengths. Lengths that are not all positive
// are ignored.
func WithDurations(d Durations) Option {
	return func(e *Engine) {
		if d.valid() {
			e.durations = d
		}
	}
}

// WithTickPeriod sets how long one countdown second lasts on the wall clock.
func WithTickPeriod(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.period = d
		}
	}
}

// WithClock sets the time source used to pick the record's calendar date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Listener is called after every completed or cancelled phase, once the
// record is stored and the new phase is in place.
type Listener func(domain.PhaseEvent)

// WithListener registers a phase-completion listener at construction time.
func WithListener(fn Listener) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, fn)
	}
}

// Snapshot is a consistent view of the session state.
type Snapshot struct {
	Phase            domain.Phase
	RemainingSeconds int
	TotalSeconds     int
	Running          bool
	CompletedWork    int
}

// Progress returns the elapsed fraction of the current phase, 0 to 1.
func (s Snapshot) Progress() float64 {
	if s.TotalSeconds <= 0 {
		return 0
	}
	return float64(s.TotalSeconds-s.RemainingSeconds) / float64(s.TotalSeconds)
}

// Engine is the session state machine. It depends only on interfaces and is
// fully testable with a manual tick source and an in-memory store.
//
// All state changes happen under one lock, so a tick is handled to
// completion before the next one, and a phase record is stored before any
// reader can see the phase flip. Listeners run after the lock is released.
type Engine struct {
	ticks    domain.TickSource
	recorder domain.StatsRecorder
	log      *logger.Logger

	durations Durations
	period    time.Duration
	now       func() time.Time

	mu            sync.Mutex
	ctx           context.Context
	phase         domain.Phase
	remaining     int
	total         int
	running       bool
	completedWork int // process lifetime; drives the long-break cadence only
	stop          func()
	gen           uint64 // bumped on every start; stale ticks are dropped

	listenersMu sync.RWMutex
	listeners   []Listener
}

// New creates an idle engine in the work phase.
func New(ticks domain.TickSource, recorder domain.StatsRecorder, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		ticks:     ticks,
		recorder:  recorder,
		log:       log,
		durations: DefaultDurations(),
		period:    time.Second,
		now:       time.Now,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.enterLocked(domain.PhaseWork)
	return e
}

// OnPhaseCompleted registers a listener for completed and cancelled phases.
func (e *Engine) OnPhaseCompleted(fn Listener) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Phase:            e.phase,
		RemainingSeconds: e.remaining,
		TotalSeconds:     e.total,
		Running:          e.running,
		CompletedWork:    e.completedWork,
	}
}

// Durations returns the phase lengths in use.
func (e *Engine) Durations() Durations {
	return e.durations
}

// Start begins the countdown of the current phase. It returns false and
// does nothing if the countdown is already running. ctx is used for the
// record appends of this run.
func (e *Engine) Start(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.log.Debug("start ignored: %s already running", e.phase)
		return false
	}

	e.ctx = ctx
	e.running = true
	e.gen++
	gen := e.gen
	e.stop = e.ticks.Schedule(e.period, func() { e.tick(gen) })

	e.log.Info("started %s (%ds)", e.phase, e.remaining)
	return true
}

// Cancel abandons the running phase: the countdown stops, a cancelled
// record is filed, and the session returns to an idle work phase with the
// work duration, whatever phase was running. It returns false and does
// nothing when idle. The completed-work count is not touched.
func (e *Engine) Cancel(ctx context.Context) bool {
	e.mu.Lock()

	if !e.running {
		e.mu.Unlock()
		e.log.Debug("cancel ignored: not running")
		return false
	}

	e.haltLocked()
	cancelled := e.phase
	at := e.now()
	e.recordLocked(ctx, at, domain.RecordCancelled)
	e.enterLocked(domain.PhaseWork)

	ev := domain.PhaseEvent{
		Phase:     cancelled,
		Next:      domain.PhaseWork,
		Cancelled: true,
		Kind:      domain.RecordCancelled,
		At:        at,
	}
	e.mu.Unlock()

	e.log.Info("cancelled %s", cancelled)
	e.emit(ev)
	return true
}

// tick handles one countdown second of the schedule started with gen.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()

	if !e.running || gen != e.gen {
		e.mu.Unlock()
		return
	}

	if e.remaining > 1 {
		e.remaining--
		e.mu.Unlock()
		return
	}

	e.remaining = 0
	ev := e.completeLocked()
	e.mu.Unlock()

	e.log.Info("completed %s, next %s", ev.Phase, ev.Next)
	e.emit(ev)
}

// completeLocked files the finished phase and moves to the next one, idle.
func (e *Engine) completeLocked() domain.PhaseEvent {
	e.haltLocked()

	finished := e.phase
	kind := domain.CompletionKind(finished)
	at := e.now()
	e.recordLocked(e.ctx, at, kind)

	next := domain.PhaseWork
	if finished == domain.PhaseWork {
		e.completedWork++
		next = domain.PhaseShortBreak
		if e.completedWork%PomodorosUntilLongBreak == 0 {
			next = domain.PhaseLongBreak
		}
	}
	e.enterLocked(next)

	return domain.PhaseEvent{
		Phase: finished,
		Next:  next,
		Kind:  kind,
		At:    at,
	}
}

// haltLocked stops the active schedule.
func (e *Engine) haltLocked() {
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
	e.running = false
}

// enterLocked resets the countdown to the start of phase p.
func (e *Engine) enterLocked(p domain.Phase) {
	e.phase = p
	e.total = e.durations.For(p)
	e.remaining = e.total
}

// recordLocked appends to the statistics log. A failed write is logged and
// the timer carries on.
func (e *Engine) recordLocked(ctx context.Context, at time.Time, kind domain.RecordKind) {
	if e.recorder == nil {
		return
	}
	date := domain.DateOf(at)
	if err := e.recorder.Append(ctx, date, kind); err != nil {
		e.log.Error("recording %s for %s: %v", kind, date, err)
	}
}

func (e *Engine) emit(ev domain.PhaseEvent) {
	e.listenersMu.RLock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(ev)
	}
}
