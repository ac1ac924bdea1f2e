package timer

import (
	"sync"
	"time"

	"github.com/hammamikhairi/pomotech/internal/domain"
)

// Compile-time interface check.
var _ domain.TickSource = (*Manual)(nil)

// Manual is a tick source that only ticks when told to. Tests use it to
// drive the countdown without waiting on the wall clock.
type Manual struct {
	mu     sync.Mutex
	fn     func()
	period time.Duration
	starts int
	gen    uint64
}

// NewManual creates an idle manual tick source.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule registers fn. Only the latest schedule is kept.
func (m *Manual) Schedule(period time.Duration, fn func()) (stop func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fn = fn
	m.period = period
	m.starts++
	m.gen++
	gen := m.gen

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			// Leave a newer schedule alone.
			if m.gen == gen {
				m.fn = nil
			}
		})
	}
}

// Tick delivers n ticks to the active schedule, stopping early if the
// schedule is stopped. It returns how many ticks were delivered.
func (m *Manual) Tick(n int) int {
	delivered := 0
	for i := 0; i < n; i++ {
		m.mu.Lock()
		fn := m.fn
		m.mu.Unlock()
		if fn == nil {
			break
		}
		fn()
		delivered++
	}
	return delivered
}

// Active reports whether a schedule is registered.
func (m *Manual) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fn != nil
}

// Starts returns how many schedules have been registered in total.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Period returns the period of the latest schedule.
func (m *Manual) Period() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.period
}
