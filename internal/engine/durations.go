package engine

import "github.com/hammamikhairi/pomotech/internal/domain"

// PomodorosUntilLongBreak is how many completed work phases earn a long break.
const PomodorosUntilLongBreak = 4

// Durations holds the fixed length of each phase, in seconds (ticks).
type Durations struct {
	Work       int
	ShortBreak int
	LongBreak  int
}

// DefaultDurations returns the standard 25/5/15 minute cycle.
func DefaultDurations() Durations {
	return Durations{
		Work:       25 * 60,
		ShortBreak: 5 * 60,
		LongBreak:  15 * 60,
	}
}

// TestModeDurations returns one-second phases, so a full four-pomodoro
// cycle runs in seconds.
func TestModeDurations() Durations {
	return Durations{Work: 1, ShortBreak: 1, LongBreak: 1}
}

// For returns the length of phase p.
func (d Durations) For(p domain.Phase) int {
	switch p {
	case domain.PhaseShortBreak:
		return d.ShortBreak
	case domain.PhaseLongBreak:
		return d.LongBreak
	default:
		return d.Work
	}
}

func (d Durations) valid() bool {
	return d.Work > 0 && d.ShortBreak > 0 && d.LongBreak > 0
}
