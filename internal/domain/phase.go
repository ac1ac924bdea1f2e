// Package domain defines the core types and interfaces for the pomodoro timer.
// All other packages depend on domain; domain depends on nothing.
package domain

import "time"

// Phase is one unit of countdown in the pomodoro cycle.
type Phase int

const (
	PhaseWork Phase = iota
	PhaseShortBreak
	PhaseLongBreak
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseWork:
		return "work"
	case PhaseShortBreak:
		return "shortBreak"
	case PhaseLongBreak:
		return "longBreak"
	default:
		return "unknown"
	}
}

// Title returns the display name of the phase.
func (p Phase) Title() string {
	switch p {
	case PhaseWork:
		return "Work"
	case PhaseShortBreak:
		return "Short Break"
	case PhaseLongBreak:
		return "Long Break"
	default:
		return "Unknown"
	}
}

// IsBreak reports whether the phase is a short or long break.
func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

// RecordKind is the terminal outcome stored in a day's log.
type RecordKind int

const (
	RecordWork RecordKind = iota
	RecordShortBreak
	RecordLongBreak
	RecordCancelled
)

// String returns the persisted name of the record kind.
func (k RecordKind) String() string {
	switch k {
	case RecordWork:
		return "work"
	case RecordShortBreak:
		return "shortBreak"
	case RecordLongBreak:
		return "longBreak"
	case RecordCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// recordKinds maps persisted names to RecordKind values.
var recordKinds = map[string]RecordKind{
	"work":       RecordWork,
	"shortBreak": RecordShortBreak,
	"longBreak":  RecordLongBreak,
	"cancelled":  RecordCancelled,
}

// RecordKindFromString parses a persisted record type.
// The second return is false for names this version does not know.
func RecordKindFromString(name string) (RecordKind, bool) {
	k, ok := recordKinds[name]
	return k, ok
}

// CompletionKind returns the record kind filed when phase p runs out.
func CompletionKind(p Phase) RecordKind {
	switch p {
	case PhaseShortBreak:
		return RecordShortBreak
	case PhaseLongBreak:
		return RecordLongBreak
	default:
		return RecordWork
	}
}

// PhaseEvent is emitted on every terminal transition of the session.
type PhaseEvent struct {
	Phase     Phase // the phase that ended
	Next      Phase // the phase the session rests in afterwards
	Cancelled bool
	Kind      RecordKind
	At        time.Time
}

// CompletionMessage is the user-facing text for a finished phase.
func CompletionMessage(p Phase) string {
	if p.IsBreak() {
		return "Break is over! Time to work."
	}
	return "Work session completed! Time for a break."
}
