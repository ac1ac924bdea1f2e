package domain

// CommandType classifies what the user wants to do.
type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandStart
	CommandCancel
	CommandPrevDay
	CommandNextDay
	CommandToday
	CommandStats
	CommandWeek
	CommandStatus
	CommandHelp
	CommandQuit
)

// String returns a human-readable command type.
func (c CommandType) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandCancel:
		return "cancel"
	case CommandPrevDay:
		return "prev_day"
	case CommandNextDay:
		return "next_day"
	case CommandToday:
		return "today"
	case CommandStats:
		return "stats"
	case CommandWeek:
		return "week"
	case CommandStatus:
		return "status"
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command represents a parsed user action.
type Command struct {
	Type    CommandType
	Payload string // raw input for unknown commands, date for stats/week
}
