package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/hammamikhairi/pomotech/internal/cursor"
	"github.com/hammamikhairi/pomotech/internal/display"
	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/engine"
	"github.com/hammamikhairi/pomotech/internal/logger"
	"github.com/hammamikhairi/pomotech/internal/stats"
)

// output is the part of the display the REPL writes to.
type output interface {
	PrintInfo(text string)
	PrintHint(text string)
	PrintUrgent(text string)
	PrintBlock(text string)
	Quit()
}

type cliApp struct {
	engine   *engine.Engine
	stats    *stats.Store
	cursor   *cursor.Cursor
	parser   domain.CommandParser
	notifier domain.Notifier
	log      *logger.Logger
	ui       output
}

func (a *cliApp) run(ctx context.Context, inputCh <-chan string) {
	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-inputCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		cmd, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("command: %s (payload=%q)", cmd.Type, cmd.Payload)
		if quit := a.handleCommand(ctx, cmd); quit {
			return
		}
	}
}

// handleCommand runs one command. It reports whether the REPL should exit.
func (a *cliApp) handleCommand(ctx context.Context, cmd *domain.Command) bool {
	switch cmd.Type {
	case domain.CommandStart:
		a.start(ctx)
	case domain.CommandCancel:
		a.cancel(ctx)
	case domain.CommandPrevDay:
		a.ui.PrintInfo(display.RenderDay(a.cursor.Step(ctx, -1)))
	case domain.CommandNextDay:
		a.nextDay(ctx)
	case domain.CommandToday:
		a.ui.PrintInfo(display.RenderDay(a.cursor.Reset(ctx)))
	case domain.CommandStats:
		a.showStats(ctx, cmd.Payload)
	case domain.CommandWeek:
		a.showWeek(ctx, cmd.Payload)
	case domain.CommandStatus:
		a.status()
	case domain.CommandHelp:
		a.showHelp()
	case domain.CommandQuit:
		a.quit(ctx)
		return true
	default:
		a.ui.PrintHint(fmt.Sprintf("I didn't catch %q. Type 'help' for commands.", cmd.Payload))
	}
	return false
}

func (a *cliApp) start(ctx context.Context) {
	if !a.engine.Start(ctx) {
		a.ui.PrintHint("Already running. Type 'cancel' to stop.")
		return
	}
	snap := a.engine.Snapshot()
	a.ui.PrintInfo(fmt.Sprintf("%s started (%s).", snap.Phase.Title(), display.FormatClock(snap.RemainingSeconds)))
}

func (a *cliApp) cancel(ctx context.Context) {
	if !a.engine.Cancel(ctx) {
		a.ui.PrintHint("Nothing is running.")
		return
	}
	a.ui.PrintInfo("Cancelled. Back to work when you're ready.")
	a.refreshToday(ctx)
}

func (a *cliApp) nextDay(ctx context.Context) {
	if a.cursor.Current(ctx).AtToday {
		a.ui.PrintHint("Already at today.")
		return
	}
	a.ui.PrintInfo(display.RenderDay(a.cursor.Step(ctx, 1)))
}

func (a *cliApp) showStats(ctx context.Context, payload string) {
	if payload == "" {
		a.ui.PrintInfo(display.RenderDay(a.cursor.Current(ctx)))
		return
	}
	date, err := domain.ParseDate(payload)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	a.ui.PrintInfo(display.RenderDay(a.cursor.Peek(ctx, date)))
}

func (a *cliApp) showWeek(ctx context.Context, payload string) {
	end := a.cursor.Date()
	if payload != "" {
		d, err := domain.ParseDate(payload)
		if err != nil {
			a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
			return
		}
		end = d
	}
	a.ui.PrintBlock(display.RenderWeek(a.stats.Week(ctx, end), a.cursor.Today()))
}

func (a *cliApp) status() {
	snap := a.engine.Snapshot()
	state := "idle"
	if snap.Running {
		state = "running"
	}
	a.ui.PrintInfo(fmt.Sprintf("%s %s (%s)", snap.Phase.Title(), display.FormatClock(snap.RemainingSeconds), state))

	d := a.engine.Durations()
	a.ui.PrintHint(fmt.Sprintf("Phases: work %s, short break %s, long break %s",
		display.FormatClock(d.Work), display.FormatClock(d.ShortBreak), display.FormatClock(d.LongBreak)))
	a.ui.PrintHint(fmt.Sprintf("Work sessions this run: %d", snap.CompletedWork))
}

// onPhaseEvent runs after a phase has been recorded.
func (a *cliApp) onPhaseEvent(ctx context.Context, ev domain.PhaseEvent) {
	if ev.Cancelled {
		return
	}
	if err := a.notifier.NotifyUrgent(ctx, domain.CompletionMessage(ev.Phase)); err != nil {
		a.log.Error("notifying: %v", err)
	}
	a.ui.PrintHint(fmt.Sprintf("Next: %s. Type 'start' when ready.", ev.Next.Title()))
	a.refreshToday(ctx)
}

// refreshToday reprints the day summary when the displayed day is the one
// that just changed.
func (a *cliApp) refreshToday(ctx context.Context) {
	view := a.cursor.Current(ctx)
	if view.AtToday {
		a.ui.PrintInfo(display.RenderDay(view))
	}
}

func (a *cliApp) quit(ctx context.Context) {
	if a.engine.Snapshot().Running {
		a.log.Info("quitting with %s still running; nothing recorded", a.engine.Snapshot().Phase)
	}
	a.ui.PrintHint("Bye!")
	a.ui.Quit()
}

func (a *cliApp) showHelp() {
	a.ui.PrintInfo("Commands:")
	a.ui.PrintInfo("  start / s          Start the current phase")
	a.ui.PrintInfo("  cancel / stop      Abandon the running phase (back to work)")
	a.ui.PrintInfo("  prev / <           Show the previous day")
	a.ui.PrintInfo("  next / >           Show the next day (up to today)")
	a.ui.PrintInfo("  today / t          Jump back to today")
	a.ui.PrintInfo("  stats [date]       Show a day's counts")
	a.ui.PrintInfo("  week [date]        Chart the 7 days ending at a date")
	a.ui.PrintInfo("  status             Show the current phase")
	a.ui.PrintInfo("  help               Show this message")
	a.ui.PrintInfo("  quit / exit        Exit")
}
