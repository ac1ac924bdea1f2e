package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/pomotech/internal/chime"
	"github.com/hammamikhairi/pomotech/internal/command"
	"github.com/hammamikhairi/pomotech/internal/config"
	"github.com/hammamikhairi/pomotech/internal/cursor"
	"github.com/hammamikhairi/pomotech/internal/display"
	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/engine"
	"github.com/hammamikhairi/pomotech/internal/logger"
	"github.com/hammamikhairi/pomotech/internal/notify"
	"github.com/hammamikhairi/pomotech/internal/timer"
)

func runInteractive(cmd *cobra.Command, opts *options) error {
	// Cancelled when the UI quits.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d, err := setup(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer d.close()
	log := d.log

	durations := engine.DefaultDurations()
	if d.cfg.Timer.TestMode {
		durations = engine.TestModeDurations()
		log.Info("test mode: every phase lasts one second")
	}

	ticker := timer.New(log.Named("timer"), timer.WithContext(ctx))
	defer ticker.Close()

	eng := engine.New(ticker, d.stats, log.Named("engine"),
		engine.WithDurations(durations),
		engine.WithTickPeriod(d.cfg.TickPeriod()),
	)
	days := cursor.New(d.stats)
	ui := display.NewUI(eng.Snapshot)

	notifier, closeNotifier := buildNotifier(d.cfg, ui, log)
	defer closeNotifier()

	app := &cliApp{
		engine:   eng,
		stats:    d.stats,
		cursor:   days,
		parser:   command.NewKeywordParser(log.Named("command")),
		notifier: notifier,
		log:      log,
		ui:       ui,
	}
	eng.OnPhaseCompleted(func(ev domain.PhaseEvent) { app.onPhaseEvent(ctx, ev) })

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type 'start' to begin, 'help' for commands, 'quit' to exit."))
	fmt.Println(display.BannerStyle.Render("  " + display.RenderDay(days.Current(ctx))))
	fmt.Println()

	go func() {
		ui.WaitReady()
		app.run(ctx, ui.InputChan())
		ui.Quit()
	}()

	// Bubble Tea owns the terminal and blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	return nil
}

// buildNotifier assembles the terminal notifier, the desktop notifier when
// a session bus is reachable, and the chime. The close function is never
// nil.
func buildNotifier(cfg *config.Config, ui *display.UI, log *logger.Logger) (domain.Notifier, func()) {
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	notifiers := notify.Multi{notify.NewCLI(log.Named("notify"), ui.Printf)}

	if cfg.DesktopEnabled() {
		desktop, err := notify.NewDesktop(log.Named("desktop"))
		if err != nil {
			log.Warn("desktop notifications disabled: %v", err)
		} else {
			notifiers = append(notifiers, desktop)
			closers = append(closers, func() { desktop.Close() })
		}
	}

	var ringer chime.Ringer = chime.NewSilent(log.Named("chime"))
	if cfg.SoundEnabled() {
		player, err := chime.NewPlayer(log.Named("chime"))
		if err != nil {
			log.Warn("audio player init failed, chime disabled: %v", err)
		} else {
			ringer = player
			closers = append(closers, player.Stop)
		}
	}
	return notify.NewChiming(notifiers, ringer, log.Named("chime")), closeAll
}
