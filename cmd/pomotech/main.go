// PomoTech is a terminal Pomodoro timer with per-day statistics.
//
// Usage:
//
//	pomotech [--test-mode] [--store file|sqlite|memory] [--verbose] [--quiet]
//	pomotech stats [YYYY-MM-DD]
//	pomotech week [YYYY-MM-DD]
//	pomotech history
package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/pomotech/internal/config"
	"github.com/hammamikhairi/pomotech/internal/logger"
	"github.com/hammamikhairi/pomotech/internal/stats"
	"github.com/hammamikhairi/pomotech/internal/storage"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	verbose    bool
	quiet      bool
	logFile    string
	testMode   bool
	store      string
	storePath  string
	noSound    bool
	noDesktop  bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pomotech",
		Short: "A Pomodoro timer for the terminal",
		Long: `pomotech runs work sessions and breaks on the Pomodoro schedule
(25 minute work, 5 minute short break, 15 minute long break after every
fourth work session) and keeps a per-day log of completed and cancelled
sessions.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, opts)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", config.DefaultPath, "config file (.toml, .yaml or .yml)")
	f.BoolVar(&opts.verbose, "verbose", false, "enable verbose/debug logging")
	f.BoolVar(&opts.quiet, "quiet", false, "disable all logging")
	f.StringVar(&opts.logFile, "log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	f.BoolVar(&opts.testMode, "test-mode", false, "shorten every phase to one second")
	f.StringVar(&opts.store, "store", "", "statistics backend: file, sqlite or memory")
	f.StringVar(&opts.storePath, "store-path", "", "statistics file or database path")
	f.BoolVar(&opts.noSound, "no-sound", false, "do not ring the chime")
	f.BoolVar(&opts.noDesktop, "no-desktop", false, "do not raise desktop notifications")

	root.AddCommand(newStatsCmd(opts), newWeekCmd(opts), newHistoryCmd(opts))
	return root
}

// loadConfig layers the config file, the environment and the flags.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("test-mode") {
		cfg.Timer.TestMode = opts.testMode
	}
	if flags.Changed("store") {
		cfg.SetBackend(opts.store)
	}
	if flags.Changed("store-path") {
		cfg.Store.Path = opts.storePath
	}
	if opts.noSound {
		off := false
		cfg.Notify.Sound = &off
	}
	if opts.noDesktop {
		off := false
		cfg.Notify.Desktop = &off
	}
	if opts.verbose {
		cfg.Log.Level = logger.LevelVerbose.String()
	}
	if opts.quiet {
		cfg.Log.Level = logger.LevelOff.String()
	}
	if flags.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}
	return cfg, nil
}

// openLog directs logs to a file by default so the screen stays clean.
// The returned close function is never nil.
func openLog(cfg *config.Config) (*logger.Logger, func(), error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, func() {}, err
	}

	var logOut io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.Log.File != "" && cfg.Log.File != "stderr" {
		if dir := filepath.Dir(cfg.Log.File); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.Log.File, err)
		} else {
			logOut = f
			closeFn = func() { f.Close() }
		}
	}

	// Route the standard log package (used by third-party libraries) to
	// the same place.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	return logger.New(level, logOut), closeFn, nil
}

// deps are the pieces every command needs.
type deps struct {
	cfg   *config.Config
	log   *logger.Logger
	stats *stats.Store
	close func()
}

func setup(ctx context.Context, cmd *cobra.Command, opts *options) (*deps, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := openLog(cfg)
	if err != nil {
		return nil, err
	}

	kv, closeKV, err := storage.Open(ctx, cfg.Store.Backend, cfg.Store.Path, log.Named("storage"))
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	log.Info("statistics store: %s (%s)", cfg.Store.Backend, cfg.Store.Path)

	return &deps{
		cfg:   cfg,
		log:   log,
		stats: stats.New(kv, log.Named("stats")),
		close: func() {
			if err := closeKV(); err != nil {
				log.Error("closing store: %v", err)
			}
			closeLog()
		},
	}, nil
}
