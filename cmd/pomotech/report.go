package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/pomotech/internal/cursor"
	"github.com/hammamikhairi/pomotech/internal/display"
	"github.com/hammamikhairi/pomotech/internal/domain"
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [YYYY-MM-DD]",
		Short: "Print one day's counts (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := domain.DateOf(time.Now())
			date, err := dateArg(args, today)
			if err != nil {
				return err
			}

			d, err := setup(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer d.close()

			view := cursor.New(d.stats).Peek(cmd.Context(), date)
			fmt.Fprintln(cmd.OutOrStdout(), display.RenderDay(view))
			return nil
		},
	}
}

func newWeekCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "week [YYYY-MM-DD]",
		Aliases: []string{"chart"},
		Short:   "Print the completed-session chart of the 7 days ending at a date",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := domain.DateOf(time.Now())
			end, err := dateArg(args, today)
			if err != nil {
				return err
			}

			d, err := setup(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer d.close()

			fmt.Fprint(cmd.OutOrStdout(), display.RenderWeek(d.stats.Week(cmd.Context(), end), today))
			return nil
		},
	}
}

// dateArg returns the date in args, or def when there is none.
func dateArg(args []string, def domain.Date) (domain.Date, error) {
	if len(args) == 0 {
		return def, nil
	}
	return domain.ParseDate(args[0])
}

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the counts of every recorded day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer d.close()

			days, err := d.stats.Days(cmd.Context())
			if err != nil {
				return err
			}
			if len(days) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded yet.")
				return nil
			}

			c := cursor.New(d.stats)
			for _, day := range days {
				fmt.Fprintln(cmd.OutOrStdout(), display.RenderDay(c.Peek(cmd.Context(), day)))
			}
			return nil
		},
	}
}
