// Package notify delivers phase-change messages to the user: on the
// terminal, as desktop notifications, and with a chime.
package notify

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLI)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	red   = "\033[31m"
	cyan  = "\033[36m"
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// CLI writes notifications to the terminal with ANSI formatting.
type CLI struct {
	log     *logger.Logger
	printFn PrintFunc
}

// NewCLI creates a terminal notifier.
// If printFn is nil, fmt.Printf is used.
func NewCLI(log *logger.Logger, printFn PrintFunc) *CLI {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &CLI{log: log, printFn: printFn}
}

// Notify prints a normal notification.
func (n *CLI) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.printFn("%s%s%s%s", cyan, bold, message, reset)
	return nil
}

// NotifyUrgent prints an urgent notification in bold red.
func (n *CLI) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.printFn("%s%s%s%s", red, bold, message, reset)
	return nil
}
