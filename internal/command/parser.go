// Package command turns prompt input into domain commands.
package command

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Compile-time interface check.
var _ domain.CommandParser = (*KeywordParser)(nil)

// KeywordParser matches user input to commands using keywords.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex   *regexp.Regexp
	command domain.CommandType
}

// datedCommand matches "stats 2026-10-14" and "week 2026-10-14".
var datedCommand = regexp.MustCompile(`(?i)^(stats|week|chart|w)\s+(\S+)$`)

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(start|s|go|begin)$`), domain.CommandStart},
		{regexp.MustCompile(`(?i)^(cancel|c|stop|x)$`), domain.CommandCancel},
		{regexp.MustCompile(`(?i)^(prev|p|back|<)$`), domain.CommandPrevDay},
		{regexp.MustCompile(`(?i)^(next|n|forward|>)$`), domain.CommandNextDay},
		{regexp.MustCompile(`(?i)^(today|t)$`), domain.CommandToday},
		{regexp.MustCompile(`(?i)^stats$`), domain.CommandStats},
		{regexp.MustCompile(`(?i)^(week|chart|w)$`), domain.CommandWeek},
		{regexp.MustCompile(`(?i)^status$`), domain.CommandStatus},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.CommandHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.CommandQuit},
	}
	return p
}

// Parse converts user input into a command. It never fails; input that
// matches nothing comes back as CommandUnknown carrying the raw text.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Command, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Command{Type: domain.CommandUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched command: %s", rule.command)
			return &domain.Command{Type: rule.command}, nil
		}
	}

	// Day summary or chart for an explicit date.
	if m := datedCommand.FindStringSubmatch(trimmed); m != nil {
		typ := domain.CommandWeek
		if strings.EqualFold(m[1], "stats") {
			typ = domain.CommandStats
		}
		return &domain.Command{Type: typ, Payload: m[2]}, nil
	}

	p.log.Debug("no match, returning unknown command")
	return &domain.Command{Type: domain.CommandUnknown, Payload: trimmed}, nil
}
