// Package command turns typed or spoken text into timer commands.
package command

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/logger"
)

// Parser matches user input to commands using keywords and simple patterns.
type Parser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex   *regexp.Regexp
	command domain.Command
}

// NewParser creates a keyword-based command parser.
func NewParser(log *logger.Logger) *Parser {
	p := &Parser{log: log}
	// Order matters: the more specific phrasings come first so "start deep
	// work" is a mode switch rather than a start.
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)\b(deep ?work|long focus|hour)\b`), domain.CommandModeDeepWork},
		{regexp.MustCompile(`(?i)\b(pomodoro|tomato|classic)\b`), domain.CommandModePomodoro},
		{regexp.MustCompile(`(?i)^(m|mode|switch|switch mode|change mode|other mode)$`), domain.CommandSwitchMode},
		{regexp.MustCompile(`(?i)\b(next|change|new|switch) (background|wallpaper|bg|theme)\b`), domain.CommandNextBackground},
		{regexp.MustCompile(`(?i)^(b|bg|background)$`), domain.CommandNextBackground},
		{regexp.MustCompile(`(?i)\b(power ?save|battery|dim|low power)\b`), domain.CommandPowerSave},
		{regexp.MustCompile(`(?i)^p$`), domain.CommandPowerSave},
		{regexp.MustCompile(`(?i)\b(reset|restart|start over)\b`), domain.CommandReset},
		{regexp.MustCompile(`(?i)^r$`), domain.CommandReset},
		{regexp.MustCompile(`(?i)\b(skip|next phase|move on)\b`), domain.CommandSkip},
		{regexp.MustCompile(`(?i)^s$`), domain.CommandSkip},
		{regexp.MustCompile(`(?i)\b(pause|hold|wait|stop)\b`), domain.CommandPause},
		{regexp.MustCompile(`(?i)\b(resume|start|go|begin|continue|unpause)\b`), domain.CommandStart},
		{regexp.MustCompile(`(?i)^(toggle|space|play|play pause)$`), domain.CommandToggle},
		{regexp.MustCompile(`(?i)^(q|quit|exit|bye|goodbye)$`), domain.CommandQuit},
	}
	return p
}

// Parse converts input into a command. Input nothing matches returns
// domain.ErrUnknownCommand.
func (p *Parser) Parse(input string) (domain.Command, error) {
	trimmed := normalize(input)
	if trimmed == "" {
		return domain.CommandUnknown, fmt.Errorf("empty input: %w", domain.ErrUnknownCommand)
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched command: %s", rule.command)
			return rule.command, nil
		}
	}

	p.log.Debug("no match for %q", trimmed)
	return domain.CommandUnknown, fmt.Errorf("%q: %w", trimmed, domain.ErrUnknownCommand)
}

// normalize lowercases, trims and strips the punctuation speech
// recognisers like to append.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '!', '?', ';', ':', '"':
			return -1
		case '-', '_':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
