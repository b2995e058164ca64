package tool

import (
	"sort"

	"github.com/bkyoung/qualgate/internal/domain"
)

// ParseOutput is what a format parser extracts from a tool's stdout.
type ParseOutput struct {
	Issues  []domain.Issue
	Metrics domain.Metrics
}

// ParseFunc turns one tool's raw stdout into normalized issues or metrics.
type ParseFunc func(raw []byte, spec domain.ToolSpec) (ParseOutput, error)

var parsers = map[string]ParseFunc{
	"flake8":      parseFlake8,
	"mypy":        parseMypy,
	"bandit":      parseBandit,
	"checkstyle":  parseCheckstyle,
	"diff":        parseDiff,
	"cobertura":   parseCobertura,
	"duplication": parseDuplication,
}

// SupportedParsers returns the registered parser names, sorted.
func SupportedParsers() []string {
	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
