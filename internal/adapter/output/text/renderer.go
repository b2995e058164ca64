// Package text renders the aggregated report as a human-readable summary.
package text

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/qualgate/internal/domain"
)

// maxListedIssues caps the issue listing; the machine-readable formats
// carry the full set.
const maxListedIssues = 25

// Renderer implements the check.Renderer interface for terminal output.
type Renderer struct {
	color bool
}

// NewRenderer creates a text renderer. color enables ANSI verdict
// highlighting and should be on only when writing to a terminal.
func NewRenderer(color bool) *Renderer {
	return &Renderer{color: color}
}

// Render builds the report text. Output is byte-identical for identical
// input and renderer settings.
func (r *Renderer) Render(report domain.AggregatedReport) ([]byte, error) {
	var b strings.Builder
	caser := cases.Title(language.English)

	b.WriteString("Quality Gate Report\n")
	b.WriteString("===================\n\n")
	b.WriteString("Verdict: " + r.paintVerdict(report.Verdict) + "\n\n")

	if len(report.Tools) > 0 {
		b.WriteString("Tools:\n")
		for _, tool := range report.Tools {
			fatal := ""
			if tool.Fatal {
				fatal = " (fatal)"
			}
			fmt.Fprintf(&b, "  %-16s %-15s %8dms  %d issue(s)%s\n",
				tool.Name, tool.Status, tool.Duration.Milliseconds(), tool.Issues, fatal)
		}
		b.WriteString("\n")
	}

	b.WriteString("Summary:\n")
	for i := len(domain.Severities) - 1; i >= 0; i-- {
		severity := domain.Severities[i]
		fmt.Fprintf(&b, "  %-9s %d\n", caser.String(strings.ToLower(string(severity)))+":", report.Summary[severity])
	}
	if report.CoveragePct != nil {
		fmt.Fprintf(&b, "  Coverage: %.1f%%\n", *report.CoveragePct)
	}
	if report.DuplicationPct != nil {
		fmt.Fprintf(&b, "  Duplication: %.1f%%\n", *report.DuplicationPct)
	}
	b.WriteString("\n")

	if len(report.Issues) > 0 {
		fmt.Fprintf(&b, "Issues (%d):\n", len(report.Issues))
		for i, issue := range report.Issues {
			if i == maxListedIssues {
				fmt.Fprintf(&b, "  ... and %d more\n", len(report.Issues)-maxListedIssues)
				break
			}
			location := issue.File
			if issue.Line > 0 {
				location = fmt.Sprintf("%s:%d", issue.File, issue.Line)
			}
			fmt.Fprintf(&b, "  [%s] %s %s %s (%s)\n",
				issue.Severity, location, issue.RuleID, issue.Message, issue.Tool)
		}
		b.WriteString("\n")
	}

	for _, tool := range report.Tools {
		if tool.Status == domain.StatusSuccess {
			continue
		}
		result := report.Results[tool.Name]
		diag := strings.TrimSpace(result.Stderr)
		if diag == "" {
			diag = "(no diagnostics captured)"
		}
		fmt.Fprintf(&b, "%s did not complete (%s):\n  %s\n\n",
			tool.Name, tool.Status, strings.ReplaceAll(diag, "\n", "\n  "))
	}

	return []byte(b.String()), nil
}

func (r *Renderer) paintVerdict(verdict domain.Verdict) string {
	if !r.color {
		return string(verdict)
	}
	switch verdict {
	case domain.VerdictPass:
		return "\033[32m" + string(verdict) + "\033[0m"
	case domain.VerdictFail:
		return "\033[31m" + string(verdict) + "\033[0m"
	default:
		return "\033[33m" + string(verdict) + "\033[0m"
	}
}
