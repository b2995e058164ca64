package tool

import (
	"bufio"
	"bytes"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bkyoung/qualgate/internal/domain"
)

// mypy default output: path:line: error: message  [error-code]
// With --show-column-numbers the column slots in after the line.
var mypyLine = regexp.MustCompile(`^(.+?):(\d+):(?:(\d+):)?\s*(error|warning|note):\s*(.*?)(?:\s+\[([a-z0-9-]+)\])?$`)

func parseMypy(raw []byte, spec domain.ToolSpec) (ParseOutput, error) {
	var out ParseOutput
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := mypyLine.FindStringSubmatch(line)
		if m == nil {
			// Summary line ("Found 3 errors in 1 file") and friends.
			continue
		}

		lineNo, _ := strconv.Atoi(m[2])
		colNo := 0
		if m[3] != "" {
			colNo, _ = strconv.Atoi(m[3])
		}

		label := m[4]
		ruleID := m[6]
		if ruleID == "" {
			ruleID = label
		}

		out.Issues = append(out.Issues, domain.NewIssue(domain.IssueInput{
			Tool:      spec.Name,
			File:      filepath.ToSlash(m[1]),
			Line:      lineNo,
			Column:    colNo,
			Severity:  spec.MapSeverity(label, mypySeverity(label)),
			RuleID:    ruleID,
			RuleClass: domain.ClassTypeError,
			Message:   m[5],
			Raw:       line,
		}))
	}
	if err := scanner.Err(); err != nil {
		return ParseOutput{}, err
	}
	return out, nil
}

func mypySeverity(label string) domain.Severity {
	switch label {
	case "error":
		return domain.SeverityHigh
	case "warning":
		return domain.SeverityMedium
	default:
		return domain.SeverityInfo
	}
}
