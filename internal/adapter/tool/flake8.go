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

// flake8 default output: path:line:col: CODE message
// The same shape covers pycodestyle and pylint's parseable format.
var flake8Line = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s+([A-Z]+\d+)\s+(.*)$`)

func parseFlake8(raw []byte, spec domain.ToolSpec) (ParseOutput, error) {
	var out ParseOutput
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := flake8Line.FindStringSubmatch(line)
		if m == nil {
			// flake8 interleaves non-finding noise (e.g. warnings about
			// plugins) on stdout; skip anything that is not a finding.
			continue
		}

		lineNo, _ := strconv.Atoi(m[2])
		colNo, _ := strconv.Atoi(m[3])
		code := m[4]
		severity, class := classifyFlake8(code)

		out.Issues = append(out.Issues, domain.NewIssue(domain.IssueInput{
			Tool:      spec.Name,
			File:      filepath.ToSlash(m[1]),
			Line:      lineNo,
			Column:    colNo,
			Severity:  spec.MapSeverity(codePrefix(code), severity),
			RuleID:    code,
			RuleClass: class,
			Message:   m[5],
			Raw:       line,
		}))
	}
	if err := scanner.Err(); err != nil {
		return ParseOutput{}, err
	}
	return out, nil
}

// classifyFlake8 maps flake8's code families onto the shared taxonomy.
// E/W come from pycodestyle, F from pyflakes, C from mccabe complexity.
// Plugin code families we do not recognise get the W treatment.
func classifyFlake8(code string) (domain.Severity, domain.RuleClass) {
	switch codePrefix(code) {
	case "F":
		return domain.SeverityMedium, domain.ClassOther
	case "C":
		return domain.SeverityMedium, domain.ClassComplexity
	case "E":
		return domain.SeverityMedium, domain.ClassStyle
	case "W":
		return domain.SeverityLow, domain.ClassStyle
	default:
		return domain.SeverityLow, domain.ClassStyle
	}
}

func codePrefix(code string) string {
	for i, r := range code {
		if r >= '0' && r <= '9' {
			return code[:i]
		}
	}
	return code
}
