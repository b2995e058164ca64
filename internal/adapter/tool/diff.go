package tool

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/bkyoung/qualgate/internal/domain"
)

// parseDiff handles formatter check modes (black/isort --check --diff):
// every `--- path` hunk header becomes one issue saying the file would be
// reformatted. The diff body itself is preserved as the raw payload.
func parseDiff(raw []byte, spec domain.ToolSpec) (ParseOutput, error) {
	var out ParseOutput
	seen := map[string]bool{}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "--- ") {
			continue
		}
		path := diffHeaderPath(line)
		if path == "" || path == "/dev/null" || seen[path] {
			continue
		}
		seen[path] = true

		out.Issues = append(out.Issues, domain.NewIssue(domain.IssueInput{
			Tool:      spec.Name,
			File:      filepath.ToSlash(path),
			Severity:  spec.MapSeverity("reformat", domain.SeverityInfo),
			RuleID:    "reformat",
			RuleClass: domain.ClassStyle,
			Message:   "file would be reformatted",
			Raw:       line,
		}))
	}
	if err := scanner.Err(); err != nil {
		return ParseOutput{}, err
	}
	return out, nil
}

// diffHeaderPath strips the `--- ` prefix plus any trailing tab-separated
// annotation (black appends a timestamp after a tab).
func diffHeaderPath(line string) string {
	rest := strings.TrimPrefix(line, "--- ")
	if i := strings.IndexByte(rest, '\t'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}
