// Package tool wraps external analysis tools behind the shared
// run-to-RunResult contract. Each supported output format has its own
// parser; the rest of the system never sees format-specific detail.
package tool

import (
	"context"
	"errors"
	"strings"

	"github.com/bkyoung/qualgate/internal/adapter/exec"
	"github.com/bkyoung/qualgate/internal/domain"
)

// targetsPlaceholder expands to the target path list inside a tool's
// configured argument vector.
const targetsPlaceholder = "{targets}"

// Runner executes configured tools and normalizes their output.
type Runner struct{}

// NewRunner constructs a tool runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Supports reports whether a parser with the given name is registered.
func (r *Runner) Supports(parser string) bool {
	_, ok := parsers[parser]
	return ok
}

// Run invokes one tool over the target set and returns its RunResult. It
// never returns an error: every failure mode is captured as data in the
// result so one broken tool cannot abort the rest of the run.
func (r *Runner) Run(ctx context.Context, targets []string, spec domain.ToolSpec) domain.RunResult {
	parse, ok := parsers[spec.Parser]
	if !ok {
		// Config validation rejects unknown parsers at startup; reaching
		// this means the runner was wired without it.
		return domain.RunResult{
			Tool:   spec.Name,
			Status: domain.StatusToolFailed,
			Stderr: "no parser registered for " + spec.Parser,
		}
	}

	args := expandArgs(spec.Args, targets)

	execResult, err := exec.Run(ctx, spec.Timeout, spec.Command, args)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return domain.RunResult{
				Tool:   spec.Name,
				Status: domain.StatusToolNotFound,
				Stderr: err.Error(),
			}
		}
		// Cancellation or a start failure. Partial output is untrusted.
		return domain.RunResult{
			Tool:     spec.Name,
			Status:   domain.StatusToolFailed,
			Duration: execResult.Duration,
			Stdout:   string(execResult.Stdout),
			Stderr:   joinDiagnostics(execResult.Stderr, err.Error()),
		}
	}

	if execResult.TimedOut {
		return domain.RunResult{
			Tool:     spec.Name,
			Status:   domain.StatusTimeout,
			Duration: execResult.Duration,
			Stdout:   string(execResult.Stdout),
			Stderr:   joinDiagnostics(execResult.Stderr, "timed out"),
		}
	}

	if !spec.AcceptsExitCode(execResult.ExitCode) {
		return domain.RunResult{
			Tool:     spec.Name,
			Status:   domain.StatusToolFailed,
			Duration: execResult.Duration,
			Stdout:   string(execResult.Stdout),
			Stderr:   string(execResult.Stderr),
		}
	}

	parsed, err := parse(execResult.Stdout, spec)
	if err != nil {
		// Malformed output degrades to TOOL_FAILED with the raw output
		// preserved for diagnostics.
		return domain.RunResult{
			Tool:     spec.Name,
			Status:   domain.StatusToolFailed,
			Duration: execResult.Duration,
			Stdout:   string(execResult.Stdout),
			Stderr:   joinDiagnostics(execResult.Stderr, "parse output: "+err.Error()),
		}
	}

	return domain.RunResult{
		Tool:     spec.Name,
		Status:   domain.StatusSuccess,
		Issues:   parsed.Issues,
		Metrics:  parsed.Metrics,
		Duration: execResult.Duration,
		Stdout:   string(execResult.Stdout),
		Stderr:   string(execResult.Stderr),
	}
}

// expandArgs substitutes the targets placeholder. When the configured
// arguments never mention it, targets are appended at the end, which matches
// how most linters expect paths.
func expandArgs(args, targets []string) []string {
	out := make([]string, 0, len(args)+len(targets))
	replaced := false
	for _, arg := range args {
		if arg == targetsPlaceholder {
			out = append(out, targets...)
			replaced = true
			continue
		}
		out = append(out, arg)
	}
	if !replaced {
		out = append(out, targets...)
	}
	return out
}

func joinDiagnostics(stderr []byte, note string) string {
	existing := strings.TrimSpace(string(stderr))
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
