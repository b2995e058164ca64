// Package pipeline sequences tool adapters over a target set with bounded
// concurrency and independent per-tool cancellation.
package pipeline

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/bkyoung/qualgate/internal/domain"
)

// ToolRunner defines the outbound port for executing one tool.
type ToolRunner interface {
	Run(ctx context.Context, targets []string, spec domain.ToolSpec) domain.RunResult
}

// Logger is the subset of a sugared logger the runner needs. Optional.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
}

// Runner executes enabled tool specs concurrently. Adapters share no mutable
// state, so the only coordination point is the results map.
type Runner struct {
	tool    ToolRunner
	workers int
	logger  Logger
}

// NewRunner wires a pipeline runner. workers <= 0 means one worker per CPU.
func NewRunner(tool ToolRunner, workers int, logger Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{tool: tool, workers: workers, logger: logger}
}

// Execute runs every enabled spec over the targets and returns one RunResult
// per tool. When ctx expires mid-run, completed results are preserved and
// tools that never started are reported as timed out rather than dropped.
func (r *Runner) Execute(ctx context.Context, targets []string, specs []domain.ToolSpec) map[string]domain.RunResult {
	enabled := make([]domain.ToolSpec, 0, len(specs))
	for _, spec := range specs {
		if spec.Enabled {
			enabled = append(enabled, spec)
		}
	}

	results := make(map[string]domain.RunResult, len(enabled))
	if len(enabled) == 0 {
		return results
	}

	workers := r.workers
	if workers > len(enabled) {
		workers = len(enabled)
	}

	jobs := make(chan domain.ToolSpec)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for spec := range jobs {
				var result domain.RunResult
				if err := ctx.Err(); err != nil {
					result = pendingResult(spec, err)
					if r.logger != nil {
						r.logger.Warnw("run ended before tool started",
							"tool", spec.Name, "cause", err.Error())
					}
				} else {
					if r.logger != nil {
						r.logger.Debugw("running tool", "tool", spec.Name, "command", spec.Command)
					}
					result = r.tool.Run(ctx, targets, spec)
				}
				mu.Lock()
				results[spec.Name] = result
				mu.Unlock()
			}
		}()
	}

	for _, spec := range enabled {
		jobs <- spec
	}
	close(jobs)
	wg.Wait()

	return results
}

// pendingResult records a tool that never started. A fired global deadline
// means TIMEOUT; an interrupt means TOOL_FAILED, matching how in-flight tools
// report cancellation. Either way the output is untrusted.
func pendingResult(spec domain.ToolSpec, cause error) domain.RunResult {
	if errors.Is(cause, context.DeadlineExceeded) {
		return domain.RunResult{
			Tool:   spec.Name,
			Status: domain.StatusTimeout,
			Stderr: "run deadline exceeded before tool started",
		}
	}
	return domain.RunResult{
		Tool:   spec.Name,
		Status: domain.StatusToolFailed,
		Stderr: "run cancelled before tool started",
	}
}
