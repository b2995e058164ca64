// Package exec runs external analysis tools as child processes with
// timeouts and process-group cleanup.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"syscall"
	"time"
)

// ErrNotFound indicates the tool binary is absent from the execution
// environment. Callers should not attempt execution again.
var ErrNotFound = errors.New("executable not found")

// Result captures everything observed about one child process invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
	TimedOut bool
}

// Run executes command with args as a discrete argument vector. No shell is
// involved, so target paths and flags are never interpolated into a command
// line. The process and its children are killed as a group when the timeout
// expires or ctx is cancelled.
//
// A nonzero exit code is not an error here; the caller owns exit-code
// semantics. Run returns an error only when the process could not be
// executed at all.
func Run(ctx context.Context, timeout time.Duration, command string, args []string) (Result, error) {
	path, err := osexec.LookPath(command)
	if err != nil {
		if errors.Is(err, osexec.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %s", ErrNotFound, command)
		}
		return Result{}, fmt.Errorf("resolve %s: %w", command, err)
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := osexec.CommandContext(runCtx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Run the child in its own process group so cancellation reaches any
	// grandchildren the tool spawns.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	runErr := cmd.Run()
	result := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
		TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
	}

	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr != nil {
		if result.TimedOut {
			// Killed on the per-tool deadline: observed outcome, not a
			// failure to execute.
			return result, nil
		}
		if ctx.Err() != nil {
			// Parent cancellation (user interrupt). The kill shows up as an
			// ExitError, so this check must come before the exit-code branch.
			return result, ctx.Err()
		}
		var exitErr *osexec.ExitError
		if errors.As(runErr, &exitErr) {
			// Nonzero exit: the caller owns exit-code semantics.
			return result, nil
		}
		return result, fmt.Errorf("run %s: %w", command, runErr)
	}

	return result, nil
}
