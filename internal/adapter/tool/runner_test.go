package tool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/qualgate/internal/domain"
)

func TestRunner_Supports(t *testing.T) {
	r := NewRunner()
	assert.True(t, r.Supports("flake8"))
	assert.False(t, r.Supports("sonar"))
}

func TestRunner_ToolNotFound(t *testing.T) {
	r := NewRunner()
	spec := domain.ToolSpec{
		Name:    "ghost",
		Command: "definitely-not-installed-anywhere-qg",
		Parser:  "flake8",
	}

	result := r.Run(context.Background(), []string{"."}, spec)

	assert.Equal(t, domain.StatusToolNotFound, result.Status)
	assert.Empty(t, result.Issues)
	assert.Contains(t, result.Stderr, "definitely-not-installed-anywhere-qg")
}

func TestRunner_UnknownParser(t *testing.T) {
	r := NewRunner()
	spec := domain.ToolSpec{Name: "mystery", Command: "true", Parser: "sonar"}

	result := r.Run(context.Background(), []string{"."}, spec)

	assert.Equal(t, domain.StatusToolFailed, result.Status)
	assert.Contains(t, result.Stderr, "no parser registered")
}

func TestRunner_Timeout(t *testing.T) {
	r := NewRunner()
	spec := domain.ToolSpec{
		Name:    "slowpoke",
		Command: "sleep",
		Args:    []string{"10"},
		Parser:  "flake8",
		Timeout: 100 * time.Millisecond,
	}

	start := time.Now()
	result := r.Run(context.Background(), nil, spec)
	elapsed := time.Since(start)

	assert.Equal(t, domain.StatusTimeout, result.Status)
	assert.Empty(t, result.Issues, "a timed-out tool contributes no findings")
	assert.Less(t, elapsed, 5*time.Second, "the child is killed at the deadline")
}

func TestRunner_AcceptedNonzeroExit(t *testing.T) {
	r := NewRunner()
	// flake8 exits 1 when it finds anything; the run is still a success.
	spec := domain.ToolSpec{
		Name:        "flake8",
		Command:     "sh",
		Args:        []string{"-c", `printf 'app.py:1:1: E501 line too long\n'; exit 1`},
		Parser:      "flake8",
		OKExitCodes: []int{1},
		Timeout:     10 * time.Second,
	}

	result := r.Run(context.Background(), nil, spec)

	require.Equal(t, domain.StatusSuccess, result.Status)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "E501", result.Issues[0].RuleID)
}

func TestRunner_RejectedExitCode(t *testing.T) {
	r := NewRunner()
	spec := domain.ToolSpec{
		Name:    "flake8",
		Command: "sh",
		Args:    []string{"-c", "echo boom >&2; exit 2"},
		Parser:  "flake8",
		Timeout: 10 * time.Second,
	}

	result := r.Run(context.Background(), nil, spec)

	assert.Equal(t, domain.StatusToolFailed, result.Status)
	assert.Empty(t, result.Issues)
	assert.Contains(t, result.Stderr, "boom")
}

func TestRunner_ParseFailurePreservesOutput(t *testing.T) {
	r := NewRunner()
	spec := domain.ToolSpec{
		Name:    "bandit",
		Command: "sh",
		Args:    []string{"-c", "echo 'this is not json'"},
		Parser:  "bandit",
		Timeout: 10 * time.Second,
	}

	result := r.Run(context.Background(), nil, spec)

	assert.Equal(t, domain.StatusToolFailed, result.Status)
	assert.Contains(t, result.Stdout, "this is not json")
	assert.Contains(t, result.Stderr, "parse output")
}

func TestExpandArgs(t *testing.T) {
	targets := []string{"src", "tests"}

	t.Run("placeholder replaced in place", func(t *testing.T) {
		got := expandArgs([]string{"-r", "{targets}", "-q"}, targets)
		assert.Equal(t, []string{"-r", "src", "tests", "-q"}, got)
	})

	t.Run("targets appended when absent", func(t *testing.T) {
		got := expandArgs([]string{"--strict"}, targets)
		assert.Equal(t, []string{"--strict", "src", "tests"}, got)
	})

	t.Run("no args at all", func(t *testing.T) {
		got := expandArgs(nil, targets)
		assert.Equal(t, []string{"src", "tests"}, got)
	})
}
