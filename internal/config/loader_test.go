package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/qualgate/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "qg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
tools:
  - name: flake8
    command: flake8
    args: ["{targets}"]
    parser: flake8
    timeout: 60s
    okExitCodes: [1]
  - name: bandit
    command: bandit
    args: ["-f", "json", "-r", "{targets}"]
    parser: bandit
    fatal: true
gate:
  maxIssues:
    high: 0
run:
  workers: 2
  timeout: 5m
output:
  format: json
`)

	cfg, err := config.Load(config.LoaderOptions{ConfigFile: path})
	require.NoError(t, err)

	require.Len(t, cfg.Tools, 2)
	assert.Equal(t, "flake8", cfg.Tools[0].Name)
	assert.Equal(t, []int{1}, cfg.Tools[0].OKExitCodes)
	assert.True(t, cfg.Tools[1].Fatal)
	assert.Equal(t, 2, cfg.Run.Workers)
	assert.Equal(t, "json", cfg.Output.Format)

	gate := cfg.GateConfig()
	assert.Equal(t, 0, gate.MaxPerSeverity["HIGH"])
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
tools:
  - name: mypy
    command: mypy
    parser: mypy
`)

	cfg, err := config.Load(config.LoaderOptions{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Run.Workers, "workers default to CPU count at runtime")
	assert.Equal(t, "10m", cfg.Run.Timeout)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "main", cfg.Git.BaseRef)
}

func TestLoad_ExplicitMissingFileIsError(t *testing.T) {
	_, err := config.Load(config.LoaderOptions{
		ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	assert.Error(t, err)
}

func TestLoad_InvalidConfigNeverPartial(t *testing.T) {
	path := writeConfigFile(t, `
tools:
  - name: flake8
    parser: flake8
`)

	cfg, err := config.Load(config.LoaderOptions{ConfigFile: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command")
	assert.Empty(t, cfg.Tools, "an invalid file must not yield a partial config")
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("QG_TEST_TOOL_HOME", "/opt/tools")
	path := writeConfigFile(t, `
tools:
  - name: flake8
    command: ${QG_TEST_TOOL_HOME}/bin/flake8
    parser: flake8
`)

	cfg, err := config.Load(config.LoaderOptions{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "/opt/tools/bin/flake8", cfg.Tools[0].Command)
}

func TestLoad_UnsetEnvVarKeptVerbatim(t *testing.T) {
	path := writeConfigFile(t, `
tools:
  - name: flake8
    command: ${QG_TEST_DOES_NOT_EXIST}/flake8
    parser: flake8
`)

	cfg, err := config.Load(config.LoaderOptions{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "${QG_TEST_DOES_NOT_EXIST}/flake8", cfg.Tools[0].Command)
}
