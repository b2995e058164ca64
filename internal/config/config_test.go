package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/qualgate/internal/config"
	"github.com/bkyoung/qualgate/internal/domain"
)

func validConfig() config.Config {
	return config.Config{
		Tools: []config.ToolConfig{
			{Name: "flake8", Command: "flake8", Parser: "flake8"},
		},
	}
}

func TestValidate_AcceptsMinimalConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	floatPtr := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "no tools",
			mutate:  func(c *config.Config) { c.Tools = nil },
			wantErr: "no tools",
		},
		{
			name: "duplicate tool name",
			mutate: func(c *config.Config) {
				c.Tools = append(c.Tools, c.Tools[0])
			},
			wantErr: "duplicate tool name",
		},
		{
			name:    "missing command",
			mutate:  func(c *config.Config) { c.Tools[0].Command = "" },
			wantErr: "no command",
		},
		{
			name:    "missing parser",
			mutate:  func(c *config.Config) { c.Tools[0].Parser = "" },
			wantErr: "no parser",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *config.Config) { c.Tools[0].Timeout = "soon" },
			wantErr: "timeout",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *config.Config) { c.Tools[0].Timeout = "-5s" },
			wantErr: "must be positive",
		},
		{
			name:    "unknown rule class",
			mutate:  func(c *config.Config) { c.Tools[0].Class = "vibes" },
			wantErr: "taxonomy",
		},
		{
			name: "bad severity map target",
			mutate: func(c *config.Config) {
				c.Tools[0].SeverityMap = map[string]string{"error": "blocker"}
			},
			wantErr: "severity",
		},
		{
			name: "bad gate severity",
			mutate: func(c *config.Config) {
				c.Gate.MaxIssues = map[string]int{"blocker": 0}
			},
			wantErr: "gate.maxIssues",
		},
		{
			name: "negative gate max",
			mutate: func(c *config.Config) {
				c.Gate.MaxIssues = map[string]int{"high": -1}
			},
			wantErr: "negative",
		},
		{
			name:    "coverage out of range",
			mutate:  func(c *config.Config) { c.Gate.MinCoverage = floatPtr(120) },
			wantErr: "minCoverage",
		},
		{
			name:    "duplication out of range",
			mutate:  func(c *config.Config) { c.Gate.MaxDuplication = floatPtr(-3) },
			wantErr: "maxDuplication",
		},
		{
			name:    "negative workers",
			mutate:  func(c *config.Config) { c.Run.Workers = -2 },
			wantErr: "workers",
		},
		{
			name:    "bad run timeout",
			mutate:  func(c *config.Config) { c.Run.Timeout = "whenever" },
			wantErr: "run.timeout",
		},
		{
			name:    "bad output format",
			mutate:  func(c *config.Config) { c.Output.Format = "xml" },
			wantErr: "output.format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestToolSpecs_DefaultsAndConversion(t *testing.T) {
	disabled := false
	cfg := config.Config{
		Tools: []config.ToolConfig{
			{
				Name:        "bandit",
				Command:     "bandit",
				Args:        []string{"-f", "json", "-r", "{targets}"},
				Parser:      "bandit",
				Timeout:     "90s",
				OKExitCodes: []int{1},
				SeverityMap: map[string]string{"HIGH": "critical"},
				Class:       "security",
				Fatal:       true,
			},
			{Name: "mypy", Command: "mypy", Parser: "mypy", Enabled: &disabled},
		},
	}
	require.NoError(t, cfg.Validate())

	specs := cfg.ToolSpecs()
	require.Len(t, specs, 2)

	bandit := specs[0]
	assert.Equal(t, "bandit", bandit.Name)
	assert.Equal(t, 90*time.Second, bandit.Timeout)
	assert.Equal(t, []int{1}, bandit.OKExitCodes)
	assert.Equal(t, domain.SeverityCritical, bandit.SeverityMap["HIGH"])
	assert.Equal(t, domain.ClassSecurity, bandit.DefaultClass)
	assert.True(t, bandit.Enabled, "enabled defaults to true")
	assert.True(t, bandit.Fatal)

	mypy := specs[1]
	assert.False(t, mypy.Enabled)
	assert.Equal(t, 2*time.Minute, mypy.Timeout, "timeout falls back to the default")
	assert.Equal(t, domain.ClassOther, mypy.DefaultClass)
}

func TestGateConfig_Conversion(t *testing.T) {
	minCov := 80.0
	cfg := validConfig()
	cfg.Gate = config.GateSettings{
		MaxIssues:   map[string]int{"high": 0, "medium": 5},
		MinCoverage: &minCov,
	}
	require.NoError(t, cfg.Validate())

	gate := cfg.GateConfig()
	assert.Equal(t, 0, gate.MaxPerSeverity[domain.SeverityHigh])
	assert.Equal(t, 5, gate.MaxPerSeverity[domain.SeverityMedium])
	require.NotNil(t, gate.MinCoveragePct)
	assert.Equal(t, 80.0, *gate.MinCoveragePct)
	assert.Nil(t, gate.MaxDuplicationPct)
}

func TestRunTimeout(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, time.Duration(0), cfg.RunTimeout())

	cfg.Run.Timeout = "5m"
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout())
}
