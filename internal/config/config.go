package config

import (
	"fmt"
	"time"

	"github.com/bkyoung/qualgate/internal/domain"
)

// Config represents the full application configuration.
type Config struct {
	Tools   []ToolConfig  `yaml:"tools"`
	Gate    GateSettings  `yaml:"gate"`
	Run     RunConfig     `yaml:"run"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Git     GitConfig     `yaml:"git"`
}

// ToolConfig declares a single external analysis tool.
type ToolConfig struct {
	Name        string            `yaml:"name"`
	Command     string            `yaml:"command"`
	Args        []string          `yaml:"args"`
	Parser      string            `yaml:"parser"`
	Enabled     *bool             `yaml:"enabled"` // nil means enabled
	Timeout     string            `yaml:"timeout"`
	OKExitCodes []int             `yaml:"okExitCodes"`
	SeverityMap map[string]string `yaml:"severityMap"`
	Class       string            `yaml:"class"`
	Fatal       bool              `yaml:"fatal"`
}

// GateSettings holds the quality-gate thresholds.
type GateSettings struct {
	MaxIssues      map[string]int `yaml:"maxIssues"` // severity name -> max allowed
	MinCoverage    *float64       `yaml:"minCoverage"`
	MaxDuplication *float64       `yaml:"maxDuplication"`
}

// RunConfig configures pipeline execution.
type RunConfig struct {
	Workers int    `yaml:"workers"` // 0 = number of CPUs
	Timeout string `yaml:"timeout"` // global run deadline
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"` // empty = stdout
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// GitConfig configures changed-file target selection.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
	BaseRef       string `yaml:"baseRef"`
}

const defaultToolTimeout = 2 * time.Minute

// Validate checks the configuration eagerly at startup. Invalid configuration
// is a startup error, never a partial fallback.
func (c Config) Validate() error {
	if len(c.Tools) == 0 {
		return fmt.Errorf("config: no tools declared")
	}

	seen := make(map[string]bool, len(c.Tools))
	for i, tc := range c.Tools {
		if tc.Name == "" {
			return fmt.Errorf("config: tools[%d] has no name", i)
		}
		if seen[tc.Name] {
			return fmt.Errorf("config: duplicate tool name %q", tc.Name)
		}
		seen[tc.Name] = true

		if tc.Command == "" {
			return fmt.Errorf("config: tool %q has no command", tc.Name)
		}
		if tc.Parser == "" {
			return fmt.Errorf("config: tool %q has no parser", tc.Name)
		}
		if tc.Timeout != "" {
			d, err := time.ParseDuration(tc.Timeout)
			if err != nil {
				return fmt.Errorf("config: tool %q timeout: %w", tc.Name, err)
			}
			if d <= 0 {
				return fmt.Errorf("config: tool %q timeout must be positive", tc.Name)
			}
		}
		if tc.Class != "" && !domain.ValidRuleClass(domain.RuleClass(tc.Class)) {
			return fmt.Errorf("config: tool %q class %q is not in the taxonomy", tc.Name, tc.Class)
		}
		for native, sev := range tc.SeverityMap {
			if _, err := domain.ParseSeverity(sev); err != nil {
				return fmt.Errorf("config: tool %q severity map %q: %w", tc.Name, native, err)
			}
		}
	}

	for sev, max := range c.Gate.MaxIssues {
		if _, err := domain.ParseSeverity(sev); err != nil {
			return fmt.Errorf("config: gate.maxIssues: %w", err)
		}
		if max < 0 {
			return fmt.Errorf("config: gate.maxIssues[%s] must not be negative", sev)
		}
	}
	if c.Gate.MinCoverage != nil && (*c.Gate.MinCoverage < 0 || *c.Gate.MinCoverage > 100) {
		return fmt.Errorf("config: gate.minCoverage must be between 0 and 100")
	}
	if c.Gate.MaxDuplication != nil && (*c.Gate.MaxDuplication < 0 || *c.Gate.MaxDuplication > 100) {
		return fmt.Errorf("config: gate.maxDuplication must be between 0 and 100")
	}

	if c.Run.Workers < 0 {
		return fmt.Errorf("config: run.workers must not be negative")
	}
	if c.Run.Timeout != "" {
		if _, err := time.ParseDuration(c.Run.Timeout); err != nil {
			return fmt.Errorf("config: run.timeout: %w", err)
		}
	}

	switch c.Output.Format {
	case "", "text", "json", "sarif":
	default:
		return fmt.Errorf("config: output.format %q not supported", c.Output.Format)
	}

	return nil
}

// ToolSpecs converts the declared tools into immutable domain specs,
// preserving declaration order. Call Validate first.
func (c Config) ToolSpecs() []domain.ToolSpec {
	specs := make([]domain.ToolSpec, 0, len(c.Tools))
	for _, tc := range c.Tools {
		timeout := defaultToolTimeout
		if tc.Timeout != "" {
			if d, err := time.ParseDuration(tc.Timeout); err == nil {
				timeout = d
			}
		}

		sevMap := make(map[string]domain.Severity, len(tc.SeverityMap))
		for native, sev := range tc.SeverityMap {
			if parsed, err := domain.ParseSeverity(sev); err == nil {
				sevMap[native] = parsed
			}
		}

		class := domain.ClassOther
		if tc.Class != "" {
			class = domain.RuleClass(tc.Class)
		}

		enabled := true
		if tc.Enabled != nil {
			enabled = *tc.Enabled
		}

		specs = append(specs, domain.ToolSpec{
			Name:         tc.Name,
			Command:      tc.Command,
			Args:         append([]string(nil), tc.Args...),
			Parser:       tc.Parser,
			Enabled:      enabled,
			Timeout:      timeout,
			OKExitCodes:  append([]int(nil), tc.OKExitCodes...),
			SeverityMap:  sevMap,
			DefaultClass: class,
			Fatal:        tc.Fatal,
		})
	}
	return specs
}

// GateConfig converts the gate settings into the domain thresholds.
// Call Validate first.
func (c Config) GateConfig() domain.GateConfig {
	maxPer := make(map[domain.Severity]int, len(c.Gate.MaxIssues))
	for sev, max := range c.Gate.MaxIssues {
		if parsed, err := domain.ParseSeverity(sev); err == nil {
			maxPer[parsed] = max
		}
	}
	return domain.GateConfig{
		MaxPerSeverity:    maxPer,
		MinCoveragePct:    c.Gate.MinCoverage,
		MaxDuplicationPct: c.Gate.MaxDuplication,
	}
}

// RunTimeout returns the global run deadline, zero when unset.
func (c Config) RunTimeout() time.Duration {
	if c.Run.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Run.Timeout)
	if err != nil {
		return 0
	}
	return d
}
