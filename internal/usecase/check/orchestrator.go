// Package check implements the quality-gate run: load configuration, run
// the tool pipeline, aggregate, evaluate, render.
package check

import (
	"context"
	"errors"
	"fmt"

	"github.com/bkyoung/qualgate/internal/config"
	"github.com/bkyoung/qualgate/internal/domain"
	"github.com/bkyoung/qualgate/internal/usecase/aggregate"
	"github.com/bkyoung/qualgate/internal/usecase/gate"
	"github.com/bkyoung/qualgate/internal/usecase/pipeline"
)

// ErrConfig marks startup-time configuration failures. The process must
// exit before any tool runs.
var ErrConfig = errors.New("configuration error")

// ConfigLoader loads and validates configuration from an optional explicit
// file path.
type ConfigLoader func(configFile string) (config.Config, error)

// ToolRunner defines the outbound port for tool execution.
type ToolRunner interface {
	pipeline.ToolRunner
	Supports(parser string) bool
}

// GitEngine defines the outbound port for changed-file discovery.
type GitEngine interface {
	ChangedFiles(ctx context.Context, repoDir, baseRef string) ([]string, error)
}

// Renderer emits an aggregated report in one output format. Rendering must
// be pure: the same report always yields byte-identical output.
type Renderer interface {
	Render(report domain.AggregatedReport) ([]byte, error)
}

// Logger is the sugared-logger subset the orchestrator uses. Optional.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
}

// LoggerFactory builds the run logger once the configuration says whether
// debug logging is on.
type LoggerFactory func(debug bool) (Logger, error)

// OrchestratorDeps captures the collaborators for the check flow.
type OrchestratorDeps struct {
	LoadConfig ConfigLoader
	Tools      ToolRunner
	Git        GitEngine // optional, required only for changed-only runs
	Renderers  map[string]Renderer
	MakeLogger LoggerFactory // optional
}

// Request represents an inbound CLI request.
type Request struct {
	ConfigFile  string
	Targets     []string
	FailOn      string // severity name; "" keeps configured thresholds
	Format      string // "" uses the configured default
	ChangedOnly bool
	BaseRef     string // "" uses the configured default
	Debug       bool
}

// Result captures the orchestrator outcome. OutputPath is the configured
// report destination; callers let an explicit flag override it.
type Result struct {
	Report     domain.AggregatedReport
	Rendered   []byte
	Format     string
	OutputPath string
}

// Orchestrator implements the check flow.
type Orchestrator struct {
	deps OrchestratorDeps
}

// NewOrchestrator wires the orchestrator dependencies.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

func (o *Orchestrator) validateDependencies() error {
	if o.deps.LoadConfig == nil {
		return errors.New("config loader is required")
	}
	if o.deps.Tools == nil {
		return errors.New("tool runner is required")
	}
	if len(o.deps.Renderers) == 0 {
		return errors.New("at least one renderer is required")
	}
	// Git is optional
	// Logger is optional
	return nil
}

// Check executes one quality-gate run. Per-tool failures are captured in
// the report rather than returned; an error return means the run itself
// could not happen.
func (o *Orchestrator) Check(ctx context.Context, req Request) (Result, error) {
	if err := o.validateDependencies(); err != nil {
		return Result{}, err
	}

	cfg, err := o.deps.LoadConfig(req.ConfigFile)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	var logger Logger
	if o.deps.MakeLogger != nil {
		logger, err = o.deps.MakeLogger(cfg.Logging.Debug || req.Debug)
		if err != nil {
			return Result{}, fmt.Errorf("build logger: %w", err)
		}
	}

	specs := cfg.ToolSpecs()
	for _, spec := range specs {
		if spec.Enabled && !o.deps.Tools.Supports(spec.Parser) {
			return Result{}, fmt.Errorf("%w: tool %q uses unknown parser %q", ErrConfig, spec.Name, spec.Parser)
		}
	}

	format := req.Format
	if format == "" {
		format = cfg.Output.Format
	}
	renderer, ok := o.deps.Renderers[format]
	if !ok {
		return Result{}, fmt.Errorf("%w: output format %q not supported", ErrConfig, format)
	}

	gateCfg := cfg.GateConfig()
	if req.FailOn != "" {
		gateCfg, err = applyFailOn(gateCfg, req.FailOn)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}

	targets, err := o.resolveTargets(ctx, cfg, req)
	if err != nil {
		return Result{}, err
	}

	if req.ChangedOnly && len(targets) == 0 {
		// Nothing changed; nothing to analyse. The gate passes on an
		// empty report without invoking any tool.
		if logger != nil {
			logger.Infow("no changed files, skipping analysis", "baseRef", baseRef(cfg, req))
		}
		report := aggregate.Aggregate(nil, nil)
		report.Verdict = gate.Evaluate(report, gateCfg)
		rendered, err := renderer.Render(report)
		if err != nil {
			return Result{}, fmt.Errorf("render report: %w", err)
		}
		return Result{Report: report, Rendered: rendered, Format: format, OutputPath: cfg.Output.Path}, nil
	}

	runCtx := ctx
	if deadline := cfg.RunTimeout(); deadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	runner := pipeline.NewRunner(o.deps.Tools, cfg.Run.Workers, logger)
	results := runner.Execute(runCtx, targets, specs)

	report := aggregate.Aggregate(specs, results)
	report.Verdict = gate.Evaluate(report, gateCfg)

	if logger != nil {
		logger.Infow("run complete",
			"verdict", string(report.Verdict),
			"tools", len(report.Tools),
			"issues", len(report.Issues))
	}

	rendered, err := renderer.Render(report)
	if err != nil {
		return Result{}, fmt.Errorf("render report: %w", err)
	}

	return Result{Report: report, Rendered: rendered, Format: format, OutputPath: cfg.Output.Path}, nil
}

func (o *Orchestrator) resolveTargets(ctx context.Context, cfg config.Config, req Request) ([]string, error) {
	if !req.ChangedOnly {
		if len(req.Targets) > 0 {
			return req.Targets, nil
		}
		return []string{"."}, nil
	}

	if o.deps.Git == nil {
		return nil, fmt.Errorf("%w: changed-only requested but no git engine configured", ErrConfig)
	}

	files, err := o.deps.Git.ChangedFiles(ctx, repoDir(cfg), baseRef(cfg, req))
	if err != nil {
		return nil, fmt.Errorf("resolve changed files: %w", err)
	}
	return files, nil
}

func baseRef(cfg config.Config, req Request) string {
	if req.BaseRef != "" {
		return req.BaseRef
	}
	return cfg.Git.BaseRef
}

func repoDir(cfg config.Config) string {
	if cfg.Git.RepositoryDir != "" {
		return cfg.Git.RepositoryDir
	}
	return "."
}

// applyFailOn tightens the gate so any issue at or above the given severity
// fails the run, without loosening stricter configured thresholds.
func applyFailOn(cfg domain.GateConfig, failOn string) (domain.GateConfig, error) {
	threshold, err := domain.ParseSeverity(failOn)
	if err != nil {
		return domain.GateConfig{}, err
	}

	maxPer := make(map[domain.Severity]int, len(cfg.MaxPerSeverity))
	for sev, max := range cfg.MaxPerSeverity {
		maxPer[sev] = max
	}
	for _, sev := range domain.Severities {
		if sev.Rank() >= threshold.Rank() {
			maxPer[sev] = 0
		}
	}

	cfg.MaxPerSeverity = maxPer
	return cfg, nil
}
