package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// RuleClass buckets tool-specific rule identifiers into a shared taxonomy so
// the aggregator can recognise two tools flagging the same class of problem.
type RuleClass string

const (
	ClassStyle       RuleClass = "style"
	ClassTypeError   RuleClass = "type-error"
	ClassSecurity    RuleClass = "security"
	ClassDuplication RuleClass = "duplication"
	ClassComplexity  RuleClass = "complexity"
	ClassCoverage    RuleClass = "coverage"
	ClassOther       RuleClass = "other"
)

// RuleClasses lists every taxonomy bucket.
var RuleClasses = []RuleClass{
	ClassStyle,
	ClassTypeError,
	ClassSecurity,
	ClassDuplication,
	ClassComplexity,
	ClassCoverage,
	ClassOther,
}

// ValidRuleClass reports whether the given class belongs to the taxonomy.
func ValidRuleClass(class RuleClass) bool {
	for _, candidate := range RuleClasses {
		if class == candidate {
			return true
		}
	}
	return false
}

// Issue is one normalized finding parsed from a tool's raw output.
type Issue struct {
	ID        string    `json:"id"`
	Tool      string    `json:"tool"`
	File      string    `json:"file"`
	Line      int       `json:"line"`   // 0 = unknown
	Column    int       `json:"column"` // 0 = unknown
	Severity  Severity  `json:"severity"`
	RuleID    string    `json:"ruleId"`
	RuleClass RuleClass `json:"ruleClass"`
	Message   string    `json:"message"`
	Raw       string    `json:"-"` // tool-specific payload, preserved for passthrough

	// Sources lists every tool that reported this issue after deduplication.
	// A freshly parsed issue carries only its own tool.
	Sources []IssueSource `json:"sources,omitempty"`
}

// IssueSource retains the raw payload of one collapsed duplicate.
type IssueSource struct {
	Tool   string `json:"tool"`
	RuleID string `json:"ruleId"`
	Raw    string `json:"raw,omitempty"`
}

// IssueInput captures the information required to create an Issue.
type IssueInput struct {
	Tool      string
	File      string
	Line      int
	Column    int
	Severity  Severity
	RuleID    string
	RuleClass RuleClass
	Message   string
	Raw       string
}

// NewIssue constructs an Issue with a deterministic ID derived from the
// deduplication key (file, line, rule class).
func NewIssue(input IssueInput) Issue {
	return Issue{
		ID:        hashIssue(input.File, input.Line, input.RuleClass),
		Tool:      input.Tool,
		File:      input.File,
		Line:      input.Line,
		Column:    input.Column,
		Severity:  input.Severity,
		RuleID:    input.RuleID,
		RuleClass: input.RuleClass,
		Message:   input.Message,
		Raw:       input.Raw,
		Sources: []IssueSource{
			{Tool: input.Tool, RuleID: input.RuleID, Raw: input.Raw},
		},
	}
}

// DedupKey returns the key under which duplicate findings collapse.
func (i Issue) DedupKey() string {
	return fmt.Sprintf("%s|%d|%s", i.File, i.Line, i.RuleClass)
}

func hashIssue(file string, line int, class RuleClass) string {
	payload := fmt.Sprintf("%s|%d|%s", file, line, class)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// RunStatus describes the outcome of one tool invocation.
type RunStatus string

const (
	StatusSuccess      RunStatus = "SUCCESS"
	StatusToolFailed   RunStatus = "TOOL_FAILED"
	StatusTimeout      RunStatus = "TIMEOUT"
	StatusToolNotFound RunStatus = "TOOL_NOT_FOUND"
)

// Metrics carries run-level measurements some tools report instead of issues.
type Metrics struct {
	CoveragePct    *float64 `json:"coveragePct,omitempty"`
	DuplicationPct *float64 `json:"duplicationPct,omitempty"`
}

// RunResult is the outcome of invoking one tool adapter. It is never mutated
// after the adapter returns it.
type RunResult struct {
	Tool     string
	Status   RunStatus
	Issues   []Issue
	Metrics  Metrics
	Duration time.Duration
	Stdout   string // raw output, kept for diagnostics
	Stderr   string
}

// Verdict is the gate decision for one run.
type Verdict string

const (
	VerdictPass  Verdict = "PASS"
	VerdictFail  Verdict = "FAIL"
	VerdictError Verdict = "ERROR"
)

// ToolOutcome summarises one tool's execution for rendering, kept in
// configured declaration order.
type ToolOutcome struct {
	Name     string
	Status   RunStatus
	Duration time.Duration
	Fatal    bool
	Issues   int // count attributed to this tool before deduplication
}

// AggregatedReport is the merged view over all RunResults. It is built once
// per pipeline run and finalized by the gate evaluator.
type AggregatedReport struct {
	Tools          []ToolOutcome
	Results        map[string]RunResult
	Issues         []Issue // deduplicated, sorted by file/line/rule class
	Summary        map[Severity]int
	CoveragePct    *float64
	DuplicationPct *float64
	Verdict        Verdict
}

// ToolSpec is the immutable identity of one configured analysis tool.
type ToolSpec struct {
	Name    string
	Command string
	Args    []string // "{targets}" expands to the target path list
	Parser  string
	Enabled bool
	Timeout time.Duration

	// OKExitCodes are exit codes that mean "ran fine, issues found" for this
	// tool. Exit 0 is always acceptable. Anything else is TOOL_FAILED.
	OKExitCodes []int

	// SeverityMap translates native severity labels into the shared scale.
	SeverityMap map[string]Severity

	// DefaultClass is the taxonomy bucket for findings the parser cannot
	// classify on its own.
	DefaultClass RuleClass

	// Fatal marks a tool whose non-success status forces verdict ERROR.
	Fatal bool
}

// AcceptsExitCode reports whether the exit code is within the tool's
// documented "issues found" range.
func (s ToolSpec) AcceptsExitCode(code int) bool {
	if code == 0 {
		return true
	}
	for _, ok := range s.OKExitCodes {
		if code == ok {
			return true
		}
	}
	return false
}

// MapSeverity resolves a native severity label against the spec's mapping,
// falling back to the supplied default when unmapped. Matching is
// case-insensitive because config loaders do not preserve key casing.
func (s ToolSpec) MapSeverity(native string, fallback Severity) Severity {
	for label, mapped := range s.SeverityMap {
		if strings.EqualFold(label, native) {
			return mapped
		}
	}
	return fallback
}

// GateConfig holds the user-supplied thresholds. Read-only during a run.
type GateConfig struct {
	// MaxPerSeverity caps the deduplicated issue count per severity tier.
	// Absent tiers are unlimited.
	MaxPerSeverity map[Severity]int

	// MinCoveragePct fails the gate when reported coverage is below it.
	// nil disables the check, as does a run that reported no coverage.
	MinCoveragePct *float64

	// MaxDuplicationPct fails the gate when duplication exceeds it.
	MaxDuplicationPct *float64
}
