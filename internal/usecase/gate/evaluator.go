// Package gate decides pass/fail from an aggregated report and configured
// thresholds.
package gate

import (
	"github.com/bkyoung/qualgate/internal/domain"
)

// Evaluate applies the gate thresholds to a report and returns the verdict.
//
// Precedence is fixed regardless of discovery order: ERROR outranks FAIL,
// which outranks PASS. ERROR means a fatal tool did not complete
// successfully; FAIL means a quality threshold was exceeded.
func Evaluate(report domain.AggregatedReport, cfg domain.GateConfig) domain.Verdict {
	for _, tool := range report.Tools {
		if tool.Fatal && tool.Status != domain.StatusSuccess {
			return domain.VerdictError
		}
	}

	for severity, max := range cfg.MaxPerSeverity {
		if report.Summary[severity] > max {
			return domain.VerdictFail
		}
	}

	// An absent measurement never fails a threshold: a run that reported no
	// coverage is distinguishable from one that reported 0%.
	if cfg.MinCoveragePct != nil && report.CoveragePct != nil && *report.CoveragePct < *cfg.MinCoveragePct {
		return domain.VerdictFail
	}
	if cfg.MaxDuplicationPct != nil && report.DuplicationPct != nil && *report.DuplicationPct > *cfg.MaxDuplicationPct {
		return domain.VerdictFail
	}

	return domain.VerdictPass
}
