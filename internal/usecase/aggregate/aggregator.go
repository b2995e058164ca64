// Package aggregate merges per-tool RunResults into one deduplicated report.
//
// Aggregation is a pure function of its input: the merge is commutative and
// associative over RunResults, so permuting the input mapping always yields
// an identical report (timing fields aside). That property is what makes
// gate decisions reproducible.
package aggregate

import (
	"sort"

	"github.com/bkyoung/qualgate/internal/domain"
)

// Aggregate merges the results of every enabled spec. Specs provide the
// declaration order the renderer preserves; results is keyed by tool name.
func Aggregate(specs []domain.ToolSpec, results map[string]domain.RunResult) domain.AggregatedReport {
	report := domain.AggregatedReport{
		Results: results,
		Summary: make(map[domain.Severity]int),
	}

	var all []domain.Issue
	for _, spec := range specs {
		if !spec.Enabled {
			continue
		}
		result, ok := results[spec.Name]
		if !ok {
			continue
		}
		report.Tools = append(report.Tools, domain.ToolOutcome{
			Name:     spec.Name,
			Status:   result.Status,
			Duration: result.Duration,
			Fatal:    spec.Fatal,
			Issues:   len(result.Issues),
		})

		// TOOL_FAILED and TIMEOUT results carry no issues by contract;
		// only SUCCESS output is trusted.
		if result.Status == domain.StatusSuccess {
			all = append(all, result.Issues...)
			report.CoveragePct = mergeCoverage(report.CoveragePct, result.Metrics.CoveragePct)
			report.DuplicationPct = mergeDuplication(report.DuplicationPct, result.Metrics.DuplicationPct)
		}
	}

	report.Issues = dedupe(all)
	for _, issue := range report.Issues {
		report.Summary[issue.Severity]++
	}

	return report
}

// dedupe collapses issues sharing (file, line, rule class). When collapsed
// issues disagree on severity, the maximum severity wins; ties between tools
// break on lexicographic tool name so the representative is deterministic.
// Every collapsed raw payload is retained in Sources.
func dedupe(issues []domain.Issue) []domain.Issue {
	sorted := append([]domain.Issue(nil), issues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.RuleClass != b.RuleClass {
			return a.RuleClass < b.RuleClass
		}
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Tool != b.Tool {
			return a.Tool < b.Tool
		}
		return a.RuleID < b.RuleID
	})

	var out []domain.Issue
	for _, issue := range sorted {
		if n := len(out); n > 0 && out[n-1].DedupKey() == issue.DedupKey() {
			out[n-1].Sources = append(out[n-1].Sources, issue.Sources...)
			continue
		}
		out = append(out, issue)
	}

	for i := range out {
		sources := out[i].Sources
		sort.Slice(sources, func(a, b int) bool {
			if sources[a].Tool != sources[b].Tool {
				return sources[a].Tool < sources[b].Tool
			}
			return sources[a].RuleID < sources[b].RuleID
		})
	}

	return out
}

// mergeCoverage keeps the lowest reported coverage so an optimistic tool
// can never mask a failing one.
func mergeCoverage(current, incoming *float64) *float64 {
	if incoming == nil {
		return current
	}
	if current == nil || *incoming < *current {
		v := *incoming
		return &v
	}
	return current
}

// mergeDuplication keeps the highest reported duplication.
func mergeDuplication(current, incoming *float64) *float64 {
	if incoming == nil {
		return current
	}
	if current == nil || *incoming > *current {
		v := *incoming
		return &v
	}
	return current
}
