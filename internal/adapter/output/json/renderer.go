// Package json renders the aggregated report as a stable machine-readable
// document suitable for further automation.
package json

import (
	"encoding/json"
	"fmt"

	"github.com/bkyoung/qualgate/internal/domain"
)

// Renderer implements the check.Renderer interface for JSON output.
type Renderer struct{}

// NewRenderer creates a new JSON renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// reportDoc fixes the field names and ordering of the machine-readable
// schema. Field names are part of the public contract; do not rename.
type reportDoc struct {
	Verdict        string         `json:"verdict"`
	Summary        summaryDoc     `json:"summary"`
	CoveragePct    *float64       `json:"coveragePct,omitempty"`
	DuplicationPct *float64       `json:"duplicationPct,omitempty"`
	Tools          []toolDoc      `json:"tools"`
	Issues         []domain.Issue `json:"issues"`
}

type summaryDoc struct {
	Info     int `json:"info"`
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

type toolDoc struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	DurationMs int64  `json:"durationMs"`
	Fatal      bool   `json:"fatal"`
	Issues     int    `json:"issues"`
}

// Render serializes the report. It never mutates the report and produces
// byte-identical output for identical input.
func (r *Renderer) Render(report domain.AggregatedReport) ([]byte, error) {
	doc := reportDoc{
		Verdict: string(report.Verdict),
		Summary: summaryDoc{
			Info:     report.Summary[domain.SeverityInfo],
			Low:      report.Summary[domain.SeverityLow],
			Medium:   report.Summary[domain.SeverityMedium],
			High:     report.Summary[domain.SeverityHigh],
			Critical: report.Summary[domain.SeverityCritical],
		},
		CoveragePct:    report.CoveragePct,
		DuplicationPct: report.DuplicationPct,
		Tools:          make([]toolDoc, 0, len(report.Tools)),
		Issues:         report.Issues,
	}
	if doc.Issues == nil {
		doc.Issues = []domain.Issue{}
	}

	for _, tool := range report.Tools {
		doc.Tools = append(doc.Tools, toolDoc{
			Name:       tool.Name,
			Status:     string(tool.Status),
			DurationMs: tool.Duration.Milliseconds(),
			Fatal:      tool.Fatal,
			Issues:     tool.Issues,
		})
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report to json: %w", err)
	}
	return append(encoded, '\n'), nil
}
