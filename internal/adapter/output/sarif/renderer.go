// Package sarif renders the aggregated report as a SARIF 2.1.0 log for CI
// upload.
package sarif

import (
	"encoding/json"
	"fmt"

	"github.com/bkyoung/qualgate/internal/domain"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
)

// Renderer implements the check.Renderer interface for SARIF output.
type Renderer struct {
	toolName    string
	toolVersion string
}

// NewRenderer creates a SARIF renderer identifying this orchestrator as the
// driver.
func NewRenderer(toolName, toolVersion string) *Renderer {
	return &Renderer{toolName: toolName, toolVersion: toolVersion}
}

// Render serializes the deduplicated issues as one SARIF run.
func (r *Renderer) Render(report domain.AggregatedReport) ([]byte, error) {
	results := make([]map[string]interface{}, 0, len(report.Issues))

	for _, issue := range report.Issues {
		messageText := issue.Message
		if messageText == "" {
			messageText = "No description provided"
		}

		ruleID := issue.RuleID
		if ruleID == "" {
			ruleID = string(issue.RuleClass)
		}

		result := map[string]interface{}{
			"ruleId": ruleID,
			"level":  convertSeverity(issue.Severity),
			"message": map[string]interface{}{
				"text": messageText,
			},
		}

		if issue.File != "" {
			physicalLocation := map[string]interface{}{
				"artifactLocation": map[string]interface{}{
					"uri": issue.File,
				},
			}
			// Don't fabricate line 1 for file-level findings.
			if issue.Line >= 1 {
				region := map[string]interface{}{
					"startLine": issue.Line,
				}
				if issue.Column >= 1 {
					region["startColumn"] = issue.Column
				}
				physicalLocation["region"] = region
			}
			result["locations"] = []map[string]interface{}{
				{"physicalLocation": physicalLocation},
			}
		}

		result["properties"] = map[string]interface{}{
			"tool":      issue.Tool,
			"ruleClass": string(issue.RuleClass),
		}

		results = append(results, result)
	}

	doc := map[string]interface{}{
		"version": sarifVersion,
		"$schema": sarifSchema,
		"runs": []map[string]interface{}{
			{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":    r.toolName,
						"version": r.toolVersion,
					},
				},
				"results": results,
			},
		},
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report to sarif: %w", err)
	}
	return append(encoded, '\n'), nil
}

// convertSeverity maps the shared scale onto SARIF levels.
func convertSeverity(severity domain.Severity) string {
	switch severity {
	case domain.SeverityCritical, domain.SeverityHigh:
		return "error"
	case domain.SeverityMedium, domain.SeverityLow:
		return "warning"
	default:
		return "note"
	}
}
