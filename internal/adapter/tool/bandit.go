package tool

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/bkyoung/qualgate/internal/domain"
)

// banditJSON matches `bandit -f json` output. Each result is decoded twice:
// once into fields we normalize, once kept verbatim as the raw payload.
type banditJSON struct {
	Results []json.RawMessage `json:"results"`
}

type banditResult struct {
	Filename        string `json:"filename"`
	LineNumber      int    `json:"line_number"`
	TestID          string `json:"test_id"`
	TestName        string `json:"test_name"`
	IssueText       string `json:"issue_text"`
	IssueSeverity   string `json:"issue_severity"` // LOW|MEDIUM|HIGH
	IssueConfidence string `json:"issue_confidence"`
}

func parseBandit(raw []byte, spec domain.ToolSpec) (ParseOutput, error) {
	var doc banditJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ParseOutput{}, fmt.Errorf("bandit json: %w", err)
	}

	var out ParseOutput
	for _, payload := range doc.Results {
		var r banditResult
		if err := json.Unmarshal(payload, &r); err != nil {
			return ParseOutput{}, fmt.Errorf("bandit result: %w", err)
		}

		ruleID := r.TestID
		if ruleID == "" {
			ruleID = r.TestName
		}

		out.Issues = append(out.Issues, domain.NewIssue(domain.IssueInput{
			Tool:      spec.Name,
			File:      filepath.ToSlash(r.Filename),
			Line:      r.LineNumber,
			Severity:  spec.MapSeverity(r.IssueSeverity, banditSeverity(r.IssueSeverity)),
			RuleID:    ruleID,
			RuleClass: domain.ClassSecurity,
			Message:   r.IssueText,
			Raw:       string(payload),
		}))
	}
	return out, nil
}

func banditSeverity(native string) domain.Severity {
	switch native {
	case "HIGH":
		return domain.SeverityHigh
	case "MEDIUM":
		return domain.SeverityMedium
	case "LOW":
		return domain.SeverityLow
	default:
		return domain.SeverityInfo
	}
}
