package tool

import (
	"encoding/xml"
	"fmt"
	"path/filepath"

	"github.com/bkyoung/qualgate/internal/domain"
)

// checkstyleXML matches the widely supported `--format=checkstyle` report
// many linters can emit.
type checkstyleXML struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Files   []checkstyleFile `xml:"file"`
}

type checkstyleFile struct {
	Name   string            `xml:"name,attr"`
	Errors []checkstyleError `xml:"error"`
}

type checkstyleError struct {
	Line     int    `xml:"line,attr"`
	Column   int    `xml:"column,attr"`
	Severity string `xml:"severity,attr"` // error|warning|info
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr"`
}

func parseCheckstyle(raw []byte, spec domain.ToolSpec) (ParseOutput, error) {
	var doc checkstyleXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return ParseOutput{}, fmt.Errorf("checkstyle xml: %w", err)
	}

	var out ParseOutput
	for _, file := range doc.Files {
		for _, e := range file.Errors {
			ruleID := e.Source
			if ruleID == "" {
				ruleID = e.Severity
			}
			out.Issues = append(out.Issues, domain.NewIssue(domain.IssueInput{
				Tool:      spec.Name,
				File:      filepath.ToSlash(file.Name),
				Line:      e.Line,
				Column:    e.Column,
				Severity:  spec.MapSeverity(e.Severity, checkstyleSeverity(e.Severity)),
				RuleID:    ruleID,
				RuleClass: spec.DefaultClass,
				Message:   e.Message,
				Raw:       fmt.Sprintf("%s:%d:%d %s %s", file.Name, e.Line, e.Column, e.Severity, e.Message),
			}))
		}
	}
	return out, nil
}

func checkstyleSeverity(native string) domain.Severity {
	switch native {
	case "error":
		return domain.SeverityHigh
	case "warning":
		return domain.SeverityMedium
	default:
		return domain.SeverityInfo
	}
}
