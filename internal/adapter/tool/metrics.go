package tool

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/bkyoung/qualgate/internal/domain"
)

// coberturaXML reads just the coverage rate from a Cobertura report; the
// per-class breakdown is irrelevant to the gate.
type coberturaXML struct {
	XMLName  xml.Name `xml:"coverage"`
	LineRate float64  `xml:"line-rate,attr"`
}

func parseCobertura(raw []byte, spec domain.ToolSpec) (ParseOutput, error) {
	var doc coberturaXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return ParseOutput{}, fmt.Errorf("cobertura xml: %w", err)
	}
	if doc.LineRate < 0 || doc.LineRate > 1 {
		return ParseOutput{}, fmt.Errorf("cobertura line-rate %v out of range", doc.LineRate)
	}
	pct := doc.LineRate * 100
	return ParseOutput{Metrics: domain.Metrics{CoveragePct: &pct}}, nil
}

// duplicationJSON is the minimal contract with a clone detector: a single
// project-wide duplicated percentage.
type duplicationJSON struct {
	DuplicatedPct *float64 `json:"duplicatedPct"`
}

func parseDuplication(raw []byte, spec domain.ToolSpec) (ParseOutput, error) {
	var doc duplicationJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ParseOutput{}, fmt.Errorf("duplication json: %w", err)
	}
	if doc.DuplicatedPct == nil {
		return ParseOutput{}, fmt.Errorf("duplication json: duplicatedPct missing")
	}
	if *doc.DuplicatedPct < 0 || *doc.DuplicatedPct > 100 {
		return ParseOutput{}, fmt.Errorf("duplicatedPct %v out of range", *doc.DuplicatedPct)
	}
	return ParseOutput{Metrics: domain.Metrics{DuplicationPct: doc.DuplicatedPct}}, nil
}
