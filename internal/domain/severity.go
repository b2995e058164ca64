package domain

import (
	"fmt"
	"strings"
)

// Severity is the normalized severity scale shared by every tool adapter.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities lists every severity from least to most severe.
var Severities = []Severity{
	SeverityInfo,
	SeverityLow,
	SeverityMedium,
	SeverityHigh,
	SeverityCritical,
}

// Rank returns the ordinal position of the severity, INFO being lowest.
// Unknown severities rank below INFO so they never trip a threshold.
func (s Severity) Rank() int {
	for i, candidate := range Severities {
		if s == candidate {
			return i
		}
	}
	return -1
}

// MaxSeverity returns the more severe of two severities.
func MaxSeverity(a, b Severity) Severity {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// ParseSeverity normalizes user or tool supplied severity names.
func ParseSeverity(raw string) (Severity, error) {
	candidate := Severity(strings.ToUpper(strings.TrimSpace(raw)))
	if candidate.Rank() < 0 {
		return "", fmt.Errorf("unknown severity %q", raw)
	}
	return candidate, nil
}
