package sarif_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/qualgate/internal/adapter/output/sarif"
	"github.com/bkyoung/qualgate/internal/domain"
)

func decode(t *testing.T, rendered []byte) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rendered, &doc))
	return doc
}

func firstRun(t *testing.T, doc map[string]interface{}) map[string]interface{} {
	t.Helper()
	runs, ok := doc["runs"].([]interface{})
	require.True(t, ok)
	require.Len(t, runs, 1)
	return runs[0].(map[string]interface{})
}

func TestRender_DriverIdentity(t *testing.T) {
	r := sarif.NewRenderer("qualgate", "v1.2.3")

	rendered, err := r.Render(domain.AggregatedReport{})
	require.NoError(t, err)

	doc := decode(t, rendered)
	assert.Equal(t, "2.1.0", doc["version"])

	driver := firstRun(t, doc)["tool"].(map[string]interface{})["driver"].(map[string]interface{})
	assert.Equal(t, "qualgate", driver["name"])
	assert.Equal(t, "v1.2.3", driver["version"])
}

func TestRender_Results(t *testing.T) {
	report := domain.AggregatedReport{
		Issues: []domain.Issue{
			domain.NewIssue(domain.IssueInput{
				Tool: "bandit", File: "src/db.py", Line: 42, Column: 5,
				RuleClass: domain.ClassSecurity, Severity: domain.SeverityHigh,
				RuleID: "B608", Message: "possible SQL injection",
			}),
			domain.NewIssue(domain.IssueInput{
				Tool: "black", File: "src/app.py",
				RuleClass: domain.ClassStyle, Severity: domain.SeverityInfo,
				Message: "file would be reformatted",
			}),
		},
	}

	rendered, err := sarif.NewRenderer("qualgate", "dev").Render(report)
	require.NoError(t, err)

	results := firstRun(t, decode(t, rendered))["results"].([]interface{})
	require.Len(t, results, 2)

	first := results[0].(map[string]interface{})
	assert.Equal(t, "B608", first["ruleId"])
	assert.Equal(t, "error", first["level"])

	location := first["locations"].([]interface{})[0].(map[string]interface{})
	physical := location["physicalLocation"].(map[string]interface{})
	assert.Equal(t, "src/db.py", physical["artifactLocation"].(map[string]interface{})["uri"])
	region := physical["region"].(map[string]interface{})
	assert.Equal(t, float64(42), region["startLine"])
	assert.Equal(t, float64(5), region["startColumn"])

	props := first["properties"].(map[string]interface{})
	assert.Equal(t, "bandit", props["tool"])
	assert.Equal(t, "security", props["ruleClass"])

	second := results[1].(map[string]interface{})
	assert.Equal(t, "style", second["ruleId"], "class stands in for a missing rule id")
	assert.Equal(t, "note", second["level"])
	physical = second["locations"].([]interface{})[0].(map[string]interface{})["physicalLocation"].(map[string]interface{})
	assert.NotContains(t, physical, "region", "file-level findings carry no line")
}

func TestRender_SeverityLevels(t *testing.T) {
	build := func(sev domain.Severity) string {
		report := domain.AggregatedReport{
			Issues: []domain.Issue{
				domain.NewIssue(domain.IssueInput{
					Tool: "x", File: "a.py", Line: 1,
					RuleClass: domain.ClassOther, Severity: sev, RuleID: "R1",
				}),
			},
		}
		rendered, err := sarif.NewRenderer("qualgate", "dev").Render(report)
		require.NoError(t, err)
		result := firstRun(t, decode(t, rendered))["results"].([]interface{})[0].(map[string]interface{})
		return result["level"].(string)
	}

	assert.Equal(t, "error", build(domain.SeverityCritical))
	assert.Equal(t, "error", build(domain.SeverityHigh))
	assert.Equal(t, "warning", build(domain.SeverityMedium))
	assert.Equal(t, "warning", build(domain.SeverityLow))
	assert.Equal(t, "note", build(domain.SeverityInfo))
}
