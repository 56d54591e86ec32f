package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/solhunt/internal/model"
)

func sample() *model.ScanResult {
	sp := &model.Span{Start: 120, Length: 28}
	return &model.ScanResult{
		RunID:    uuid.NewString(),
		Root:     "/repo",
		Compiler: "0.7.0",
		Elapsed:  1500 * time.Millisecond,
		Findings: model.AllFindings{
			"overflow": {
				{
					Finding: model.Finding{Module: "overflow", Code: 1, Summary: "Possible integer overflow", Description: "Arithmetic before 0.8.0 wraps silently.", Severity: model.SeverityMedium, Span: sp},
					Meta:    model.Meta{File: "src/Bank.sol", Line: 7, Column: 9, Snippet: "        bal[msg.sender] += msg.value;"},
				},
				{
					Finding: model.Finding{Module: "overflow", Code: 0, Summary: "Compiler lacks checked arithmetic", Severity: model.SeverityInformal},
					Meta:    model.Meta{File: "src/Bank.sol"},
				},
			},
			"selfdestruct": {
				{
					Finding: model.Finding{Module: "selfdestruct", Code: 0, Summary: "Contract can be destroyed", Severity: model.SeverityHigh, Span: sp},
					Meta:    model.Meta{File: "src/Lottery.sol", Line: 15, Column: 13},
				},
			},
			"events": {},
		},
		Suppressed: 2,
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", " sarif ", "markdown", "md"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("html")
	assert.True(t, model.IsCode(err, model.CodeConfiguration))
}

func TestOrdered_SeverityThenLocation(t *testing.T) {
	var got []string
	for _, f := range Ordered(sample().Findings) {
		got = append(got, RuleID(f.Finding))
	}
	assert.Equal(t, []string{"selfdestruct/0", "overflow/1", "overflow/0"}, got)
}

func TestWriteTable(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sample()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[0], "SEVERITY"))
	assert.Contains(t, lines[1], "src/Lottery.sol:15:13")
	assert.Contains(t, lines[2], "overflow/1")
	// columns line up
	assert.Equal(t, strings.Index(lines[1], "selfdestruct/0"), strings.Index(lines[2], "overflow/1"))
	assert.Contains(t, buf.String(), "3 findings (1 high, 1 medium, 1 informal), 2 suppressed in 1.5s")
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, &model.ScanResult{Findings: model.AllFindings{}}))
	assert.Equal(t, "No findings (0s)\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "漢字...", truncate("漢字漢字漢字", 7))
}

func TestWriteJSON(t *testing.T) {
	res := sample()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, res))

	var got model.ScanResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, res.RunID, got.RunID)
	assert.Equal(t, res.Findings.Count(), got.Findings.Count())
	assert.Equal(t, model.SeverityHigh, got.Findings["selfdestruct"][0].Severity)
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatMarkdown, sample()))
	out := buf.String()
	assert.Contains(t, out, "| high | 1 |")
	assert.Contains(t, out, "## [MEDIUM] Possible integer overflow")
	assert.Contains(t, out, "- Location: `src/Bank.sol:7:9`")
	assert.Contains(t, out, "```solidity\n        bal[msg.sender] += msg.value;\n```")
	assert.Contains(t, out, "- Location: `src/Bank.sol`\n")
}

func TestToSARIF(t *testing.T) {
	res := sample()
	b, err := ToSARIF(res)
	require.NoError(t, err)

	var doc sarif
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, res.RunID, run.AutomationDetails.GUID)

	var ruleIDs []string
	for _, r := range run.Tool.Driver.Rules {
		ruleIDs = append(ruleIDs, r.ID)
	}
	assert.Equal(t, []string{"overflow/0", "overflow/1", "selfdestruct/0"}, ruleIDs)

	require.Len(t, run.Results, 3)
	assert.Equal(t, "error", run.Results[0].Level)
	assert.Equal(t, "warning", run.Results[1].Level)
	assert.Equal(t, 7, run.Results[1].Locations[0].Physical.Region.StartLine)
	assert.Nil(t, run.Results[2].Locations[0].Physical.Region)
	assert.Len(t, run.Results[1].PartialFingerprints["solhunt/v1"], 64)
}
