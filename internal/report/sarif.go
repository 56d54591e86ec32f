package report

import (
	"encoding/json"
	"sort"

	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/util"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool        `json:"tool"`
	AutomationDetails *sarifAutomation `json:"automationDetails,omitempty"`
	Results           []sarifResult    `json:"results"`
}

type sarifAutomation struct {
	GUID string `json:"guid"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string         `json:"id"`
	ShortDescription sarifMessage   `json:"shortDescription"`
	FullDescription  *sarifMessage  `json:"fullDescription,omitempty"`
	Properties       map[string]any `json:"properties,omitempty"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLoc        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	Physical sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

func level(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "error"
	case model.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

// ToSARIF renders res as a SARIF 2.1.0 log with one rule per module code.
func ToSARIF(res *model.ScanResult) ([]byte, error) {
	rules := map[string]sarifRule{}
	results := []sarifResult{}
	for _, f := range Ordered(res.Findings) {
		id := RuleID(f.Finding)
		if _, ok := rules[id]; !ok {
			r := sarifRule{
				ID:               id,
				ShortDescription: sarifMessage{Text: f.Summary},
				Properties:       map[string]any{"severity": f.Severity.String(), "module": f.Module},
			}
			if f.Description != "" {
				r.FullDescription = &sarifMessage{Text: f.Description}
			}
			rules[id] = r
		}
		msg := f.Summary
		if f.Comment != "" {
			msg += " (" + f.Comment + ")"
		}
		loc := sarifLoc{Physical: sarifPhys{ArtifactLocation: sarifArt{URI: f.Meta.File}}}
		if f.Meta.Line > 0 {
			loc.Physical.Region = &sarifRegion{StartLine: f.Meta.Line, StartColumn: f.Meta.Column}
		}
		results = append(results, sarifResult{
			RuleID:              id,
			Level:               level(f.Severity),
			Message:             sarifMessage{Text: msg},
			Locations:           []sarifLoc{loc},
			PartialFingerprints: map[string]string{"solhunt/v1": util.FindingFingerprint(f)},
		})
	}

	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	driver := sarifDriver{Name: "solhunt", Rules: make([]sarifRule, 0, len(ids))}
	for _, id := range ids {
		driver.Rules = append(driver.Rules, rules[id])
	}

	run := sarifRun{Tool: sarifTool{Driver: driver}, Results: results}
	if res.RunID != "" {
		run.AutomationDetails = &sarifAutomation{GUID: res.RunID}
	}
	return json.MarshalIndent(sarif{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}}, "", "  ")
}
