package report

import (
	"encoding/json"
	"io"

	"github.com/paiml/bashrs/internal/bashrs/diag"
)

const sarifVersion = "2.1.0"
const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// sarifLog is a minimal SARIF 2.1.0 document: one run, a rule catalog
// derived from the distinct codes actually seen (spec.md §6's "rule
// catalog, results, fixes, for GitHub Code Scanning integration" — the
// catalog is scoped to what fired rather than the full rule set, since a
// single-file scan has no use for metadata on rules that never ran).
type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool      `json:"tool"`
	Results []sarifResult  `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type sarifResult struct {
	RuleID    string             `json:"ruleId"`
	Level     string             `json:"level"`
	Message   sarifMessage       `json:"message"`
	Locations []sarifLocation    `json:"locations"`
	Fixes     []sarifFix         `json:"fixes,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

type sarifFix struct {
	Description     sarifMessage           `json:"description"`
	ArtifactChanges []sarifArtifactChange  `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion        `json:"deletedRegion"`
	InsertedContent sarifInsertedText  `json:"insertedContent"`
}

type sarifInsertedText struct {
	Text string `json:"text"`
}

// sarifLevel maps a diag.Severity to the three levels SARIF recognizes;
// anything below Warning (Risk, Perf, Info, Note) reports as "note" so a
// Code Scanning dashboard doesn't drown in non-actionable "warning" rows.
func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.Error:
		return "error"
	case diag.Warning:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF renders diags as a SARIF 2.1.0 log with one run, suitable
// for `bashrs lint --format sarif -o results.sarif` feeding GitHub Code
// Scanning.
func WriteSARIF(w io.Writer, toolName string, diags []diag.Diagnostic) error {
	log := sarifLog{Schema: sarifSchema, Version: sarifVersion}
	run := sarifRun{Tool: sarifTool{Driver: sarifDriver{Name: toolName}}}

	seen := make(map[string]bool)
	for _, d := range diags {
		if !seen[d.Code] {
			seen[d.Code] = true
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{ID: d.Code, Name: d.Code})
		}
		run.Results = append(run.Results, toSARIFResult(d))
	}
	log.Runs = []sarifRun{run}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func toSARIFResult(d diag.Diagnostic) sarifResult {
	start, end := d.Position(), d.EndPosition()
	res := sarifResult{
		RuleID:  d.Code,
		Level:   sarifLevel(d.Severity),
		Message: sarifMessage{Text: d.Message},
		Locations: []sarifLocation{{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: d.Path()},
				Region: sarifRegion{
					StartLine: start.Line, StartColumn: start.Column,
					EndLine: end.Line, EndColumn: end.Column,
				},
			},
		}},
	}
	if d.Fix != nil {
		res.Fixes = []sarifFix{{
			Description: sarifMessage{Text: d.Message},
			ArtifactChanges: []sarifArtifactChange{{
				ArtifactLocation: sarifArtifactLocation{URI: d.Path()},
				Replacements: []sarifReplacement{{
					DeletedRegion:   sarifRegion{StartLine: start.Line, StartColumn: start.Column, EndLine: end.Line, EndColumn: end.Column},
					InsertedContent: sarifInsertedText{Text: d.Fix.Replacement},
				}},
			}},
		}}
	}
	return res
}
