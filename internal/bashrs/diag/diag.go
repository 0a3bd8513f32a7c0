// Package diag defines the Diagnostic/Fix value types every rule, the
// purifier, and the report formatters exchange. A Diagnostic is immutable
// once created; nothing here mutates a *source.File.
package diag

import (
	"sort"

	"github.com/paiml/bashrs/internal/bashrs/source"
)

// Severity classifies a Diagnostic. The declaration order, most severe
// first, is the ranking WorstSeverity uses; the process exit code
// (driver.ExitCode) distinguishes only Error from the other severities
// (spec.md §4.E, §6).
type Severity int

const (
	Error Severity = iota
	Warning
	Risk
	Perf
	Info
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Risk:
		return "risk"
	case Perf:
		return "perf"
	case Info:
		return "info"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// rank gives the severity-ordering position WorstSeverity compares: the
// lowest rank present among a file's diagnostics wins.
func (s Severity) rank() int { return int(s) }

// FixSafety classifies whether a Fix may be applied without explicit
// user opt-in.
type FixSafety int

const (
	// Safe fixes preserve parse validity and documented semantics
	// unconditionally; --fix applies these by default.
	Safe FixSafety = iota
	// SafeWithAssumptions fixes are safe only if the documented
	// assumptions hold; --fix applies these only when --fix-assumptions
	// is also given.
	SafeWithAssumptions
	// Unsafe fixes are never applied automatically; they are reported
	// as a suggestion only.
	Unsafe
)

func (s FixSafety) String() string {
	switch s {
	case Safe:
		return "safe"
	case SafeWithAssumptions:
		return "safe-with-assumptions"
	case Unsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// Fix is a proposed edit: replace the bytes covered by Span with
// Replacement. Span may differ from the owning Diagnostic's span — SC2086
// flags the bare "$var" use-site but replaces exactly those bytes with
// `"$var"`, which happens to be the same span here, but other rules
// (e.g. a rule that also trims surrounding whitespace) legitimately widen
// or shift it.
type Fix struct {
	Replacement string
	Span        source.Span
	Safety      FixSafety
	Assumptions []string // populated when Safety != Safe
	Priority    uint8    // higher wins when two fixes' spans overlap
	RuleCode    string
}

// Diagnostic is one rule finding. Immutable once constructed.
type Diagnostic struct {
	Code        string
	Severity    Severity
	Message     string
	Span        source.Span
	Fix         *Fix
	HelpTopics  []string

	file *source.File
}

// New builds a Diagnostic bound to f, so SourceContext can render an
// excerpt lazily without the caller threading the file through separately.
func New(f *source.File, code string, sev Severity, msg string, span source.Span) Diagnostic {
	return Diagnostic{Code: code, Severity: sev, Message: msg, Span: span, file: f}
}

// WithFix returns a copy of d carrying fix.
func (d Diagnostic) WithFix(fix Fix) Diagnostic {
	d.Fix = &fix
	return d
}

// WithHelpTopics returns a copy of d carrying the given help topic slugs.
func (d Diagnostic) WithHelpTopics(topics ...string) Diagnostic {
	d.HelpTopics = topics
	return d
}

// Position returns the 1-indexed line/column the diagnostic's span starts
// at, for sorting and human display.
func (d Diagnostic) Position() source.Position {
	if d.file == nil {
		return source.Position{Line: 1, Column: 1}
	}
	return d.file.PositionFor(d.Span.Start)
}

// EndPosition returns the 1-indexed line/column the diagnostic's span
// ends at, for the JSON/SARIF {end_line, end_column} fields.
func (d Diagnostic) EndPosition() source.Position {
	if d.file == nil {
		return source.Position{Line: 1, Column: 1}
	}
	return d.file.PositionFor(d.Span.End)
}

// Path returns the source file's path, or "" if the diagnostic isn't
// bound to one.
func (d Diagnostic) Path() string {
	if d.file == nil {
		return ""
	}
	return d.file.Path
}

// SourceContext renders n lines of context around the diagnostic's span
// for human output. Produced lazily; never part of the JSON/SARIF
// encoding (spec.md §4.E).
func (d Diagnostic) SourceContext(n int) string {
	if d.file == nil {
		return ""
	}
	return d.file.Context(d.Span, n)
}

// Sort orders diagnostics by (line, column, code), the ordering guarantee
// spec.md §4.I/§8 requires of every emitted diagnostic list.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		pi, pj := diags[i].Position(), diags[j].Position()
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		if pi.Column != pj.Column {
			return pi.Column < pj.Column
		}
		return diags[i].Code < diags[j].Code
	})
}

// WorstSeverity returns the severity with the lowest rank (i.e. most
// severe) among diags, and ok=false if diags is empty.
func WorstSeverity(diags []Diagnostic) (sev Severity, ok bool) {
	if len(diags) == 0 {
		return 0, false
	}
	worst := diags[0].Severity
	for _, d := range diags[1:] {
		if d.Severity.rank() < worst.rank() {
			worst = d.Severity
		}
	}
	return worst, true
}
