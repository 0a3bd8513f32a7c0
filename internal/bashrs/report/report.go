// Package report renders a diagnostic list in the formats spec.md §6
// names: human (colorized, with source context), JSON (stable wire
// format), SARIF 2.1.0 (GitHub Code Scanning), and a unified-diff
// markdown view of a purify pass.
package report

import (
	"fmt"
	"io"

	"github.com/paiml/bashrs/internal/bashrs/diag"
)

// Format selects the renderer Write dispatches to.
type Format int

const (
	Human Format = iota
	JSON
	SARIF
	Markdown
)

// ParseFormat maps a --format flag value to a Format, defaulting to Human
// on an unrecognized string rather than erroring — an unknown format name
// degrades to the most legible output instead of refusing to report at
// all.
func ParseFormat(s string) Format {
	switch s {
	case "json":
		return JSON
	case "sarif":
		return SARIF
	case "markdown":
		return Markdown
	default:
		return Human
	}
}

// Write renders diags in format to w. toolName names the tool in a SARIF
// run's driver block; it's ignored by the other formats. Markdown is not
// reachable through Write — it diffs two full source buffers rather than
// a diagnostic list, so callers needing it call WriteMarkdownDiff
// directly (the purify path, which has both buffers on hand).
func Write(w io.Writer, format Format, toolName string, diags []diag.Diagnostic) error {
	switch format {
	case JSON:
		return WriteJSON(w, diags)
	case SARIF:
		return WriteSARIF(w, toolName, diags)
	case Markdown:
		return fmt.Errorf("report: markdown format requires WriteMarkdownDiff, not Write")
	default:
		return WriteHuman(w, diags, true)
	}
}

func severityIcon(s diag.Severity) string {
	switch s {
	case diag.Error:
		return "✗"
	case diag.Warning:
		return "⚠"
	case diag.Risk:
		return "☡"
	case diag.Perf:
		return "⚡"
	case diag.Info:
		return "ℹ"
	default:
		return "•"
	}
}
