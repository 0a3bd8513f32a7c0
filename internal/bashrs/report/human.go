package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// contextLines is the number of lines of source shown above and below a
// diagnostic's span, matching spec.md §6's "±2 lines of context".
const contextLines = 2

// WriteHuman renders diags the way a developer reads shellcheck/eslint
// output: one colored header line per diagnostic, ±n lines of source
// context, a "^^^" underline aligned under the flagged span by display
// width (not byte count, so wide CJK runes in a script's comments don't
// throw the underline off), and the fix suggestion when one exists.
// Colorization follows kazz187-taskguild's clog text handler: toggle
// color.NoColor once up front rather than threading a flag through every
// call.
func WriteHuman(w io.Writer, diags []diag.Diagnostic, useColor bool) error {
	color.NoColor = !useColor
	for i, d := range diags {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeHumanOne(w, d); err != nil {
			return err
		}
	}
	return nil
}

func writeHumanOne(w io.Writer, d diag.Diagnostic) error {
	pos := d.Position()
	sev := severityColor(d.Severity)

	if _, err := fmt.Fprintf(w, "%s:%d:%d: ", d.Path(), pos.Line, pos.Column); err != nil {
		return err
	}
	if _, err := sev.Fprintf(w, "%s %s", severityIcon(d.Severity), d.Code); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, ": %s\n", d.Message); err != nil {
		return err
	}

	ctx := d.SourceContext(contextLines)
	if ctx != "" {
		if _, err := fmt.Fprint(w, indentLines(ctx)); err != nil {
			return err
		}
		firstLine := pos.Line - contextLines
		if firstLine < 1 {
			firstLine = 1
		}
		if underline := underlineFor(ctx, firstLine, pos); underline != "" {
			if _, err := sev.Fprintf(w, "  %s\n", underline); err != nil {
				return err
			}
		}
	}

	if d.Fix != nil {
		if _, err := fmt.Fprintf(w, "  fix (%s): %s\n", d.Fix.Safety, d.Fix.Replacement); err != nil {
			return err
		}
	}
	return nil
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.Error:
		return color.New(color.FgRed)
	case diag.Warning:
		return color.New(color.FgYellow)
	case diag.Risk:
		return color.New(color.FgMagenta)
	case diag.Perf:
		return color.New(color.FgCyan)
	case diag.Info:
		return color.New(color.FgBlue)
	default:
		return color.New()
	}
}

func indentLines(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

// underlineFor builds the "^^^" marker under the flagged column, padding
// with spaces by display width (runewidth.StringWidth) so the marker
// lands under the right column even when the line's context prefix
// mixes narrow and wide runes. ctxFirstLine is the 1-indexed absolute
// line number of ctx's first rendered line.
func underlineFor(ctx string, ctxFirstLine int, pos source.Position) string {
	lines := strings.Split(strings.TrimRight(ctx, "\n"), "\n")
	idx := pos.Line - ctxFirstLine
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	line := lines[idx]
	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	pad := runewidth.StringWidth(line[:col])
	return strings.Repeat(" ", pad) + "^^^"
}
