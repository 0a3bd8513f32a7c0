package report

import (
	"encoding/json"
	"io"

	"github.com/paiml/bashrs/internal/bashrs/diag"
)

// jsonDiagnostic is the stable wire shape spec.md §6 pins field names
// for: {code, severity, message, path, line, column, end_line,
// end_column, fix: {replacement, span}?, safety}. encoding/json is the
// right tool for a fixed, externally-consumed schema — no pack library
// specializes in anything beyond what the stdlib encoder already does
// here.
type jsonDiagnostic struct {
	Code      string        `json:"code"`
	Severity  string        `json:"severity"`
	Message   string        `json:"message"`
	Path      string        `json:"path"`
	Line      int           `json:"line"`
	Column    int           `json:"column"`
	EndLine   int           `json:"end_line"`
	EndColumn int           `json:"end_column"`
	Fix       *jsonFix      `json:"fix,omitempty"`
}

type jsonFix struct {
	Replacement string   `json:"replacement"`
	Span        jsonSpan `json:"span"`
	Safety      string   `json:"safety"`
}

type jsonSpan struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

func toJSONDiagnostic(d diag.Diagnostic) jsonDiagnostic {
	start, end := d.Position(), d.EndPosition()
	jd := jsonDiagnostic{
		Code:      d.Code,
		Severity:  d.Severity.String(),
		Message:   d.Message,
		Path:      d.Path(),
		Line:      start.Line,
		Column:    start.Column,
		EndLine:   end.Line,
		EndColumn: end.Column,
	}
	if d.Fix != nil {
		jd.Fix = &jsonFix{
			Replacement: d.Fix.Replacement,
			Span:        jsonSpan{Start: d.Fix.Span.Start, End: d.Fix.Span.End},
			Safety:      d.Fix.Safety.String(),
		}
	}
	return jd
}

// WriteJSON renders diags as a JSON array in spec.md §6's field order,
// indented for readability (matching --format json's use as both a CI
// artifact and something a developer pastes into an issue).
func WriteJSON(w io.Writer, diags []diag.Diagnostic) error {
	out := make([]jsonDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = toJSONDiagnostic(d)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
