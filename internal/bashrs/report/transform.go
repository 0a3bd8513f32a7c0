package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paiml/bashrs/internal/bashrs/source"
)

// Transformation is one purify rewrite, the shape driver.FileResult
// carries back from internal/bashrs/purify and internal/bashrs/make/purify
// for `purify --report` output (spec.md §4.J "reported with their rule
// code, location, and a one-line description").
type Transformation struct {
	Code        string
	Description string
	Pos         source.Position
	Replacement string
}

// WriteTransformationsHuman lists each transformation one per line, in the
// same code:line:column style as WriteHuman's diagnostics.
func WriteTransformationsHuman(w io.Writer, path string, transformations []Transformation) error {
	if len(transformations) == 0 {
		_, err := fmt.Fprintf(w, "%s: no transformations applied\n", path)
		return err
	}
	for _, t := range transformations {
		if _, err := fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, t.Pos.Line, t.Pos.Column, t.Code, t.Description); err != nil {
			return err
		}
	}
	return nil
}

type jsonTransformation struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Path        string `json:"path"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Replacement string `json:"replacement"`
}

// WriteTransformationsJSON renders transformations as the wire format
// `purify --report --format json` emits, mirroring WriteJSON's diagnostic
// array shape.
func WriteTransformationsJSON(w io.Writer, path string, transformations []Transformation) error {
	out := make([]jsonTransformation, len(transformations))
	for i, t := range transformations {
		out[i] = jsonTransformation{
			Code:        t.Code,
			Description: t.Description,
			Path:        path,
			Line:        t.Pos.Line,
			Column:      t.Pos.Column,
			Replacement: t.Replacement,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
