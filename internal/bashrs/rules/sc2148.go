package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2148", checkSC2148)
}

// checkSC2148 flags a file with no shebang line, or an unrecognized one:
// without it, the interpreter that runs the script depends entirely on
// how it's invoked (spec.md §9 supplemented).
func checkSC2148(f *source.File, _ []ast.Stmt) []diag.Diagnostic {
	nl := strings.IndexByte(string(f.Data), '\n')
	var first string
	if nl < 0 {
		first = string(f.Data)
	} else {
		first = string(f.Data[:nl])
	}
	first = strings.TrimRight(first, "\r")
	if strings.HasPrefix(first, "#!") && len(strings.Fields(strings.TrimPrefix(first, "#!"))) > 0 {
		return nil
	}
	end := uint32(len(first))
	if end > uint32(len(f.Data)) {
		end = uint32(len(f.Data))
	}
	sp := source.NewSpan(0, end)
	return []diag.Diagnostic{
		diag.New(f, "SC2148", diag.Warning, "file has no (or an invalid) shebang line", sp),
	}
}
