// Package purify mirrors internal/bashrs/purify's span-splice design for
// Makefiles: a set of pure, saturating rewrites over the parsed
// statement tree, spliced back into source bytes rather than
// re-emitted through a pretty-printer, so any byte untouched by a
// Transformation survives unchanged.
package purify

import (
	"sort"

	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/make/parser"
	"github.com/paiml/bashrs/internal/bashrs/source"
	"github.com/paiml/bashrs/pkg/bashrserr"
)

// Transformation records one rewrite applied during purification
// (spec.md §4.K "Core rewrites produced by the Makefile purifier").
type Transformation struct {
	Code        string
	Description string
	Span        source.Span
	Replacement string
}

// Options gates the optional rewrites, mirroring the shell side's
// purify.Options.
type Options struct {
	// PermissionGuard is accepted for parity with the shell side's
	// purify.Options; no Makefile rewrite reads it, so setting it adds
	// no writability pre-check to recipe lines.
	PermissionGuard bool
}

// Result is the outcome of a purification run.
type Result struct {
	Stmts           []ast.Stmt
	Output          []byte
	Transformations []Transformation
}

type transformFunc func(f *source.File, stmts []ast.Stmt, opts Options) []Transformation

var transformFuncs = []transformFunc{
	findDeterminismRewrites,
	findIdempotencyRewrites,
	findSafetyRewrites,
}

// Purify runs every transform category once, resolves overlaps (the
// earliest-starting transformation wins; at equal starts, the earlier
// category in the order determinism, idempotency, safety/quoting —
// spec.md §4.K's listed order), splices survivors
// into f's bytes, and re-parses the result. Parallel-build races
// (MAKE018) are detection-only: there is no safe rewrite that orders
// two recipes without knowing which output should win, so that
// category lives in internal/bashrs/make/rules, not here.
func Purify(f *source.File, opts Options) (*Result, error) {
	stmts, err := parser.Parse(f)
	if err != nil {
		return nil, bashrserr.Wrap(bashrserr.ParseError, "parsing "+f.Path, err)
	}

	var found []Transformation
	for _, fn := range transformFuncs {
		found = append(found, fn(f, stmts, opts)...)
	}

	survivors := resolveOverlaps(found)
	out := spliceReverse(f.Data, survivors)

	reparsed, err := source.New(f.Path, out)
	if err != nil {
		return nil, bashrserr.Wrap(bashrserr.FixApplyError, "purification produced invalid UTF-8", err)
	}
	newStmts, err := parser.Parse(reparsed)
	if err != nil {
		return nil, bashrserr.Wrap(bashrserr.FixApplyError, "purification produced an unparseable Makefile", err)
	}

	sort.Slice(survivors, func(i, j int) bool { return survivors[i].Span.Start < survivors[j].Span.Start })

	return &Result{
		Stmts:           newStmts,
		Output:          out,
		Transformations: survivors,
	}, nil
}

// Idempotent reports whether purifying out again produces byte-identical
// output (spec.md §4.J's idempotency law, shared verbatim by the
// Makefile subsystem).
func Idempotent(path string, out []byte, opts Options) (bool, error) {
	f, err := source.New(path, out)
	if err != nil {
		return false, err
	}
	again, err := Purify(f, opts)
	if err != nil {
		return false, err
	}
	return string(again.Output) == string(out), nil
}

func resolveOverlaps(found []Transformation) []Transformation {
	sorted := append([]Transformation(nil), found...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })

	var out []Transformation
	var coveredEnd uint32
	for _, t := range sorted {
		if len(out) > 0 && t.Span.Start < coveredEnd {
			continue
		}
		out = append(out, t)
		if t.Span.End > coveredEnd {
			coveredEnd = t.Span.End
		}
	}
	return out
}

func spliceReverse(src []byte, transforms []Transformation) []byte {
	sorted := append([]Transformation(nil), transforms...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })

	out := append([]byte(nil), src...)
	for i := len(sorted) - 1; i >= 0; i-- {
		sp := sorted[i].Span
		var buf []byte
		buf = append(buf, out[:sp.Start]...)
		buf = append(buf, []byte(sorted[i].Replacement)...)
		buf = append(buf, out[sp.End:]...)
		out = buf
	}
	return out
}
