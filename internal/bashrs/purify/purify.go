// Package purify implements the purification pipeline: a set of pure,
// saturating source rewrites (determinism, idempotency, quoting, POSIX
// compliance) applied over a parsed tree and spliced back into source
// bytes the same way internal/bashrs/fix applies diagnostic Fixes —
// reusing byte-span replacement instead of a full pretty-printer, which
// is what lets purify "preserve comments when positions allow" for free:
// anything not touched by a Transformation survives byte-for-byte.
package purify

import (
	"sort"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/parser"
	"github.com/paiml/bashrs/internal/bashrs/source"
	"github.com/paiml/bashrs/pkg/bashrserr"
)

// Transformation records one rewrite applied during purification, for
// --report output (spec.md §4.J "reported with their rule code, location,
// and a one-line description").
type Transformation struct {
	Code        string
	Description string
	Span        source.Span
	Replacement string
}

// Options gates the optional, riskier rewrites (spec.md §4.J "gated by an
// option").
type Options struct {
	// RandomPlaceholder replaces every $RANDOM occurrence. Empty defaults
	// to "0".
	RandomPlaceholder string
	// PermissionGuard prepends a writability pre-check before idempotency
	// rewrites that create or remove filesystem state.
	PermissionGuard bool
}

func (o Options) placeholder() string {
	if o.RandomPlaceholder == "" {
		return "0"
	}
	return o.RandomPlaceholder
}

// Result is the outcome of a purification run.
type Result struct {
	AST             []ast.Stmt
	Output          []byte
	Transformations []Transformation
}

// transformFunc finds occurrences of one rewrite category. Like
// rules.CheckFunc, it is a pure function over the parsed tree; it never
// mutates f or stmts.
type transformFunc func(f *source.File, stmts []ast.Stmt, opts Options) []Transformation

var transformFuncs = []transformFunc{
	findDeterminismRewrites,
	findIdempotencyRewrites,
	findQuotingRewrites,
	findPOSIXRewrites,
}

// Purify runs every transform category once, resolves overlaps (the
// earliest-starting transformation wins; at equal starts, the first
// registered category in spec.md §4.J's listed order: determinism,
// idempotency, safety/quoting, POSIX), splices the
// survivors into f's bytes, and re-parses the result into the returned
// AST.
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
		return nil, bashrserr.Wrap(bashrserr.FixApplyError, "purification produced unparseable output", err)
	}

	sort.Slice(survivors, func(i, j int) bool { return survivors[i].Span.Start < survivors[j].Span.Start })

	return &Result{
		AST:             newStmts,
		Output:          out,
		Transformations: survivors,
	}, nil
}

// Idempotent reports whether purifying out again produces byte-identical
// output, the property spec.md §4.J's "idempotency law" requires and
// §8 tests directly.
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

// resolveOverlaps sorts transformations by start offset (stably, so at
// equal starts the earlier category comes first) and keeps each one that
// begins at or after the end of everything kept so far; one overlapping
// an earlier-starting transformation is dropped, whatever its category
// (e.g. DET001's rewrite of a bare $RANDOM argument beats QUOTE001's
// quoting of the same span).
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
