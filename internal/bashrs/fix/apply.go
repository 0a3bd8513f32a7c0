// Package fix implements the auto-fix applicator: overlap detection,
// priority-based conflict resolution, reverse-order byte splicing, and
// re-parse validation over a Diagnostic set's attached Fixes.
package fix

import (
	"sort"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/parser"
	"github.com/paiml/bashrs/internal/bashrs/source"
	"github.com/paiml/bashrs/pkg/bashrserr"
)

// Mode selects which Fix.Safety levels are eligible for application.
type Mode int

const (
	// ModeSafeOnly applies only diag.Safe fixes (the default).
	ModeSafeOnly Mode = iota
	// ModeSafeWithAssumptions additionally applies diag.SafeWithAssumptions
	// fixes (the --fix-assumptions CLI flag).
	ModeSafeWithAssumptions
)

// Result is the outcome of applying fixes to a file's source.
type Result struct {
	Output          []byte
	Applied         []diag.Diagnostic // fixes that were spliced in, in source order
	Discarded       []diag.Diagnostic // fixes that lost an overlap or were filtered by Mode
	Transformations int
}

// eligible reports whether d's fix should be considered for application
// under mode at all (a diagnostic with no fix is never eligible).
func eligible(d diag.Diagnostic, mode Mode) bool {
	if d.Fix == nil {
		return false
	}
	switch d.Fix.Safety {
	case diag.Safe:
		return true
	case diag.SafeWithAssumptions:
		return mode == ModeSafeWithAssumptions
	default: // diag.Unsafe is never auto-applied
		return false
	}
}

// Apply runs the algorithm spec.md §4.I describes: filter by safety mode,
// group overlapping fixes, keep the highest-priority fix per group,
// splice survivors into f's bytes in reverse source order, then re-parse
// as bash to confirm the result is still valid shell.
func Apply(f *source.File, diags []diag.Diagnostic, mode Mode) (*Result, error) {
	return ApplyWithValidator(f, diags, mode, func(reparsed *source.File) error {
		_, err := parser.Parse(reparsed)
		return err
	})
}

// ApplyWithValidator runs the same algorithm as Apply but re-parses the
// result with validate instead of the bash parser, so
// internal/bashrs/make can share this applicator's overlap/priority/splice
// machinery (spec.md §4.K "MAKE001-MAKE020 share internal/bashrs/fix with
// the shell side") while still confirming the result is valid for its own
// grammar rather than bash's.
func ApplyWithValidator(f *source.File, diags []diag.Diagnostic, mode Mode, validate func(*source.File) error) (*Result, error) {
	var candidates, discarded []diag.Diagnostic
	for _, d := range diags {
		if eligible(d, mode) {
			candidates = append(candidates, d)
		} else if d.Fix != nil {
			discarded = append(discarded, d)
		}
	}

	groups := groupOverlaps(candidates)
	var survivors []diag.Diagnostic
	for _, g := range groups {
		winner, losers := pickWinner(g)
		survivors = append(survivors, winner)
		discarded = append(discarded, losers...)
	}

	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].Fix.Span.Start < survivors[j].Fix.Span.Start
	})

	out := spliceReverse(f.Data, survivors)

	reparsed, err := source.New(f.Path, out)
	if err != nil {
		return nil, bashrserr.Wrap(bashrserr.FixApplyError, "auto-fix produced invalid UTF-8", err)
	}
	if err := validate(reparsed); err != nil {
		return nil, bashrserr.Wrap(bashrserr.FixApplyError, "auto-fix produced unparseable output", err)
	}

	return &Result{
		Output:          out,
		Applied:         survivors,
		Discarded:       discarded,
		Transformations: len(survivors),
	}, nil
}

// spliceReverse splices each fix's replacement into src in reverse source
// order (highest byte offset first), so applying an earlier fix never
// invalidates a later span's offsets.
func spliceReverse(src []byte, fixes []diag.Diagnostic) []byte {
	out := append([]byte(nil), src...)
	for i := len(fixes) - 1; i >= 0; i-- {
		sp := fixes[i].Fix.Span
		var buf []byte
		buf = append(buf, out[:sp.Start]...)
		buf = append(buf, []byte(fixes[i].Fix.Replacement)...)
		buf = append(buf, out[sp.End:]...)
		out = buf
	}
	return out
}

// groupOverlaps partitions diagnostics into overlap groups: two fixes
// overlap if their spans share any byte. Diagnostics with no overlap to
// any other fix form a group of one.
func groupOverlaps(diags []diag.Diagnostic) [][]diag.Diagnostic {
	sorted := append([]diag.Diagnostic(nil), diags...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Fix.Span.Start < sorted[j].Fix.Span.Start
	})

	var groups [][]diag.Diagnostic
	var current []diag.Diagnostic
	var groupEnd uint32
	for _, d := range sorted {
		sp := d.Fix.Span
		if len(current) == 0 || sp.Start < groupEnd {
			current = append(current, d)
			if sp.End > groupEnd {
				groupEnd = sp.End
			}
			continue
		}
		groups = append(groups, current)
		current = []diag.Diagnostic{d}
		groupEnd = sp.End
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// pickWinner keeps the fix with the highest Fix.Priority in a group (spec.md
// §4.I step 3's documented order, e.g. SC2116 > SC2046 > SC2086). Ties
// break on rule code for determinism across runs (spec.md §5 "Ordering
// guarantees").
func pickWinner(group []diag.Diagnostic) (winner diag.Diagnostic, losers []diag.Diagnostic) {
	if len(group) == 1 {
		return group[0], nil
	}
	best := 0
	for i := 1; i < len(group); i++ {
		if group[i].Fix.Priority > group[best].Fix.Priority {
			best = i
		} else if group[i].Fix.Priority == group[best].Fix.Priority && group[i].Code < group[best].Code {
			best = i
		}
	}
	for i, d := range group {
		if i != best {
			losers = append(losers, d)
		}
	}
	return group[best], losers
}
