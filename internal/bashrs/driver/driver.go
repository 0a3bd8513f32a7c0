// Package driver fans a file list out across a bounded worker pool,
// mirroring spec.md §5's "parallelism happens between files; each
// worker owns its own AST/tokens/diagnostics and shares only the
// immutable RuleRegistry." Makefiles and shell scripts are routed to
// their respective subsystem by extension/name, the same way
// internal/bashrs/rules.DetectShellType picks a shell dialect.
package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/fix"
	makeparser "github.com/paiml/bashrs/internal/bashrs/make/parser"
	makepurify "github.com/paiml/bashrs/internal/bashrs/make/purify"
	makerules "github.com/paiml/bashrs/internal/bashrs/make/rules"
	"github.com/paiml/bashrs/internal/bashrs/purify"
	"github.com/paiml/bashrs/internal/bashrs/report"
	"github.com/paiml/bashrs/internal/bashrs/rules"
	"github.com/paiml/bashrs/internal/bashrs/source"
	"github.com/paiml/bashrs/internal/bashrs/suppress"
	"github.com/paiml/bashrs/pkg/bashrserr"
	"github.com/paiml/bashrs/pkg/reportstore"
)

// ExitCode computes the process exit code for a batch of results per
// spec.md §6/§8's literal three-value contract: 0 when every file is
// clean or only carries Warning-or-lower diagnostics, 1 when any file
// carries an Error-severity diagnostic, 2 when any file failed outright
// (lex/parse/IO/internal). The overall code is the max across files
// (spec.md §7 "the overall exit code is the max of per-file codes").
func ExitCode(results []FileResult) int {
	code := 0
	for _, r := range results {
		if fc := fileExitCode(r); fc > code {
			code = fc
		}
	}
	return code
}

func fileExitCode(r FileResult) int {
	if r.ToolError != nil {
		return 2
	}
	for _, d := range r.Diagnostics {
		if d.Severity == diag.Error {
			return 1
		}
	}
	return 0
}

// Mode selects which analysis Run performs over each file.
type Mode int

const (
	// ModeLint runs the rule engine only (spec.md §4.F).
	ModeLint Mode = iota
	// ModeLintFix runs the rule engine then applies Safe (or
	// SafeWithAssumptions, per FixMode) fixes in place (spec.md §4.I).
	ModeLintFix
	// ModePurify runs the purification pipeline instead of the rule
	// engine (spec.md §4.J/§4.K); Diagnostics is always empty for a
	// ModePurify result.
	ModePurify
)

// Options tunes one Run call. Workers <= 0 falls back to Config's
// GOMAXPROCS default. FileTimeout > 0 bounds the context handed to a
// file's storage writes; lexing, parsing, linting and purifying do not
// observe it, so a slow file is not cut off or reported as a failure.
type Options struct {
	Workers     int
	FileTimeout time.Duration
	Mode        Mode

	// Registry must be non-nil for ModeLint/ModeLintFix runs against
	// shell scripts.
	Registry *rules.Registry

	// IgnoreCache, if set, filters out files matched by a .bashrsignore
	// found by walking upward from each file's directory (spec.md §4.H).
	IgnoreCache *suppress.Cache

	FixMode fix.Mode
	Storage reportstore.Storage

	// ShellOverride, if non-nil, forces every shell script to lint as
	// this dialect instead of running rules.DetectShellType's five-step
	// priority list (the CLI's `--shell` flag, spec.md §6).
	ShellOverride *rules.ShellType
}

// FileResult is one file's outcome, isolated from every other file's per
// spec.md §7's "failure of one file never affects another."
type FileResult struct {
	Path        string
	IsMakefile  bool
	Diagnostics []diag.Diagnostic
	Fix         *fix.WriteResult
	// Transformations is set only for a ModePurify result, one entry per
	// rewrite purify.Purify/makepurify.Purify applied.
	Transformations []report.Transformation
	ToolError       error // lex/parse/IO/internal failure; nil on a clean analysis
}

// Run lints (and optionally fixes) every path in files, returning one
// FileResult per input in the same order, regardless of completion order.
func Run(ctx context.Context, files []string, opts Options) []FileResult {
	results := make([]FileResult, len(files))
	p := pool.New().WithMaxGoroutines(workerCount(opts.Workers))

	for i, path := range files {
		i, path := i, path
		p.Go(func() {
			results[i] = runOne(ctx, path, opts)
		})
	}
	p.Wait()
	return results
}

func workerCount(n int) int {
	if n > 0 {
		return n
	}
	cfg, err := LoadConfig()
	if err != nil {
		return 1
	}
	return cfg.Workers
}

func runOne(ctx context.Context, path string, opts Options) FileResult {
	if opts.IgnoreCache != nil {
		if ig, err := opts.IgnoreCache.Lookup(filepath.Dir(path)); err == nil && ig != nil && ig.Match(path) {
			return FileResult{Path: path}
		}
	}

	fctx := ctx
	var cancel context.CancelFunc
	if opts.FileTimeout > 0 {
		fctx, cancel = context.WithTimeout(ctx, opts.FileTimeout)
		defer cancel()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, ToolError: bashrserr.Wrap(bashrserr.IOError, "reading "+path, err)}
	}

	isMake := isMakefile(path)
	switch {
	case opts.Mode == ModePurify && isMake:
		return purifyMakefile(fctx, opts, path, data)
	case opts.Mode == ModePurify:
		return purifyShellScript(fctx, opts, path, data)
	case isMake:
		return runMakefile(fctx, opts, path, data)
	default:
		return runShellScript(fctx, opts, path, data)
	}
}

func isMakefile(path string) bool {
	base := filepath.Base(path)
	return base == "Makefile" || base == "makefile" || base == "GNUmakefile" ||
		strings.HasSuffix(base, ".mk")
}

func runShellScript(ctx context.Context, opts Options, path string, data []byte) FileResult {
	f, err := source.New(path, data)
	if err != nil {
		return FileResult{Path: path, ToolError: bashrserr.Wrap(bashrserr.IOError, "loading "+path, err)}
	}

	shellType := rules.DetectShellType(path, data)
	if opts.ShellOverride != nil {
		shellType = *opts.ShellOverride
	}
	diags, err := rules.Lint(f, opts.Registry, shellType)
	if err != nil {
		return FileResult{Path: path, Diagnostics: diags, ToolError: err}
	}

	result := FileResult{Path: path, Diagnostics: diags}
	if opts.Mode == ModeLintFix && len(diags) > 0 {
		fixed, err := fix.Apply(f, diags, opts.FixMode)
		if err != nil {
			result.ToolError = err
			return result
		}
		if opts.Storage != nil {
			wr, err := fix.ApplyAndWrite(ctx, opts.Storage, path, fixed)
			if err != nil {
				result.ToolError = err
				return result
			}
			result.Fix = wr
		} else {
			result.Fix = &fix.WriteResult{Result: fixed}
		}
	}
	return result
}

func runMakefile(ctx context.Context, opts Options, path string, data []byte) FileResult {
	f, err := source.New(path, data)
	if err != nil {
		return FileResult{Path: path, IsMakefile: true, ToolError: bashrserr.Wrap(bashrserr.IOError, "loading "+path, err)}
	}

	stmts, err := makeparser.Parse(f)
	if err != nil {
		return FileResult{
			Path: path, IsMakefile: true,
			ToolError: bashrserr.Wrap(bashrserr.ParseError, "parsing "+path, err),
		}
	}

	diags := makerules.Lint(f, stmts)
	result := FileResult{Path: path, IsMakefile: true, Diagnostics: diags}
	if opts.Mode == ModeLintFix && len(diags) > 0 {
		fixed, err := fix.ApplyWithValidator(f, diags, opts.FixMode, func(reparsed *source.File) error {
			_, err := makeparser.Parse(reparsed)
			return err
		})
		if err != nil {
			result.ToolError = err
			return result
		}
		if opts.Storage != nil {
			wr, err := fix.ApplyAndWrite(ctx, opts.Storage, path, fixed)
			if err != nil {
				result.ToolError = err
				return result
			}
			result.Fix = wr
		} else {
			result.Fix = &fix.WriteResult{Result: fixed}
		}
	}
	return result
}

// purifyShellScript runs internal/bashrs/purify over a shell script and,
// with Storage configured, backs up and overwrites the file in place —
// the "purify" subcommand's path, distinct from "lint --fix" above:
// purification rewrites toward determinism/idempotency/POSIX compliance
// regardless of whether a lint rule flagged anything (spec.md §4.J).
func purifyShellScript(ctx context.Context, opts Options, path string, data []byte) FileResult {
	f, err := source.New(path, data)
	if err != nil {
		return FileResult{Path: path, ToolError: bashrserr.Wrap(bashrserr.IOError, "loading "+path, err)}
	}
	purified, err := purify.Purify(f, purify.Options{})
	if err != nil {
		return FileResult{Path: path, ToolError: err}
	}
	wr, err := writeIfChanged(ctx, opts, path, purified.Output, len(purified.Transformations))
	return FileResult{
		Path: path, Fix: wr, ToolError: err,
		Transformations: shellTransformations(f, purified.Transformations),
	}
}

func shellTransformations(f *source.File, in []purify.Transformation) []report.Transformation {
	out := make([]report.Transformation, len(in))
	for i, t := range in {
		out[i] = report.Transformation{
			Code: t.Code, Description: t.Description,
			Pos: f.PositionFor(t.Span.Start), Replacement: t.Replacement,
		}
	}
	return out
}

func purifyMakefile(ctx context.Context, opts Options, path string, data []byte) FileResult {
	f, err := source.New(path, data)
	if err != nil {
		return FileResult{Path: path, IsMakefile: true, ToolError: bashrserr.Wrap(bashrserr.IOError, "loading "+path, err)}
	}
	purified, err := makepurify.Purify(f, makepurify.Options{})
	if err != nil {
		return FileResult{Path: path, IsMakefile: true, ToolError: err}
	}
	wr, err := writeIfChanged(ctx, opts, path, purified.Output, len(purified.Transformations))
	return FileResult{
		Path: path, IsMakefile: true, Fix: wr, ToolError: err,
		Transformations: makeTransformations(f, purified.Transformations),
	}
}

func makeTransformations(f *source.File, in []makepurify.Transformation) []report.Transformation {
	out := make([]report.Transformation, len(in))
	for i, t := range in {
		out[i] = report.Transformation{
			Code: t.Code, Description: t.Description,
			Pos: f.PositionFor(t.Span.Start), Replacement: t.Replacement,
		}
	}
	return out
}

// writeIfChanged persists out via opts.Storage (backing up first) when
// count transformations were applied, mirroring fix.ApplyAndWrite's
// "no transformations, no write" rule for purify's own Result shape.
func writeIfChanged(ctx context.Context, opts Options, path string, out []byte, count int) (*fix.WriteResult, error) {
	result := &fix.Result{Output: out, Transformations: count}
	if count == 0 || opts.Storage == nil {
		return &fix.WriteResult{Result: result}, nil
	}
	backupPath, err := reportstore.Backup(ctx, opts.Storage, path)
	if err != nil {
		return nil, err
	}
	if err := opts.Storage.Write(ctx, path, out); err != nil {
		return nil, bashrserr.Wrap(bashrserr.IOError, "writing "+path, err)
	}
	return &fix.WriteResult{Result: result, BackupPath: backupPath}, nil
}
