// Command bashrs is the thin CLI collaborator spec.md §6 describes: it
// owns flag parsing and I/O, and delegates every real decision to
// internal/bashrs/driver. Modeled on kazz187-taskguild/cmd/taskguild's
// kingpin.New + command-dispatch-switch shape.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/driver"
	"github.com/paiml/bashrs/internal/bashrs/fix"
	makeparser "github.com/paiml/bashrs/internal/bashrs/make/parser"
	"github.com/paiml/bashrs/internal/bashrs/report"
	"github.com/paiml/bashrs/internal/bashrs/rules"
	"github.com/paiml/bashrs/internal/bashrs/source"
	"github.com/paiml/bashrs/internal/bashrs/suppress"
	"github.com/paiml/bashrs/pkg/reportstore"
)

// newStorage builds the fix/purify backup backend BASHRS_STORAGE_BACKEND
// selects (local by default, S3 when set to "s3" with BASHRS_S3_BUCKET),
// so every --fix/--report path shares one config-driven choice instead of
// each hardcoding reportstore.NewLocalStorage.
func newStorage(ctx context.Context) (reportstore.Storage, error) {
	cfg, err := driver.LoadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.NewStorage(ctx)
}

var (
	app = kingpin.New("bashrs", "Lint and purify shell scripts and Makefiles toward determinism, idempotency, and POSIX compliance")

	lintCmd            = app.Command("lint", "Lint shell scripts")
	lintPaths          = lintCmd.Arg("path", "File(s) to lint").Required().Strings()
	lintFix            = lintCmd.Flag("fix", "Apply Safe fixes in place").Bool()
	lintFixAssumptions = lintCmd.Flag("fix-assumptions", "Also apply SafeWithAssumptions fixes").Bool()
	lintOutput         = lintCmd.Flag("output", "Write the report here instead of stdout").Short('o').String()
	lintRules          = lintCmd.Flag("rules", "Comma-separated rule codes to restrict output to").String()
	lintFormat         = lintCmd.Flag("format", "human, json, or sarif").Default("human").Enum("human", "json", "sarif")
	lintNoIgnore       = lintCmd.Flag("no-ignore", "Disable .bashrsignore processing").Bool()
	lintIgnoreFile     = lintCmd.Flag("ignore-file", "Use this .bashrsignore instead of walking upward").String()
	lintShell          = lintCmd.Flag("shell", "bash, sh, zsh, ksh, or auto").Default("auto").Enum("bash", "sh", "zsh", "ksh", "auto")

	purifyCmd    = app.Command("purify", "Purify a shell script toward determinism/idempotency/POSIX compliance")
	purifyPath   = purifyCmd.Arg("path", "File to purify").Required().String()
	purifyOutput = purifyCmd.Flag("output", "Write purified source here, leaving the original intact").Short('o').String()
	purifyFix    = purifyCmd.Flag("fix", "Purify in place (backs up the original first)").Bool()
	purifyReport = purifyCmd.Flag("report", "Render a transformation report alongside purification").Bool()
	purifyFormat = purifyCmd.Flag("format", "human, json, or markdown").Default("human").Enum("human", "json", "markdown")

	makeCmd        = app.Command("make", "Makefile equivalents of lint/purify/parse")
	makeLintCmd    = makeCmd.Command("lint", "Lint a Makefile")
	makeLintPath   = makeLintCmd.Arg("path", "Makefile to lint").Required().String()
	makeLintFix    = makeLintCmd.Flag("fix", "Apply Safe fixes in place").Bool()
	makeLintFormat = makeLintCmd.Flag("format", "human, json, or sarif").Default("human").Enum("human", "json", "sarif")

	makePurifyCmd    = makeCmd.Command("purify", "Purify a Makefile")
	makePurifyPath   = makePurifyCmd.Arg("path", "Makefile to purify").Required().String()
	makePurifyOutput = makePurifyCmd.Flag("output", "Write purified source here, leaving the original intact").Short('o').String()
	makePurifyFix    = makePurifyCmd.Flag("fix", "Purify in place (backs up the original first)").Bool()

	makeParseCmd  = makeCmd.Command("parse", "Parse a Makefile and report any syntax error")
	makeParsePath = makeParseCmd.Arg("path", "Makefile to parse").Required().String()

	configCmd         = app.Command("config", "Analyze a shell config file (.bashrc, .zshrc, …) with the CONFIG-00x rules")
	configAnalyzeCmd  = configCmd.Command("analyze", "Lint a config file, printing a human summary")
	configAnalyzePath = configAnalyzeCmd.Arg("path", "Config file to analyze").Required().String()
	configLintCmd     = configCmd.Command("lint", "Lint a config file")
	configLintPath    = configLintCmd.Arg("path", "Config file to lint").Required().String()
	configLintFormat  = configLintCmd.Flag("format", "human, json, or sarif").Default("human").Enum("human", "json", "sarif")
	configPurifyCmd   = configCmd.Command("purify", "Purify a config file")
	configPurifyPath  = configPurifyCmd.Arg("path", "Config file to purify").Required().String()
	configPurifyFix   = configPurifyCmd.Flag("fix", "Purify in place (backs up the original first)").Bool()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	ctx := context.Background()

	var code int
	switch command {
	case lintCmd.FullCommand():
		code = runLint(ctx)
	case purifyCmd.FullCommand():
		code = runPurify(ctx)
	case makeLintCmd.FullCommand():
		code = runMakeLint(ctx)
	case makePurifyCmd.FullCommand():
		code = runMakePurify(ctx)
	case makeParseCmd.FullCommand():
		code = runMakeParse()
	case configAnalyzeCmd.FullCommand():
		code = runConfigAnalyze(ctx)
	case configLintCmd.FullCommand():
		code = runConfigLint(ctx)
	case configPurifyCmd.FullCommand():
		code = runConfigPurify(ctx)
	default:
		fmt.Fprintf(os.Stderr, "bashrs: unrecognized command %q\n", command)
		code = 2
	}
	os.Exit(code)
}

// openOutput returns stdout when path is empty, otherwise a file opened
// for writing; the caller closes it via the returned cleanup func.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// filterByCodes drops diagnostics whose code isn't in the comma-separated
// allowlist, leaving every other FileResult field (including ToolError)
// untouched.
func filterByCodes(results []driver.FileResult, codes string) []driver.FileResult {
	if codes == "" {
		return results
	}
	allowed := make(map[string]bool)
	for _, c := range strings.Split(codes, ",") {
		allowed[strings.TrimSpace(c)] = true
	}
	out := make([]driver.FileResult, len(results))
	for i, r := range results {
		filtered := r
		filtered.Diagnostics = nil
		for _, d := range r.Diagnostics {
			if allowed[d.Code] {
				filtered.Diagnostics = append(filtered.Diagnostics, d)
			}
		}
		out[i] = filtered
	}
	return out
}

// flattenDiagnostics pools every result's diagnostics into one slice, the
// shape report.Write/report.WriteHuman expect (a lint run's report isn't
// grouped per file, spec.md §6's sample JSON output is one flat array).
func flattenDiagnostics(results []driver.FileResult) []diag.Diagnostic {
	var all []diag.Diagnostic
	for _, r := range results {
		all = append(all, r.Diagnostics...)
	}
	return all
}

// reportToolErrors prints any per-file ToolError to stderr, the same way a
// failed read or parse surfaces independently of the diagnostic report.
func reportToolErrors(results []driver.FileResult) {
	for _, r := range results {
		if r.ToolError != nil {
			fmt.Fprintf(os.Stderr, "bashrs: %s: %v\n", r.Path, r.ToolError)
		}
	}
}

func runLint(ctx context.Context) int {
	reg, err := rules.NewRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: loading rule catalog: %v\n", err)
		return 2
	}

	opts := driver.Options{Registry: reg, Mode: driver.ModeLint}
	if *lintFix || *lintFixAssumptions {
		opts.Mode = driver.ModeLintFix
		if *lintFixAssumptions {
			opts.FixMode = fix.ModeSafeWithAssumptions
		}
		storage, err := newStorage(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bashrs: %v\n", err)
			return 2
		}
		opts.Storage = storage
	}
	if st, ok := rules.ParseShellType(*lintShell); ok {
		opts.ShellOverride = &st
	}
	paths := *lintPaths
	if !*lintNoIgnore {
		if *lintIgnoreFile != "" {
			paths = filterExplicitIgnoreFile(*lintIgnoreFile, paths)
		} else {
			opts.IgnoreCache = suppress.NewCache(nil)
		}
	}

	results := driver.Run(ctx, paths, opts)
	results = filterByCodes(results, *lintRules)
	reportToolErrors(results)

	out, closeOut, err := openOutput(*lintOutput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: opening %s: %v\n", *lintOutput, err)
		return 2
	}
	defer closeOut()

	if err := report.Write(out, report.ParseFormat(*lintFormat), "bashrs", flattenDiagnostics(results)); err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: rendering report: %v\n", err)
		return 2
	}
	return driver.ExitCode(results)
}

// filterExplicitIgnoreFile drops any path matched by the ignore file at
// explicit, used instead of suppress.Cache's upward-walking discovery when
// --ignore-file names a specific file rather than relying on spec.md §4.H's
// default directory search.
func filterExplicitIgnoreFile(explicit string, paths []string) []string {
	ig, err := suppress.ParseIgnoreFile(filepath.Dir(explicit), explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: reading %s: %v\n", explicit, err)
		return paths
	}
	var kept []string
	for _, p := range paths {
		if !ig.Match(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

func runPurify(ctx context.Context) int {
	opts := driver.Options{Mode: driver.ModePurify}
	if *purifyFix {
		storage, err := newStorage(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bashrs: %v\n", err)
			return 2
		}
		opts.Storage = storage
	}

	results := driver.Run(ctx, []string{*purifyPath}, opts)
	reportToolErrors(results)
	if len(results) == 0 {
		return 2
	}
	result := results[0]
	if result.ToolError != nil {
		return 2
	}

	if result.Fix != nil && result.Fix.Output != nil {
		if *purifyOutput != "" {
			if err := os.WriteFile(*purifyOutput, result.Fix.Output, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "bashrs: writing %s: %v\n", *purifyOutput, err)
				return 2
			}
		} else if !*purifyFix {
			fmt.Fprint(os.Stdout, string(result.Fix.Output))
		}
	}

	if *purifyReport {
		format := report.ParseFormat(*purifyFormat)
		if format == report.Markdown {
			original, err := os.ReadFile(*purifyPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "bashrs: %v\n", err)
				return 2
			}
			if err := report.WriteMarkdownDiff(os.Stdout, *purifyPath, original, result.Fix.Output); err != nil {
				fmt.Fprintf(os.Stderr, "bashrs: rendering report: %v\n", err)
				return 2
			}
		} else if format == report.JSON {
			if err := report.WriteTransformationsJSON(os.Stdout, *purifyPath, result.Transformations); err != nil {
				fmt.Fprintf(os.Stderr, "bashrs: rendering report: %v\n", err)
				return 2
			}
		} else if err := report.WriteTransformationsHuman(os.Stdout, *purifyPath, result.Transformations); err != nil {
			fmt.Fprintf(os.Stderr, "bashrs: rendering report: %v\n", err)
			return 2
		}
	}
	return driver.ExitCode(results)
}

func runMakeLint(ctx context.Context) int {
	opts := driver.Options{Mode: driver.ModeLint}
	if *makeLintFix {
		opts.Mode = driver.ModeLintFix
		storage, err := newStorage(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bashrs: %v\n", err)
			return 2
		}
		opts.Storage = storage
	}

	results := driver.Run(ctx, []string{*makeLintPath}, opts)
	reportToolErrors(results)
	if err := report.Write(os.Stdout, report.ParseFormat(*makeLintFormat), "bashrs", flattenDiagnostics(results)); err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: rendering report: %v\n", err)
		return 2
	}
	return driver.ExitCode(results)
}

func runMakePurify(ctx context.Context) int {
	opts := driver.Options{Mode: driver.ModePurify}
	if *makePurifyFix {
		storage, err := newStorage(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bashrs: %v\n", err)
			return 2
		}
		opts.Storage = storage
	}

	results := driver.Run(ctx, []string{*makePurifyPath}, opts)
	reportToolErrors(results)
	if len(results) == 0 || results[0].ToolError != nil {
		return 2
	}
	if result := results[0]; result.Fix != nil && result.Fix.Output != nil {
		if *makePurifyOutput != "" {
			if err := os.WriteFile(*makePurifyOutput, result.Fix.Output, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "bashrs: writing %s: %v\n", *makePurifyOutput, err)
				return 2
			}
		} else if !*makePurifyFix {
			fmt.Fprint(os.Stdout, string(result.Fix.Output))
		}
	}
	return driver.ExitCode(results)
}

// runMakeParse just confirms the file parses — a thin diagnostic command
// for debugging the grammar itself, with no lint/purify semantics.
func runMakeParse() int {
	data, err := os.ReadFile(*makeParsePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: reading %s: %v\n", *makeParsePath, err)
		return 2
	}
	f, err := source.New(*makeParsePath, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: %s: %v\n", *makeParsePath, err)
		return 2
	}
	if _, err := makeparser.Parse(f); err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: %s: %v\n", *makeParsePath, err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "%s: ok\n", *makeParsePath)
	return 0
}

// configOptions builds the Options a config-file run shares with plain
// `lint`/`purify`: CONFIG-001..004 are ordinary registered checkers
// (internal/bashrs/rules/config.go), so no separate analysis path exists —
// only the forced bash dialect, since .bashrc/.zshrc etc. are sourced by
// an interactive shell rather than executed with a shebang.
func configOptions(reg *rules.Registry, mode driver.Mode) driver.Options {
	bash := rules.Bash
	return driver.Options{Registry: reg, Mode: mode, ShellOverride: &bash}
}

func runConfigAnalyze(ctx context.Context) int {
	reg, err := rules.NewRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: loading rule catalog: %v\n", err)
		return 2
	}
	results := driver.Run(ctx, []string{*configAnalyzePath}, configOptions(reg, driver.ModeLint))
	reportToolErrors(results)
	if err := report.WriteHuman(os.Stdout, flattenDiagnostics(results), true); err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: rendering report: %v\n", err)
		return 2
	}
	return driver.ExitCode(results)
}

func runConfigLint(ctx context.Context) int {
	reg, err := rules.NewRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: loading rule catalog: %v\n", err)
		return 2
	}
	results := driver.Run(ctx, []string{*configLintPath}, configOptions(reg, driver.ModeLint))
	reportToolErrors(results)
	if err := report.Write(os.Stdout, report.ParseFormat(*configLintFormat), "bashrs", flattenDiagnostics(results)); err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: rendering report: %v\n", err)
		return 2
	}
	return driver.ExitCode(results)
}

func runConfigPurify(ctx context.Context) int {
	opts := driver.Options{Mode: driver.ModePurify}
	if *configPurifyFix {
		storage, err := newStorage(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bashrs: %v\n", err)
			return 2
		}
		opts.Storage = storage
	}
	results := driver.Run(ctx, []string{*configPurifyPath}, opts)
	reportToolErrors(results)
	if len(results) == 0 || results[0].ToolError != nil {
		return 2
	}
	if result := results[0]; result.Fix != nil && result.Fix.Output != nil && !*configPurifyFix {
		fmt.Fprint(os.Stdout, string(result.Fix.Output))
	}
	return driver.ExitCode(results)
}
