package purify

import (
	"fmt"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// findIdempotencyRewrites implements spec.md §4.J's Idempotency category:
// mkdir X -> mkdir -p X, rm X -> rm -f X, ln -s A B -> ln -sf A B, each
// optionally preceded by a permission guard. Every rewrite is a
// saturating rewrite by construction: once applied, the flag it adds is
// what the trigger condition checks for, so a second pass finds nothing
// left to do (spec.md §4.J "idempotency law").
func findIdempotencyRewrites(f *source.File, stmts []ast.Stmt, opts Options) []Transformation {
	var out []Transformation
	walkCommands(stmts, func(cmd *ast.Command) {
		name, args := commandWords(cmd)
		switch {
		case name == "mkdir" && !hasFlag(args, "-p"):
			out = append(out, idempotencyRewrite(f, cmd, "IDEM001", "p",
				"rewrote mkdir to mkdir -p so re-running does not fail", opts, dirOfFirstArg(cmd)))
		case name == "rm" && !hasFlag(args, "-f"):
			out = append(out, idempotencyRewrite(f, cmd, "IDEM002", "f",
				"rewrote rm to rm -f so re-running does not fail", opts, ""))
		case name == "ln" && hasFlag(args, "-s") && !hasFlag(args, "-f"):
			out = append(out, idempotencyRewrite(f, cmd, "IDEM003", "f",
				"rewrote ln -s to ln -sf so re-running does not fail", opts, ""))
		}
	})
	return out
}

// dirOfFirstArg returns the literal DIR of a "mkdir DIR" command; the
// permission guard applies dirname to it to get the directory tested for
// writability. It returns empty when DIR is not a static literal (the
// guard is then skipped).
func dirOfFirstArg(cmd *ast.Command) string {
	if len(cmd.Args) == 0 {
		return ""
	}
	text, ok := literalText(cmd.Args[0])
	if !ok {
		return ""
	}
	return text
}

// idempotencyRewrite rebuilds cmd's source text with flag spliced in
// right after its name (or, for ln, merged into the existing -s cluster),
// optionally prefixed by a writability guard.
func idempotencyRewrite(f *source.File, cmd *ast.Command, code, flag, desc string, opts Options, guardTarget string) Transformation {
	sp := cmd.Span()
	rebuilt := rebuiltWithFlag(f, cmd, flag)
	if opts.PermissionGuard && guardTarget != "" {
		guard := fmt.Sprintf(`[ -w "$(dirname %q)" ] || { echo "purify: %s not writable" >&2; exit 1; }; `, guardTarget, guardTarget)
		rebuilt = guard + rebuilt
	}
	return Transformation{Code: code, Description: desc, Span: sp, Replacement: rebuilt}
}

func rebuiltWithFlag(f *source.File, cmd *ast.Command, flag string) string {
	name, _ := literalText(cmd.Name)
	nameEnd := cmd.Name.Span().End
	after := string(f.Text(source.NewSpan(nameEnd, cmd.Span().End)))
	if name == "ln" {
		// merge into the existing "-s" word to produce "-sf" rather than a
		// separate "-f" argument, matching how ln's own docs write it.
		return "ln" + insertIntoDashS(after, flag)
	}
	return name + " -" + flag + after
}

// insertIntoDashS appends flag onto the first "-s" (or "-s..."-prefixed)
// word found in after, so "ln -s a b" becomes "ln -sf a b" instead of
// "ln -s -f a b".
func insertIntoDashS(after, flag string) string {
	idx := -1
	for i := 0; i+1 < len(after); i++ {
		if after[i] == '-' && after[i+1] == 's' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return after + " -" + flag
	}
	end := idx + 2
	for end < len(after) && after[end] != ' ' && after[end] != '\t' {
		end++
	}
	return after[:end] + flag + after[end:]
}
