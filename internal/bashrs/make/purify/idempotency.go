package purify

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// findIdempotencyRewrites mirrors the shell side's mkdir/rm/ln-s
// rewrites (spec.md §4.K "mkdir DIR -> mkdir -p DIR in recipes;
// similarly for rm, ln -s"), but over each recipe line's raw shell
// text rather than a parsed *ast.Command: the Makefile grammar keeps
// recipe bodies opaque, so this package splits each line on its
// top-level command separators (&&, ||, ;, |) and pattern-matches each
// resulting segment's leading word the same way commandWords does on
// the shell side.
func findIdempotencyRewrites(_ *source.File, stmts []ast.Stmt, _ Options) []Transformation {
	var out []Transformation
	walkRules(stmts, func(r *ast.Rule) {
		for _, rl := range r.Recipe {
			base := rl.Span().Start
			for _, seg := range splitCommandSegments(rl.Text) {
				rewriteSegmentIdempotent(base, seg, &out)
			}
		}
	})
	return out
}

type segment struct {
	text       string
	start, end int // byte offsets within the recipe line's Text
}

// splitCommandSegments splits raw recipe text on &&, ||, ;, and | at
// top level (outside of any $(...)/${...} expansion), the same
// separators a shell command line uses between simple commands.
func splitCommandSegments(text string) []segment {
	var out []segment
	depth := 0
	start := 0
	i := 0
	for i < len(text) {
		c := text[i]
		switch c {
		case '(', '{':
			depth++
			i++
			continue
		case ')', '}':
			depth--
			i++
			continue
		}
		if depth == 0 {
			if strings.HasPrefix(text[i:], "&&") || strings.HasPrefix(text[i:], "||") {
				out = append(out, segment{text: text[start:i], start: start, end: i})
				i += 2
				start = i
				continue
			}
			if c == ';' || c == '|' {
				out = append(out, segment{text: text[start:i], start: start, end: i})
				i++
				start = i
				continue
			}
		}
		i++
	}
	out = append(out, segment{text: text[start:], start: start, end: len(text)})
	return out
}

func rewriteSegmentIdempotent(base uint32, seg segment, out *[]Transformation) {
	trimmed := strings.TrimLeft(seg.text, " \t")
	lead := len(seg.text) - len(trimmed)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return
	}
	nameEnd := lead + len(fields[0])

	switch fields[0] {
	case "mkdir":
		if !hasField(fields[1:], "-p") {
			emitFlagInsert(base, seg, nameEnd, "p", "MAKE-IDEM001",
				"rewrote mkdir to mkdir -p so re-running the recipe does not fail", out)
		}
	case "rm":
		if !hasField(fields[1:], "-f") {
			emitFlagInsert(base, seg, nameEnd, "f", "MAKE-IDEM002",
				"rewrote rm to rm -f so re-running the recipe does not fail", out)
		}
	case "ln":
		if hasField(fields[1:], "-s") && !hasField(fields[1:], "-f") {
			emitLnFix(base, seg, out)
		}
	}
}

func hasField(fields []string, flag string) bool {
	for _, fl := range fields {
		if fl == flag {
			return true
		}
	}
	return false
}

func emitFlagInsert(base uint32, seg segment, nameEnd int, flag, code, desc string, out *[]Transformation) {
	full := source.NewSpan(base+uint32(seg.start), base+uint32(seg.end))
	replacement := seg.text[:nameEnd] + " -" + flag + seg.text[nameEnd:]
	*out = append(*out, Transformation{
		Code:        code,
		Description: desc,
		Span:        full,
		Replacement: replacement,
	})
}

func emitLnFix(base uint32, seg segment, out *[]Transformation) {
	full := source.NewSpan(base+uint32(seg.start), base+uint32(seg.end))
	idx := strings.Index(seg.text, "-s")
	if idx < 0 {
		return
	}
	end := idx + 2
	for end < len(seg.text) && seg.text[end] != ' ' && seg.text[end] != '\t' {
		end++
	}
	replacement := seg.text[:end] + "f" + seg.text[end:]
	*out = append(*out, Transformation{
		Code:        "MAKE-IDEM003",
		Description: "rewrote ln -s to ln -sf so re-running the recipe does not fail",
		Span:        full,
		Replacement: replacement,
	})
}
