package parser

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/lexer"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// parseWordToken consumes the current Ident/String/Number token and
// decomposes its raw text into an ast.Expr tree (spec.md §3 "BashExpr"):
// the lexer only guarantees balanced quote/expansion boundaries, so turning
// "foo$(bar)\"baz $x\"" into Literal/CommandSubstitution/StringDouble/
// Variable pieces happens here, one level up from tokenizing.
func (p *parser) parseWordToken() (ast.Expr, error) {
	t := p.peek()
	switch t.Kind {
	case lexer.KindIdent, lexer.KindString, lexer.KindNumber:
		p.advance()
		return p.wordExprFromRaw(t.Value, t.Quote, t.Span), nil
	default:
		return nil, unexpected(t.Span, "word", t.Value)
	}
}

func (p *parser) wordExprFromRaw(raw string, quote lexer.QuoteKind, sp source.Span) ast.Expr {
	if quote == lexer.QuoteSingle {
		return &ast.StringSingle{Base: ast.Base{Sp: sp}, Text: raw}
	}
	if quote == lexer.QuoteDouble {
		// sp spans the whole token including its surrounding quotes, but
		// raw has already had them stripped (lexer.go's
		// unwrapSingleQuotedWhole), so raw[0] sits one byte past sp.Start.
		segs := p.scanSegments(raw, sp.Start+1, true)
		return &ast.StringDouble{Base: ast.Base{Sp: sp}, Segments: segs}
	}
	return p.decomposeWord(raw, sp)
}

// piece is one lexical unit of a word: either literal text or an
// already-built expansion expression.
type piece struct {
	literal string
	expr    ast.Expr
	isGlob  bool
}

func (p *parser) decomposeWord(raw string, sp source.Span) ast.Expr {
	pieces := p.scanPieces(raw, sp.Start, false)
	var parts []ast.Expr
	for _, pc := range pieces {
		if pc.expr != nil {
			parts = append(parts, pc.expr)
			continue
		}
		if pc.isGlob {
			parts = append(parts, &ast.Glob{Base: ast.Base{Sp: sp}, Pattern: pc.literal})
		} else {
			parts = append(parts, &ast.Literal{Base: ast.Base{Sp: sp}, Value: pc.literal})
		}
	}
	switch len(parts) {
	case 0:
		return &ast.Literal{Base: ast.Base{Sp: sp}, Value: ""}
	case 1:
		return parts[0]
	default:
		return &ast.Concatenation{Base: ast.Base{Sp: sp}, Parts: parts}
	}
}

func (p *parser) scanSegments(raw string, base uint32, insideDouble bool) []ast.StringSegment {
	pieces := p.scanPieces(raw, base, insideDouble)
	segs := make([]ast.StringSegment, 0, len(pieces))
	for _, pc := range pieces {
		if pc.expr != nil {
			segs = append(segs, ast.StringSegment{Expr: pc.expr})
		} else {
			segs = append(segs, ast.StringSegment{Literal: pc.literal})
		}
	}
	return segs
}

const globMeta = "*?["

// scanPieces walks raw left to right, splitting it into literal runs and
// expansion pieces. base is raw[0]'s absolute byte offset in the source
// file, so each expansion piece's span can be set to its real "$…"/"$(…)"
// byte range instead of an empty one (spec.md §4.A "every node carries a
// real Span", needed for rules like SC2086/SC2046 that quote-fix by byte
// range). insideDouble disables single-quote literal scanning (single
// quotes have no special meaning inside an already double-quoted word).
func (p *parser) scanPieces(raw string, base uint32, insideDouble bool) []piece {
	var out []piece
	var buf strings.Builder
	globSeen := false

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		out = append(out, piece{literal: buf.String(), isGlob: globSeen && !insideDouble})
		buf.Reset()
		globSeen = false
	}

	i := 0
	for i < len(raw) {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw):
			buf.WriteByte(raw[i+1])
			i += 2
		case c == '\'' && !insideDouble:
			end := i + 1
			for end < len(raw) && raw[end] != '\'' {
				end++
			}
			if end < len(raw) {
				buf.WriteString(raw[i+1 : end])
				i = end + 1
			} else {
				buf.WriteString(raw[i+1:])
				i = len(raw)
			}
		case c == '"' && !insideDouble:
			end := matchQuote(raw, i, '"')
			inner := raw[i+1 : end-1]
			flush()
			sp := source.NewSpan(base+uint32(i), base+uint32(end))
			out = append(out, piece{expr: &ast.StringDouble{
				Base: ast.Base{Sp: sp}, Segments: p.scanSegments(inner, base+uint32(i+1), true),
			}})
			i = end
		case c == '`':
			end := matchBacktick(raw, i)
			inner := raw[i+1 : end-1]
			flush()
			body, _ := parseSub(p.f, strings.Repeat(" ", int(base)+i+1)+inner)
			sp := source.NewSpan(base+uint32(i), base+uint32(end))
			out = append(out, piece{expr: &ast.CommandSubstitution{
				Base: ast.Base{Sp: sp}, Body: wrapStmts(body), Backquoted: true,
			}})
			i = end
		case c == '$' && i+1 < len(raw) && raw[i+1] == '(' && i+2 < len(raw) && raw[i+2] == '(':
			end := matchArith(raw, i)
			text := raw[i+3 : end-2]
			flush()
			sp := source.NewSpan(base+uint32(i), base+uint32(end))
			out = append(out, piece{expr: &ast.ArithmeticExpansion{Base: ast.Base{Sp: sp}, Text: text}})
			i = end
		case c == '$' && i+1 < len(raw) && raw[i+1] == '(':
			end := matchParen(raw, i+1)
			inner := raw[i+2 : end-1]
			flush()
			body, _ := parseSub(p.f, strings.Repeat(" ", int(base)+i+2)+inner)
			sp := source.NewSpan(base+uint32(i), base+uint32(end))
			out = append(out, piece{expr: &ast.CommandSubstitution{Base: ast.Base{Sp: sp}, Body: wrapStmts(body)}})
			i = end
		case c == '$' && i+1 < len(raw) && raw[i+1] == '{':
			end := matchBrace(raw, i+1)
			inner := raw[i+2 : end-1]
			flush()
			sp := source.NewSpan(base+uint32(i), base+uint32(end))
			out = append(out, piece{expr: buildParamExpansion(inner, sp)})
			i = end
		case c == '$' && i+1 < len(raw) && isVarStart(raw[i+1]):
			j := i + 1
			for j < len(raw) && isVarCont(raw[j]) {
				j++
			}
			flush()
			sp := source.NewSpan(base+uint32(i), base+uint32(j))
			out = append(out, piece{expr: &ast.Variable{Base: ast.Base{Sp: sp}, Name: raw[i+1 : j]}})
			i = j
		case c == '$' && i+1 < len(raw) && isSpecialParam(raw[i+1]):
			flush()
			sp := source.NewSpan(base+uint32(i), base+uint32(i+2))
			out = append(out, piece{expr: &ast.Variable{Base: ast.Base{Sp: sp}, Name: string(raw[i+1])}})
			i += 2
		default:
			if !insideDouble && strings.IndexByte(globMeta, c) >= 0 {
				globSeen = true
			}
			buf.WriteByte(c)
			i++
		}
	}
	flush()
	return out
}

func wrapStmts(stmts []ast.Stmt) ast.Stmt {
	if len(stmts) == 0 {
		return nil
	}
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &ast.BraceGroup{Body: stmts}
}

func isVarStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
func isVarCont(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
func isSpecialParam(b byte) bool {
	switch b {
	case '@', '*', '#', '?', '-', '$', '!', '0':
		return true
	}
	return false
}

// matchQuote finds the index just past the closing quote matching raw[i].
func matchQuote(raw string, i int, q byte) int {
	j := i + 1
	for j < len(raw) {
		if raw[j] == '\\' && j+1 < len(raw) {
			j += 2
			continue
		}
		if raw[j] == q {
			return j + 1
		}
		j++
	}
	return len(raw)
}

func matchBacktick(raw string, i int) int {
	j := i + 1
	for j < len(raw) {
		if raw[j] == '\\' && j+1 < len(raw) {
			j += 2
			continue
		}
		if raw[j] == '`' {
			return j + 1
		}
		j++
	}
	return len(raw)
}

// matchParen finds the index just past the ")" balancing the "(" at
// raw[open].
func matchParen(raw string, open int) int {
	depth := 0
	j := open
	for j < len(raw) {
		switch raw[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
		j++
	}
	return len(raw)
}

// matchArith finds the index just past the "))" balancing the "$((" at
// raw[i].
func matchArith(raw string, i int) int {
	depth := 0
	j := i + 2
	for j < len(raw) {
		switch raw[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				if j+1 < len(raw) && raw[j+1] == ')' {
					return j + 2
				}
				return j + 1
			}
		}
		j++
	}
	return len(raw)
}

func matchBrace(raw string, open int) int {
	depth := 0
	j := open
	for j < len(raw) {
		switch raw[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
		j++
	}
	return len(raw)
}

var paramOps = []string{":-", ":=", ":?", ":+", "##", "%%", "//", "#", "%", "/"}

// buildParamExpansion splits a "${...}" body into name/operator/word. This
// covers the common forms (${VAR}, ${VAR:-default}, ${VAR#pattern}, ...);
// exotic nested-parameter forms fall back to a bare Variable-like name with
// no operator. sp is the full "${...}" byte range.
func buildParamExpansion(inner string, sp source.Span) ast.Expr {
	base := ast.Base{Sp: sp}
	if inner == "" {
		return &ast.ParameterExpansion{Base: base, Name: ""}
	}
	if inner[0] == '#' && len(inner) > 1 && !strings.HasPrefix(inner, "##") {
		return &ast.ParameterExpansion{Base: base, Name: inner[1:], Operator: "#LEN"}
	}
	for _, op := range paramOps {
		if idx := strings.Index(inner, op); idx > 0 {
			return &ast.ParameterExpansion{Base: base, Name: inner[:idx], Operator: op, Word: inner[idx+len(op):]}
		}
	}
	return &ast.ParameterExpansion{Base: base, Name: inner}
}
