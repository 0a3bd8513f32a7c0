// Package parser is a recursive-descent parser over the lexer's token
// stream, producing the typed ast.Stmt/ast.Expr tree. The combinator shape
// (small parseX functions threading an explicit cursor, each returning
// either a node or an error) follows aretext's editor/syntax/parser state
// machine, generalized from "emit a token role" into "build a tree."
package parser

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/lexer"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// Parse lexes and parses an entire source file into a statement list.
func Parse(f *source.File) ([]ast.Stmt, error) {
	toks, err := lexer.Lex(f)
	if err != nil {
		return nil, err
	}
	return parseTokens(f, toks)
}

func parseTokens(f *source.File, toks []lexer.Token) ([]ast.Stmt, error) {
	p := &parser{f: f, toks: toks}
	stmts, err := p.parseStmtList()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != lexer.KindEOF {
		t := p.peek()
		return nil, unexpected(t.Span, "end of input", t.Value)
	}
	return stmts, nil
}

// parseSub lexes+parses a nested source region (command substitution
// body). Callers left-pad text with blanks up to the region's offset in
// the parent file, so the returned nodes carry the parent's byte offsets.
func parseSub(f *source.File, text string) ([]ast.Stmt, error) {
	sub, err := source.New(f.Path, []byte(text))
	if err != nil {
		return nil, err
	}
	toks, err := lexer.Lex(sub)
	if err != nil {
		return nil, err
	}
	return parseTokens(sub, toks)
}

type parser struct {
	f    *source.File
	toks []lexer.Token
	pos  int

	// pendingHD holds pointers to heredoc redirects awaiting a body, in the
	// order their "<<"/"<<-" operators were seen. The lexer only emits
	// KindHeredocBody tokens right before the newline ending the physical
	// source line, which can be well after the command that owns the
	// redirect (e.g. later pipeline stages on the same line), so bodies are
	// drained lazily wherever the parser next settles at a separator.
	pendingHD []*ast.Redirect
}

func (p *parser) peek() lexer.Token { return p.toks[p.pos] }

// peekAt returns the token n slots ahead of the cursor, clamped to the
// trailing EOF token so lookahead never runs off the end of the stream.
func (p *parser) peekAt(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) isOp(v string) bool {
	t := p.peek()
	return (t.Kind == lexer.KindOperator || t.Kind == lexer.KindRedirect) && t.Value == v
}

func (p *parser) isKeyword(v string) bool {
	t := p.peek()
	return t.Kind == lexer.KindKeyword && t.Value == v
}

func (p *parser) expectOp(v string) (lexer.Token, error) {
	if !p.isOp(v) {
		t := p.peek()
		return t, unexpected(t.Span, "'"+v+"'", t.Value)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(v string) (lexer.Token, error) {
	if !p.isKeyword(v) {
		t := p.peek()
		return t, unexpected(t.Span, "'"+v+"'", t.Value)
	}
	return p.advance(), nil
}

func (p *parser) skipSeparators() {
	for {
		switch {
		case p.peek().Kind == lexer.KindNewline:
			p.advance()
		case p.peek().Kind == lexer.KindHeredocBody:
			p.drainHeredocPending()
		case p.isOp(";"):
			p.advance()
		default:
			return
		}
	}
}

// drainHeredocPending consumes consecutive KindHeredocBody tokens, attaching
// each to the next redirect queued in pendingHD in order.
func (p *parser) drainHeredocPending() {
	for p.peek().Kind == lexer.KindHeredocBody {
		t := p.advance()
		if len(p.pendingHD) > 0 {
			p.pendingHD[0].Body = t.Value
			p.pendingHD = p.pendingHD[1:]
		}
	}
}

func (p *parser) skipNewlines() {
	for p.peek().Kind == lexer.KindNewline {
		p.advance()
	}
}

// atStmtListEnd reports whether the next token ends a statement list: EOF
// or one of the given keyword/operator terminators.
func (p *parser) atStmtListEnd(terminators ...string) bool {
	t := p.peek()
	if t.Kind == lexer.KindEOF {
		return true
	}
	for _, term := range terminators {
		if (t.Kind == lexer.KindKeyword || t.Kind == lexer.KindOperator) && t.Value == term {
			return true
		}
	}
	return false
}

// parseStmtList parses statements separated by ";"/newline until EOF or one
// of terminators is seen (the terminator itself is left unconsumed).
func (p *parser) parseStmtList(terminators ...string) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	p.skipSeparators()
	for !p.atStmtListEnd(terminators...) {
		if p.peek().Kind == lexer.KindComment {
			t := p.advance()
			stmts = append(stmts, &ast.Comment{Base: ast.Base{Sp: t.Span}, Text: t.Value})
			p.skipSeparators()
			continue
		}
		s, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if p.isOp("&") {
			p.advance()
		}
		if !p.atStmtListEnd(terminators...) {
			t := p.peek()
			if t.Kind != lexer.KindNewline && t.Kind != lexer.KindHeredocBody && !p.isOp(";") {
				return nil, unexpected(t.Span, "';' or newline", t.Value)
			}
		}
		p.skipSeparators()
	}
	return stmts, nil
}

// parseAndOr builds AndList/OrList over pipelines: "&&"/"||" are
// left-associative at equal precedence (spec.md §4.C).
func (p *parser) parseAndOr() (ast.Stmt, error) {
	left, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	for p.isOp("&&") || p.isOp("||") {
		op := p.advance()
		p.skipNewlines()
		right, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		sp := source.NewSpan(left.Span().Start, right.Span().End)
		if op.Value == "&&" {
			left = &ast.AndList{Base: ast.Base{Sp: sp}, Left: left, Right: right}
		} else {
			left = &ast.OrList{Base: ast.Base{Sp: sp}, Left: left, Right: right}
		}
	}
	return left, nil
}

// parsePipeline builds a Pipeline over commands/control-constructs joined by
// "|" or "|&", honoring a leading "!" negation.
func (p *parser) parsePipeline() (ast.Stmt, error) {
	negated := false
	start := p.peek().Span
	if p.isOp("!") {
		p.advance()
		negated = true
	}
	first, err := p.parseCommandOrControl()
	if err != nil {
		return nil, err
	}
	stages := []ast.Stmt{first}
	for p.isOp("|") || p.isOp("|&") {
		p.advance()
		p.skipNewlines()
		next, err := p.parseCommandOrControl()
		if err != nil {
			return nil, err
		}
		stages = append(stages, next)
	}
	if len(stages) == 1 && !negated {
		return stages[0], nil
	}
	end := stages[len(stages)-1].Span()
	return &ast.Pipeline{
		Base:    ast.Base{Sp: source.NewSpan(start.Start, end.End)},
		Stages:  stages,
		Negated: negated,
	}, nil
}

// parseCommandOrControl dispatches on the next token to the matching
// control-construct parser, or falls through to a simple command/
// assignment.
func (p *parser) parseCommandOrControl() (ast.Stmt, error) {
	switch {
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("while"):
		return p.parseWhileUntil(false)
	case p.isKeyword("until"):
		return p.parseWhileUntil(true)
	case p.isKeyword("case"):
		return p.parseCase()
	case p.isKeyword("function"):
		return p.parseFunctionKeyword()
	case p.isKeyword("break"):
		return p.parseBreakContinue(true)
	case p.isKeyword("continue"):
		return p.parseBreakContinue(false)
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.isOp("{"):
		return p.parseBraceGroup()
	case p.isOp("[["):
		return p.parseDoubleBracketTest()
	case p.isOp("(("):
		return p.parseArithCommand()
	case p.isOp("("):
		return p.parseSubshell()
	default:
		return p.parseSimpleCommandOrAssignmentOrFunction()
	}
}

func blockSpan(start, end source.Span) source.Span {
	return source.NewSpan(start.Start, end.End)
}
