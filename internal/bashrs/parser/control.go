package parser

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/lexer"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func (p *parser) parseIf() (ast.Stmt, error) {
	start, err := p.expectKeyword("if")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseAndOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	then, err := p.parseStmtList("elif", "else", "fi")
	if err != nil {
		return nil, err
	}
	var elifs []ast.ElifArm
	for p.isKeyword("elif") {
		p.advance()
		c, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("then"); err != nil {
			return nil, err
		}
		b, err := p.parseStmtList("elif", "else", "fi")
		if err != nil {
			return nil, err
		}
		elifs = append(elifs, ast.ElifArm{Cond: c, Body: b})
	}
	var elseBody []ast.Stmt
	if p.isKeyword("else") {
		p.advance()
		elseBody, err = p.parseStmtList("fi")
		if err != nil {
			return nil, err
		}
	}
	end, err := p.expectKeyword("fi")
	if err != nil {
		return nil, err
	}
	return &ast.If{
		Base:     ast.Base{Sp: blockSpan(start.Span, end.Span)},
		Cond:     cond,
		Then:     then,
		ElifArms: elifs,
		Else:     elseBody,
	}, nil
}

// parseFor handles both "for NAME in WORDS; do BODY done" and the C-style
// "for ((init; cond; step)); do BODY done" variant (spec.md §3, §4.C).
func (p *parser) parseFor() (ast.Stmt, error) {
	start, err := p.expectKeyword("for")
	if err != nil {
		return nil, err
	}
	if p.isOp("((") {
		return p.parseCFor(start)
	}
	nameTok := p.peek()
	if nameTok.Kind != lexer.KindIdent {
		return nil, unexpected(nameTok.Span, "loop variable name", nameTok.Value)
	}
	p.advance()

	var words []ast.Expr
	if p.isKeyword("in") {
		p.advance()
		for !p.atStmtListEnd(";", "do") && p.peek().Kind != lexer.KindNewline {
			w, err := p.parseWordToken()
			if err != nil {
				return nil, err
			}
			words = append(words, w)
		}
	}
	p.skipSeparators()
	if _, err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseStmtList("done")
	if err != nil {
		return nil, err
	}
	end, err := p.expectKeyword("done")
	if err != nil {
		return nil, err
	}
	return &ast.For{
		Base:  ast.Base{Sp: blockSpan(start.Span, end.Span)},
		Var:   nameTok.Value,
		Words: words,
		Body:  body,
	}, nil
}

func (p *parser) parseCFor(start lexer.Token) (ast.Stmt, error) {
	if _, err := p.expectOp("(("); err != nil {
		return nil, err
	}
	// The arithmetic header is carried as raw text; the lexer already
	// balanced "((" against "))", but individual tokens inside it were
	// still split on whitespace/operators, so rebuild it from spans.
	headerStart := p.peek().Span
	depth := 0
	for {
		if p.isOp("((") {
			depth++
			p.advance()
			continue
		}
		if p.isOp("))") {
			if depth == 0 {
				break
			}
			depth--
			p.advance()
			continue
		}
		if p.peek().Kind == lexer.KindEOF {
			return nil, unexpected(p.peek().Span, "'))'", p.peek().Value)
		}
		p.advance()
	}
	headerEnd := p.peek().Span
	header := string(p.f.Text(source.NewSpan(headerStart.Start, headerEnd.Start)))
	if _, err := p.expectOp("))"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	if _, err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseStmtList("done")
	if err != nil {
		return nil, err
	}
	end, err := p.expectKeyword("done")
	if err != nil {
		return nil, err
	}
	init, cond, step := splitCForHeader(header)
	return &ast.CFor{
		Base: ast.Base{Sp: blockSpan(start.Span, end.Span)},
		Init: init, Cond: cond, Step: step,
		Body: body,
	}, nil
}

// parseArithCommand parses a standalone "(( expr ))" arithmetic command
// (its truth value is the usual bash "nonzero is true" convention), wrapped
// as a Command so it composes with pipelines/AndList like any other command.
func (p *parser) parseArithCommand() (ast.Stmt, error) {
	start, err := p.expectOp("((")
	if err != nil {
		return nil, err
	}
	textStart := p.peek().Span
	depth := 0
	for {
		if p.isOp("((") {
			depth++
			p.advance()
			continue
		}
		if p.isOp("))") {
			if depth == 0 {
				break
			}
			depth--
			p.advance()
			continue
		}
		if p.peek().Kind == lexer.KindEOF {
			return nil, unexpected(p.peek().Span, "'))'", p.peek().Value)
		}
		p.advance()
	}
	textEnd := p.peek().Span
	text := string(p.f.Text(source.NewSpan(textStart.Start, textEnd.Start)))
	end, err := p.expectOp("))")
	if err != nil {
		return nil, err
	}
	return &ast.Command{
		Base: ast.Base{Sp: blockSpan(start.Span, end.Span)},
		Name: &ast.Literal{Base: ast.Base{Sp: start.Span}, Value: "(("},
		Args: []ast.Expr{&ast.ArithmeticExpansion{Base: ast.Base{Sp: blockSpan(textStart, textEnd)}, Text: text}},
	}, nil
}

func splitCForHeader(header string) (init, cond, step string) {
	parts := make([]string, 0, 3)
	depth := 0
	last := 0
	for i := 0; i < len(header); i++ {
		switch header[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ';':
			if depth == 0 {
				parts = append(parts, header[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, header[last:])
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return trimSpace(parts[0]), trimSpace(parts[1]), trimSpace(parts[2])
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isBlank(s[start]) {
		start++
	}
	for end > start && isBlank(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

func (p *parser) parseWhileUntil(until bool) (ast.Stmt, error) {
	kw := "while"
	if until {
		kw = "until"
	}
	start, err := p.expectKeyword(kw)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseAndOr()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	if _, err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseStmtList("done")
	if err != nil {
		return nil, err
	}
	end, err := p.expectKeyword("done")
	if err != nil {
		return nil, err
	}
	sp := ast.Base{Sp: blockSpan(start.Span, end.Span)}
	if until {
		return &ast.Until{Base: sp, Cond: cond, Body: body}, nil
	}
	return &ast.While{Base: sp, Cond: cond, Body: body}, nil
}

// parseCase parses each arm's patterns (joined by "|"), body, and one of
// the ";;" / ";&" / ";;&" terminators (spec.md §4.C).
func (p *parser) parseCase() (ast.Stmt, error) {
	start, err := p.expectKeyword("case")
	if err != nil {
		return nil, err
	}
	word, err := p.parseWordToken()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	p.skipSeparators()

	var arms []ast.CaseArm
	for !p.isKeyword("esac") && p.peek().Kind != lexer.KindEOF {
		hasParen := false
		if p.isOp("(") {
			p.advance()
			hasParen = true
		}
		_ = hasParen
		var patterns []ast.Expr
		for {
			pat, err := p.parseCasePattern()
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, pat)
			if p.isOp("|") {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
		p.skipSeparators()
		body, err := p.parseStmtList(";;", ";&", ";;&", "esac")
		if err != nil {
			return nil, err
		}
		term := ";;"
		if p.isOp(";;") || p.isOp(";&") || p.isOp(";;&") {
			term = p.advance().Value
		}
		arms = append(arms, ast.CaseArm{Patterns: patterns, Body: body, Terminator: term})
		p.skipSeparators()
	}
	end, err := p.expectKeyword("esac")
	if err != nil {
		return nil, err
	}
	return &ast.Case{
		Base: ast.Base{Sp: blockSpan(start.Span, end.Span)},
		Word: word,
		Arms: arms,
	}, nil
}

// parseCasePattern consumes one "|"-delimited pattern term, which is a word
// possibly containing glob characters.
func (p *parser) parseCasePattern() (ast.Expr, error) {
	return p.parseWordToken()
}

func (p *parser) parseFunctionKeyword() (ast.Stmt, error) {
	start, err := p.expectKeyword("function")
	if err != nil {
		return nil, err
	}
	nameTok := p.peek()
	if nameTok.Kind != lexer.KindIdent && nameTok.Kind != lexer.KindKeyword {
		return nil, unexpected(nameTok.Span, "function name", nameTok.Value)
	}
	p.advance()
	if p.isOp("(") {
		p.advance()
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	p.skipNewlines()
	body, end, err := p.parseBraceBody()
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Base:                ast.Base{Sp: blockSpan(start.Span, end.Span)},
		Name:                nameTok.Value,
		Body:                body,
		UsesFunctionKeyword: true,
	}, nil
}

// parseBraceBody parses "{ STMTS }" and returns the body plus the closing
// brace token for span computation.
func (p *parser) parseBraceBody() ([]ast.Stmt, lexer.Token, error) {
	if _, err := p.expectOp("{"); err != nil {
		return nil, lexer.Token{}, err
	}
	body, err := p.parseStmtList("}")
	if err != nil {
		return nil, lexer.Token{}, err
	}
	end, err := p.expectOp("}")
	if err != nil {
		return nil, lexer.Token{}, err
	}
	return body, end, nil
}

func (p *parser) parseBraceGroup() (ast.Stmt, error) {
	start := p.peek()
	body, end, err := p.parseBraceBody()
	if err != nil {
		return nil, err
	}
	return &ast.BraceGroup{Base: ast.Base{Sp: blockSpan(start.Span, end.Span)}, Body: body}, nil
}

func (p *parser) parseSubshell() (ast.Stmt, error) {
	start, err := p.expectOp("(")
	if err != nil {
		return nil, err
	}
	body, err := p.parseStmtList(")")
	if err != nil {
		return nil, err
	}
	end, err := p.expectOp(")")
	if err != nil {
		return nil, err
	}
	return &ast.Subshell{Base: ast.Base{Sp: blockSpan(start.Span, end.Span)}, Body: body}, nil
}

func (p *parser) parseBreakContinue(isBreak bool) (ast.Stmt, error) {
	kw := "continue"
	if isBreak {
		kw = "break"
	}
	start, err := p.expectKeyword(kw)
	if err != nil {
		return nil, err
	}
	levels := 1
	end := start.Span
	if p.peek().Kind == lexer.KindNumber {
		t := p.advance()
		levels = parseIntOrOne(t.Value)
		end = t.Span
	}
	sp := ast.Base{Sp: blockSpan(start.Span, end)}
	if isBreak {
		return &ast.Break{Base: sp, Levels: levels}, nil
	}
	return &ast.Continue{Base: sp, Levels: levels}, nil
}

func parseIntOrOne(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 1
		}
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return 1
	}
	return n
}

func (p *parser) parseReturn() (ast.Stmt, error) {
	start, err := p.expectKeyword("return")
	if err != nil {
		return nil, err
	}
	var val ast.Expr
	end := start.Span
	if !p.atStmtListEnd(";") && p.peek().Kind != lexer.KindNewline && !p.isOp("&") {
		val, err = p.parseWordToken()
		if err != nil {
			return nil, err
		}
		end = val.Span()
	}
	return &ast.Return{Base: ast.Base{Sp: blockSpan(start.Span, end)}, Value: val}, nil
}
