// Package parser is a recursive-descent parser over internal/bashrs/make's
// lexer token stream, building the ast.Stmt tree. The statement shape
// (collect words, then branch on the token that follows into an
// assignment, a rule, or an error) is grounded on lenticularis39-mk's
// parseTopLevel/parseAssignmentOrTarget/parseEqualsOrTarget/parseTargets/
// parseAttributesOrPrereqs/parseRecipe state functions, adapted from mk's
// grammar to GNU Make's (typed assignment operators, order-only `|`
// prereqs, conditionals, define blocks, include directives).
package parser

import (
	"fmt"

	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/make/lexer"
	"github.com/paiml/bashrs/internal/bashrs/source"
	"github.com/paiml/bashrs/pkg/bashrserr"
)

type parser struct {
	f    *source.File
	toks []lexer.Token
	pos  int
}

// Parse lexes and parses an entire Makefile into a statement list.
func Parse(f *source.File) ([]ast.Stmt, error) {
	toks := lexer.Lex(f)
	p := &parser{f: f, toks: toks}
	stmts, err := p.parseStmts(nil)
	if err != nil {
		return nil, bashrserr.New(bashrserr.ParseError, err.Error(), nil)
	}
	return stmts, nil
}

// parseStmts parses statements until EOF or, inside a conditional body,
// until one of stopWords (case-sensitive "else"/"endif") is the next
// top-level word.
func (p *parser) parseStmts(stopWords []string) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		p.skipBlank()
		if p.cur().Kind == lexer.EOF {
			return stmts, nil
		}
		if p.cur().Kind == lexer.Word && containsWord(stopWords, p.cur().Text) {
			return stmts, nil
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
}

func containsWord(words []string, w string) bool {
	for _, s := range words {
		if s == w {
			return true
		}
	}
	return false
}

func (p *parser) skipBlank() {
	for p.cur().Kind == lexer.Newline {
		p.pos++
	}
}

func (p *parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.Comment:
		p.advance()
		p.expectNewlineOrEOF()
		return ast.Comment{Base: ast.NewBase(tok.Start, tok.End), Text: tok.Text}, nil
	case lexer.Recipe:
		return nil, fmt.Errorf("recipe command before any rule at offset %d", tok.Start)
	case lexer.Word:
		switch tok.Text {
		case "define":
			return p.parseDefine()
		case "include", "-include", "sinclude":
			return p.parseInclude()
		case "ifeq", "ifneq", "ifdef", "ifndef":
			return p.parseConditional()
		case "else", "endif":
			return nil, fmt.Errorf("%q with no matching conditional at offset %d", tok.Text, tok.Start)
		case "export", "unexport", "override", "vpath":
			return p.parseDirective()
		default:
			return p.parseAssignmentOrRule()
		}
	default:
		return nil, fmt.Errorf("unexpected %s at offset %d", tok.Kind, tok.Start)
	}
}

func (p *parser) expectNewlineOrEOF() {
	if p.cur().Kind == lexer.Newline {
		p.pos++
	}
}

// parseAssignmentOrRule collects words until an AssignOp, Colon, or
// DoubleColon disambiguates the statement (lenticularis39-mk's
// parseEqualsOrTarget), then delegates.
func (p *parser) parseAssignmentOrRule() (ast.Stmt, error) {
	start := p.cur().Start
	var words []lexer.Token
	for {
		tok := p.cur()
		switch tok.Kind {
		case lexer.Word:
			words = append(words, tok)
			p.advance()
		case lexer.AssignOp:
			return p.finishAssignment(start, words, tok)
		case lexer.Colon, lexer.DoubleColon:
			return p.finishRule(start, words, tok)
		default:
			return nil, fmt.Errorf("expected ':' or an assignment operator at offset %d", tok.Start)
		}
	}
}

func (p *parser) finishAssignment(start uint32, words []lexer.Token, op lexer.Token) (ast.Stmt, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("assignment with no variable name at offset %d", op.Start)
	}
	name := words[len(words)-1].Text
	p.advance() // consume AssignOp
	valTok := p.cur()
	var value ast.Expr
	if valTok.Kind == lexer.Word {
		value = parseWord(valTok.Text, valTok.Start)
		p.advance()
	} else {
		value = ast.Text{Base: ast.NewBase(op.End, op.End), Value: ""}
	}
	end := value.Span().End
	if end < op.End {
		end = op.End
	}
	p.skipToNewline()
	return &ast.Assignment{
		Base:  ast.NewBase(start, end),
		Name:  name,
		Op:    op.Text,
		Value: value,
	}, nil
}

func (p *parser) finishRule(start uint32, targetToks []lexer.Token, colonTok lexer.Token) (ast.Stmt, error) {
	doubleColon := colonTok.Kind == lexer.DoubleColon
	p.advance() // consume colon/double-colon

	var prereqs, orderOnly []lexer.Token
	inOrderOnly := false
loop:
	for {
		tok := p.cur()
		switch tok.Kind {
		case lexer.Word:
			if inOrderOnly {
				orderOnly = append(orderOnly, tok)
			} else {
				prereqs = append(prereqs, tok)
			}
			p.advance()
		case lexer.Pipe:
			inOrderOnly = true
			p.advance()
		case lexer.Semi:
			p.advance()
			break loop
		case lexer.Newline, lexer.EOF:
			break loop
		default:
			return nil, fmt.Errorf("unexpected token in prerequisite list at offset %d", tok.Start)
		}
	}

	recipe, err := p.parseRecipeLines()
	if err != nil {
		return nil, err
	}

	end := colonTok.End
	if len(recipe) > 0 {
		end = recipe[len(recipe)-1].Span().End
	} else if len(prereqs) > 0 {
		end = prereqs[len(prereqs)-1].End
	} else if len(orderOnly) > 0 {
		end = orderOnly[len(orderOnly)-1].End
	}

	return &ast.Rule{
		Base:             ast.NewBase(start, end),
		Targets:          tokensToExprs(targetToks),
		DoubleColon:      doubleColon,
		Prereqs:          tokensToExprs(prereqs),
		OrderOnlyPrereqs: tokensToExprs(orderOnly),
		Recipe:           recipe,
	}, nil
}

func tokensToExprs(toks []lexer.Token) []ast.Expr {
	var out []ast.Expr
	for _, t := range toks {
		out = append(out, parseWord(t.Text, t.Start))
	}
	return out
}

// parseRecipeLines consumes a rule's recipe: an inline command right
// after `;` (already lexed as a Recipe token by the lexer) plus zero or
// more tab- or (invalidly) space-indented continuation lines.
func (p *parser) parseRecipeLines() ([]ast.RecipeLine, error) {
	var lines []ast.RecipeLine
	p.expectNewlineOrEOF()
	for p.cur().Kind == lexer.Recipe || p.cur().Kind == lexer.BadIndentRecipe {
		tok := p.advance()
		lines = append(lines, newRecipeLine(tok.Text, tok.Start, tok.End, tok.IndentStart, tok.Kind == lexer.Recipe))
	}
	return lines, nil
}

func newRecipeLine(text string, start, end, indentStart uint32, tabIndented bool) ast.RecipeLine {
	silent, ignoreErr, recursive := false, false, false
	for len(text) > 0 {
		switch text[0] {
		case '@':
			silent = true
			text = text[1:]
			start++
			continue
		case '-':
			ignoreErr = true
			text = text[1:]
			start++
			continue
		case '+':
			recursive = true
			text = text[1:]
			start++
			continue
		}
		break
	}
	return ast.RecipeLine{
		Base:        ast.NewBase(start, end),
		Silent:      silent,
		IgnoreError: ignoreErr,
		Recursive:   recursive,
		TabIndented: tabIndented,
		IndentStart: indentStart,
		Text:        text,
	}
}

func (p *parser) skipToNewline() {
	for p.cur().Kind != lexer.Newline && p.cur().Kind != lexer.EOF {
		p.advance()
	}
	p.expectNewlineOrEOF()
}

func (p *parser) parseDefine() (ast.Stmt, error) {
	start := p.cur().Start
	p.advance() // "define"
	if p.cur().Kind != lexer.Word {
		return nil, fmt.Errorf("expected a variable name after define at offset %d", p.cur().Start)
	}
	name := p.advance().Text
	p.skipToNewline()

	var body []byte
	for {
		if p.cur().Kind == lexer.EOF {
			return nil, fmt.Errorf("unterminated define %q", name)
		}
		if p.cur().Kind == lexer.Word && p.cur().Text == "endef" {
			break
		}
		line := p.rawLineText()
		body = append(body, []byte(line)...)
		body = append(body, '\n')
	}
	end := p.cur().End
	p.advance() // "endef"
	p.skipToNewline()

	return &ast.Define{
		Base: ast.NewBase(start, end),
		Name: name,
		Body: string(body),
	}, nil
}

// rawLineText reconstructs one logical line's text by slicing the
// original source bytes between the first and last token on the line
// (define bodies are opaque text, not statement-shaped, and slicing
// the source directly — rather than re-joining Token.Text pieces —
// keeps the inter-word spacing the lexer's tokenization discarded).
func (p *parser) rawLineText() string {
	start := p.cur().IndentStart
	end := start
	for p.cur().Kind != lexer.Newline && p.cur().Kind != lexer.EOF {
		end = p.cur().End
		p.advance()
	}
	if p.cur().Kind == lexer.Newline {
		p.advance()
	}
	return string(p.f.Data[start:end])
}

func (p *parser) parseInclude() (ast.Stmt, error) {
	start := p.cur().Start
	kw := p.advance().Text
	var files []lexer.Token
	for p.cur().Kind == lexer.Word {
		files = append(files, p.advance())
	}
	end := start
	if len(files) > 0 {
		end = files[len(files)-1].End
	}
	p.skipToNewline()
	return &ast.Include{
		Base:     ast.NewBase(start, end),
		Optional: kw != "include",
		Files:    tokensToExprs(files),
	}, nil
}

func (p *parser) parseConditional() (ast.Stmt, error) {
	start := p.cur().Start
	kind := p.advance().Text
	var args []lexer.Token
	for p.cur().Kind != lexer.Newline && p.cur().Kind != lexer.EOF {
		args = append(args, p.advance())
	}
	p.expectNewlineOrEOF()

	thenStmts, err := p.parseStmts([]string{"else", "endif"})
	if err != nil {
		return nil, err
	}
	var elseStmts []ast.Stmt
	if p.cur().Kind == lexer.Word && p.cur().Text == "else" {
		p.advance()
		p.skipToNewline()
		elseStmts, err = p.parseStmts([]string{"endif"})
		if err != nil {
			return nil, err
		}
	}
	if p.cur().Kind != lexer.Word || p.cur().Text != "endif" {
		return nil, fmt.Errorf("unterminated %s starting at offset %d", kind, start)
	}
	end := p.cur().End
	p.advance()
	p.skipToNewline()

	return &ast.Conditional{
		Base: ast.NewBase(start, end),
		Kind: kind,
		Args: tokensToExprs(args),
		Then: thenStmts,
		Else: elseStmts,
	}, nil
}

func (p *parser) parseDirective() (ast.Stmt, error) {
	start := p.cur().Start
	kw := p.advance().Text
	var args []lexer.Token
	for p.cur().Kind != lexer.Newline && p.cur().Kind != lexer.EOF {
		if p.cur().Kind == lexer.AssignOp {
			// "export NAME = value" is itself an assignment; stop here and
			// let the caller's next parseStmt pick up the "NAME = value"
			// remainder is wrong since we already consumed NAME into args.
			// GNU make treats "export X = Y" as both exporting and
			// assigning X; model it as a Directive whose Args capture the
			// whole "X = Y" text for rules to inspect, nothing else
			// depends on a structured Assignment here.
			args = append(args, p.advance())
			continue
		}
		args = append(args, p.advance())
	}
	end := start
	if len(args) > 0 {
		end = args[len(args)-1].End
	}
	p.expectNewlineOrEOF()
	return &ast.Directive{
		Base:    ast.NewBase(start, end),
		Keyword: kw,
		Args:    tokensToExprs(args),
	}, nil
}
